// Package main is the entry point for the cmdtree CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v3"

	treecli "github.com/NikitaCOEUR/cmdtree/internal/cli"
	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
	"github.com/NikitaCOEUR/cmdtree/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 when the grammar itself could not be loaded or compiled.
func exitCode(err error) int {
	if derrors.HasCode(err, derrors.CodeGrammar) || derrors.HasCode(err, derrors.CodeValidation) {
		return 2
	}
	return 1
}

// common reads the global flags.
func common(cmd *cli.Command) treecli.Common {
	root := cmd.Root()
	return treecli.Common{
		Grammars:  cmd.StringSlice("grammar"),
		LogLevel:  cmd.String("log-level"),
		LogFormat: cmd.String("log-format"),
		Out:       root.Writer,
		Stdin:     root.Reader,
	}
}

// line joins the arguments of cmd into one command line.
func line(cmd *cli.Command) string {
	return strings.Join(cmd.Args().Slice(), " ")
}

func sourceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "source",
		Aliases: []string{"s"},
		Usage:   "Source to run as (defaults to the grammar default source)",
		Sources: cli.EnvVars("CMDTREE_SOURCE"),
	}
}

//nolint:funlen // The command table reads best in one place
func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "cmdtree",
		Usage:                 "Parse, complete and run commands against a declarative command grammar",
		Version:               version.Version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "grammar",
				Aliases: []string{"g"},
				Usage:   "Grammar file, repeatable; later files override earlier ones. - reads stdin",
				Sources: cli.EnvVars("CMDTREE_GRAMMAR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error); defaults to the grammar log_level",
				Sources: cli.EnvVars("CMDTREE_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format (text, json)",
				Sources: cli.EnvVars("CMDTREE_LOG_FORMAT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Parse and execute one command line",
				ArgsUsage: "<line...>",
				Flags: []cli.Flag{
					sourceFlag(),
					&cli.BoolFlag{
						Name:  "timing",
						Usage: "Print the time spent in each phase",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() == 0 {
						return fmt.Errorf("command line required")
					}
					return treecli.Run(treecli.RunParams{
						Common: common(cmd),
						Line:   line(cmd),
						Source: cmd.String("source"),
						Timing: cmd.Bool("timing"),
					})
				},
			},
			{
				Name:      "suggest",
				Usage:     "List completions for a command line",
				ArgsUsage: "[line...]",
				Flags: []cli.Flag{
					sourceFlag(),
					&cli.IntFlag{
						Name:  "cursor",
						Value: -1,
						Usage: "Completion position (defaults to the end of the line)",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return treecli.Suggest(treecli.SuggestParams{
						Common: common(cmd),
						Line:   line(cmd),
						Source: cmd.String("source"),
						Cursor: int(cmd.Int("cursor")),
					})
				},
			},
			{
				Name:  "analyze",
				Usage: "Report argument siblings that accept the same input",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Exit with an error when an ambiguity is found",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return treecli.Analyze(treecli.AnalyzeParams{
						Common: common(cmd),
						Strict: cmd.Bool("strict"),
					})
				},
			},
			{
				Name:      "usage",
				Usage:     "Print the usage of a node",
				ArgsUsage: "[path...]",
				Flags: []cli.Flag{
					sourceFlag(),
					&cli.BoolFlag{
						Name:  "smart",
						Usage: "One compact line per child",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return treecli.Usage(treecli.UsageParams{
						Common: common(cmd),
						Path:   cmd.Args().Slice(),
						Source: cmd.String("source"),
						Smart:  cmd.Bool("smart"),
					})
				},
			},
			{
				Name:  "tree",
				Usage: "Print the compiled command tree",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return treecli.Tree(common(cmd))
				},
			},
			{
				Name:  "inspect",
				Usage: "Show grammar files, sources, statistics and history",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "history",
						Usage:   "History file to report on",
						Sources: cli.EnvVars("CMDTREE_HISTORY"),
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return treecli.Inspect(treecli.InspectParams{
						Common:  common(cmd),
						History: cmd.String("history"),
					})
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate a grammar file",
				ArgsUsage: "[grammar-file]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return treecli.Validate(treecli.ValidateParams{
						Path:  cmd.Args().Get(0),
						Out:   cmd.Root().Writer,
						Stdin: cmd.Root().Reader,
					})
				},
			},
			{
				Name:      "schema",
				Usage:     "Display or export the JSON Schema for grammar files",
				ArgsUsage: "[output-file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (prints to stdout if not specified)",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					outputPath := cmd.String("output")
					if outputPath == "" && cmd.Args().Len() > 0 {
						outputPath = cmd.Args().Get(0)
					}
					return treecli.Schema(outputPath, cmd.Root().Writer)
				},
			},
			{
				Name:  "repl",
				Usage: "Start the interactive console",
				Flags: []cli.Flag{
					sourceFlag(),
					&cli.StringFlag{
						Name:    "history",
						Usage:   "History file (defaults to the grammar setting, then the user config directory)",
						Sources: cli.EnvVars("CMDTREE_HISTORY"),
					},
					&cli.BoolFlag{
						Name:  "no-watch",
						Usage: "Do not reload the grammar when its files change",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return treecli.Repl(ctx, treecli.ReplParams{
						Common:  common(cmd),
						Source:  cmd.String("source"),
						History: cmd.String("history"),
						NoWatch: cmd.Bool("no-watch"),
					})
				},
			},
		},
	}
}
