package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
	"github.com/NikitaCOEUR/cmdtree/internal/grammar"
	"github.com/NikitaCOEUR/cmdtree/internal/logger"
	"github.com/NikitaCOEUR/cmdtree/internal/timing"
)

// Common holds the global flags shared by every command
type Common struct {
	Grammars  []string
	LogLevel  string
	LogFormat string

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
	// Stdin is read for the "-" grammar. Defaults to os.Stdin.
	Stdin io.Reader
}

func (c Common) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// components holds the initialized cmdtree components
type components struct {
	log      *logger.Logger
	compiled *grammar.Compiled
}

// grammarPaths returns the --grammar files, or the default grammar of the
// current directory.
func grammarPaths(c Common) ([]string, error) {
	if len(c.Grammars) > 0 {
		return c.Grammars, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	path, ok := config.FindGrammar(dir)
	if !ok {
		return nil, fmt.Errorf("no grammar file found in current directory, use --grammar")
	}
	return []string{path}, nil
}

// newLogger creates the logger for c. The grammar log_level applies when the
// flag is left empty.
func newLogger(c Common, grammarLevel string) *logger.Logger {
	level := c.LogLevel
	if level == "" {
		level = grammarLevel
	}
	if level == "" {
		level = "warn"
	}
	return logger.NewWithFormat(level, c.LogFormat, os.Stderr)
}

// initializeComponents loads and compiles the grammar. Command output of run
// templates goes to c.Out.
func initializeComponents(c Common, timer *timing.Timer) (*components, error) {
	paths, err := grammarPaths(c)
	if err != nil {
		return nil, err
	}

	loader := config.New()
	if c.Stdin != nil {
		loader.Stdin = c.Stdin
	}

	stop := timer.Start(timing.PhaseLoad)
	g, err := loader.LoadAll(paths)
	stop()
	if err != nil {
		return nil, err
	}

	log := newLogger(c, g.Settings.LogLevel)
	log.Debug().Strs("grammars", paths).Msg("Grammar loaded")

	stop = timer.Start(timing.PhaseCompile)
	compiled, err := grammar.Compile(g, grammar.Options{Out: c.out(), Logger: log})
	stop()
	if err != nil {
		return nil, err
	}

	return &components{log: log, compiled: compiled}, nil
}
