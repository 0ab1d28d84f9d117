package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
	"github.com/NikitaCOEUR/cmdtree/internal/history"
	"github.com/NikitaCOEUR/cmdtree/internal/repl"
)

// ReplParams contains parameters for the Repl command
type ReplParams struct {
	Common
	Source  string
	History string
	NoWatch bool
}

// Repl starts the interactive console.
func Repl(ctx context.Context, p ReplParams) error {
	paths, err := grammarPaths(p.Common)
	if err != nil {
		return err
	}
	if slices.Contains(paths, config.StdinPath) {
		return fmt.Errorf("the repl cannot read its grammar from stdin")
	}

	loader := config.New()
	g, err := loader.LoadAll(paths)
	if err != nil {
		return err
	}
	log := newLogger(p.Common, g.Settings.LogLevel)

	hist, err := history.New(historyPath(p.History, g.Settings), g.Settings.HistoryLimit)
	if err != nil {
		return err
	}

	session, err := repl.New(repl.Config{
		Loader:  loader,
		Paths:   paths,
		Source:  p.Source,
		Out:     p.out(),
		History: hist,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	if !p.NoWatch {
		if err := session.Watch(ctx, repl.DefaultDebounce); err != nil {
			log.Warn().Err(err).Msg("Hot reload disabled")
		}
	}
	return session.Run(ctx)
}

// historyPath picks the flag, then the grammar setting, then the default.
func historyPath(flag string, s config.Settings) string {
	switch {
	case flag != "":
		return flag
	case s.History != "":
		return s.History
	}
	return history.DefaultPath()
}
