package cli

import (
	"fmt"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
	"github.com/NikitaCOEUR/cmdtree/internal/history"
	"github.com/NikitaCOEUR/cmdtree/internal/status"
)

// InspectParams contains parameters for the Inspect command
type InspectParams struct {
	Common
	// History is the history file to report on; empty uses the default.
	History string
}

// Inspect displays the grammar files, sources, statistics and history.
func Inspect(p InspectParams) error {
	paths, err := grammarPaths(p.Common)
	if err != nil {
		return err
	}
	loader := config.New()
	if p.Stdin != nil {
		loader.Stdin = p.Stdin
	}

	path := p.History
	if path == "" {
		path = history.DefaultPath()
	}
	var (
		hist    *history.Store
		histErr error
	)
	if path != "" {
		hist, histErr = history.New(path, 0)
	}

	data := status.Collect(loader, paths, hist)
	if histErr != nil {
		data.History = &status.HistoryInfo{Path: path, Err: histErr}
	}
	fmt.Fprintln(p.out(), status.Render(data))
	return nil
}
