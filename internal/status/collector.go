// Package status collects and renders the grammar report printed by
// cmdtree inspect.
package status

import (
	"os"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
	"github.com/NikitaCOEUR/cmdtree/internal/grammar"
	"github.com/NikitaCOEUR/cmdtree/internal/history"
	"github.com/NikitaCOEUR/cmdtree/pkg/version"
)

// Collect gathers the report for the grammar files at paths. A grammar that
// fails to load or compile is reported, not returned as an error.
func Collect(loader *config.Loader, paths []string, hist *history.Store) *Data {
	data := &Data{
		Version:   version.Version,
		GitCommit: version.GitCommit,
		Files:     loader.Describe(paths),
		Warnings:  make([]config.ValidationError, 0),
	}

	g, err := loader.LoadAll(paths)
	if err != nil {
		data.CompileErr = err
		collectHistoryInfo(data, hist)
		return data
	}
	data.Settings = g.Settings
	data.Sources = g.Sources
	data.Stats = config.GetStats(g)

	compiled, err := grammar.Compile(g, grammar.Options{})
	if err != nil {
		data.CompileErr = err
	} else {
		data.TreeNodes = compiled.Tree.Len() - 1
		data.Ambiguity = compiled.Policy.String()
		data.Ambiguities = len(compiled.Dispatcher().Ambiguities())
		data.Warnings = compiled.Warnings
	}

	collectHistoryInfo(data, hist)
	return data
}

func collectHistoryInfo(data *Data, hist *history.Store) {
	if hist == nil {
		return
	}
	info := &HistoryInfo{Path: hist.Path(), Entries: hist.Len()}
	if last, ok := hist.Last(); ok {
		info.Last = last.Timestamp
	}
	if info.Path != "" {
		if st, err := os.Stat(info.Path); err == nil {
			info.Size = st.Size()
		}
	}
	data.History = info
}
