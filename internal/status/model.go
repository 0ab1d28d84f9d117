package status

import (
	"time"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
)

// Data contains all the information shown by inspect
type Data struct {
	// Header
	Version   string
	GitCommit string

	// Grammar files in merge order
	Files []config.FileInfo

	// Merged grammar
	Settings  config.Settings
	Sources   []config.Source
	Stats     config.Stats
	Ambiguity string

	// Analysis
	TreeNodes   int
	Ambiguities int
	Warnings    []config.ValidationError
	CompileErr  error

	// History
	History *HistoryInfo
}

// HistoryInfo describes the REPL history file
type HistoryInfo struct {
	Path    string
	Size    int64
	Entries int
	Last    time.Time
	// Err is set when the file exists but cannot be read.
	Err error
}
