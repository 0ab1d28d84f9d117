package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo represents information about a grammar file
type FileInfo struct {
	Path   string
	Format string
	Size   int64
	Hash   string
	Loaded bool
	Err    error
}

// Describe reports each path: whether it loads and its size and hash.
func (l *Loader) Describe(paths []string) []FileInfo {
	infos := make([]FileInfo, 0, len(paths))
	for _, path := range paths {
		info := FileInfo{Path: path, Format: strings.TrimPrefix(filepath.Ext(path), ".")}
		if path == StdinPath {
			info.Format = "yaml"
			info.Loaded = true
			infos = append(infos, info)
			continue
		}
		if st, err := os.Stat(path); err == nil {
			info.Size = st.Size()
		}
		if _, err := l.Load(path); err != nil {
			info.Err = err
		} else {
			info.Loaded = true
			info.Hash, _ = l.Hash(path)
		}
		infos = append(infos, info)
	}
	return infos
}

// Stats counts the parts of a grammar
type Stats struct {
	Sources   int
	Commands  int
	Literals  int
	Arguments int
	Runs      int
	Redirects int
	Forks     int
	Guarded   int
}

// Nodes returns the number of literal and argument nodes
func (s Stats) Nodes() int { return s.Literals + s.Arguments }

// GetStats walks the grammar and counts its nodes.
func GetStats(g *Grammar) Stats {
	s := Stats{Sources: len(g.Sources), Commands: len(g.Commands)}
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for i := range nodes {
			n := &nodes[i]
			if n.IsLiteral() {
				s.Literals++
			} else {
				s.Arguments++
			}
			if n.Run != nil {
				s.Runs++
			}
			switch {
			case n.Fork != nil:
				s.Forks++
			case n.Redirects():
				s.Redirects++
			}
			if n.Requires != nil {
				s.Guarded++
			}
			walk(n.Children)
		}
	}
	walk(g.Commands)
	return s
}

// SummarizeWhen creates a human-readable summary of a condition
func SummarizeWhen(when *When) string {
	if when == nil {
		return ""
	}

	var parts []string
	if when.MinLevel != nil {
		parts = append(parts, fmt.Sprintf("level>=%d", *when.MinLevel))
	}
	if when.Tag != "" {
		parts = append(parts, "tag:"+when.Tag)
	}
	if when.Name != "" {
		parts = append(parts, "name:"+when.Name)
	}

	if len(when.All) > 0 {
		sub := make([]string, len(when.All))
		for i := range when.All {
			sub[i] = SummarizeWhen(&when.All[i])
		}
		parts = append(parts, fmt.Sprintf("all(%s)", strings.Join(sub, ", ")))
	}
	if len(when.Any) > 0 {
		sub := make([]string, len(when.Any))
		for i := range when.Any {
			sub[i] = SummarizeWhen(&when.Any[i])
		}
		parts = append(parts, fmt.Sprintf("any(%s)", strings.Join(sub, " | ")))
	}

	// Several atomic conditions are ANDed together
	return strings.Join(parts, " + ")
}
