package config

import "slices"

// Merge merges over into base and returns a new grammar; neither input is
// modified. Settings set in over win, sources are replaced by name and
// commands are merged by name recursively.
func Merge(base, over *Grammar) *Grammar {
	merged := &Grammar{
		Settings: mergeSettings(base.Settings, over.Settings),
		Sources:  slices.Clone(base.Sources),
	}

	for _, s := range over.Sources {
		i := slices.IndexFunc(merged.Sources, func(e Source) bool { return e.Name == s.Name })
		if i >= 0 {
			merged.Sources[i] = s
		} else {
			merged.Sources = append(merged.Sources, s)
		}
	}

	merged.Commands = mergeNodes(base.Commands, over.Commands)
	return merged
}

func mergeSettings(base, over Settings) Settings {
	if over.Ambiguity != "" {
		base.Ambiguity = over.Ambiguity
	}
	if over.LogLevel != "" {
		base.LogLevel = over.LogLevel
	}
	if over.Source != "" {
		base.Source = over.Source
	}
	if over.History != "" {
		base.History = over.History
	}
	if over.HistoryLimit != 0 {
		base.HistoryLimit = over.HistoryLimit
	}
	if over.Prompt != "" {
		base.Prompt = over.Prompt
	}
	return base
}

func mergeNodes(base, over []Node) []Node {
	if len(base)+len(over) == 0 {
		return nil
	}
	out := make([]Node, 0, len(base)+len(over))
	for _, n := range base {
		out = append(out, cloneNode(n))
	}
	for _, n := range over {
		i := slices.IndexFunc(out, func(e Node) bool { return e.Name() == n.Name() })
		if i < 0 {
			out = append(out, cloneNode(n))
			continue
		}
		out[i] = mergeNode(out[i], n)
	}
	return out
}

// mergeNode overlays the fields set in over onto base.
func mergeNode(base, over Node) Node {
	if over.Type != "" {
		base.Type = over.Type
	}
	if over.Min != nil {
		base.Min = over.Min
	}
	if over.Max != nil {
		base.Max = over.Max
	}
	if over.Choices != nil {
		base.Choices = slices.Clone(over.Choices)
	}
	if over.Suggest != nil {
		base.Suggest = slices.Clone(over.Suggest)
	}
	if over.Requires != nil {
		base.Requires = over.Requires
	}
	if over.Run != nil {
		base.Run = over.Run
	}
	if over.Redirects() {
		base.Redirect, base.Fork, base.As = over.Redirect, over.Fork, over.As
	}
	base.Children = mergeNodes(base.Children, over.Children)
	return base
}

func cloneNode(n Node) Node {
	n.Choices = slices.Clone(n.Choices)
	n.Suggest = slices.Clone(n.Suggest)
	if n.Children != nil {
		children := make([]Node, len(n.Children))
		for i, c := range n.Children {
			children[i] = cloneNode(c)
		}
		n.Children = children
	}
	return n
}
