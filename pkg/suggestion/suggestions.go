package suggestion

import (
	"slices"
	"strings"

	"github.com/NikitaCOEUR/cmdtree/pkg/reader"
)

// Suggestions is a sorted list of candidates sharing one range.
type Suggestions struct {
	Range reader.StringRange
	List  []Suggestion
}

// Empty returns a result with no candidates
func Empty() *Suggestions {
	return &Suggestions{Range: reader.At(0)}
}

// IsEmpty reports whether there are no candidates
func (s *Suggestions) IsEmpty() bool {
	return s == nil || len(s.List) == 0
}

// Texts returns the candidate texts in order.
func (s *Suggestions) Texts() []string {
	if s == nil {
		return nil
	}
	texts := make([]string, len(s.List))
	for i, sg := range s.List {
		texts[i] = sg.Text
	}
	return texts
}

// Create expands every suggestion to the union of their ranges, removes
// duplicates and sorts the result by text.
func Create(command string, list []Suggestion) *Suggestions {
	if len(list) == 0 {
		return Empty()
	}

	r := list[0].Range
	for _, s := range list[1:] {
		r = reader.Encompassing(r, s.Range)
	}

	seen := make(map[key]struct{}, len(list))
	out := make([]Suggestion, 0, len(list))
	for _, s := range list {
		expanded := s.Expand(command, r)
		if _, dup := seen[expanded.key()]; dup {
			continue
		}
		seen[expanded.key()] = struct{}{}
		out = append(out, expanded)
	}
	slices.SortFunc(out, Suggestion.Compare)

	return &Suggestions{Range: r, List: out}
}

// Merge combines results produced for the same command line. A single
// input is returned as is.
func Merge(command string, input []*Suggestions) *Suggestions {
	nonEmpty := slices.DeleteFunc(slices.Clone(input), (*Suggestions).IsEmpty)
	switch len(nonEmpty) {
	case 0:
		return Empty()
	case 1:
		return nonEmpty[0]
	}

	var all []Suggestion
	for _, s := range nonEmpty {
		all = append(all, s.List...)
	}
	return Create(command, all)
}

func (s *Suggestions) String() string {
	parts := make([]string, len(s.List))
	for i, sg := range s.List {
		parts[i] = sg.String()
	}
	return "Suggestions{range=" + s.Range.String() + ", suggestions=[" + strings.Join(parts, ", ") + "]}"
}
