// Package suggestion holds completion candidates, the builder argument
// types use to produce them, and the merging rules that combine candidates
// coming from several tree branches into one result.
package suggestion

import (
	"fmt"
	"strings"

	"github.com/NikitaCOEUR/cmdtree/pkg/reader"
)

// Suggestion is a completion candidate: Text replaces the input covered by Range.
type Suggestion struct {
	Range   reader.StringRange
	Text    string
	Tooltip string
}

// New creates a suggestion without tooltip
func New(r reader.StringRange, text string) Suggestion {
	return Suggestion{Range: r, Text: text}
}

// Apply splices the suggestion text over its range of input.
func (s Suggestion) Apply(input string) string {
	if s.Range.Start == 0 && s.Range.End == len(input) {
		return s.Text
	}
	var b strings.Builder
	b.WriteString(input[:s.Range.Start])
	b.WriteString(s.Text)
	if s.Range.End < len(input) {
		b.WriteString(input[s.Range.End:])
	}
	return b.String()
}

// Expand widens the suggestion to r, copying the characters of command that
// lie between r and the original range on either side.
func (s Suggestion) Expand(command string, r reader.StringRange) Suggestion {
	if r == s.Range {
		return s
	}
	var b strings.Builder
	if r.Start < s.Range.Start {
		b.WriteString(command[r.Start:s.Range.Start])
	}
	b.WriteString(s.Text)
	if r.End > s.Range.End {
		b.WriteString(command[s.Range.End:r.End])
	}
	return Suggestion{Range: r, Text: b.String(), Tooltip: s.Tooltip}
}

// Compare orders suggestions by text, then by range.
func (s Suggestion) Compare(other Suggestion) int {
	if c := strings.Compare(s.Text, other.Text); c != 0 {
		return c
	}
	return s.Range.Compare(other.Range)
}

type key struct {
	r    reader.StringRange
	text string
}

func (s Suggestion) key() key {
	return key{r: s.Range, text: s.Text}
}

func (s Suggestion) String() string {
	if s.Tooltip != "" {
		return fmt.Sprintf("Suggestion{range=%s, text=%q, tooltip=%q}", s.Range, s.Text, s.Tooltip)
	}
	return fmt.Sprintf("Suggestion{range=%s, text=%q}", s.Range, s.Text)
}
