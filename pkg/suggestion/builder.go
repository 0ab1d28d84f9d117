package suggestion

import (
	"strconv"
	"strings"

	"github.com/NikitaCOEUR/cmdtree/pkg/reader"
)

// Builder accumulates suggestions that all replace input[start:].
type Builder struct {
	input          string
	start          int
	remaining      string
	remainingLower string
	result         []Suggestion
}

// NewBuilder creates a builder for input whose suggestions start at start.
func NewBuilder(input string, start int) *Builder {
	start = max(0, min(start, len(input)))
	remaining := input[start:]
	return &Builder{
		input:          input,
		start:          start,
		remaining:      remaining,
		remainingLower: strings.ToLower(remaining),
	}
}

// Input returns the (possibly truncated) command line
func (b *Builder) Input() string { return b.input }

// Start returns the offset suggestions replace from
func (b *Builder) Start() int { return b.start }

// Remaining returns the text typed since Start
func (b *Builder) Remaining() string { return b.remaining }

// RemainingLowerCase returns Remaining lowercased, for prefix filtering
func (b *Builder) RemainingLowerCase() string { return b.remainingLower }

// Suggest adds text unless it is exactly what has been typed.
func (b *Builder) Suggest(text string) *Builder {
	return b.SuggestWithTooltip(text, "")
}

// SuggestWithTooltip adds text with a tooltip.
func (b *Builder) SuggestWithTooltip(text, tooltip string) *Builder {
	if text == b.remaining {
		return b
	}
	b.result = append(b.result, Suggestion{
		Range:   reader.Between(b.start, len(b.input)),
		Text:    text,
		Tooltip: tooltip,
	})
	return b
}

// SuggestInt adds the decimal form of v.
func (b *Builder) SuggestInt(v int) *Builder {
	return b.Suggest(strconv.Itoa(v))
}

// SuggestMatching adds every candidate that starts with the typed text,
// compared case-insensitively.
func (b *Builder) SuggestMatching(candidates ...string) *Builder {
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), b.remainingLower) {
			b.Suggest(c)
		}
	}
	return b
}

// Add appends everything suggested through other.
func (b *Builder) Add(other *Builder) *Builder {
	b.result = append(b.result, other.result...)
	return b
}

// CreateOffset returns an empty builder over the same input starting at start.
func (b *Builder) CreateOffset(start int) *Builder {
	return NewBuilder(b.input, start)
}

// Restart returns an empty builder with the same input and start.
func (b *Builder) Restart() *Builder {
	return b.CreateOffset(b.start)
}

// Build returns the collected suggestions.
func (b *Builder) Build() *Suggestions {
	return Create(b.input, b.result)
}
