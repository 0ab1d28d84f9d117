package grammar

import (
	"fmt"
	"slices"
	"strings"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
	"github.com/NikitaCOEUR/cmdtree/pkg/arguments"
	"github.com/NikitaCOEUR/cmdtree/pkg/cmderr"
	"github.com/NikitaCOEUR/cmdtree/pkg/reader"
	"github.com/NikitaCOEUR/cmdtree/pkg/suggestion"
)

// ArgumentType builds the argument type named by n.Type with its bounds or
// choices applied.
func ArgumentType(n *config.Node) (arguments.Type, error) {
	switch n.Type {
	case config.TypeBool:
		return arguments.Bool(), nil
	case config.TypeInteger:
		return bounded(arguments.Integer(), n), nil
	case config.TypeLong:
		return bounded(arguments.Long(), n), nil
	case config.TypeFloat:
		return bounded(arguments.Float(), n), nil
	case config.TypeDouble:
		return bounded(arguments.Double(), n), nil
	case config.TypeWord:
		return arguments.Word(), nil
	case config.TypeString:
		return arguments.String(), nil
	case config.TypeGreedy:
		return arguments.Greedy(), nil
	case config.TypeEnum:
		if len(n.Choices) == 0 {
			return nil, fmt.Errorf("enum %q has no choices", n.Argument)
		}
		return NewEnum(n.Choices...), nil
	case config.TypeSelector:
		return Selector{}, nil
	}
	return nil, fmt.Errorf("unknown type %q", n.Type)
}

func bounded[T int32 | int64 | float32 | float64](t *arguments.Number[T], n *config.Node) *arguments.Number[T] {
	if n.Min != nil {
		t = t.WithMin(T(*n.Min))
	}
	if n.Max != nil {
		t = t.WithMax(T(*n.Max))
	}
	return t
}

// Enum accepts one word out of a fixed list.
type Enum struct {
	choices []string
}

// NewEnum returns an enum type accepting choices
func NewEnum(choices ...string) *Enum {
	return &Enum{choices: slices.Clone(choices)}
}

// Choices returns the accepted words in declaration order
func (e *Enum) Choices() []string { return slices.Clone(e.choices) }

func (e *Enum) Parse(r *reader.StringReader) (any, error) {
	start := r.Cursor()
	word := r.ReadUnquotedString()
	if slices.Contains(e.choices, word) {
		return word, nil
	}
	r.SetCursor(start)
	return nil, cmderr.New(cmderr.InvalidChoice, r.String(), start).WithValue(word)
}

func (e *Enum) Examples() []string { return e.Choices() }

func (e *Enum) ListSuggestions(_ arguments.Context, b *suggestion.Builder) (*suggestion.Suggestions, error) {
	return b.SuggestMatching(e.choices...).Build(), nil
}

func (e *Enum) String() string {
	return "enum(" + strings.Join(e.choices, "|") + ")"
}

// Selector reads "*" or one unquoted word naming a source or a tag.
type Selector struct{}

func (Selector) Parse(r *reader.StringReader) (any, error) {
	if r.CanReadRune() && r.Peek() == '*' {
		r.Skip()
		return SelectAll, nil
	}
	return r.ReadUnquotedString(), nil
}

func (Selector) Examples() []string { return []string{SelectAll, "console", "ops"} }

func (Selector) String() string { return "selector()" }
