// Package arguments defines the contract for typed command arguments and
// ships the canonical boolean, numeric and string types.
//
// A host may register any value implementing Type. Implementing Suggester
// as well lets the type offer completions while the argument is typed.
package arguments

import (
	"github.com/NikitaCOEUR/cmdtree/pkg/reader"
	"github.com/NikitaCOEUR/cmdtree/pkg/suggestion"
)

// Type parses one argument value starting at the reader cursor. On failure
// the reader cursor must be left where the error points.
type Type interface {
	Parse(r *reader.StringReader) (any, error)
	// Examples returns inputs the type accepts; used by the ambiguity analyzer.
	Examples() []string
}

// Suggester is implemented by types that can complete a partially typed value.
type Suggester interface {
	ListSuggestions(ctx Context, b *suggestion.Builder) (*suggestion.Suggestions, error)
}

// Context is the read-only view of the command being completed.
type Context interface {
	// Input returns the command line up to the cursor.
	Input() string
	// ArgumentValue returns a previously parsed argument by name.
	ArgumentValue(name string) (any, bool)
}

// ListSuggestions asks t for suggestions, returning an empty result when t
// does not implement Suggester.
func ListSuggestions(t Type, ctx Context, b *suggestion.Builder) (*suggestion.Suggestions, error) {
	if s, ok := t.(Suggester); ok {
		return s.ListSuggestions(ctx, b)
	}
	return suggestion.Empty(), nil
}
