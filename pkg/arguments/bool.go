package arguments

import (
	"github.com/NikitaCOEUR/cmdtree/pkg/reader"
	"github.com/NikitaCOEUR/cmdtree/pkg/suggestion"
)

// BoolType accepts true or false.
type BoolType struct{}

// Bool returns the boolean argument type
func Bool() BoolType { return BoolType{} }

func (BoolType) Parse(r *reader.StringReader) (any, error) {
	return r.ReadBoolean()
}

func (BoolType) Examples() []string {
	return []string{"true", "false"}
}

func (BoolType) ListSuggestions(_ Context, b *suggestion.Builder) (*suggestion.Suggestions, error) {
	return b.SuggestMatching("true", "false").Build(), nil
}

func (BoolType) String() string { return "boolean()" }
