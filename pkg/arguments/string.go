package arguments

import (
	"strings"

	"github.com/NikitaCOEUR/cmdtree/pkg/reader"
)

// StringKind selects how much input a string argument consumes.
type StringKind int

const (
	// SingleWord reads one unquoted word
	SingleWord StringKind = iota
	// QuotablePhrase reads a quoted string or a single word
	QuotablePhrase
	// GreedyPhrase reads the rest of the input
	GreedyPhrase
)

// StringType is a string argument of one StringKind.
type StringType struct {
	kind StringKind
}

// Word returns a single-word string type
func Word() StringType { return StringType{kind: SingleWord} }

// String returns a quotable string type
func String() StringType { return StringType{kind: QuotablePhrase} }

// Greedy returns a type consuming the remaining input
func Greedy() StringType { return StringType{kind: GreedyPhrase} }

// Kind returns the string kind
func (s StringType) Kind() StringKind { return s.kind }

func (s StringType) Parse(r *reader.StringReader) (any, error) {
	switch s.kind {
	case QuotablePhrase:
		return r.ReadString()
	case GreedyPhrase:
		text := r.Remaining()
		r.SetCursor(r.TotalLength())
		return text, nil
	}
	return r.ReadUnquotedString(), nil
}

func (s StringType) Examples() []string {
	switch s.kind {
	case QuotablePhrase:
		return []string{`"quoted phrase"`, "word", `""`}
	case GreedyPhrase:
		return []string{"word", "word with spaces", `"and symbols"`}
	}
	return []string{"word", "word_with_underscores"}
}

func (s StringType) String() string { return "string()" }

// Quote returns input unchanged if it reads back as a single word, otherwise
// double quoted with quotes and backslashes escaped.
func Quote(input string) string {
	if input != "" && strings.IndexFunc(input, func(c rune) bool {
		return !reader.IsAllowedInUnquotedString(c)
	}) < 0 {
		return input
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range input {
		if c == '\\' || c == '"' {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	b.WriteByte('"')
	return b.String()
}
