// Package reader provides the cursor-based scanner used to tokenize command
// input, and the StringRange type used to address slices of that input.
package reader

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/NikitaCOEUR/cmdtree/pkg/cmderr"
)

const (
	syntaxEscape      = '\\'
	syntaxDoubleQuote = '"'
	syntaxSingleQuote = '\''
)

// StringReader scans a string with a single rewindable cursor. The cursor
// is a byte offset and always sits on a rune boundary.
type StringReader struct {
	input  string
	cursor int
}

// New creates a reader positioned at the start of input
func New(input string) *StringReader {
	return &StringReader{input: input}
}

// Clone returns an independent reader at the same position
func (r *StringReader) Clone() *StringReader {
	return &StringReader{input: r.input, cursor: r.cursor}
}

// String returns the full input
func (r *StringReader) String() string {
	return r.input
}

// Cursor returns the current offset
func (r *StringReader) Cursor() int {
	return r.cursor
}

// SetCursor moves the cursor, clamped to the input bounds
func (r *StringReader) SetCursor(cursor int) {
	r.cursor = max(0, min(cursor, len(r.input)))
}

// RemainingLength returns the number of unread bytes
func (r *StringReader) RemainingLength() int {
	return len(r.input) - r.cursor
}

// TotalLength returns the input length in bytes
func (r *StringReader) TotalLength() int {
	return len(r.input)
}

// Read returns the consumed part of the input
func (r *StringReader) Read() string {
	return r.input[:r.cursor]
}

// Remaining returns the unread part of the input
func (r *StringReader) Remaining() string {
	return r.input[r.cursor:]
}

// CanRead reports whether length more bytes are available
func (r *StringReader) CanRead(length int) bool {
	return r.cursor+length <= len(r.input)
}

// CanReadRune reports whether at least one more rune is available
func (r *StringReader) CanReadRune() bool {
	return r.CanRead(1)
}

// Peek returns the rune at the cursor without consuming it, or
// utf8.RuneError at end of input.
func (r *StringReader) Peek() rune {
	return r.PeekAt(0)
}

// PeekAt returns the rune starting offset bytes after the cursor.
func (r *StringReader) PeekAt(offset int) rune {
	if !r.CanRead(offset + 1) {
		return utf8.RuneError
	}
	c, _ := utf8.DecodeRuneInString(r.input[r.cursor+offset:])
	return c
}

// Next consumes and returns the rune at the cursor.
func (r *StringReader) Next() rune {
	c, _ := r.next()
	return c
}

func (r *StringReader) next() (rune, int) {
	if !r.CanReadRune() {
		return utf8.RuneError, 0
	}
	c, size := utf8.DecodeRuneInString(r.input[r.cursor:])
	r.cursor += size
	return c, size
}

// Skip consumes one rune
func (r *StringReader) Skip() {
	r.next()
}

// SkipWhitespace consumes any run of unicode whitespace
func (r *StringReader) SkipWhitespace() {
	for r.CanReadRune() && unicode.IsSpace(r.Peek()) {
		r.Skip()
	}
}

// IsAllowedNumber reports whether c may appear in a numeric token
func IsAllowedNumber(c rune) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '.'
}

// IsQuotedStringStart reports whether c opens a quoted string
func IsQuotedStringStart(c rune) bool {
	return c == syntaxDoubleQuote || c == syntaxSingleQuote
}

// IsAllowedInUnquotedString reports whether c may appear in an unquoted word
func IsAllowedInUnquotedString(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) ||
		c == '_' || c == '-' || c == '.' || c == '+'
}

func (r *StringReader) errorAt(kind cmderr.Kind) *cmderr.SyntaxError {
	return cmderr.New(kind, r.input, r.cursor)
}

// readNumber consumes the longest run of numeric characters
func (r *StringReader) readNumber() (start int, text string) {
	start = r.cursor
	for r.CanReadRune() && IsAllowedNumber(r.Peek()) {
		r.Skip()
	}
	return start, r.input[start:r.cursor]
}

// ReadInt reads a 32-bit integer
func (r *StringReader) ReadInt() (int32, error) {
	start, text := r.readNumber()
	if text == "" {
		return 0, r.errorAt(cmderr.ExpectedInt)
	}
	v, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		r.cursor = start
		return 0, r.errorAt(cmderr.InvalidInt).WithValue(text)
	}
	return int32(v), nil
}

// ReadLong reads a 64-bit integer
func (r *StringReader) ReadLong() (int64, error) {
	start, text := r.readNumber()
	if text == "" {
		return 0, r.errorAt(cmderr.ExpectedLong)
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		r.cursor = start
		return 0, r.errorAt(cmderr.InvalidLong).WithValue(text)
	}
	return v, nil
}

// ReadFloat reads a 32-bit float
func (r *StringReader) ReadFloat() (float32, error) {
	start, text := r.readNumber()
	if text == "" {
		return 0, r.errorAt(cmderr.ExpectedFloat)
	}
	v, err := strconv.ParseFloat(text, 32)
	if err != nil {
		r.cursor = start
		return 0, r.errorAt(cmderr.InvalidFloat).WithValue(text)
	}
	return float32(v), nil
}

// ReadDouble reads a 64-bit float
func (r *StringReader) ReadDouble() (float64, error) {
	start, text := r.readNumber()
	if text == "" {
		return 0, r.errorAt(cmderr.ExpectedDouble)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		r.cursor = start
		return 0, r.errorAt(cmderr.InvalidDouble).WithValue(text)
	}
	return v, nil
}

// ReadUnquotedString reads a word. It never fails; the result is empty when
// the cursor is not on a word character.
func (r *StringReader) ReadUnquotedString() string {
	start := r.cursor
	for r.CanReadRune() && IsAllowedInUnquotedString(r.Peek()) {
		r.Skip()
	}
	return r.input[start:r.cursor]
}

// ReadQuotedString reads a string delimited by single or double quotes.
// At end of input it returns an empty string.
func (r *StringReader) ReadQuotedString() (string, error) {
	if !r.CanReadRune() {
		return "", nil
	}
	next := r.Peek()
	if !IsQuotedStringStart(next) {
		return "", r.errorAt(cmderr.ExpectedStartOfQuote)
	}
	r.Skip()
	return r.ReadStringUntil(next)
}

// ReadStringUntil reads up to and including terminator. A backslash may
// only escape the terminator or another backslash.
func (r *StringReader) ReadStringUntil(terminator rune) (string, error) {
	var b strings.Builder
	escaped := false
	for r.CanReadRune() {
		c, size := r.next()
		switch {
		case escaped:
			if c != terminator && c != syntaxEscape {
				r.cursor -= size
				return "", r.errorAt(cmderr.InvalidEscape).WithChar(c)
			}
			b.WriteRune(c)
			escaped = false
		case c == syntaxEscape:
			escaped = true
		case c == terminator:
			return b.String(), nil
		default:
			b.WriteRune(c)
		}
	}
	return "", r.errorAt(cmderr.ExpectedEndOfQuote)
}

// ReadString reads a quoted string if the next rune is a quote, otherwise
// an unquoted word.
func (r *StringReader) ReadString() (string, error) {
	if !r.CanReadRune() {
		return "", nil
	}
	next := r.Peek()
	if IsQuotedStringStart(next) {
		r.Skip()
		return r.ReadStringUntil(next)
	}
	return r.ReadUnquotedString(), nil
}

// ReadBoolean reads the literal true or false
func (r *StringReader) ReadBoolean() (bool, error) {
	start := r.cursor
	value, err := r.ReadString()
	if err != nil {
		return false, err
	}
	switch value {
	case "":
		return false, r.errorAt(cmderr.ExpectedBool)
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	r.cursor = start
	return false, r.errorAt(cmderr.InvalidBool).WithValue(value)
}

// Expect consumes c or fails without advancing
func (r *StringReader) Expect(c rune) error {
	if !r.CanReadRune() || r.Peek() != c {
		return r.errorAt(cmderr.ExpectedSymbol).WithChar(c)
	}
	r.Skip()
	return nil
}
