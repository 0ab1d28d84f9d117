// Package cmderr defines the positioned syntax errors produced by the
// tokenizer, the argument types and the dispatcher.
//
// Every error carries the input it was raised against and the cursor at
// which it was raised, so a host can draw a caret under the offending
// character or re-anchor suggestions at that offset.
package cmderr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of syntax error.
type Kind int

// Reader kinds
const (
	KindUnknown Kind = iota
	ExpectedSymbol
	ExpectedInt
	ExpectedLong
	ExpectedFloat
	ExpectedDouble
	ExpectedBool
	ExpectedStartOfQuote
	ExpectedEndOfQuote
	InvalidInt
	InvalidLong
	InvalidFloat
	InvalidDouble
	InvalidBool
	InvalidEscape

	// Argument type kinds
	IntegerTooLow
	IntegerTooHigh
	LongTooLow
	LongTooHigh
	FloatTooLow
	FloatTooHigh
	DoubleTooLow
	DoubleTooHigh
	InvalidChoice

	// Dispatcher kinds
	LiteralIncorrect
	UnknownCommand
	UnknownArgument
	IncompleteCommand
	TrailingData
	ExpectedArgumentSeparator
	AmbiguousInput
)

var kindCodes = map[Kind]string{
	KindUnknown:               "UNKNOWN",
	ExpectedSymbol:            "EXPECTED_SYMBOL",
	ExpectedInt:               "EXPECTED_INT",
	ExpectedLong:              "EXPECTED_LONG",
	ExpectedFloat:             "EXPECTED_FLOAT",
	ExpectedDouble:            "EXPECTED_DOUBLE",
	ExpectedBool:              "EXPECTED_BOOL",
	ExpectedStartOfQuote:      "EXPECTED_START_OF_QUOTE",
	ExpectedEndOfQuote:        "EXPECTED_END_OF_QUOTE",
	InvalidInt:                "INVALID_INT",
	InvalidLong:               "INVALID_LONG",
	InvalidFloat:              "INVALID_FLOAT",
	InvalidDouble:             "INVALID_DOUBLE",
	InvalidBool:               "INVALID_BOOL",
	InvalidEscape:             "INVALID_ESCAPE",
	IntegerTooLow:             "INTEGER_TOO_LOW",
	IntegerTooHigh:            "INTEGER_TOO_HIGH",
	LongTooLow:                "LONG_TOO_LOW",
	LongTooHigh:               "LONG_TOO_HIGH",
	FloatTooLow:               "FLOAT_TOO_LOW",
	FloatTooHigh:              "FLOAT_TOO_HIGH",
	DoubleTooLow:              "DOUBLE_TOO_LOW",
	DoubleTooHigh:             "DOUBLE_TOO_HIGH",
	InvalidChoice:             "INVALID_CHOICE",
	LiteralIncorrect:          "LITERAL_INCORRECT",
	UnknownCommand:            "UNKNOWN_COMMAND",
	UnknownArgument:           "UNKNOWN_ARGUMENT",
	IncompleteCommand:         "INCOMPLETE_COMMAND",
	TrailingData:              "TRAILING_DATA",
	ExpectedArgumentSeparator: "EXPECTED_ARGUMENT_SEPARATOR",
	AmbiguousInput:            "AMBIGUOUS_INPUT",
}

// String returns the stable error code of the kind
func (k Kind) String() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindUnknown]
}

// contextAmount is how many characters before the cursor Context shows.
const contextAmount = 10

// SyntaxError is a positioned error raised while reading or parsing input.
type SyntaxError struct {
	Kind   Kind
	Input  string
	Cursor int // -1 when the position is unknown

	// Char is the offending or expected character (InvalidEscape, ExpectedSymbol).
	Char rune
	// Value is the rejected value: a number for bound errors, the token text otherwise.
	Value any
	// Bound is the violated minimum or maximum for bound errors.
	Bound any
}

// New creates a syntax error of the given kind at cursor.
func New(kind Kind, input string, cursor int) *SyntaxError {
	return &SyntaxError{Kind: kind, Input: input, Cursor: cursor}
}

// WithChar sets the character the error refers to.
func (e *SyntaxError) WithChar(c rune) *SyntaxError {
	e.Char = c
	return e
}

// WithValue sets the rejected value.
func (e *SyntaxError) WithValue(v any) *SyntaxError {
	e.Value = v
	return e
}

// WithBound sets the rejected value and the bound it violated.
func (e *SyntaxError) WithBound(value, bound any) *SyntaxError {
	e.Value = value
	e.Bound = bound
	return e
}

// Code returns a unique error code for programmatic error handling
func (e *SyntaxError) Code() string {
	return e.Kind.String()
}

// Message returns the error message without position information.
func (e *SyntaxError) Message() string {
	switch e.Kind {
	case ExpectedSymbol:
		return fmt.Sprintf("Expected '%c'", e.Char)
	case ExpectedInt:
		return "Expected integer"
	case ExpectedLong:
		return "Expected long"
	case ExpectedFloat:
		return "Expected float"
	case ExpectedDouble:
		return "Expected double"
	case ExpectedBool:
		return "Expected bool"
	case ExpectedStartOfQuote:
		return "Expected quote to start a string"
	case ExpectedEndOfQuote:
		return "Unclosed quoted string"
	case InvalidInt:
		return fmt.Sprintf("Invalid integer '%v'", e.Value)
	case InvalidLong:
		return fmt.Sprintf("Invalid long '%v'", e.Value)
	case InvalidFloat:
		return fmt.Sprintf("Invalid float '%v'", e.Value)
	case InvalidDouble:
		return fmt.Sprintf("Invalid double '%v'", e.Value)
	case InvalidBool:
		return fmt.Sprintf("Invalid bool, expected true or false but found '%v'", e.Value)
	case InvalidEscape:
		return fmt.Sprintf("Invalid escape sequence '%c' in quoted string", e.Char)
	case IntegerTooLow:
		return fmt.Sprintf("Integer must not be less than %v, found %v", e.Bound, e.Value)
	case IntegerTooHigh:
		return fmt.Sprintf("Integer must not be more than %v, found %v", e.Bound, e.Value)
	case LongTooLow:
		return fmt.Sprintf("Long must not be less than %v, found %v", e.Bound, e.Value)
	case LongTooHigh:
		return fmt.Sprintf("Long must not be more than %v, found %v", e.Bound, e.Value)
	case FloatTooLow:
		return fmt.Sprintf("Float must not be less than %v, found %v", e.Bound, e.Value)
	case FloatTooHigh:
		return fmt.Sprintf("Float must not be more than %v, found %v", e.Bound, e.Value)
	case DoubleTooLow:
		return fmt.Sprintf("Double must not be less than %v, found %v", e.Bound, e.Value)
	case DoubleTooHigh:
		return fmt.Sprintf("Double must not be more than %v, found %v", e.Bound, e.Value)
	case InvalidChoice:
		return fmt.Sprintf("Invalid choice '%v'", e.Value)
	case LiteralIncorrect:
		return fmt.Sprintf("Expected literal %v", e.Value)
	case UnknownCommand:
		return "Unknown command"
	case UnknownArgument:
		return "Incorrect argument for command"
	case IncompleteCommand:
		return "Incomplete command, more input expected"
	case TrailingData:
		return "Unexpected trailing data"
	case ExpectedArgumentSeparator:
		return "Expected whitespace to end one argument, but found trailing data"
	case AmbiguousInput:
		return fmt.Sprintf("Ambiguous input '%v' matches more than one argument", e.Value)
	}
	return "Syntax error"
}

// Context returns up to ten characters of input before the cursor followed
// by a marker, or "" when the position is unknown.
func (e *SyntaxError) Context() string {
	if e.Input == "" || e.Cursor < 0 {
		return ""
	}
	cursor := min(e.Cursor, len(e.Input))
	start := max(cursor-contextAmount, 0)
	prefix := ""
	if cursor > contextAmount {
		prefix = "..."
	}
	return prefix + e.Input[start:cursor] + "<--[HERE]"
}

func (e *SyntaxError) Error() string {
	msg := e.Message()
	if ctx := e.Context(); ctx != "" {
		return fmt.Sprintf("%s at position %d: %s", msg, e.Cursor, ctx)
	}
	return msg
}

// Is reports whether target is a SyntaxError of the same kind. This lets
// callers match with errors.Is(err, cmderr.ErrIntegerTooHigh).
func (e *SyntaxError) Is(target error) bool {
	var other *SyntaxError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// Sentinels for errors.Is matching by kind.
var (
	ErrExpectedSymbol            = &SyntaxError{Kind: ExpectedSymbol, Cursor: -1}
	ErrExpectedInt               = &SyntaxError{Kind: ExpectedInt, Cursor: -1}
	ErrExpectedLong              = &SyntaxError{Kind: ExpectedLong, Cursor: -1}
	ErrExpectedFloat             = &SyntaxError{Kind: ExpectedFloat, Cursor: -1}
	ErrExpectedDouble            = &SyntaxError{Kind: ExpectedDouble, Cursor: -1}
	ErrExpectedBool              = &SyntaxError{Kind: ExpectedBool, Cursor: -1}
	ErrExpectedStartOfQuote      = &SyntaxError{Kind: ExpectedStartOfQuote, Cursor: -1}
	ErrExpectedEndOfQuote        = &SyntaxError{Kind: ExpectedEndOfQuote, Cursor: -1}
	ErrInvalidInt                = &SyntaxError{Kind: InvalidInt, Cursor: -1}
	ErrInvalidLong               = &SyntaxError{Kind: InvalidLong, Cursor: -1}
	ErrInvalidFloat              = &SyntaxError{Kind: InvalidFloat, Cursor: -1}
	ErrInvalidDouble             = &SyntaxError{Kind: InvalidDouble, Cursor: -1}
	ErrInvalidBool               = &SyntaxError{Kind: InvalidBool, Cursor: -1}
	ErrInvalidEscape             = &SyntaxError{Kind: InvalidEscape, Cursor: -1}
	ErrIntegerTooLow             = &SyntaxError{Kind: IntegerTooLow, Cursor: -1}
	ErrIntegerTooHigh            = &SyntaxError{Kind: IntegerTooHigh, Cursor: -1}
	ErrLongTooLow                = &SyntaxError{Kind: LongTooLow, Cursor: -1}
	ErrLongTooHigh               = &SyntaxError{Kind: LongTooHigh, Cursor: -1}
	ErrFloatTooLow               = &SyntaxError{Kind: FloatTooLow, Cursor: -1}
	ErrFloatTooHigh              = &SyntaxError{Kind: FloatTooHigh, Cursor: -1}
	ErrDoubleTooLow              = &SyntaxError{Kind: DoubleTooLow, Cursor: -1}
	ErrDoubleTooHigh             = &SyntaxError{Kind: DoubleTooHigh, Cursor: -1}
	ErrInvalidChoice             = &SyntaxError{Kind: InvalidChoice, Cursor: -1}
	ErrLiteralIncorrect          = &SyntaxError{Kind: LiteralIncorrect, Cursor: -1}
	ErrUnknownCommand            = &SyntaxError{Kind: UnknownCommand, Cursor: -1}
	ErrUnknownArgument           = &SyntaxError{Kind: UnknownArgument, Cursor: -1}
	ErrIncompleteCommand         = &SyntaxError{Kind: IncompleteCommand, Cursor: -1}
	ErrTrailingData              = &SyntaxError{Kind: TrailingData, Cursor: -1}
	ErrExpectedArgumentSeparator = &SyntaxError{Kind: ExpectedArgumentSeparator, Cursor: -1}
	ErrAmbiguousInput            = &SyntaxError{Kind: AmbiguousInput, Cursor: -1}
)

// Position returns the cursor of err when it is a SyntaxError.
func Position(err error) (int, bool) {
	var se *SyntaxError
	if errors.As(err, &se) && se.Cursor >= 0 {
		return se.Cursor, true
	}
	return 0, false
}
