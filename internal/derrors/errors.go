// Package derrors provides the typed errors of the cmdtree host.
// Each error carries a stable code for programmatic handling and unwraps to
// its cause.
package derrors

import (
	"errors"
	"fmt"
)

// Error codes returned by Code.
const (
	CodeGrammar    = "GRAMMAR_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXEC_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeHistory    = "HISTORY_ERROR"
)

// CmdtreeError is the base interface for all host errors
type CmdtreeError interface {
	error
	// Code returns a unique error code for programmatic error handling
	Code() string
}

// baseError provides common functionality for all host errors
type baseError struct {
	code    string
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Code() string {
	return e.code
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// Message returns the message without the cause.
func (e *baseError) Message() string {
	return e.message
}

// GrammarError represents errors reading or parsing a grammar file
type GrammarError struct {
	baseError
	Path string
}

// NewGrammarError creates a new grammar error
func NewGrammarError(path string, message string, cause error) *GrammarError {
	return &GrammarError{
		baseError: baseError{
			code:    CodeGrammar,
			message: message,
			cause:   cause,
		},
		Path: path,
	}
}

// ValidationError represents errors during grammar validation
type ValidationError struct {
	baseError
	Field string
}

// NewValidationError creates a new validation error
func NewValidationError(field string, message string, cause error) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			code:    CodeValidation,
			message: message,
			cause:   cause,
		},
		Field: field,
	}
}

// ExecutionError represents errors while running a command line
type ExecutionError struct {
	baseError
	Command string
}

// NewExecutionError creates a new execution error
func NewExecutionError(command string, message string, cause error) *ExecutionError {
	return &ExecutionError{
		baseError: baseError{
			code:    CodeExecution,
			message: message,
			cause:   cause,
		},
		Command: command,
	}
}

// NotFoundError represents errors when a resource is not found
type NotFoundError struct {
	baseError
	Resource string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, message string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			code:    CodeNotFound,
			message: message,
		},
		Resource: resource,
	}
}

// HistoryError represents errors in history file operations
type HistoryError struct {
	baseError
	Path string
}

// NewHistoryError creates a new history error
func NewHistoryError(path string, message string, cause error) *HistoryError {
	return &HistoryError{
		baseError: baseError{
			code:    CodeHistory,
			message: message,
			cause:   cause,
		},
		Path: path,
	}
}

// CodeOf returns the code of the first host error in err's chain, or ""
func CodeOf(err error) string {
	var ce CmdtreeError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// HasCode reports whether any host error in err's chain carries code.
// Joined errors are searched too.
func HasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if ce, ok := err.(CmdtreeError); ok && ce.Code() == code {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if HasCode(e, code) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return HasCode(u.Unwrap(), code)
	}
	return false
}
