package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
	"github.com/NikitaCOEUR/cmdtree/internal/grammar"
)

// ErrValidationFailed is returned once validation errors have been printed.
var ErrValidationFailed = errors.New("validation failed")

// ValidateParams contains parameters for the Validate command
type ValidateParams struct {
	Path  string
	Out   io.Writer
	Stdin io.Reader
}

// Validate validates a grammar file against the JSON Schema, then checks its
// semantics and compiles it.
func Validate(p ValidateParams) error {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}

	path := p.Path
	// If no path provided, look for a grammar in current directory
	if path == "" {
		currentDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		found, ok := config.FindGrammar(currentDir)
		if !ok {
			return fmt.Errorf("no grammar file found in current directory")
		}
		path = found
	}

	fmt.Fprintf(out, "Validating: %s\n\n", path)

	content, err := readGrammar(path, p.Stdin)
	if err != nil {
		return err
	}

	// First validate with JSON Schema
	result, err := config.ValidateWithSchema(path, content)
	if err != nil {
		return err
	}

	// If schema validation passes, run the semantic checks and compile
	if result.Valid {
		merge(result, checkGrammar(path, content))
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(out, "⚠️  [%s] %s\n", w.Field, w.Message)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(out)
	}

	if result.Valid {
		fmt.Fprintln(out, "✅ Grammar is valid!")
		return nil
	}

	// Display errors
	fmt.Fprintln(out, "❌ Grammar has errors:")
	for i, validationErr := range result.Errors {
		fmt.Fprintf(out, "%d. [%s] %s\n", i+1, validationErr.Field, validationErr.Message)
	}

	fmt.Fprintf(out, "\nFound %d error(s)\n", len(result.Errors))

	// Return non-zero exit code
	return ErrValidationFailed
}

func readGrammar(path string, stdin io.Reader) ([]byte, error) {
	if path == config.StdinPath {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file: %w", err)
	}
	return data, nil
}

// checkGrammar runs the semantic validation and the compiler over content.
func checkGrammar(path string, content []byte) *config.ValidationResult {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		format = "yaml"
	}
	g, err := config.LoadBytes(path, content, format)
	if err != nil {
		result := &config.ValidationResult{}
		result.Errors = append(result.Errors, config.ValidationError{Field: "syntax", Message: err.Error()})
		return result
	}

	result := config.Validate(g)
	if !result.Valid {
		return result
	}
	if _, err := grammar.Compile(g, grammar.Options{}); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, compileErrors(err)...)
	}
	return result
}

func compileErrors(err error) []config.ValidationError {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	out := make([]config.ValidationError, 0, len(errs))
	for _, e := range errs {
		var ve *derrors.ValidationError
		if errors.As(e, &ve) {
			out = append(out, config.ValidationError{Field: ve.Field, Message: e.Error()})
			continue
		}
		out = append(out, config.ValidationError{Field: "grammar", Message: e.Error()})
	}
	return out
}

func merge(into, from *config.ValidationResult) {
	if !from.Valid {
		into.Valid = false
	}
	into.Errors = append(into.Errors, from.Errors...)
	into.Warnings = append(into.Warnings, from.Warnings...)
}
