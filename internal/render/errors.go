package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
	"github.com/NikitaCOEUR/cmdtree/pkg/cmderr"
)

// Error renders err. A syntax error shows its input with a caret under the
// cursor; joined errors are listed one per line.
func Error(err error) string {
	if err == nil {
		return ""
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var b strings.Builder
		errs := joined.Unwrap()
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %d error(s):", len(errs))) + "\n")
		for i, e := range errs {
			fmt.Fprintf(&b, "%s%d. %s\n", indent, i+1, describe(e))
		}
		return strings.TrimSuffix(b.String(), "\n")
	}

	var se *cmderr.SyntaxError
	if errors.As(err, &se) && se.Input != "" && se.Cursor >= 0 {
		return syntaxError(se)
	}
	return errorStyle.Render("✗ ") + describe(err)
}

func describe(err error) string {
	var ve *derrors.ValidationError
	if errors.As(err, &ve) {
		return keyStyle.Render("["+ve.Field+"] ") + valueStyle.Render(err.Error())
	}
	var ce derrors.CmdtreeError
	if errors.As(err, &ce) {
		return keyStyle.Render("["+ce.Code()+"] ") + valueStyle.Render(err.Error())
	}
	var se *cmderr.SyntaxError
	if errors.As(err, &se) {
		return keyStyle.Render("["+se.Code()+"] ") + valueStyle.Render(se.Message())
	}
	return valueStyle.Render(err.Error())
}

func syntaxError(se *cmderr.SyntaxError) string {
	cursor := min(se.Cursor, len(se.Input))
	var b strings.Builder
	b.WriteString(errorStyle.Render("✗ "+se.Message()) + subtleStyle.Render(fmt.Sprintf(" at position %d", se.Cursor)) + "\n")
	b.WriteString(indent + valueStyle.Render(se.Input) + "\n")
	b.WriteString(indent + strings.Repeat(" ", lipgloss.Width(se.Input[:cursor])) + caretStyle.Render("^"))
	return b.String()
}

// Hints renders "did you mean" candidates, or "" when there are none.
func Hints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return warningStyle.Render("💡 Did you mean: ") + valueStyle.Render(strings.Join(hints, ", ")) + warningStyle.Render("?")
}
