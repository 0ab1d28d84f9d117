package config

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationResult contains the results of grammar validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

func (r *ValidationResult) fail(field, format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidateFile loads and validates a single grammar file
func ValidateFile(path string) (*ValidationResult, error) {
	if path != StdinPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("grammar file not found: %s", path)
		}
	}

	g, err := New().Load(path)
	if err != nil {
		result := &ValidationResult{}
		result.fail("syntax", "Failed to parse grammar: %v", err)
		return result, nil
	}
	return Validate(g), nil
}

// Validate checks a grammar for semantic errors: unknown types, bad bounds,
// unresolvable redirect targets and selectors that name no argument.
func Validate(g *Grammar) *ValidationResult {
	result := &ValidationResult{Valid: true, Errors: []ValidationError{}}

	switch g.Settings.Ambiguity {
	case "", AmbiguityFirstMatch, AmbiguityReject:
	default:
		result.fail("settings.ambiguity", "unknown ambiguity policy %q (want %s or %s)", g.Settings.Ambiguity, AmbiguityFirstMatch, AmbiguityReject)
	}
	if g.Settings.HistoryLimit < 0 {
		result.fail("settings.history_limit", "must not be negative")
	}

	seen := map[string]bool{}
	for i, s := range g.Sources {
		field := fmt.Sprintf("sources[%d]", i)
		switch {
		case strings.TrimSpace(s.Name) == "":
			result.fail(field, "source name is empty")
		case strings.ContainsAny(s.Name, " \t"):
			result.fail(field, "source name %q contains whitespace", s.Name)
		case seen[s.Name]:
			result.fail(field, "duplicate source %q", s.Name)
		}
		seen[s.Name] = true
	}
	if name := g.Settings.Source; name != "" {
		if _, ok := g.Source(name); !ok {
			result.fail("settings.source", "unknown source %q", name)
		}
	}

	v := &validator{g: g, result: result}
	v.nodes("commands", g.Commands, nil)
	return result
}

type validator struct {
	g      *Grammar
	result *ValidationResult
}

// nodes validates siblings; path holds the ancestors from the root.
func (v *validator) nodes(field string, nodes []Node, path []*Node) {
	names := map[string]bool{}
	for i := range nodes {
		n := &nodes[i]
		f := fmt.Sprintf("%s[%d]", field, i)
		if name := n.Name(); name != "" {
			if names[name] {
				v.result.fail(f, "duplicate sibling %q", name)
			}
			names[name] = true
		}
		v.node(f, n, path)
	}
}

func (v *validator) node(field string, n *Node, path []*Node) {
	r := v.result
	switch {
	case n.Literal == "" && n.Argument == "":
		r.fail(field, "node must set literal or argument")
		return
	case n.Literal != "" && n.Argument != "":
		r.fail(field, "node cannot set both literal %q and argument %q", n.Literal, n.Argument)
		return
	}

	if n.IsLiteral() {
		field += "(" + n.Literal + ")"
		if strings.ContainsAny(n.Literal, " \t\n") {
			r.fail(field, "literal contains whitespace")
		}
		if n.Type != "" || n.Min != nil || n.Max != nil || n.Choices != nil || n.Suggest != nil {
			r.fail(field, "type, min, max, choices and suggest are only valid on arguments")
		}
	} else {
		field += "(<" + n.Argument + ">)"
		v.argument(field, n)
	}

	if n.Requires != nil {
		checkWhen(r, field+".requires", n.Requires)
	}
	if n.Run != nil && n.Run.FailIf != nil {
		checkWhen(r, field+".run.fail_if", n.Run.FailIf)
	}

	scope := append(slices.Clone(path), n)
	v.redirect(field, n, scope)

	if !n.Redirects() && n.Run == nil && len(n.Children) == 0 {
		r.warn(field, "node has no run, children or redirect and can never complete a command")
	}
	v.nodes(field+".children", n.Children, scope)
}

func (v *validator) argument(field string, n *Node) {
	r := v.result
	if n.Type == "" {
		r.fail(field, "argument has no type")
		return
	}
	if !slices.Contains(KnownTypes, n.Type) {
		r.fail(field, "unknown type %q (want one of %s)", n.Type, strings.Join(KnownTypes, ", "))
		return
	}

	numeric := n.Type == TypeInteger || n.Type == TypeLong || n.Type == TypeFloat || n.Type == TypeDouble
	if !numeric && (n.Min != nil || n.Max != nil) {
		r.fail(field, "min and max are only valid on numeric types")
	}
	if n.Min != nil && n.Max != nil && *n.Min > *n.Max {
		r.fail(field, "min %v is greater than max %v", *n.Min, *n.Max)
	}
	for _, b := range []*float64{n.Min, n.Max} {
		if b == nil {
			continue
		}
		if (n.Type == TypeInteger || n.Type == TypeLong) && *b != math.Trunc(*b) {
			r.fail(field, "bound %v of %s is not a whole number", *b, n.Type)
		}
		if n.Type == TypeInteger && (*b < math.MinInt32 || *b > math.MaxInt32) {
			r.fail(field, "bound %v is out of the integer range", *b)
		}
	}

	if n.Type == TypeEnum {
		if len(n.Choices) == 0 {
			r.fail(field, "enum needs at least one choice")
		}
		seen := map[string]bool{}
		for _, c := range n.Choices {
			if c == "" || strings.ContainsAny(c, " \t") {
				r.fail(field, "choice %q must be a single word", c)
			}
			if seen[c] {
				r.fail(field, "duplicate choice %q", c)
			}
			seen[c] = true
		}
	} else if n.Choices != nil {
		r.fail(field, "choices are only valid on the enum type")
	}
}

func (v *validator) redirect(field string, n *Node, scope []*Node) {
	r := v.result
	forms := 0
	for _, set := range []bool{n.Redirect != nil, n.Fork != nil, n.As != nil} {
		if set {
			forms++
		}
	}
	if forms > 1 {
		r.fail(field, "only one of redirect, fork and as may be set")
		return
	}
	target, ok := n.RedirectTarget()
	if !ok {
		return
	}
	if len(n.Children) > 0 {
		r.fail(field, "a redirecting node cannot have children")
	}
	if !v.resolves(SplitPath(target)) {
		r.fail(field, "redirect target %q does not exist", target)
	}

	switch {
	case n.Fork != nil:
		if n.Fork.Select == "" {
			r.fail(field+".fork", "select is required")
		} else if !hasArgument(scope, n.Fork.Select) {
			r.fail(field+".fork", "select %q names no argument on the path", n.Fork.Select)
		}
	case n.As != nil:
		switch {
		case (n.As.Source == "") == (n.As.Select == ""):
			r.fail(field+".as", "exactly one of source and select must be set")
		case n.As.Source != "":
			if _, ok := v.g.Source(n.As.Source); !ok {
				r.fail(field+".as", "unknown source %q", n.As.Source)
			}
		case !hasArgument(scope, n.As.Select):
			r.fail(field+".as", "select %q names no argument on the path", n.As.Select)
		}
	}
}

func (v *validator) resolves(path []string) bool {
	_, ok := Resolve(v.g.Commands, path)
	return ok
}

// Resolve finds the node at path below the root commands. The empty path
// resolves to the root and returns nil.
func Resolve(commands []Node, path []string) (*Node, bool) {
	var found *Node
	level := commands
	for _, name := range path {
		i := slices.IndexFunc(level, func(n Node) bool { return n.Name() == name })
		if i < 0 {
			return nil, false
		}
		found = &level[i]
		level = found.Children
	}
	return found, true
}

func hasArgument(scope []*Node, name string) bool {
	return slices.ContainsFunc(scope, func(n *Node) bool { return n.Argument == name })
}

// checkWhen applies the structural condition rules: at least one condition,
// no mixing of atomic and composite conditions, not both all and any.
func checkWhen(r *ValidationResult, field string, w *When) {
	if err := w.Check(); err != nil {
		r.fail(field, "%v", err)
	}
}

// Check validates the structure of w and its nested conditions.
func (w *When) Check() error {
	atomic := 0
	if w.MinLevel != nil {
		atomic++
	}
	if w.Tag != "" {
		atomic++
	}
	if w.Name != "" {
		atomic++
	}
	composite := 0
	if len(w.All) > 0 {
		composite++
	}
	if len(w.Any) > 0 {
		composite++
	}

	switch {
	case atomic == 0 && composite == 0:
		return fmt.Errorf("condition must specify at least one of min_level, tag, name, all or any")
	case atomic > 0 && composite > 0:
		return fmt.Errorf("cannot mix atomic conditions (min_level, tag, name) with composite conditions (all, any) at the same level")
	case composite > 1:
		return fmt.Errorf("cannot have both 'all' and 'any' at the same level")
	}
	for i := range w.All {
		if err := w.All[i].Check(); err != nil {
			return fmt.Errorf("all[%d]: %w", i, err)
		}
	}
	for i := range w.Any {
		if err := w.Any[i].Check(); err != nil {
			return fmt.Errorf("any[%d]: %w", i, err)
		}
	}
	return nil
}
