// Package condition evaluates requirement predicates over command sources.
package condition

import (
	"fmt"
	"slices"
	"strings"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
)

// Condition represents a testable condition
type Condition interface {
	// Evaluate tests the condition against src. On failure it also returns a
	// user-friendly message.
	Evaluate(src config.Source) (bool, string)
}

// Requirement adapts c to a node requirement
func Requirement(c Condition) func(config.Source) bool {
	return func(src config.Source) bool {
		ok, _ := c.Evaluate(src)
		return ok
	}
}

// LevelCondition tests that the source level is at least Min
type LevelCondition struct {
	Min int
}

// Evaluate implements Condition
func (c LevelCondition) Evaluate(src config.Source) (bool, string) {
	if src.Level >= c.Min {
		return true, ""
	}
	return false, fmt.Sprintf("source '%s' has level %d, needs %d", src.Name, src.Level, c.Min)
}

// TagCondition tests that the source carries Tag
type TagCondition struct {
	Tag string
}

// Evaluate implements Condition
func (c TagCondition) Evaluate(src config.Source) (bool, string) {
	if slices.Contains(src.Tags, c.Tag) {
		return true, ""
	}
	return false, fmt.Sprintf("source '%s' is not tagged '%s'", src.Name, c.Tag)
}

// NameCondition tests that the source is named Name
type NameCondition struct {
	Name string
}

// Evaluate implements Condition
func (c NameCondition) Evaluate(src config.Source) (bool, string) {
	if src.Name == c.Name {
		return true, ""
	}
	return false, fmt.Sprintf("source '%s' is not '%s'", src.Name, c.Name)
}

// AllCondition tests if all sub-conditions are true (AND logic)
type AllCondition struct {
	Conditions []Condition
}

// Evaluate implements Condition
func (c AllCondition) Evaluate(src config.Source) (bool, string) {
	var failed []string
	for _, cond := range c.Conditions {
		if ok, msg := cond.Evaluate(src); !ok {
			failed = append(failed, msg)
		}
	}
	if len(failed) > 0 {
		return false, "  - " + strings.Join(failed, "\n  - ")
	}
	return true, ""
}

// AnyCondition tests if at least one sub-condition is true (OR logic)
type AnyCondition struct {
	Conditions []Condition
}

// Evaluate implements Condition
func (c AnyCondition) Evaluate(src config.Source) (bool, string) {
	var all []string
	for _, cond := range c.Conditions {
		ok, msg := cond.Evaluate(src)
		if ok {
			return true, ""
		}
		all = append(all, msg)
	}

	var b strings.Builder
	b.WriteString("none of the following conditions were met:\n")
	for _, msg := range all {
		b.WriteString("  - " + msg + "\n")
	}
	return false, b.String()
}
