package condition

import (
	"fmt"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
)

// Parse converts a config.When into a Condition. Several atomic conditions
// at one level become an AllCondition.
func Parse(when *config.When) (Condition, error) {
	if when == nil {
		return nil, fmt.Errorf("when is nil")
	}
	if err := when.Check(); err != nil {
		return nil, err
	}

	if len(when.All) > 0 {
		conditions, err := parseList("all", when.All)
		if err != nil {
			return nil, err
		}
		return AllCondition{Conditions: conditions}, nil
	}
	if len(when.Any) > 0 {
		conditions, err := parseList("any", when.Any)
		if err != nil {
			return nil, err
		}
		return AnyCondition{Conditions: conditions}, nil
	}

	conditions := collectAtomicConditions(when)
	if len(conditions) == 1 {
		return conditions[0], nil
	}
	return AllCondition{Conditions: conditions}, nil
}

// collectAtomicConditions collects all atomic conditions into a slice
func collectAtomicConditions(when *config.When) []Condition {
	var conditions []Condition
	if when.MinLevel != nil {
		conditions = append(conditions, LevelCondition{Min: *when.MinLevel})
	}
	if when.Tag != "" {
		conditions = append(conditions, TagCondition{Tag: when.Tag})
	}
	if when.Name != "" {
		conditions = append(conditions, NameCondition{Name: when.Name})
	}
	return conditions
}

func parseList(key string, whens []config.When) ([]Condition, error) {
	conditions := make([]Condition, 0, len(whens))
	for i := range whens {
		cond, err := Parse(&whens[i])
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}
