package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
)

func intPtr(v int) *int { return &v }

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		when *config.When
		msg  string
	}{
		{name: "nil", when: nil, msg: "when is nil"},
		{name: "empty", when: &config.When{}, msg: "at least one of"},
		{name: "mixed", when: &config.When{Tag: "a", All: []config.When{{Tag: "b"}}}, msg: "cannot mix"},
		{name: "all and any", when: &config.When{All: []config.When{{Tag: "a"}}, Any: []config.When{{Tag: "b"}}}, msg: "both 'all' and 'any'"},
		{name: "invalid nested", when: &config.When{Any: []config.When{{Tag: "a"}, {}}}, msg: "any[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.when)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_SingleAtomic(t *testing.T) {
	tests := []struct {
		name string
		when *config.When
		want Condition
	}{
		{name: "min level", when: &config.When{MinLevel: intPtr(3)}, want: LevelCondition{Min: 3}},
		{name: "zero min level", when: &config.When{MinLevel: intPtr(0)}, want: LevelCondition{Min: 0}},
		{name: "tag", when: &config.When{Tag: "ops"}, want: TagCondition{Tag: "ops"}},
		{name: "name", when: &config.When{Name: "alice"}, want: NameCondition{Name: "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.when)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_MultipleAtomicAreAnded(t *testing.T) {
	got, err := Parse(&config.When{MinLevel: intPtr(1), Tag: "ops"})
	require.NoError(t, err)
	assert.Equal(t, AllCondition{Conditions: []Condition{LevelCondition{Min: 1}, TagCondition{Tag: "ops"}}}, got)
}

func TestParse_Nested(t *testing.T) {
	when := &config.When{Any: []config.When{
		{Name: "console"},
		{All: []config.When{{Tag: "red"}, {MinLevel: intPtr(1)}}},
	}}

	got, err := Parse(when)
	require.NoError(t, err)
	assert.Equal(t, AnyCondition{Conditions: []Condition{
		NameCondition{Name: "console"},
		AllCondition{Conditions: []Condition{TagCondition{Tag: "red"}, LevelCondition{Min: 1}}},
	}}, got)

	ok, _ := got.Evaluate(console)
	assert.True(t, ok)
	ok, _ = got.Evaluate(alice)
	assert.False(t, ok, "alice is red but level 0")
	ok, _ = got.Evaluate(config.Source{Name: "mod", Level: 1, Tags: []string{"red"}})
	assert.True(t, ok)
}
