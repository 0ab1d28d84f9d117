package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSchemaJSON(t *testing.T) {
	data, err := GetSchemaJSON()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", schema["$schema"])
	assert.Equal(t, SchemaID, schema["$id"])
	assert.Contains(t, schema, "$defs")

	defs := schema["$defs"].(map[string]any)
	for _, name := range []string{"Grammar", "Settings", "Source", "Node", "When", "Run", "Fork", "As"} {
		assert.Contains(t, defs, name)
	}
}

func TestValidateWithSchema(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		valid   bool
		field   string
	}{
		{name: "sample yaml", path: "g.yml", content: sampleYAML, valid: true},
		{name: "empty yaml", path: "g.yaml", content: "", valid: true},
		{name: "json", path: "g.json", content: `{"commands":[{"literal":"ping","run":{"output":"pong"}}]}`, valid: true},
		{name: "toml", path: "g.toml", content: "[[sources]]\nname = \"a\"\nlevel = 2\n", valid: true},
		{name: "unknown top level key", path: "g.yml", content: "aliases: {}\n", valid: false},
		{name: "unknown node key", path: "g.yml", content: "commands: [{ literal: a, exec: ls }]\n", valid: false},
		{name: "unknown type", path: "g.yml", content: "commands: [{ argument: a, type: uuid }]\n", valid: false},
		{name: "source without name", path: "g.yml", content: "sources: [{ level: 1 }]\n", valid: false},
		{name: "bad ambiguity", path: "g.json", content: `{"settings":{"ambiguity":"maybe"}}`, valid: false},
		{name: "yaml syntax", path: "g.yml", content: "commands: [\n", valid: false, field: "syntax"},
		{name: "json syntax", path: "g.json", content: "{", valid: false, field: "syntax"},
		{name: "toml syntax", path: "g.toml", content: "[[", valid: false, field: "syntax"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateWithSchema(tt.path, []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid, "%v", result.Errors)
			if tt.field != "" {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.field, result.Errors[0].Field)
			}
		})
	}
}

func TestValidateWithSchema_UnsupportedFormat(t *testing.T) {
	_, err := ValidateWithSchema("g.ini", []byte("x=1"))
	assert.Error(t, err)
}
