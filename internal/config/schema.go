package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the generated grammar schema.
const SchemaID = "https://raw.githubusercontent.com/NikitaCOEUR/cmdtree/main/schema/cmdtree.schema.json"

var (
	schemaOnce sync.Once
	schemaJSON []byte
	schemaErr  error
)

// GenerateSchema reflects the grammar types into a JSON Schema.
func GenerateSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(&Grammar{})

	// Use draft-07 for IDE compatibility
	schema.Version = "http://json-schema.org/draft-07/schema#"
	schema.ID = SchemaID
	schema.Title = "cmdtree grammar"
	schema.Description = "Command tree grammar for cmdtree"
	return schema
}

// GetSchemaJSON returns the indented grammar schema.
func GetSchemaJSON() ([]byte, error) {
	schemaOnce.Do(func() {
		schemaJSON, schemaErr = json.MarshalIndent(GenerateSchema(), "", "  ")
	})
	return schemaJSON, schemaErr
}

// ValidateWithSchema validates grammar content against the JSON Schema. The
// format is taken from the path extension.
func ValidateWithSchema(path string, content []byte) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:  true,
		Errors: []ValidationError{},
	}

	var data any
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yml", ".yaml", "":
		if err := yaml.Unmarshal(content, &data); err != nil {
			result.fail("syntax", "Invalid YAML syntax: %v", err)
			return result, nil
		}
	case ".json":
		if err := json.Unmarshal(content, &data); err != nil {
			result.fail("syntax", "Invalid JSON syntax: %v", err)
			return result, nil
		}
	case ".toml":
		m, err := toml.Parser().Unmarshal(content)
		if err != nil {
			result.fail("syntax", "Invalid TOML syntax: %v", err)
			return result, nil
		}
		data = m
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
	if data == nil {
		data = map[string]any{}
	}

	schema, err := GetSchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	validation, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	if !validation.Valid() {
		for _, e := range validation.Errors() {
			result.fail(e.Field(), "%s", e.Description())
		}
	}

	return result, nil
}
