package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// fileSchema is the JSON schema an override file must satisfy.
const fileSchema = `{
	"type": "object",
	"required": ["version", "fields"],
	"additionalProperties": false,
	"properties": {
		"version": {"type": "string", "minLength": 1},
		"fields": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name"],
				"additionalProperties": false,
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"range": {
						"type": "array",
						"items": {"type": "number"},
						"minItems": 2,
						"maxItems": 2
					}
				}
			}
		}
	}
}`

// fileFormat mirrors the override file layout.
type fileFormat struct {
	Version string `yaml:"version" json:"version"`
	Fields  []struct {
		Name  string     `yaml:"name" json:"name"`
		Range *[]float64 `yaml:"range,omitempty" json:"range,omitempty"`
	} `yaml:"fields" json:"fields"`
}

// LoadFile reads a YAML schema override file, validates it against the
// embedded JSON schema, and returns the version it declares along with
// the built Schema.
func LoadFile(path string) (string, *Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	// Decode YAML into a generic document so it can be validated as JSON.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	doc = normalizeYAML(doc)

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader([]byte(fileSchema))); err != nil {
		return "", nil, fmt.Errorf("failed to load embedded schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return "", nil, fmt.Errorf("failed to compile embedded schema: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return "", nil, fmt.Errorf("schema file %s is invalid: %w", path, err)
	}

	// Re-decode into the typed form now that the shape is known good.
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return "", nil, fmt.Errorf("failed to serialize schema document: %w", err)
	}
	var ff fileFormat
	if err := json.Unmarshal(jsonBytes, &ff); err != nil {
		return "", nil, fmt.Errorf("failed to decode schema document: %w", err)
	}

	names := make([]string, 0, len(ff.Fields))
	ranges := make(map[string][2]float64)
	for _, f := range ff.Fields {
		names = append(names, f.Name)
		if f.Range != nil {
			ranges[f.Name] = [2]float64{(*f.Range)[0], (*f.Range)[1]}
		}
	}

	s, err := build(names, ranges)
	if err != nil {
		return "", nil, fmt.Errorf("schema file %s: %w", path, err)
	}
	return ff.Version, s, nil
}

// normalizeYAML converts map[any]any trees produced by YAML decoding into
// map[string]any trees that the JSON schema validator accepts.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}
