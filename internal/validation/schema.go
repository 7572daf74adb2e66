// Package validation checks a secretseed configuration document against the
// embedded JSON schema before the typed loader touches it, so shape problems
// surface with field paths instead of half-parsed structs.
package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/secretseed/internal/errors"
)

//go:embed schema/secretseed.schema.json
var configSchema string

// ValidateFile validates the YAML configuration at path against the schema.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      path,
				Message:    "configuration file not found",
				Suggestion: "Run 'secretseed init' to create a new configuration file",
			}
		}
		return fmt.Errorf("reading configuration: %w", err)
	}
	return ValidateYAML(data)
}

// ValidateYAML validates raw YAML configuration bytes against the schema.
// The document is round-tripped through JSON since the schema validator
// does not read YAML directly.
func ValidateYAML(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting configuration for validation: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	documentLoader := gojsonschema.NewBytesLoader(jsonDoc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var violations []string
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return dserrors.ConfigError{
			Message:    fmt.Sprintf("configuration does not match the expected schema:\n  - %s", strings.Join(violations, "\n  - ")),
			Suggestion: "Compare your file with the example in 'secretseed init'",
		}
	}

	return nil
}
