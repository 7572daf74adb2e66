package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/secretseed/internal/errors"
	"github.com/systmms/secretseed/internal/logging"
	"github.com/systmms/secretseed/pkg/secretgen"
)

// Config holds the runtime configuration shared by all commands.
type Config struct {
	Path        string
	Logger      *logging.Logger
	MetricsFile string
	Spec        *Spec
}

// Spec represents the secretseed.yaml structure: sink definitions plus the
// list of secrets to generate.
type Spec struct {
	Version  int                   `yaml:"version"`
	Defaults Defaults              `yaml:"defaults,omitempty"`
	Sinks    map[string]SinkConfig `yaml:"sinks,omitempty"`
	Secrets  []SecretConfig        `yaml:"secrets"`
}

// Defaults apply to secrets that leave the matching field unset.
type Defaults struct {
	Length int `yaml:"length,omitempty"`
}

// SinkConfig holds sink-specific configuration. Everything besides the type
// stays in the raw map so each sink can define its own keys.
type SinkConfig struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:",inline"`
}

// SecretConfig describes one secret to generate. Field names mirror the
// generation policy options, snake_cased for YAML.
type SecretConfig struct {
	Name                    string   `yaml:"name"`
	Length                  int      `yaml:"length,omitempty"`
	ExcludeCharacters       string   `yaml:"exclude_characters,omitempty"`
	ExcludeLowercase        bool     `yaml:"exclude_lowercase,omitempty"`
	ExcludeUppercase        bool     `yaml:"exclude_uppercase,omitempty"`
	ExcludeNumbers          bool     `yaml:"exclude_numbers,omitempty"`
	ExcludePunctuation      bool     `yaml:"exclude_punctuation,omitempty"`
	IncludeSpace            bool     `yaml:"include_space,omitempty"`
	RequireEachIncludedType bool     `yaml:"require_each_included_type,omitempty"`
	SecretStringTemplate    string   `yaml:"secret_string_template,omitempty"`
	GenerateStringKey       string   `yaml:"generate_string_key,omitempty"`
	Sinks                   []string `yaml:"sinks,omitempty"`
}

// Load reads and parses the secretseed.yaml file.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Run 'secretseed init' to create a new configuration file",
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if err := spec.validate(); err != nil {
		return err
	}

	c.Spec = &spec
	return nil
}

// validate checks structural rules the schema cannot express relationally:
// unique names and dangling sink references.
func (s *Spec) validate() error {
	// Version 0 means the key was omitted and is treated as version 1.
	if s.Version != 0 && s.Version != 1 {
		return dserrors.ConfigError{
			Field:      "version",
			Value:      s.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 1' at the top of your secretseed.yaml file",
		}
	}

	if len(s.Secrets) == 0 {
		return dserrors.ConfigError{
			Field:      "secrets",
			Message:    "no secrets defined",
			Suggestion: "Add at least one entry to the 'secrets:' list",
		}
	}

	seen := make(map[string]bool, len(s.Secrets))
	for i, secret := range s.Secrets {
		field := fmt.Sprintf("secrets[%d]", i)

		if secret.Name == "" {
			return dserrors.ConfigError{
				Field:      field + ".name",
				Message:    "secret name is required",
				Suggestion: "Give every entry in 'secrets:' a unique name",
			}
		}
		if seen[secret.Name] {
			return dserrors.ConfigError{
				Field:      field + ".name",
				Value:      secret.Name,
				Message:    "duplicate secret name",
				Suggestion: "Secret names must be unique within one configuration",
			}
		}
		seen[secret.Name] = true

		if secret.Length < 0 {
			return dserrors.ConfigError{
				Field:      field + ".length",
				Value:      secret.Length,
				Message:    "length must be positive",
				Suggestion: "Use a positive length, or omit it for the default of 32",
			}
		}

		for _, sinkName := range secret.Sinks {
			if _, ok := s.Sinks[sinkName]; !ok {
				return dserrors.ConfigError{
					Field:      field + ".sinks",
					Value:      sinkName,
					Message:    "sink is not defined",
					Suggestion: s.availableSinksSuggestion(),
				}
			}
		}
	}

	return nil
}

func (s *Spec) availableSinksSuggestion() string {
	names := s.SinkNames()
	if len(names) == 0 {
		return "Define the sink under the 'sinks:' section first"
	}
	return fmt.Sprintf("Available sinks: %s", strings.Join(names, ", "))
}

// SinkNames returns the configured sink names, sorted.
func (s *Spec) SinkNames() []string {
	names := make([]string, 0, len(s.Sinks))
	for name := range s.Sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetSink returns the configuration for a named sink.
func (s *Spec) GetSink(name string) (SinkConfig, error) {
	if sink, ok := s.Sinks[name]; ok {
		return sink, nil
	}
	return SinkConfig{}, dserrors.ConfigError{
		Field:      "sinks",
		Value:      name,
		Message:    "sink not found in configuration",
		Suggestion: s.availableSinksSuggestion(),
	}
}

// Requests converts the secret list into generation requests, applying the
// configured default length where a secret leaves it unset.
func (s *Spec) Requests() []secretgen.Request {
	requests := make([]secretgen.Request, 0, len(s.Secrets))
	for _, secret := range s.Secrets {
		length := secret.Length
		if length == 0 {
			length = s.Defaults.Length
		}
		requests = append(requests, secretgen.Request{
			Name:   secret.Name,
			Length: length,
			Policy: secretgen.Policy{
				ExcludeLowercase:   secret.ExcludeLowercase,
				ExcludeUppercase:   secret.ExcludeUppercase,
				ExcludeNumbers:     secret.ExcludeNumbers,
				ExcludePunctuation: secret.ExcludePunctuation,
				IncludeSpace:       secret.IncludeSpace,
				ExcludeCharacters:  secret.ExcludeCharacters,
			},
			RequireEachIncludedType: secret.RequireEachIncludedType,
			SecretStringTemplate:    secret.SecretStringTemplate,
			GenerateStringKey:       secret.GenerateStringKey,
		})
	}
	return requests
}

// SinksFor returns the sink names a secret should be written to. A secret
// without an explicit list goes to every configured sink.
func (s *Spec) SinksFor(secret SecretConfig) []string {
	if len(secret.Sinks) > 0 {
		return secret.Sinks
	}
	return s.SinkNames()
}
