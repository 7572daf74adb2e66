package sinks

import (
	"fmt"
	"sort"

	"github.com/systmms/secretseed/internal/config"
	dserrors "github.com/systmms/secretseed/internal/errors"
)

// Factory creates a sink instance from its configuration map.
type Factory func(name string, config map[string]interface{}) (Sink, error)

// Registry manages sink creation and registration.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a sink registry with all built-in sink types.
func NewRegistry() *Registry {
	registry := &Registry{
		factories: make(map[string]Factory),
	}

	registry.RegisterFactory("aws.secretsmanager", NewAWSSecretsManagerSinkFactory)
	registry.RegisterFactory("aws.ssm", NewAWSSSMSinkFactory)
	registry.RegisterFactory("gcp.secretmanager", NewGCPSecretManagerSinkFactory)
	registry.RegisterFactory("azure.keyvault", NewAzureKeyVaultSinkFactory)
	registry.RegisterFactory("akeyless", NewAkeylessSinkFactory)
	registry.RegisterFactory("keyring", NewKeyringSinkFactory)
	registry.RegisterFactory("database", NewDatabaseSinkFactory)
	registry.RegisterFactory("file", NewFileSinkFactory)

	return registry
}

// RegisterFactory registers a sink factory for a given type.
func (r *Registry) RegisterFactory(sinkType string, factory Factory) {
	r.factories[sinkType] = factory
}

// CreateSink creates a sink instance from configuration.
func (r *Registry) CreateSink(name string, cfg config.SinkConfig) (Sink, error) {
	factory, exists := r.factories[cfg.Type]
	if !exists {
		return nil, dserrors.ConfigError{
			Field:      "type",
			Value:      cfg.Type,
			Message:    fmt.Sprintf("unknown sink type for sink %q", name),
			Suggestion: fmt.Sprintf("Supported types: %v", r.GetSupportedTypes()),
		}
	}
	return factory(name, cfg.Config)
}

// CreateAll creates every sink the configuration defines, keyed by name.
func (r *Registry) CreateAll(spec *config.Spec) (map[string]Sink, error) {
	created := make(map[string]Sink, len(spec.Sinks))
	for _, name := range spec.SinkNames() {
		sink, err := r.CreateSink(name, spec.Sinks[name])
		if err != nil {
			return nil, fmt.Errorf("creating sink %q: %w", name, err)
		}
		created[name] = sink
	}
	return created, nil
}

// GetSupportedTypes returns the sorted list of supported sink types.
func (r *Registry) GetSupportedTypes() []string {
	types := make([]string, 0, len(r.factories))
	for sinkType := range r.factories {
		types = append(types, sinkType)
	}
	sort.Strings(types)
	return types
}

// IsSupported checks if a sink type is supported.
func (r *Registry) IsSupported(sinkType string) bool {
	_, exists := r.factories[sinkType]
	return exists
}
