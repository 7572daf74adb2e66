package sinks_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/secretseed/internal/config"
	"github.com/systmms/secretseed/internal/sinks"
)

// TestRegistryCreation validates registry initialization
func TestRegistryCreation(t *testing.T) {
	t.Parallel()

	registry := sinks.NewRegistry()
	assert.NotNil(t, registry)

	supportedTypes := registry.GetSupportedTypes()
	assert.NotEmpty(t, supportedTypes)
	assert.GreaterOrEqual(t, len(supportedTypes), 8, "Should have multiple built-in sinks")
	assert.IsIncreasing(t, supportedTypes, "Supported types should be sorted")
}

// TestRegistryIsSupported validates sink type checking
func TestRegistryIsSupported(t *testing.T) {
	t.Parallel()

	registry := sinks.NewRegistry()

	tests := []struct {
		name          string
		sinkType      string
		wantSupported bool
	}{
		{"aws_secretsmanager", "aws.secretsmanager", true},
		{"aws_ssm", "aws.ssm", true},
		{"gcp_secretmanager", "gcp.secretmanager", true},
		{"azure_keyvault", "azure.keyvault", true},
		{"akeyless", "akeyless", true},
		{"keyring", "keyring", true},
		{"database", "database", true},
		{"file", "file", true},
		{"unknown", "unknown-sink", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			supported := registry.IsSupported(tt.sinkType)
			assert.Equal(t, tt.wantSupported, supported,
				"Sink type '%s' support check failed", tt.sinkType)
		})
	}
}

// TestRegistryCreateSink validates sink creation from configuration
func TestRegistryCreateSink(t *testing.T) {
	t.Parallel()

	registry := sinks.NewRegistry()

	t.Run("file_sink", func(t *testing.T) {
		t.Parallel()

		cfg := config.SinkConfig{
			Type: "file",
			Config: map[string]interface{}{
				"path": filepath.Join(t.TempDir(), "secrets.json"),
			},
		}
		sink, err := registry.CreateSink("local", cfg)
		require.NoError(t, err)
		assert.Equal(t, "local", sink.Name())
		assert.Equal(t, "file", sink.Type())
	})

	t.Run("keyring_sink", func(t *testing.T) {
		t.Parallel()

		cfg := config.SinkConfig{Type: "keyring", Config: map[string]interface{}{}}
		sink, err := registry.CreateSink("desktop", cfg)
		require.NoError(t, err)
		assert.Equal(t, "keyring", sink.Type())
	})

	t.Run("unknown_type", func(t *testing.T) {
		t.Parallel()

		cfg := config.SinkConfig{Type: "vault9000", Config: map[string]interface{}{}}
		_, err := registry.CreateSink("bad", cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown sink type")
		assert.Contains(t, err.Error(), "Supported types")
	})

	t.Run("invalid_config_propagates", func(t *testing.T) {
		t.Parallel()

		// file sink requires a path
		cfg := config.SinkConfig{Type: "file", Config: map[string]interface{}{}}
		_, err := registry.CreateSink("nopath", cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path")
	})
}

// TestRegistryCreateAll validates creating every sink a spec defines
func TestRegistryCreateAll(t *testing.T) {
	t.Parallel()

	registry := sinks.NewRegistry()

	spec := &config.Spec{
		Version: 1,
		Sinks: map[string]config.SinkConfig{
			"local": {
				Type: "file",
				Config: map[string]interface{}{
					"path": filepath.Join(t.TempDir(), "out.json"),
				},
			},
			"desktop": {
				Type:   "keyring",
				Config: map[string]interface{}{},
			},
		},
	}

	created, err := registry.CreateAll(spec)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "file", created["local"].Type())
	assert.Equal(t, "keyring", created["desktop"].Type())
}

// TestRegistryCreateAllFailsFast validates that one bad sink fails the
// whole creation with its name in the error
func TestRegistryCreateAllFailsFast(t *testing.T) {
	t.Parallel()

	registry := sinks.NewRegistry()

	spec := &config.Spec{
		Version: 1,
		Sinks: map[string]config.SinkConfig{
			"broken": {Type: "no-such-type", Config: map[string]interface{}{}},
		},
	}

	_, err := registry.CreateAll(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `creating sink "broken"`)
}

// TestRegistryRegisterFactory validates custom factory registration
func TestRegistryRegisterFactory(t *testing.T) {
	t.Parallel()

	registry := sinks.NewRegistry()
	assert.False(t, registry.IsSupported("custom"))

	registry.RegisterFactory("custom", sinks.NewFileSinkFactory)
	assert.True(t, registry.IsSupported("custom"))
}
