package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/secretseed/internal/config"
	"github.com/systmms/secretseed/internal/logging"
	"github.com/systmms/secretseed/internal/validation"
)

func TestInitCommand(t *testing.T) {
	cfg := &config.Config{
		Path:   filepath.Join(t.TempDir(), "secretseed.yaml"),
		Logger: logging.New(false, true),
	}

	require.NoError(t, NewInitCommand(cfg).Execute())

	data, err := os.ReadFile(cfg.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 1")

	// The example must pass its own validate path
	require.NoError(t, validation.ValidateYAML(data))
	require.NoError(t, cfg.Load())

	spec := cfg.Spec
	assert.NotEmpty(t, spec.Secrets)
	assert.NotEmpty(t, spec.Sinks)

	// And every example sink type must have a factory
	for name, sink := range spec.Sinks {
		assert.NotEmpty(t, sink.Type, "sink %s has no type", name)
	}
}

func TestInitCommandRefusesToOverwrite(t *testing.T) {
	cfg := &config.Config{
		Path:   filepath.Join(t.TempDir(), "secretseed.yaml"),
		Logger: logging.New(false, true),
	}
	require.NoError(t, os.WriteFile(cfg.Path, []byte("keep me\n"), 0o600))

	err := NewInitCommand(cfg).Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// Existing content untouched
	data, readErr := os.ReadFile(cfg.Path)
	require.NoError(t, readErr)
	assert.Equal(t, "keep me\n", string(data))
}
