package sinks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/secretseed/internal/sinks"
	"github.com/zalando/go-keyring"
)

// Keyring tests swap the package-global provider with MockInit, so they
// stay serial.

// TestKeyringSinkWrite validates per-entry keyring storage
func TestKeyringSinkWrite(t *testing.T) {
	keyring.MockInit()

	sink, err := sinks.NewKeyringSink("desktop", map[string]interface{}{
		"service": "myapp",
	})
	require.NoError(t, err)

	batch := sinks.NewBatch(
		[]string{"db_password", "api_key"},
		map[string]string{
			"db_password": "generated-one",
			"api_key":     "generated-two",
		},
	)

	require.NoError(t, sink.Write(context.Background(), batch))

	stored, err := keyring.Get("myapp", "db_password")
	require.NoError(t, err)
	assert.Equal(t, "generated-one", stored)

	stored, err = keyring.Get("myapp", "api_key")
	require.NoError(t, err)
	assert.Equal(t, "generated-two", stored)
}

// TestKeyringSinkDefaultService validates the fallback service name
func TestKeyringSinkDefaultService(t *testing.T) {
	keyring.MockInit()

	sink, err := sinks.NewKeyringSink("desktop", map[string]interface{}{})
	require.NoError(t, err)

	batch := sinks.NewBatch(
		[]string{"session_key"},
		map[string]string{"session_key": "v"},
	)
	require.NoError(t, sink.Write(context.Background(), batch))

	stored, err := keyring.Get(sinks.DefaultKeyringService, "session_key")
	require.NoError(t, err)
	assert.Equal(t, "v", stored)
}

// TestKeyringSinkWriteCanceled validates context cancellation between
// entries
func TestKeyringSinkWriteCanceled(t *testing.T) {
	keyring.MockInit()

	sink, err := sinks.NewKeyringSink("desktop", map[string]interface{}{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := sinks.NewBatch(
		[]string{"db_password"},
		map[string]string{"db_password": "v"},
	)
	err = sink.Write(ctx, batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "desktop")
}

// TestKeyringSinkCheck validates the availability probe
func TestKeyringSinkCheck(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		keyring.MockInit()

		sink, err := sinks.NewKeyringSink("desktop", map[string]interface{}{})
		require.NoError(t, err)

		// The probe entry is never written, so the mock returns
		// ErrNotFound, which counts as available.
		require.NoError(t, sink.Check(context.Background()))
	})

	t.Run("daemon_unreachable", func(t *testing.T) {
		keyring.MockInitWithError(errors.New("no D-Bus session"))

		sink, err := sinks.NewKeyringSink("desktop", map[string]interface{}{})
		require.NoError(t, err)

		err = sink.Check(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no D-Bus session")
	})
}

// TestKeyringSinkNameAndType validates basic sink properties
func TestKeyringSinkNameAndType(t *testing.T) {
	sink, err := sinks.NewKeyringSink("desktop", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "desktop", sink.Name())
	assert.Equal(t, "keyring", sink.Type())
}
