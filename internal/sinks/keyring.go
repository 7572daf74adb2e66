package sinks

import (
	"context"
	"errors"

	"github.com/zalando/go-keyring"

	dserrors "github.com/systmms/secretseed/internal/errors"
	"github.com/systmms/secretseed/internal/logging"
)

// DefaultKeyringService is the service name keyring entries are filed
// under when the config does not set one.
const DefaultKeyringService = "secretseed"

// KeyringSink writes each batch entry into the OS keyring (macOS
// Keychain, Linux Secret Service, Windows Credential Manager). The
// secret name becomes the account, the configured service groups them.
type KeyringSink struct {
	name    string
	logger  *logging.Logger
	service string
}

// NewKeyringSink creates an OS keyring sink.
func NewKeyringSink(name string, configMap map[string]interface{}) (*KeyringSink, error) {
	service := DefaultKeyringService
	if s, ok := configMap["service"].(string); ok && s != "" {
		service = s
	}

	return &KeyringSink{
		name:    name,
		logger:  logging.New(false, false),
		service: service,
	}, nil
}

// Name returns the sink name.
func (s *KeyringSink) Name() string {
	return s.name
}

// Type returns the sink type.
func (s *KeyringSink) Type() string {
	return "keyring"
}

// Write stores each secret under service/name in batch order.
func (s *KeyringSink) Write(ctx context.Context, batch Batch) error {
	for _, name := range batch.Names {
		if err := ctx.Err(); err != nil {
			return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
		}

		s.logger.Debug("Storing keyring entry: %s/%s", s.service, name)

		if err := keyring.Set(s.service, name, batch.Values[name]); err != nil {
			return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
		}
	}
	return nil
}

// Check reads a probe entry that is never written. ErrNotFound proves
// the keyring daemon answered; anything else (no D-Bus session, locked
// keychain) is a real failure.
func (s *KeyringSink) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "check", Err: err}
	}

	_, err := keyring.Get(s.service, "secretseed-availability-probe")
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return dserrors.SinkError{Sink: s.name, Operation: "check", Err: err}
	}
	return nil
}

// NewKeyringSinkFactory creates an OS keyring sink factory.
func NewKeyringSinkFactory(name string, config map[string]interface{}) (Sink, error) {
	return NewKeyringSink(name, config)
}
