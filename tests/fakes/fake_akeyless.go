package fakes

import (
	"context"
	"time"

	"github.com/systmms/secretseed/internal/sinks"
)

// FakeAkeylessClient is a test double for sinks.AkeylessClientAPI
type FakeAkeylessClient struct {
	// Token is the token returned by Authenticate
	Token string

	// TokenTTL is the TTL returned by Authenticate
	TokenTTL time.Duration

	// Secrets is a map of path to current value
	Secrets map[string]string

	// AuthErr is returned by Authenticate if set
	AuthErr error

	// UpdateErr is returned by UpdateSecret if set (overrides Secrets lookup)
	UpdateErr error

	// CreateErr is returned by CreateSecret if set
	CreateErr error

	// AuthCallCount tracks how many times Authenticate was called
	AuthCallCount int

	// UpdateCalls records the paths passed to UpdateSecret in order
	UpdateCalls []string

	// CreateCalls records the paths passed to CreateSecret in order
	CreateCalls []string

	// Tokens records the token passed to each write call
	Tokens []string
}

// NewFakeAkeylessClient creates a new fake Akeyless client with defaults
func NewFakeAkeylessClient() *FakeAkeylessClient {
	return &FakeAkeylessClient{
		Token:    "fake-akeyless-token",
		TokenTTL: 30 * time.Minute,
		Secrets:  make(map[string]string),
	}
}

// SetSecret registers an existing secret so UpdateSecret succeeds
func (f *FakeAkeylessClient) SetSecret(path, value string) {
	if f.Secrets == nil {
		f.Secrets = make(map[string]string)
	}
	f.Secrets[path] = value
}

// Authenticate obtains an access token
func (f *FakeAkeylessClient) Authenticate(ctx context.Context) (string, time.Duration, error) {
	f.AuthCallCount++
	if f.AuthErr != nil {
		return "", 0, f.AuthErr
	}
	return f.Token, f.TokenTTL, nil
}

// UpdateSecret updates an existing static secret by path
func (f *FakeAkeylessClient) UpdateSecret(ctx context.Context, token, path, value string) error {
	f.UpdateCalls = append(f.UpdateCalls, path)
	f.Tokens = append(f.Tokens, token)
	if f.UpdateErr != nil {
		return f.UpdateErr
	}

	if _, ok := f.Secrets[path]; !ok {
		return ErrFakeAkeylessSecretNotFound
	}
	f.Secrets[path] = value
	return nil
}

// CreateSecret creates a new static secret by path
func (f *FakeAkeylessClient) CreateSecret(ctx context.Context, token, path, value string) error {
	f.CreateCalls = append(f.CreateCalls, path)
	f.Tokens = append(f.Tokens, token)
	if f.CreateErr != nil {
		return f.CreateErr
	}

	f.Secrets[path] = value
	return nil
}

// ErrFakeAkeylessSecretNotFound is returned when a secret doesn't exist
var ErrFakeAkeylessSecretNotFound = &fakeAkeylessError{code: "itemNotFound", message: "secret not found"}

// ErrFakeAkeylessUnauthorized is returned for auth failures
var ErrFakeAkeylessUnauthorized = &fakeAkeylessError{code: "unauthorized", message: "authentication failed"}

type fakeAkeylessError struct {
	code    string
	message string
}

func (e *fakeAkeylessError) Error() string {
	return e.message
}

func (e *fakeAkeylessError) Code() string {
	return e.code
}

// Ensure FakeAkeylessClient implements sinks.AkeylessClientAPI
var _ sinks.AkeylessClientAPI = (*FakeAkeylessClient)(nil)
