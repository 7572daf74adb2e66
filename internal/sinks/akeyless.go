package sinks

import (
	"context"
	"fmt"
	"strings"
	"time"

	akeyless "github.com/akeylesslabs/akeyless-go/v3"

	dserrors "github.com/systmms/secretseed/internal/errors"
	"github.com/systmms/secretseed/internal/logging"
)

// DefaultAkeylessGateway is the public Akeyless API endpoint.
const DefaultAkeylessGateway = "https://api.akeyless.io"

// AkeylessClientAPI defines the interface for Akeyless operations. This
// allows for mocking in tests.
type AkeylessClientAPI interface {
	Authenticate(ctx context.Context) (token string, ttl time.Duration, err error)
	UpdateSecret(ctx context.Context, token, path, value string) error
	CreateSecret(ctx context.Context, token, path, value string) error
}

// AkeylessSink writes each batch entry as its own static secret under
// the configured path prefix.
type AkeylessSink struct {
	name   string
	client AkeylessClientAPI
	logger *logging.Logger
	config akeylessSinkConfig

	// token cache; one auth covers the whole run
	token        string
	tokenExpires time.Time
}

type akeylessSinkConfig struct {
	AccessID   string
	AccessKey  string
	GatewayURL string
	PathPrefix string
}

// AkeylessSinkOption is a functional option for configuring Akeyless sinks.
type AkeylessSinkOption func(*AkeylessSink)

// WithAkeylessClient sets a custom Akeyless client (for testing).
func WithAkeylessClient(client AkeylessClientAPI) AkeylessSinkOption {
	return func(s *AkeylessSink) {
		s.client = client
	}
}

// NewAkeylessSink creates an Akeyless sink.
func NewAkeylessSink(name string, configMap map[string]interface{}, opts ...AkeylessSinkOption) (*AkeylessSink, error) {
	config := akeylessSinkConfig{
		GatewayURL: DefaultAkeylessGateway,
	}

	if accessID, ok := configMap["access_id"].(string); ok {
		config.AccessID = accessID
	}
	if gatewayURL, ok := configMap["gateway_url"].(string); ok && gatewayURL != "" {
		config.GatewayURL = gatewayURL
	}
	if prefix, ok := configMap["path_prefix"].(string); ok {
		config.PathPrefix = prefix
	}
	if auth, ok := configMap["auth"].(map[string]interface{}); ok {
		if accessKey, ok := auth["access_key"].(string); ok {
			config.AccessKey = accessKey
		}
	}

	if config.AccessID == "" {
		return nil, dserrors.ConfigError{
			Field:      "access_id",
			Message:    fmt.Sprintf("access_id is required for sink %q", name),
			Suggestion: "Provide the Akeyless access ID and auth.access_key",
		}
	}

	s := &AkeylessSink{
		name:   name,
		logger: logging.New(false, false),
		config: config,
	}

	// Apply options (allows mock client injection)
	for _, opt := range opts {
		opt(s)
	}

	// If no client was provided via options, create real SDK client
	if s.client == nil {
		s.client = newAkeylessSDKClient(config)
	}

	return s, nil
}

// Name returns the sink name.
func (s *AkeylessSink) Name() string {
	return s.name
}

// Type returns the sink type.
func (s *AkeylessSink) Type() string {
	return "akeyless"
}

// Write updates each secret in batch order, creating ones that do not
// exist yet.
func (s *AkeylessSink) Write(ctx context.Context, batch Batch) error {
	token, err := s.getToken(ctx)
	if err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "auth", Err: err}
	}

	for _, name := range batch.Names {
		path := s.secretPath(name)

		s.logger.Debug("Updating Akeyless secret: %s", path)

		err := s.client.UpdateSecret(ctx, token, path, batch.Values[name])
		if err != nil && isAkeylessNotFoundError(err) {
			err = s.client.CreateSecret(ctx, token, path, batch.Values[name])
		}
		if err != nil {
			return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
		}
	}
	return nil
}

// Check authenticates against the gateway without touching any secrets.
func (s *AkeylessSink) Check(ctx context.Context) error {
	if _, err := s.getToken(ctx); err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "check", Err: err}
	}
	return nil
}

// secretPath joins the prefix and name into an absolute Akeyless path.
func (s *AkeylessSink) secretPath(name string) string {
	path := s.config.PathPrefix + name
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// getToken returns a cached token or authenticates to get a new one.
func (s *AkeylessSink) getToken(ctx context.Context) (string, error) {
	if s.token != "" && time.Now().Before(s.tokenExpires) {
		return s.token, nil
	}

	token, ttl, err := s.client.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	s.token = token
	s.tokenExpires = time.Now().Add(ttl)
	return token, nil
}

// isAkeylessNotFoundError checks if an error indicates the secret does
// not exist yet.
func isAkeylessNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "itemNotFound")
}

// akeylessSDKClient implements AkeylessClientAPI using the official SDK.
type akeylessSDKClient struct {
	apiClient *akeyless.APIClient
	config    akeylessSinkConfig
}

func newAkeylessSDKClient(cfg akeylessSinkConfig) *akeylessSDKClient {
	configuration := akeyless.NewConfiguration()
	configuration.Servers = []akeyless.ServerConfiguration{
		{URL: cfg.GatewayURL},
	}

	return &akeylessSDKClient{
		apiClient: akeyless.NewAPIClient(configuration),
		config:    cfg,
	}
}

// Authenticate obtains an access token using the API key method.
func (c *akeylessSDKClient) Authenticate(ctx context.Context) (string, time.Duration, error) {
	authBody := akeyless.NewAuthWithDefaults()
	authBody.SetAccessId(c.config.AccessID)
	authBody.SetAccessKey(c.config.AccessKey)

	authRes, _, err := c.apiClient.V2Api.Auth(ctx).Body(*authBody).Execute()
	if err != nil {
		return "", 0, fmt.Errorf("api key authentication failed: %w", err)
	}

	// Akeyless tokens typically last 30 minutes, use 25 to be safe
	return authRes.GetToken(), 25 * time.Minute, nil
}

// UpdateSecret writes a new value for an existing static secret.
func (c *akeylessSDKClient) UpdateSecret(ctx context.Context, token, path, value string) error {
	body := akeyless.NewUpdateSecretVal(path, value)
	body.SetToken(token)

	_, _, err := c.apiClient.V2Api.UpdateSecretVal(ctx).Body(*body).Execute()
	return err
}

// CreateSecret creates a new static secret.
func (c *akeylessSDKClient) CreateSecret(ctx context.Context, token, path, value string) error {
	body := akeyless.NewCreateSecret(path, value)
	body.SetToken(token)

	_, _, err := c.apiClient.V2Api.CreateSecret(ctx).Body(*body).Execute()
	return err
}

// Ensure akeylessSDKClient implements AkeylessClientAPI
var _ AkeylessClientAPI = (*akeylessSDKClient)(nil)

// NewAkeylessSinkFactory creates an Akeyless sink factory.
func NewAkeylessSinkFactory(name string, config map[string]interface{}) (Sink, error) {
	return NewAkeylessSink(name, config)
}
