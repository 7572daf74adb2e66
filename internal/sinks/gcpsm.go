package sinks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	dserrors "github.com/systmms/secretseed/internal/errors"
	"github.com/systmms/secretseed/internal/logging"
)

// GCPSecretManagerClientAPI defines the interface for GCP Secret Manager
// operations. This allows for mocking in tests. ListSecrets is excluded
// because its iterator type cannot be constructed outside the SDK;
// Check type-asserts the concrete client instead.
type GCPSecretManagerClientAPI interface {
	AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.SecretVersion, error)
	CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
}

// GCPSecretManagerSink writes each batch entry as a new version of its
// own GCP secret.
type GCPSecretManagerSink struct {
	name   string
	client GCPSecretManagerClientAPI
	logger *logging.Logger
	config gcpSinkConfig
}

type gcpSinkConfig struct {
	ProjectID             string
	ServiceAccountKeyPath string
	ImpersonateAccount    string
	SecretPrefix          string
	CreateMissing         bool
	Labels                map[string]string
}

// GCPSinkOption is a functional option for configuring GCP sinks.
type GCPSinkOption func(*GCPSecretManagerSink)

// WithGCPClient sets a custom Secret Manager client (for testing).
func WithGCPClient(client GCPSecretManagerClientAPI) GCPSinkOption {
	return func(s *GCPSecretManagerSink) {
		s.client = client
	}
}

// NewGCPSecretManagerSink creates a GCP Secret Manager sink.
func NewGCPSecretManagerSink(name string, configMap map[string]interface{}, opts ...GCPSinkOption) (*GCPSecretManagerSink, error) {
	var config gcpSinkConfig

	if projectID, ok := configMap["project_id"].(string); ok {
		config.ProjectID = projectID
	}
	if keyPath, ok := configMap["service_account_key_path"].(string); ok {
		config.ServiceAccountKeyPath = keyPath
	}
	if account, ok := configMap["impersonate_service_account"].(string); ok {
		config.ImpersonateAccount = account
	}
	if prefix, ok := configMap["secret_prefix"].(string); ok {
		config.SecretPrefix = prefix
	}
	if createMissing, ok := configMap["create_missing"].(bool); ok {
		config.CreateMissing = createMissing
	}
	if labels, ok := configMap["labels"].(map[string]interface{}); ok {
		config.Labels = make(map[string]string)
		for k, v := range labels {
			if str, ok := v.(string); ok {
				config.Labels[k] = str
			}
		}
	}

	if config.ProjectID == "" {
		if projectID := gcpProjectIDFromEnv(); projectID != "" {
			config.ProjectID = projectID
		} else {
			return nil, dserrors.ConfigError{
				Field:      "project_id",
				Message:    fmt.Sprintf("project_id is required for sink %q", name),
				Suggestion: "Set project_id in config or the GOOGLE_CLOUD_PROJECT environment variable",
			}
		}
	}

	s := &GCPSecretManagerSink{
		name:   name,
		logger: logging.New(false, false),
		config: config,
	}

	// Apply options (allows mock client injection)
	for _, opt := range opts {
		opt(s)
	}

	// If no client was provided via options, create real client
	if s.client == nil {
		client, err := createGCPClient(context.Background(), config)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCP Secret Manager client: %w", err)
		}
		s.client = client
	}

	return s, nil
}

func createGCPClient(ctx context.Context, config gcpSinkConfig) (*secretmanager.Client, error) {
	var clientOptions []option.ClientOption

	if config.ServiceAccountKeyPath != "" {
		keyPath := config.ServiceAccountKeyPath
		if strings.HasPrefix(keyPath, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			keyPath = filepath.Join(home, keyPath[2:])
		}
		clientOptions = append(clientOptions, option.WithCredentialsFile(keyPath))
	}

	if config.ImpersonateAccount != "" {
		tokenSource, err := impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
			TargetPrincipal: config.ImpersonateAccount,
			Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create impersonated credentials: %w", err)
		}
		clientOptions = append(clientOptions, option.WithTokenSource(tokenSource))
	}

	return secretmanager.NewClient(ctx, clientOptions...)
}

// gcpProjectIDFromEnv attempts to get the GCP project ID from the
// environment.
func gcpProjectIDFromEnv() string {
	for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT", "GCP_PROJECT"} {
		if projectID := os.Getenv(key); projectID != "" {
			return projectID
		}
	}
	return ""
}

// Name returns the sink name.
func (s *GCPSecretManagerSink) Name() string {
	return s.name
}

// Type returns the sink type.
func (s *GCPSecretManagerSink) Type() string {
	return "gcp.secretmanager"
}

// Write adds a new version to each secret in batch order. With
// create_missing set, secrets that do not exist yet are created with
// automatic replication before the version is added.
func (s *GCPSecretManagerSink) Write(ctx context.Context, batch Batch) error {
	for _, name := range batch.Names {
		secretID := s.config.SecretPrefix + name
		parent := fmt.Sprintf("projects/%s/secrets/%s", s.config.ProjectID, secretID)

		s.logger.Debug("Adding secret version: %s", parent)

		req := &secretmanagerpb.AddSecretVersionRequest{
			Parent: parent,
			Payload: &secretmanagerpb.SecretPayload{
				Data: []byte(batch.Values[name]),
			},
		}

		_, err := s.client.AddSecretVersion(ctx, req)
		if err != nil && status.Code(err) == codes.NotFound && s.config.CreateMissing {
			if err = s.createSecret(ctx, secretID); err != nil {
				return err
			}
			_, err = s.client.AddSecretVersion(ctx, req)
		}
		if err != nil {
			return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
		}
	}
	return nil
}

func (s *GCPSecretManagerSink) createSecret(ctx context.Context, secretID string) error {
	s.logger.Debug("Secret not found, creating: %s", secretID)

	req := &secretmanagerpb.CreateSecretRequest{
		Parent:   fmt.Sprintf("projects/%s", s.config.ProjectID),
		SecretId: secretID,
		Secret: &secretmanagerpb.Secret{
			Replication: &secretmanagerpb.Replication{
				Replication: &secretmanagerpb.Replication_Automatic_{
					Automatic: &secretmanagerpb.Replication_Automatic{},
				},
			},
			Labels: s.config.Labels,
		},
	}

	if _, err := s.client.CreateSecret(ctx, req); err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "create", Err: err}
	}
	return nil
}

// Check lists one secret in the project to verify credentials. Only the
// concrete SDK client supports listing; injected test clients pass by
// default.
func (s *GCPSecretManagerSink) Check(ctx context.Context) error {
	realClient, ok := s.client.(*secretmanager.Client)
	if !ok {
		return nil
	}

	req := &secretmanagerpb.ListSecretsRequest{
		Parent:   fmt.Sprintf("projects/%s", s.config.ProjectID),
		PageSize: 1,
	}

	iter := realClient.ListSecrets(ctx, req)
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return dserrors.SinkError{Sink: s.name, Operation: "check", Err: err}
	}
	return nil
}

// NewGCPSecretManagerSinkFactory creates a GCP Secret Manager sink factory.
func NewGCPSecretManagerSinkFactory(name string, config map[string]interface{}) (Sink, error) {
	return NewGCPSecretManagerSink(name, config)
}
