package sinks

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	dserrors "github.com/systmms/secretseed/internal/errors"
	"github.com/systmms/secretseed/internal/logging"
)

// SecretsManagerClientAPI defines the interface for AWS Secrets Manager
// operations. This allows for mocking in tests.
type SecretsManagerClientAPI interface {
	UpdateSecret(ctx context.Context, params *secretsmanager.UpdateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
}

// AWSSecretsManagerSink writes the whole batch as one JSON document to a
// single Secrets Manager secret. Each generated name becomes a key of
// that document, so consumers read all values with one GetSecretValue.
type AWSSecretsManagerSink struct {
	name   string
	client SecretsManagerClientAPI
	logger *logging.Logger
	config secretsManagerSinkConfig
}

type secretsManagerSinkConfig struct {
	awsClientConfig
	SecretID      string
	Description   string
	KMSKeyID      string
	CreateMissing bool
}

// SecretsManagerSinkOption is a functional option for configuring the sink.
type SecretsManagerSinkOption func(*AWSSecretsManagerSink)

// WithSecretsManagerClient sets a custom Secrets Manager client (for testing).
func WithSecretsManagerClient(client SecretsManagerClientAPI) SecretsManagerSinkOption {
	return func(s *AWSSecretsManagerSink) {
		s.client = client
	}
}

// NewAWSSecretsManagerSink creates an AWS Secrets Manager sink.
func NewAWSSecretsManagerSink(name string, configMap map[string]interface{}, opts ...SecretsManagerSinkOption) (*AWSSecretsManagerSink, error) {
	config := secretsManagerSinkConfig{
		awsClientConfig: parseAWSClientConfig(configMap),
	}

	if secretID, ok := configMap["secret_id"].(string); ok {
		config.SecretID = secretID
	}
	if description, ok := configMap["description"].(string); ok {
		config.Description = description
	}
	if kmsKeyID, ok := configMap["kms_key_id"].(string); ok {
		config.KMSKeyID = kmsKeyID
	}
	if createMissing, ok := configMap["create_missing"].(bool); ok {
		config.CreateMissing = createMissing
	}

	if config.SecretID == "" {
		return nil, dserrors.ConfigError{
			Field:      "secret_id",
			Message:    fmt.Sprintf("secret_id is required for sink %q", name),
			Suggestion: "Provide the secret name or ARN the batch should be written to",
		}
	}

	s := &AWSSecretsManagerSink{
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
		awsCfg, err := loadAWSConfig(context.Background(), config.awsClientConfig)
		if err != nil {
			return nil, err
		}
		var clientOpts []func(*secretsmanager.Options)
		if config.Endpoint != "" {
			endpoint := config.Endpoint
			clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
				o.BaseEndpoint = &endpoint
			})
		}
		s.client = secretsmanager.NewFromConfig(awsCfg, clientOpts...)
	}

	return s, nil
}

// Name returns the sink name.
func (s *AWSSecretsManagerSink) Name() string {
	return s.name
}

// Type returns the sink type.
func (s *AWSSecretsManagerSink) Type() string {
	return "aws.secretsmanager"
}

// Write updates the target secret with the combined batch document.
// When create_missing is set and the secret does not exist yet, it is
// created instead.
func (s *AWSSecretsManagerSink) Write(ctx context.Context, batch Batch) error {
	payload, err := batch.CombinedJSON()
	if err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
	}
	secretString := string(payload)

	s.logger.Debug("Updating secret: %s", s.config.SecretID)

	input := &secretsmanager.UpdateSecretInput{
		SecretId:     aws.String(s.config.SecretID),
		SecretString: aws.String(secretString),
	}
	if s.config.KMSKeyID != "" {
		input.KmsKeyId = aws.String(s.config.KMSKeyID)
	}

	_, err = s.client.UpdateSecret(ctx, input)
	if err == nil {
		return nil
	}

	if isSecretNotFoundError(err) && s.config.CreateMissing {
		return s.createSecret(ctx, secretString)
	}

	return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
}

func (s *AWSSecretsManagerSink) createSecret(ctx context.Context, secretString string) error {
	s.logger.Debug("Secret not found, creating: %s", s.config.SecretID)

	input := &secretsmanager.CreateSecretInput{
		Name:         aws.String(s.config.SecretID),
		SecretString: aws.String(secretString),
	}
	if s.config.Description != "" {
		input.Description = aws.String(s.config.Description)
	}
	if s.config.KMSKeyID != "" {
		input.KmsKeyId = aws.String(s.config.KMSKeyID)
	}

	if _, err := s.client.CreateSecret(ctx, input); err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "create", Err: err}
	}
	return nil
}

// Check describes the target secret to verify credentials and region.
// A missing secret only fails the check when create_missing is off,
// since a later Write would fail the same way.
func (s *AWSSecretsManagerSink) Check(ctx context.Context) error {
	input := &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(s.config.SecretID),
	}

	_, err := s.client.DescribeSecret(ctx, input)
	if err == nil {
		return nil
	}
	if isSecretNotFoundError(err) && s.config.CreateMissing {
		return nil
	}
	return dserrors.SinkError{Sink: s.name, Operation: "check", Err: err}
}

func isSecretNotFoundError(err error) bool {
	var notFound *types.ResourceNotFoundException
	return errors.As(err, &notFound)
}

// NewAWSSecretsManagerSinkFactory creates an AWS Secrets Manager sink factory.
func NewAWSSecretsManagerSinkFactory(name string, config map[string]interface{}) (Sink, error) {
	return NewAWSSecretsManagerSink(name, config)
}
