package sinks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	dserrors "github.com/systmms/secretseed/internal/errors"
	"github.com/systmms/secretseed/internal/logging"
)

// SSMClientAPI defines the interface for AWS SSM Parameter Store
// operations. This allows for mocking in tests.
type SSMClientAPI interface {
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	DescribeParameters(ctx context.Context, params *ssm.DescribeParametersInput, optFns ...func(*ssm.Options)) (*ssm.DescribeParametersOutput, error)
}

// AWSSSMSink writes each batch entry as its own SecureString parameter.
// PutParameter creates or overwrites, so no create_missing toggle is
// needed here.
type AWSSSMSink struct {
	name   string
	client SSMClientAPI
	logger *logging.Logger
	config ssmSinkConfig
}

type ssmSinkConfig struct {
	awsClientConfig
	ParameterPrefix string
	KMSKeyID        string
	Overwrite       bool
}

// SSMSinkOption is a functional option for configuring SSM sinks.
type SSMSinkOption func(*AWSSSMSink)

// WithSSMClient sets a custom SSM client (for testing).
func WithSSMClient(client SSMClientAPI) SSMSinkOption {
	return func(s *AWSSSMSink) {
		s.client = client
	}
}

// NewAWSSSMSink creates an AWS SSM Parameter Store sink.
func NewAWSSSMSink(name string, configMap map[string]interface{}, opts ...SSMSinkOption) (*AWSSSMSink, error) {
	config := ssmSinkConfig{
		awsClientConfig: parseAWSClientConfig(configMap),
		Overwrite:       true,
	}

	if prefix, ok := configMap["parameter_prefix"].(string); ok {
		config.ParameterPrefix = prefix
	}
	if kmsKeyID, ok := configMap["kms_key_id"].(string); ok {
		config.KMSKeyID = kmsKeyID
	}
	if overwrite, ok := configMap["overwrite"].(bool); ok {
		config.Overwrite = overwrite
	}

	s := &AWSSSMSink{
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
		var clientOpts []func(*ssm.Options)
		if config.Endpoint != "" {
			endpoint := config.Endpoint
			clientOpts = append(clientOpts, func(o *ssm.Options) {
				o.BaseEndpoint = &endpoint
			})
		}
		s.client = ssm.NewFromConfig(awsCfg, clientOpts...)
	}

	return s, nil
}

// Name returns the sink name.
func (s *AWSSSMSink) Name() string {
	return s.name
}

// Type returns the sink type.
func (s *AWSSSMSink) Type() string {
	return "aws.ssm"
}

// Write stores each secret as a SecureString parameter under the
// configured prefix, in batch order.
func (s *AWSSSMSink) Write(ctx context.Context, batch Batch) error {
	for _, name := range batch.Names {
		parameterName := s.config.ParameterPrefix + name

		s.logger.Debug("Putting parameter: %s", parameterName)

		input := &ssm.PutParameterInput{
			Name:      aws.String(parameterName),
			Value:     aws.String(batch.Values[name]),
			Type:      types.ParameterTypeSecureString,
			Overwrite: aws.Bool(s.config.Overwrite),
		}
		if s.config.KMSKeyID != "" {
			input.KeyId = aws.String(s.config.KMSKeyID)
		}

		if _, err := s.client.PutParameter(ctx, input); err != nil {
			return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
		}
	}
	return nil
}

// Check describes parameters with a result limit of one to verify
// credentials without touching any values.
func (s *AWSSSMSink) Check(ctx context.Context) error {
	input := &ssm.DescribeParametersInput{
		MaxResults: aws.Int32(1),
	}

	if _, err := s.client.DescribeParameters(ctx, input); err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "check", Err: err}
	}
	return nil
}

// NewAWSSSMSinkFactory creates an AWS SSM Parameter Store sink factory.
func NewAWSSSMSinkFactory(name string, config map[string]interface{}) (Sink, error) {
	return NewAWSSSMSink(name, config)
}
