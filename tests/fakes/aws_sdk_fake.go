package fakes

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// SecretsManagerAPI defines the interface for AWS Secrets Manager operations
// This matches the subset of methods used by AWSSecretsManagerSink
type SecretsManagerAPI interface {
	UpdateSecret(ctx context.Context, params *secretsmanager.UpdateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
}

// SSMAPI defines the interface for AWS SSM Parameter Store operations
// This matches the subset of methods used by AWSSSMSink
type SSMAPI interface {
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	DescribeParameters(ctx context.Context, params *ssm.DescribeParametersInput, optFns ...func(*ssm.Options)) (*ssm.DescribeParametersOutput, error)
}

// FakeSecretsManagerClient is a mock implementation of SecretsManagerAPI
type FakeSecretsManagerClient struct {
	// Secrets maps secret names to their current string value
	Secrets map[string]*SecretData
	// Errors maps secret names to errors to return
	Errors map[string]error
	// UpdateCalls records every UpdateSecret invocation in order
	UpdateCalls []*secretsmanager.UpdateSecretInput
	// CreateCalls records every CreateSecret invocation in order
	CreateCalls []*secretsmanager.CreateSecretInput
	// UpdateSecretFunc allows custom behavior for UpdateSecret
	UpdateSecretFunc func(ctx context.Context, params *secretsmanager.UpdateSecretInput) (*secretsmanager.UpdateSecretOutput, error)
	// CreateSecretFunc allows custom behavior for CreateSecret
	CreateSecretFunc func(ctx context.Context, params *secretsmanager.CreateSecretInput) (*secretsmanager.CreateSecretOutput, error)
	// DescribeSecretFunc allows custom behavior for DescribeSecret
	DescribeSecretFunc func(ctx context.Context, params *secretsmanager.DescribeSecretInput) (*secretsmanager.DescribeSecretOutput, error)
}

// SecretData holds the data for a mock secret
type SecretData struct {
	SecretString *string
	VersionId    *string
	Description  *string
	KmsKeyId     *string
	CreatedDate  *time.Time
}

// NewFakeSecretsManagerClient creates a new mock Secrets Manager client
func NewFakeSecretsManagerClient() *FakeSecretsManagerClient {
	return &FakeSecretsManagerClient{
		Secrets: make(map[string]*SecretData),
		Errors:  make(map[string]error),
	}
}

// AddSecret registers an existing empty secret so UpdateSecret succeeds
func (f *FakeSecretsManagerClient) AddSecret(name string) {
	now := time.Now()
	f.Secrets[name] = &SecretData{
		SecretString: aws.String("{}"),
		VersionId:    aws.String("v0-initial"),
		CreatedDate:  &now,
	}
}

// AddSecretString registers an existing secret with a current value
func (f *FakeSecretsManagerClient) AddSecretString(name, value string) {
	now := time.Now()
	f.Secrets[name] = &SecretData{
		SecretString: aws.String(value),
		VersionId:    aws.String("v0-initial"),
		CreatedDate:  &now,
	}
}

// AddError configures the mock to return an error for a specific secret
func (f *FakeSecretsManagerClient) AddError(name string, err error) {
	f.Errors[name] = err
}

// CurrentValue returns the stored string value of a secret, or ""
func (f *FakeSecretsManagerClient) CurrentValue(name string) string {
	data, exists := f.Secrets[name]
	if !exists || data.SecretString == nil {
		return ""
	}
	return *data.SecretString
}

// UpdateSecret mocks the UpdateSecret operation
func (f *FakeSecretsManagerClient) UpdateSecret(ctx context.Context, params *secretsmanager.UpdateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretOutput, error) {
	if f.UpdateSecretFunc != nil {
		return f.UpdateSecretFunc(ctx, params)
	}

	secretName := aws.ToString(params.SecretId)
	f.UpdateCalls = append(f.UpdateCalls, params)

	// Check for configured errors
	if err, exists := f.Errors[secretName]; exists {
		return nil, err
	}

	// Check if secret exists
	data, exists := f.Secrets[secretName]
	if !exists {
		return nil, &types.ResourceNotFoundException{
			Message: aws.String(fmt.Sprintf("Secrets Manager can't find the specified secret: %s", secretName)),
		}
	}

	data.SecretString = params.SecretString
	if params.KmsKeyId != nil {
		data.KmsKeyId = params.KmsKeyId
	}
	versionId := fmt.Sprintf("v%d-update", len(f.UpdateCalls))
	data.VersionId = aws.String(versionId)

	return &secretsmanager.UpdateSecretOutput{
		ARN:       aws.String(fmt.Sprintf("arn:aws:secretsmanager:us-east-1:123456789012:secret:%s", secretName)),
		Name:      params.SecretId,
		VersionId: aws.String(versionId),
	}, nil
}

// CreateSecret mocks the CreateSecret operation
func (f *FakeSecretsManagerClient) CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	if f.CreateSecretFunc != nil {
		return f.CreateSecretFunc(ctx, params)
	}

	secretName := aws.ToString(params.Name)
	f.CreateCalls = append(f.CreateCalls, params)

	// Check for configured errors
	if err, exists := f.Errors[secretName]; exists {
		return nil, err
	}

	if _, exists := f.Secrets[secretName]; exists {
		return nil, &types.ResourceExistsException{
			Message: aws.String(fmt.Sprintf("The operation failed because the secret %s already exists", secretName)),
		}
	}

	now := time.Now()
	f.Secrets[secretName] = &SecretData{
		SecretString: params.SecretString,
		VersionId:    aws.String("v1-create"),
		Description:  params.Description,
		KmsKeyId:     params.KmsKeyId,
		CreatedDate:  &now,
	}

	return &secretsmanager.CreateSecretOutput{
		ARN:       aws.String(fmt.Sprintf("arn:aws:secretsmanager:us-east-1:123456789012:secret:%s", secretName)),
		Name:      params.Name,
		VersionId: aws.String("v1-create"),
	}, nil
}

// DescribeSecret mocks the DescribeSecret operation
func (f *FakeSecretsManagerClient) DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error) {
	if f.DescribeSecretFunc != nil {
		return f.DescribeSecretFunc(ctx, params)
	}

	secretName := aws.ToString(params.SecretId)

	// Check for configured errors
	if err, exists := f.Errors[secretName]; exists {
		return nil, err
	}

	data, exists := f.Secrets[secretName]
	if !exists {
		return nil, &types.ResourceNotFoundException{
			Message: aws.String(fmt.Sprintf("Secrets Manager can't find the specified secret: %s", secretName)),
		}
	}

	return &secretsmanager.DescribeSecretOutput{
		ARN:         aws.String(fmt.Sprintf("arn:aws:secretsmanager:us-east-1:123456789012:secret:%s", secretName)),
		Name:        params.SecretId,
		Description: data.Description,
		KmsKeyId:    data.KmsKeyId,
		CreatedDate: data.CreatedDate,
	}, nil
}

// FakeSSMClient is a mock implementation of SSMAPI
type FakeSSMClient struct {
	// Parameters maps parameter names to their current value
	Parameters map[string]string
	// Versions maps parameter names to their current version
	Versions map[string]int64
	// Errors maps parameter names to errors to return
	Errors map[string]error
	// PutCalls records every PutParameter invocation in order
	PutCalls []*ssm.PutParameterInput
	// PutParameterFunc allows custom behavior for PutParameter
	PutParameterFunc func(ctx context.Context, params *ssm.PutParameterInput) (*ssm.PutParameterOutput, error)
	// DescribeParametersFunc allows custom behavior for DescribeParameters
	DescribeParametersFunc func(ctx context.Context, params *ssm.DescribeParametersInput) (*ssm.DescribeParametersOutput, error)
}

// NewFakeSSMClient creates a new mock SSM Parameter Store client
func NewFakeSSMClient() *FakeSSMClient {
	return &FakeSSMClient{
		Parameters: make(map[string]string),
		Versions:   make(map[string]int64),
		Errors:     make(map[string]error),
	}
}

// AddParameter registers an existing parameter with a value
func (f *FakeSSMClient) AddParameter(name, value string) {
	f.Parameters[name] = value
	f.Versions[name] = 1
}

// AddError configures the mock to return an error for a specific parameter
func (f *FakeSSMClient) AddError(name string, err error) {
	f.Errors[name] = err
}

// PutParameter mocks the PutParameter operation
func (f *FakeSSMClient) PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	if f.PutParameterFunc != nil {
		return f.PutParameterFunc(ctx, params)
	}

	paramName := aws.ToString(params.Name)
	f.PutCalls = append(f.PutCalls, params)

	// Check for configured errors
	if err, exists := f.Errors[paramName]; exists {
		return nil, err
	}

	_, exists := f.Parameters[paramName]
	if exists && !aws.ToBool(params.Overwrite) {
		return nil, &ssmtypes.ParameterAlreadyExists{
			Message: aws.String(fmt.Sprintf("The parameter %s already exists", paramName)),
		}
	}

	f.Parameters[paramName] = aws.ToString(params.Value)
	f.Versions[paramName]++

	return &ssm.PutParameterOutput{
		Version: f.Versions[paramName],
		Tier:    ssmtypes.ParameterTierStandard,
	}, nil
}

// DescribeParameters mocks the DescribeParameters operation
func (f *FakeSSMClient) DescribeParameters(ctx context.Context, params *ssm.DescribeParametersInput, optFns ...func(*ssm.Options)) (*ssm.DescribeParametersOutput, error) {
	if f.DescribeParametersFunc != nil {
		return f.DescribeParametersFunc(ctx, params)
	}

	// Check for a wildcard error keyed by empty name
	if err, exists := f.Errors[""]; exists {
		return nil, err
	}

	var descs []ssmtypes.ParameterMetadata
	for name := range f.Parameters {
		descs = append(descs, ssmtypes.ParameterMetadata{
			Name: aws.String(name),
			Type: ssmtypes.ParameterTypeSecureString,
		})
	}

	return &ssm.DescribeParametersOutput{Parameters: descs}, nil
}

// AWS error helpers

// AWSAccessDeniedError creates a mock AWS access denied error
func AWSAccessDeniedError(operation string) error {
	return fmt.Errorf("operation error Secrets Manager: %s, AccessDeniedException: not authorized", operation)
}

// AWSThrottlingError creates a mock AWS throttling error
func AWSThrottlingError() error {
	return fmt.Errorf("ThrottlingException: Rate exceeded")
}
