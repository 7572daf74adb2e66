package fakes

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// AzureKeyVaultAPI defines the interface for Azure Key Vault operations
// This matches the subset of methods used by AzureKeyVaultSink
type AzureKeyVaultAPI interface {
	SetSecret(ctx context.Context, name string, parameters azsecrets.SetSecretParameters, options *azsecrets.SetSecretOptions) (azsecrets.SetSecretResponse, error)
}

// FakeAzureSecretsClient is a mock implementation of AzureKeyVaultAPI
type FakeAzureSecretsClient struct {
	// Secrets maps secret names to their current value
	Secrets map[string]string
	// Errors maps secret names to errors to return
	Errors map[string]error
	// SetCalls records the secret names passed to SetSecret in order
	SetCalls []string
	// SetSecretFunc allows custom behavior for SetSecret
	SetSecretFunc func(ctx context.Context, name string, parameters azsecrets.SetSecretParameters) (azsecrets.SetSecretResponse, error)
}

// NewFakeAzureSecretsClient creates a new mock Azure Key Vault client
func NewFakeAzureSecretsClient() *FakeAzureSecretsClient {
	return &FakeAzureSecretsClient{
		Secrets: make(map[string]string),
		Errors:  make(map[string]error),
	}
}

// AddError configures the mock to return an error for a specific secret
func (f *FakeAzureSecretsClient) AddError(name string, err error) {
	f.Errors[name] = err
}

// SetSecret mocks the SetSecret operation
func (f *FakeAzureSecretsClient) SetSecret(ctx context.Context, name string, parameters azsecrets.SetSecretParameters, options *azsecrets.SetSecretOptions) (azsecrets.SetSecretResponse, error) {
	if f.SetSecretFunc != nil {
		return f.SetSecretFunc(ctx, name, parameters)
	}

	f.SetCalls = append(f.SetCalls, name)

	// Check for configured errors
	if err, exists := f.Errors[name]; exists {
		return azsecrets.SetSecretResponse{}, err
	}

	value := ""
	if parameters.Value != nil {
		value = *parameters.Value
	}
	f.Secrets[name] = value

	return azsecrets.SetSecretResponse{
		Secret: azsecrets.Secret{
			ID:    (*azsecrets.ID)(to.Ptr(fmt.Sprintf("https://test-vault.vault.azure.net/secrets/%s/abc123", name))),
			Value: parameters.Value,
		},
	}, nil
}

// Azure error helpers

// AzureForbiddenError creates a mock Azure forbidden error
func AzureForbiddenError() error {
	return &azcore.ResponseError{
		StatusCode:  403,
		ErrorCode:   "Forbidden",
		RawResponse: nil,
	}
}

// AzureUnauthorizedError creates a mock Azure unauthorized error
func AzureUnauthorizedError() error {
	return &azcore.ResponseError{
		StatusCode:  401,
		ErrorCode:   "Unauthorized",
		RawResponse: nil,
	}
}

// AzureThrottledError creates a mock Azure throttled error
func AzureThrottledError() error {
	return &azcore.ResponseError{
		StatusCode:  429,
		ErrorCode:   "TooManyRequests",
		RawResponse: nil,
	}
}
