package sinks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	dserrors "github.com/systmms/secretseed/internal/errors"
	"github.com/systmms/secretseed/internal/logging"
)

// AzureSecretsClientAPI defines the interface for Azure Key Vault secret
// operations. This allows for mocking in tests. The list pager is
// excluded because its type cannot be constructed outside the SDK;
// Check type-asserts the concrete client instead.
type AzureSecretsClientAPI interface {
	SetSecret(ctx context.Context, name string, parameters azsecrets.SetSecretParameters, options *azsecrets.SetSecretOptions) (azsecrets.SetSecretResponse, error)
}

// AzureKeyVaultSink writes each batch entry as its own Key Vault secret.
// SetSecret creates or updates, so no create_missing toggle is needed.
type AzureKeyVaultSink struct {
	name   string
	client AzureSecretsClientAPI
	logger *logging.Logger
	config azureSinkConfig
}

type azureSinkConfig struct {
	VaultURL           string
	TenantID           string
	ClientID           string
	ClientSecret       string
	UseManagedIdentity bool
	UserAssignedID     string
	NamePrefix         string
}

// AzureSinkOption is a functional option for configuring Azure sinks.
type AzureSinkOption func(*AzureKeyVaultSink)

// WithAzureSecretsClient sets a custom Key Vault client (for testing).
func WithAzureSecretsClient(client AzureSecretsClientAPI) AzureSinkOption {
	return func(s *AzureKeyVaultSink) {
		s.client = client
	}
}

// NewAzureKeyVaultSink creates an Azure Key Vault sink.
func NewAzureKeyVaultSink(name string, configMap map[string]interface{}, opts ...AzureSinkOption) (*AzureKeyVaultSink, error) {
	var config azureSinkConfig

	if vaultURL, ok := configMap["vault_url"].(string); ok {
		config.VaultURL = vaultURL
	}
	if tenantID, ok := configMap["tenant_id"].(string); ok {
		config.TenantID = tenantID
	}
	if clientID, ok := configMap["client_id"].(string); ok {
		config.ClientID = clientID
	}
	if clientSecret, ok := configMap["client_secret"].(string); ok {
		config.ClientSecret = clientSecret
	}
	if useMI, ok := configMap["use_managed_identity"].(bool); ok {
		config.UseManagedIdentity = useMI
	}
	if userAssignedID, ok := configMap["user_assigned_identity_id"].(string); ok {
		config.UserAssignedID = userAssignedID
	}
	if prefix, ok := configMap["name_prefix"].(string); ok {
		config.NamePrefix = prefix
	}

	if config.VaultURL == "" {
		return nil, dserrors.ConfigError{
			Field:      "vault_url",
			Message:    fmt.Sprintf("vault_url is required for sink %q", name),
			Suggestion: "Provide the Key Vault URL (e.g., https://my-vault.vault.azure.net/)",
		}
	}
	if _, err := url.Parse(config.VaultURL); err != nil {
		return nil, dserrors.ConfigError{
			Field:      "vault_url",
			Value:      config.VaultURL,
			Message:    "Invalid vault_url format",
			Suggestion: "Use format: https://vault-name.vault.azure.net/",
		}
	}

	s := &AzureKeyVaultSink{
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
		client, err := createAzureSecretsClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Key Vault client: %w", err)
		}
		s.client = client
	}

	return s, nil
}

func createAzureSecretsClient(config azureSinkConfig) (*azsecrets.Client, error) {
	var cred azcore.TokenCredential
	var err error

	switch {
	case config.UseManagedIdentity && config.UserAssignedID != "":
		cred, err = azidentity.NewManagedIdentityCredential(&azidentity.ManagedIdentityCredentialOptions{
			ID: azidentity.ClientID(config.UserAssignedID),
		})
	case config.UseManagedIdentity:
		cred, err = azidentity.NewManagedIdentityCredential(nil)
	case config.ClientSecret != "":
		cred, err = azidentity.NewClientSecretCredential(config.TenantID, config.ClientID, config.ClientSecret, nil)
	default:
		cred, err = azidentity.NewDefaultAzureCredential(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	return azsecrets.NewClient(config.VaultURL, cred, nil)
}

// Name returns the sink name.
func (s *AzureKeyVaultSink) Name() string {
	return s.name
}

// Type returns the sink type.
func (s *AzureKeyVaultSink) Type() string {
	return "azure.keyvault"
}

// Write sets each secret in batch order. Secret names are sanitized to
// the alphanumerics-and-dashes charset Key Vault requires, so
// "db_password" is stored as "db-password".
func (s *AzureKeyVaultSink) Write(ctx context.Context, batch Batch) error {
	for _, name := range batch.Names {
		secretName := sanitizeAzureSecretName(s.config.NamePrefix + name)

		s.logger.Debug("Setting Key Vault secret: %s", secretName)

		value := batch.Values[name]
		params := azsecrets.SetSecretParameters{
			Value: &value,
		}

		if _, err := s.client.SetSecret(ctx, secretName, params, nil); err != nil {
			return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
		}
	}
	return nil
}

// Check lists one page of secret properties to verify credentials and
// access policy. Only the concrete SDK client supports listing;
// injected test clients pass by default.
func (s *AzureKeyVaultSink) Check(ctx context.Context) error {
	realClient, ok := s.client.(*azsecrets.Client)
	if !ok {
		return nil
	}

	pager := realClient.NewListSecretPropertiesPager(nil)
	if _, err := pager.NextPage(ctx); err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "check", Err: err}
	}
	return nil
}

// NewAzureKeyVaultSinkFactory creates an Azure Key Vault sink factory.
func NewAzureKeyVaultSinkFactory(name string, config map[string]interface{}) (Sink, error) {
	return NewAzureKeyVaultSink(name, config)
}

// sanitizeAzureSecretName maps a secret name onto the charset Key Vault
// accepts. Runs of invalid characters collapse to a single dash.
func sanitizeAzureSecretName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastDash := false
	for _, r := range name {
		valid := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		switch {
		case valid:
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
