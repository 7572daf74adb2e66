package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/secretseed/internal/config"
)

const exampleConfig = `version: 1

defaults:
  length: 32

# Named sinks. Everything besides 'type' is sink-specific.
sinks:
  # AWS Secrets Manager: the whole batch lands as one JSON document
  aws_sm:
    type: aws.secretsmanager
    region: us-east-1
    secret_id: myapp/generated
    create_missing: true

  # AWS SSM Parameter Store: one SecureString parameter per secret
  # aws_ssm:
  #   type: aws.ssm
  #   region: us-east-1
  #   parameter_prefix: /myapp/

  # GCP Secret Manager: one secret per key
  # gcp_sm:
  #   type: gcp.secretmanager
  #   project_id: my-project
  #   create_missing: true

  # Azure Key Vault
  # azure_kv:
  #   type: azure.keyvault
  #   vault_url: https://my-vault.vault.azure.net

  # Local file for development (git-ignore it!)
  # local:
  #   type: file
  #   path: .secrets.json
  #   format: json

# Secrets to generate. Every run replaces all of them.
secrets:
  - name: db_password
    length: 24
    exclude_punctuation: true
    require_each_included_type: true

  - name: session_key
    length: 64
    exclude_characters: "\"'\\"

  # Merge the generated value into a JSON template
  - name: api_credentials
    secret_string_template: '{"username":"admin"}'
    generate_string_key: password

  # Route a secret to a subset of sinks
  # - name: cache_token
  #   sinks: [aws_sm]
`

func NewInitCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new secretseed configuration",
		Long:  "Create a secretseed.yaml file with example sinks and secrets",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Refuse to clobber an existing config
			if _, err := os.Stat(cfg.Path); err == nil {
				return fmt.Errorf("%s already exists. Remove it first if you want to reinitialize", cfg.Path)
			}

			if err := os.WriteFile(cfg.Path, []byte(exampleConfig), 0o644); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cfg.Logger.Info("Created %s with example sinks and secrets", cfg.Path)
			cfg.Logger.Info("Next steps:")
			cfg.Logger.Info("  1. Edit %s to configure your sinks and secrets", cfg.Path)
			cfg.Logger.Info("  2. Run 'secretseed validate' to check the configuration")
			cfg.Logger.Info("  3. Run 'secretseed doctor' to verify sink connectivity")
			cfg.Logger.Info("  4. Run 'secretseed populate --dry-run' to preview the run")

			return nil
		},
	}

	return cmd
}
