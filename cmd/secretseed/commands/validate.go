package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/secretseed/internal/config"
	"github.com/systmms/secretseed/internal/validation"
)

func NewValidateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Check the configuration against the secretseed schema and the
referential rules the schema cannot express (unique secret names,
sink references, supported version).

Exits non-zero when the configuration is invalid, so the command can
gate CI pipelines before a populate run.

Examples:
  secretseed validate
  secretseed validate --config deploy/secretseed.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateFile(cfg.Path); err != nil {
				return err
			}
			if err := cfg.Load(); err != nil {
				return err
			}

			spec := cfg.Spec
			cfg.Logger.Info("✓ Configuration is valid: %d secrets, %d sinks", len(spec.Secrets), len(spec.Sinks))
			return nil
		},
	}

	return cmd
}
