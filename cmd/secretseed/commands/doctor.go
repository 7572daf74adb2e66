package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/secretseed/internal/config"
	"github.com/systmms/secretseed/internal/sinks"
	"github.com/systmms/secretseed/internal/validation"
)

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	var (
		verbose bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and sink connectivity",
		Long: `Verify that secretseed is ready for a populate run.

This command checks:
- Configuration file validity (schema and referential rules)
- Entropy source availability
- Per-sink connectivity and credentials, without writing any secret

Exits non-zero when any check fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Configuration
			cfg.Logger.Info("Checking secretseed configuration...")
			if err := validation.ValidateFile(cfg.Path); err != nil {
				cfg.Logger.Error("Configuration error: %v", err)
				return fmt.Errorf("failed to validate config: %w", err)
			}
			if err := cfg.Load(); err != nil {
				cfg.Logger.Error("Configuration error: %v", err)
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.Logger.Info("✓ Configuration loaded successfully")

			// Entropy source
			if err := checkEntropySource(); err != nil {
				cfg.Logger.Error("Entropy source error: %v", err)
				return err
			}
			cfg.Logger.Info("✓ Entropy source is readable")

			// Sinks
			results := checkSinks(cmd.Context(), cfg, timeout)
			displayHealthResults(results, verbose)

			healthy := 0
			for _, result := range results {
				if result.Status == "healthy" {
					healthy++
				}
			}

			fmt.Printf("\nSummary: %d/%d sinks healthy\n", healthy, len(results))
			if healthy < len(results) {
				return fmt.Errorf("some sinks are not healthy")
			}

			cfg.Logger.Info("✓ Ready to populate!")
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show suggestions for failing sinks")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Per-sink probe timeout")

	return cmd
}

// SinkHealth represents the probe result for one configured sink
type SinkHealth struct {
	Name        string
	Type        string
	Status      string // healthy, error
	Error       string
	Message     string
	Suggestions []string
}

// checkSinks probes every configured sink without writing any values
func checkSinks(ctx context.Context, cfg *config.Config, timeout time.Duration) []SinkHealth {
	registry := sinks.NewRegistry()
	results := make([]SinkHealth, 0, len(cfg.Spec.Sinks))

	for _, name := range cfg.Spec.SinkNames() {
		sinkConfig := cfg.Spec.Sinks[name]
		health := SinkHealth{
			Name: name,
			Type: sinkConfig.Type,
		}

		sink, err := registry.CreateSink(name, sinkConfig)
		if err != nil {
			health.Status = "error"
			health.Error = err.Error()
			health.Suggestions = sinkSuggestions(sinkConfig.Type, err)
			results = append(results, health)
			continue
		}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		err = sink.Check(probeCtx)
		cancel()

		if err != nil {
			health.Status = "error"
			health.Error = err.Error()
			health.Suggestions = sinkSuggestions(sinkConfig.Type, err)
		} else {
			health.Status = "healthy"
			health.Message = "Sink is ready"
		}

		results = append(results, health)
	}

	return results
}

// checkEntropySource reads a few bytes from the CSPRNG so a broken or
// exhausted source fails loudly here rather than mid-generation.
func checkEntropySource() error {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("cannot read from crypto/rand: %w", err)
	}
	return nil
}

// displayHealthResults shows sink health in a formatted table
func displayHealthResults(results []SinkHealth, verbose bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "SINK\tTYPE\tSTATUS\tMESSAGE\n")
	_, _ = fmt.Fprintf(w, "----\t----\t------\t-------\n")

	for _, result := range results {
		status := result.Status
		message := result.Message
		if result.Error != "" {
			message = result.Error
		}

		// Add status emoji
		switch result.Status {
		case "healthy":
			status = "✓ " + status
		case "error":
			status = "✗ " + status
		default:
			status = "? " + status
		}

		// Keep multi-line errors on one table row
		message = strings.ReplaceAll(message, "\n", " ")

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			result.Name, result.Type, status, message)
	}

	_ = w.Flush()

	if verbose {
		for _, result := range results {
			if result.Status == "error" && len(result.Suggestions) > 0 {
				fmt.Printf("\n%s (%s) suggestions:\n", result.Name, result.Type)
				for _, suggestion := range result.Suggestions {
					fmt.Printf("  • %s\n", suggestion)
				}
			}
		}
	}
}

// sinkSuggestions returns helpful suggestions for sink errors
func sinkSuggestions(sinkType string, err error) []string {
	suggestions := make([]string, 0)
	errStr := err.Error()

	switch sinkType {
	case "aws.secretsmanager", "aws.ssm":
		suggestions = append(suggestions, "Configure AWS credentials via CLI, env vars, or IAM roles")
		if strings.Contains(errStr, "credentials") || strings.Contains(errStr, "AccessDenied") {
			suggestions = append(suggestions, "Run: aws configure")
			suggestions = append(suggestions, "Verify with: aws sts get-caller-identity")
		}
		if strings.Contains(errStr, "region") {
			suggestions = append(suggestions, "Set AWS_REGION or the sink's region field")
		}
		if strings.Contains(errStr, "ResourceNotFound") {
			suggestions = append(suggestions, "Check the secret_id, or set create_missing: true")
		}

	case "gcp.secretmanager":
		suggestions = append(suggestions, "Run 'gcloud auth application-default login' or set service_account_key_path")
		if strings.Contains(errStr, "PermissionDenied") {
			suggestions = append(suggestions, "Grant roles/secretmanager.admin to the caller")
		}

	case "azure.keyvault":
		suggestions = append(suggestions, "Authenticate with 'az login' or configure a service principal")
		if strings.Contains(errStr, "Forbidden") {
			suggestions = append(suggestions, "Check the Key Vault access policy for secret set permission")
		}

	case "akeyless":
		suggestions = append(suggestions, "Check access_id and auth.access_key for the Akeyless gateway")

	case "keyring":
		suggestions = append(suggestions, "Ensure a keyring daemon is available (Secret Service on Linux)")

	case "database":
		suggestions = append(suggestions, "Check the dsn and that the admin account can reach the database")

	case "file":
		suggestions = append(suggestions, "Check that the target directory exists and is writable")

	default:
		suggestions = append(suggestions, "Verify the sink configuration in secretseed.yaml")
	}

	return suggestions
}
