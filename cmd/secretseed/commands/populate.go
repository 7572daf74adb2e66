package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/secretseed/internal/config"
	dserrors "github.com/systmms/secretseed/internal/errors"
	"github.com/systmms/secretseed/internal/metrics"
	"github.com/systmms/secretseed/internal/secure"
	"github.com/systmms/secretseed/internal/sinks"
	"github.com/systmms/secretseed/internal/validation"
	"github.com/systmms/secretseed/pkg/secretgen"
)

func NewPopulateCommand(cfg *config.Config) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Generate all configured secrets and write them to their sinks",
		Long: `Generate a fresh value for every secret in the configuration and
deliver the results to the configured sinks.

All values are generated before any sink is written, so a generation
failure for any secret aborts the run with nothing written anywhere.
Sink writes then happen in sink-name order; the first write failure
stops the run.

Examples:
  # Seed every configured sink
  secretseed populate

  # Show what would be generated and where it would go, without writing
  secretseed populate --dry-run

  # Drop run metrics for the node_exporter textfile collector
  secretseed populate --metrics-file /var/lib/node_exporter/secretseed.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Schema validation first, so shape problems surface with
			// field paths instead of half-parsed structs
			if err := validation.ValidateFile(cfg.Path); err != nil {
				return err
			}
			if err := cfg.Load(); err != nil {
				return err
			}

			if cfg.MetricsFile != "" {
				metrics.InitMetrics()
			}
			m := metrics.NewRunMetrics()
			defer flushMetrics(cfg, m)

			return runPopulate(cmd.Context(), cfg, m, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate and report without writing any sink")

	return cmd
}

func runPopulate(ctx context.Context, cfg *config.Config, m *metrics.RunMetrics, dryRun bool) error {
	spec := cfg.Spec
	requests := spec.Requests()

	if !dryRun && len(spec.Sinks) == 0 {
		return dserrors.ConfigError{
			Field:      "sinks",
			Message:    "no sinks defined",
			Suggestion: "Define at least one sink under 'sinks:', or use --dry-run / 'secretseed generate'",
		}
	}

	// Phase 1: generate everything. A single failure aborts the whole
	// run before any store has been touched.
	cfg.Logger.Info("Generating %d secret values...", len(requests))
	start := time.Now()

	values, err := secretgen.GenerateBatch(requests)
	if err != nil {
		m.RecordSecretGenerated(metrics.OutcomeError)
		return err
	}
	m.ObserveGenerationDuration(time.Since(start).Seconds())
	for range values {
		m.RecordSecretGenerated(metrics.OutcomeSuccess)
	}

	// Keep the only long-lived copy of the batch sealed while sinks are
	// created and written one by one.
	vault, err := secure.SealValues(values)
	if err != nil {
		return err
	}
	defer vault.Destroy()

	if dryRun {
		return reportDryRun(cfg, spec)
	}

	// Phase 2: deliver. Writes run in sink-name order; each sink gets
	// only the secrets routed to it.
	created, err := sinks.NewRegistry().CreateAll(spec)
	if err != nil {
		return err
	}

	for _, sinkName := range spec.SinkNames() {
		names := secretsForSink(spec, sinkName)
		if len(names) == 0 {
			cfg.Logger.Debug("Sink %s has no secrets routed to it, skipping", sinkName)
			continue
		}

		sink := created[sinkName]
		opened, err := vault.OpenValues()
		if err != nil {
			return err
		}

		err = sink.Write(ctx, sinks.NewBatch(names, opened))
		if err != nil {
			m.RecordSinkWrite(sink.Type(), metrics.OutcomeError)
			return err
		}
		m.RecordSinkWrite(sink.Type(), metrics.OutcomeSuccess)
		cfg.Logger.Info("Wrote %d secrets to sink %s (%s)", len(names), sinkName, sink.Type())
	}

	cfg.Logger.Info("✓ Populate complete: %d secrets, %d sinks", len(requests), len(spec.Sinks))
	return nil
}

// secretsForSink returns the secret names routed to one sink, in
// configuration order.
func secretsForSink(spec *config.Spec, sinkName string) []string {
	var names []string
	for _, secret := range spec.Secrets {
		for _, target := range spec.SinksFor(secret) {
			if target == sinkName {
				names = append(names, secret.Name)
				break
			}
		}
	}
	return names
}

// reportDryRun prints the plan table. Values stay sealed in the vault
// and are never rendered.
func reportDryRun(cfg *config.Config, spec *config.Spec) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "SECRET\tLENGTH\tVALUE\tSINKS\n")
	_, _ = fmt.Fprintf(w, "------\t------\t-----\t-----\n")

	for _, secret := range spec.Secrets {
		length := secret.Length
		if length == 0 {
			length = spec.Defaults.Length
		}
		if length == 0 {
			length = secretgen.DefaultLength
		}

		targets := spec.SinksFor(secret)
		sinkList := strings.Join(targets, ", ")
		if sinkList == "" {
			sinkList = "(none)"
		}

		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", secret.Name, length, "[REDACTED]", sinkList)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	cfg.Logger.Info("Dry run: %d secrets generated, nothing written", len(spec.Secrets))
	return nil
}

func flushMetrics(cfg *config.Config, m *metrics.RunMetrics) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		cfg.Logger.Warn("Failed to write metrics file: %v", err)
	}
}
