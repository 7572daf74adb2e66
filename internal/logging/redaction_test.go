package logging_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/secretseed/internal/logging"
)

// captureStderr captures stderr output for testing
func captureStderr(fn func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// TestGeneratedValueRedactedAtInfoLevel verifies generated values are
// redacted in Info-level logs
func TestGeneratedValueRedactedAtInfoLevel(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(false, true) // no debug, no color

	generated := "Xk2#mQ9$vL7&wP4!"
	secret := logging.Secret(generated)

	output := captureStderr(func() {
		logger.Info("Generated value for db_password: %s", secret)
	})

	assert.Contains(t, output, "[REDACTED]")
	assert.NotContains(t, output, generated, "log must not contain the generated value")
	assert.Contains(t, output, "db_password")
}

// TestGeneratedValueRedactedAtDebugLevel verifies generated values are
// redacted in Debug-level logs
func TestGeneratedValueRedactedAtDebugLevel(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(true, true)

	generated := "debug-generated-value-67890"
	output := captureStderr(func() {
		logger.Debug("Merging into template: %s", logging.Secret(generated))
	})

	assert.Contains(t, output, "[REDACTED]")
	assert.NotContains(t, output, generated)
	assert.Contains(t, output, "[DEBUG]")
}

// TestAllBatchValuesRedacted verifies every value in one log line is redacted
func TestAllBatchValuesRedacted(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(false, true)

	first := "value-one-1234"
	second := "value-two-5678"
	third := "value-three-9012"

	output := captureStderr(func() {
		logger.Info("batch: db=%s api=%s session=%s",
			logging.Secret(first),
			logging.Secret(second),
			logging.Secret(third))
	})

	assert.Equal(t, 3, strings.Count(output, "[REDACTED]"))
	assert.NotContains(t, output, first)
	assert.NotContains(t, output, second)
	assert.NotContains(t, output, third)
}

// TestRedactionSurvivesFormatting verifies redaction regardless of the
// surrounding format string
func TestRedactionSurvivesFormatting(t *testing.T) {
	// Note: Cannot use t.Parallel() because subtests use captureStderr() which modifies global os.Stderr

	tests := []struct {
		name       string
		secret     string
		formatStr  string
		formatArgs []interface{}
	}{
		{
			name:       "string_format",
			secret:     "secret-string-format",
			formatStr:  "Value: %s",
			formatArgs: []interface{}{logging.Secret("secret-string-format")},
		},
		{
			name:       "quoted_format",
			secret:     "secret-quoted",
			formatStr:  "Value: '%s'",
			formatArgs: []interface{}{logging.Secret("secret-quoted")},
		},
		{
			name:       "go_syntax_format",
			secret:     "secret-go-syntax",
			formatStr:  "Value: %#v",
			formatArgs: []interface{}{logging.Secret("secret-go-syntax")},
		},
		{
			name:       "mixed_with_public_data",
			secret:     "secret-multi",
			formatStr:  "Name: %s, Value: %s",
			formatArgs: []interface{}{"api_key", logging.Secret("secret-multi")},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

			logger := logging.New(false, true)

			output := captureStderr(func() {
				logger.Info(tt.formatStr, tt.formatArgs...)
			})

			assert.Contains(t, output, "[REDACTED]")
			assert.NotContains(t, output, tt.secret)
		})
	}
}

// TestRedactionAcrossLogLevels verifies redaction works at all log levels
func TestRedactionAcrossLogLevels(t *testing.T) {
	// Note: Cannot use t.Parallel() because subtests use captureStderr() which modifies global os.Stderr

	generated := "multi-level-value-abc"

	levels := []struct {
		name  string
		debug bool
		logFn func(*logging.Logger, string, ...interface{})
	}{
		{"info", false, (*logging.Logger).Info},
		{"warn", false, (*logging.Logger).Warn},
		{"error", false, (*logging.Logger).Error},
		{"debug", true, (*logging.Logger).Debug},
	}

	for _, tt := range levels {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

			logger := logging.New(tt.debug, true)

			output := captureStderr(func() {
				tt.logFn(logger, "Value: %s", logging.Secret(generated))
			})

			if output != "" { // Debug only logs if debug enabled
				assert.Contains(t, output, "[REDACTED]")
				assert.NotContains(t, output, generated)
			}
		})
	}
}

// TestPublicDataNotRedacted verifies names and counts pass through untouched
func TestPublicDataNotRedacted(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(false, true)

	output := captureStderr(func() {
		logger.Info("Wrote secret %s to sink %s", "db_password", "prod")
	})

	assert.Contains(t, output, "db_password")
	assert.Contains(t, output, "prod")
	assert.NotContains(t, output, "[REDACTED]")
}

// TestColorOutputDisabled verifies logs work correctly without color
func TestColorOutputDisabled(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(false, true)

	output := captureStderr(func() {
		logger.Info("Populated 3 secrets")
	})

	assert.NotContains(t, output, "\033[", "should not contain ANSI codes when color disabled")
	assert.Contains(t, output, "✓")
}

// TestDebugModeDisabled verifies debug logs don't appear when debug is off
func TestDebugModeDisabled(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(false, true)

	output := captureStderr(func() {
		logger.Debug("alphabet length is 78")
	})

	assert.Empty(t, output)
}
