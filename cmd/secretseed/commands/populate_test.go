package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/secretseed/internal/config"
	"github.com/systmms/secretseed/internal/logging"
)

func writeTestConfig(t *testing.T, content string) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "secretseed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return &config.Config{
		Path:   path,
		Logger: logging.New(false, true),
	}
}

func TestPopulateCommand_FileSink(t *testing.T) {
	outDir := t.TempDir()
	outPath := filepath.Join(outDir, "secrets.json")

	cfg := writeTestConfig(t, `
version: 1
defaults:
  length: 24
sinks:
  local:
    type: file
    path: `+outPath+`
secrets:
  - name: db_password
    length: 16
    exclude_punctuation: true
    require_each_included_type: true
  - name: session_key
  - name: api_credentials
    secret_string_template: '{"username":"admin"}'
    generate_string_key: password
`)

	cmd := NewPopulateCommand(cfg)
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var doc map[string]string
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc, 3)

	// Per-secret policy applied
	assert.Len(t, doc["db_password"], 16)
	for _, r := range doc["db_password"] {
		assert.True(t, (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			"unexpected character %q in punctuation-free value", r)
	}

	// Default length from the config applies where unset
	assert.Len(t, doc["session_key"], 24)

	// Template merge produced a JSON document
	var merged map[string]string
	require.NoError(t, json.Unmarshal([]byte(doc["api_credentials"]), &merged))
	assert.Equal(t, "admin", merged["username"])
	assert.Len(t, merged["password"], 24)
}

func TestPopulateCommand_SecretRouting(t *testing.T) {
	outDir := t.TempDir()
	allPath := filepath.Join(outDir, "all.json")
	dbPath := filepath.Join(outDir, "db.json")

	cfg := writeTestConfig(t, `
version: 1
sinks:
  everything:
    type: file
    path: `+allPath+`
  db_only:
    type: file
    path: `+dbPath+`
secrets:
  - name: db_password
    sinks: [db_only, everything]
  - name: api_key
    sinks: [everything]
`)

	cmd := NewPopulateCommand(cfg)
	require.NoError(t, cmd.Execute())

	var all, db map[string]string

	data, err := os.ReadFile(allPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &all))
	assert.Len(t, all, 2)

	data, err = os.ReadFile(dbPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &db))
	require.Len(t, db, 1)

	// Both sinks see the same generated value for the shared secret
	assert.Equal(t, all["db_password"], db["db_password"])
}

func TestPopulateCommand_GenerationFailureWritesNothing(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "secrets.json")

	cfg := writeTestConfig(t, `
version: 1
sinks:
  local:
    type: file
    path: `+outPath+`
secrets:
  - name: good_key
  - name: impossible
    exclude_lowercase: true
    exclude_uppercase: true
    exclude_numbers: true
    exclude_punctuation: true
`)

	cmd := NewPopulateCommand(cfg)
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alphabet")

	// The failed batch never reached the sink
	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "no file should be written on generation failure")
}

func TestPopulateCommand_DryRun(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "secrets.json")

	cfg := writeTestConfig(t, `
version: 1
sinks:
  local:
    type: file
    path: `+outPath+`
secrets:
  - name: db_password
    length: 16
`)

	cmd := NewPopulateCommand(cfg)
	output, err := captureStdout(t, func() error {
		cmd.SetArgs([]string{"--dry-run"})
		return cmd.Execute()
	})
	require.NoError(t, err)

	// The plan is reported with the value redacted
	assert.Contains(t, output, "db_password")
	assert.Contains(t, output, "16")
	assert.Contains(t, output, "[REDACTED]")
	assert.Contains(t, output, "local")

	// And nothing was written
	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPopulateCommand_NoSinksDefined(t *testing.T) {
	cfg := writeTestConfig(t, `
version: 1
secrets:
  - name: db_password
`)

	cmd := NewPopulateCommand(cfg)
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sinks defined")
}

func TestPopulateCommand_DryRunWithoutSinks(t *testing.T) {
	cfg := writeTestConfig(t, `
version: 1
secrets:
  - name: db_password
`)

	cmd := NewPopulateCommand(cfg)
	output, err := captureStdout(t, func() error {
		cmd.SetArgs([]string{"--dry-run"})
		return cmd.Execute()
	})
	require.NoError(t, err)
	assert.Contains(t, output, "(none)")
}

func TestPopulateCommand_SchemaViolation(t *testing.T) {
	cfg := writeTestConfig(t, `
version: 1
secrets:
  - name: db_password
    length: not-a-number
`)

	cmd := NewPopulateCommand(cfg)
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestPopulateCommand_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "secrets.json")
	metricsPath := filepath.Join(dir, "secretseed.prom")

	cfg := writeTestConfig(t, `
version: 1
sinks:
  local:
    type: file
    path: `+outPath+`
secrets:
  - name: db_password
`)
	cfg.MetricsFile = metricsPath

	cmd := NewPopulateCommand(cfg)
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "secretseed_secrets_generated_total")
	assert.Contains(t, content, "secretseed_sink_writes_total")
	assert.Contains(t, content, "secretseed_last_run_timestamp_seconds")
}

// captureStdout runs fn with os.Stdout redirected and returns what it
// printed along with fn's error.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)

	return buf.String(), runErr
}
