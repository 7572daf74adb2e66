package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dserrors "github.com/systmms/secretseed/internal/errors"
	"github.com/systmms/secretseed/internal/logging"
)

// FileSink writes the batch to a local file, either as one JSON document
// or as shell-sourceable KEY='value' lines. Writes go through a temp
// file and rename so readers never observe a half-written file, and the
// file is created with mode 0600.
type FileSink struct {
	name   string
	logger *logging.Logger
	config fileSinkConfig
}

type fileSinkConfig struct {
	Path   string
	Format string
}

// NewFileSink creates a file sink.
func NewFileSink(name string, configMap map[string]interface{}) (*FileSink, error) {
	config := fileSinkConfig{
		Format: "json",
	}

	if path, ok := configMap["path"].(string); ok {
		config.Path = path
	}
	if format, ok := configMap["format"].(string); ok && format != "" {
		config.Format = format
	}

	if config.Path == "" {
		return nil, dserrors.ConfigError{
			Field:      "path",
			Message:    fmt.Sprintf("path is required for sink %q", name),
			Suggestion: "Provide the file the batch should be written to",
		}
	}
	if config.Format != "json" && config.Format != "env" {
		return nil, dserrors.ConfigError{
			Field:      "format",
			Value:      config.Format,
			Message:    fmt.Sprintf("unsupported format for sink %q", name),
			Suggestion: "Supported formats: json, env",
		}
	}

	return &FileSink{
		name:   name,
		logger: logging.New(false, false),
		config: config,
	}, nil
}

// Name returns the sink name.
func (s *FileSink) Name() string {
	return s.name
}

// Type returns the sink type.
func (s *FileSink) Type() string {
	return "file"
}

// Write renders the batch and replaces the target file atomically.
func (s *FileSink) Write(ctx context.Context, batch Batch) error {
	if err := ctx.Err(); err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
	}

	content, err := s.render(batch)
	if err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
	}

	s.logger.Debug("Writing %s file: %s", s.config.Format, s.config.Path)

	if err := writeFileAtomic(s.config.Path, content); err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
	}
	return nil
}

// Check verifies the target directory exists and is writable.
func (s *FileSink) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "check", Err: err}
	}

	dir := filepath.Dir(s.config.Path)
	info, err := os.Stat(dir)
	if err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: "check", Err: err}
	}
	if !info.IsDir() {
		return dserrors.SinkError{
			Sink:      s.name,
			Operation: "check",
			Err:       fmt.Errorf("%s is not a directory", dir),
		}
	}
	return nil
}

func (s *FileSink) render(batch Batch) ([]byte, error) {
	switch s.config.Format {
	case "env":
		var b strings.Builder
		for _, name := range batch.Names {
			// POSIX single-quote escaping; the quote itself cannot be
			// generated but may arrive through a template.
			value := strings.ReplaceAll(batch.Values[name], "'", `'\''`)
			fmt.Fprintf(&b, "%s='%s'\n", name, value)
		}
		return []byte(b.String()), nil

	default:
		doc := make(map[string]string, batch.Len())
		for _, name := range batch.Names {
			doc[name] = batch.Values[name]
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding batch: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// NewFileSinkFactory creates a file sink factory.
func NewFileSinkFactory(name string, config map[string]interface{}) (Sink, error) {
	return NewFileSink(name, config)
}

// writeFileAtomic writes data to a temp file in the target directory,
// sets 0600, and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
