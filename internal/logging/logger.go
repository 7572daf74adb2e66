// Package logging provides the CLI logger and the Secret type that keeps
// generated values out of log output.
package logging

import (
	"fmt"
	"os"
	"strings"
)

// Logger writes human-readable status lines to stderr. Stdout stays
// reserved for generated output so the CLI can be piped safely.
type Logger struct {
	debug   bool
	noColor bool
}

// New creates a logger. debug enables Debug lines, noColor strips ANSI
// escapes for non-terminal output.
func New(debug, noColor bool) *Logger {
	return &Logger{
		debug:   debug,
		noColor: noColor,
	}
}

// Info logs a success or progress message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit("✓", "\033[32m", format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit("⚠", "\033[33m", format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit("✗", "\033[31m", format, args...)
}

// Debug logs a message only when debug mode is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.emit("[DEBUG]", "\033[36m", format, args...)
}

func (l *Logger) emit(prefix, color, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.noColor {
		fmt.Fprintf(os.Stderr, "%s %s\n", prefix, msg)
		return
	}
	fmt.Fprintf(os.Stderr, "%s%s\033[0m %s\n", color, prefix, msg)
}

// Secret is a generated value that must never appear in logs. Formatting a
// Secret through %s, %v or %#v always yields the redaction marker; the only
// way to the plaintext is an explicit string conversion at the store write.
type Secret string

// String implements fmt.Stringer with a redacted value.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer so %#v cannot leak either.
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// MarshalJSON keeps the value out of JSON-encoded structures.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// Redact replaces each known secret value occurring in s with the redaction
// marker. Values of three characters or fewer are left alone, replacing
// those would mangle ordinary words.
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if secret != "" && len(secret) > 3 {
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
