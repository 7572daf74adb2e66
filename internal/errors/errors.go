package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// SinkError represents a failure writing to or probing a secret store sink
type SinkError struct {
	Sink      string
	Operation string
	Err       error
}

func (e SinkError) Error() string {
	msg := fmt.Sprintf("Sink '%s' failed during %s", e.Sink, e.Operation)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	if suggestion := sinkSuggestion(e.Err); suggestion != "" {
		msg += "\n  💡 " + suggestion
	}

	return msg
}

func (e SinkError) Unwrap() error {
	return e.Err
}

// sinkSuggestion returns helpful suggestions based on common store errors
func sinkSuggestion(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()

	// AWS
	if strings.Contains(errStr, "ResourceNotFoundException") {
		return "Verify the secret_id and region, or set create_missing: true to create the secret"
	}
	if strings.Contains(errStr, "AccessDenied") || strings.Contains(errStr, "UnauthorizedOperation") {
		return "Check IAM permissions for secretsmanager:UpdateSecret / ssm:PutParameter"
	}
	if strings.Contains(errStr, "ExpiredToken") || strings.Contains(errStr, "InvalidClientTokenId") {
		return "Refresh your AWS credentials: 'aws configure' or set AWS_PROFILE"
	}
	if strings.Contains(errStr, "ThrottlingException") {
		return "Rate limit exceeded. Wait a moment and run populate again"
	}

	// GCP
	if strings.Contains(errStr, "PermissionDenied") {
		return "Grant roles/secretmanager.admin (or secretVersionAdder) to the caller"
	}
	if strings.Contains(errStr, "could not find default credentials") {
		return "Run 'gcloud auth application-default login' or set service_account_key_path"
	}

	// Azure
	if strings.Contains(errStr, "Forbidden") || strings.Contains(errStr, "ForbiddenByPolicy") {
		return "Check the Key Vault access policy or RBAC role for secret set permission"
	}
	if strings.Contains(errStr, "DefaultAzureCredential") {
		return "Authenticate with 'az login' or configure a service principal"
	}

	// Database
	if strings.Contains(errStr, "password authentication failed") || strings.Contains(errStr, "Access denied for user") {
		return "Check the admin credentials in the sink dsn"
	}

	// Generic
	if strings.Contains(errStr, "timeout") {
		return "The operation timed out. Check your network connection and try again"
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Unable to connect. Check your network and sink configuration"
	}

	return ""
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	// Already a user-friendly error
	if _, ok := err.(UserError); ok {
		return err
	}
	if _, ok := err.(ConfigError); ok {
		return err
	}
	if _, ok := err.(SinkError); ok {
		return err
	}

	// Simplify common technical errors
	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	// Return original error if we can't simplify it
	return err
}
