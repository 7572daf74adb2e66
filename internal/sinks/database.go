package sinks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/template"

	// SQL drivers
	_ "github.com/go-sql-driver/mysql" // MySQL
	_ "github.com/lib/pq"              // PostgreSQL

	dserrors "github.com/systmms/secretseed/internal/errors"
	"github.com/systmms/secretseed/internal/logging"
)

// driverMap maps config database types onto registered driver names.
var driverMap = map[string]string{
	"postgresql": "postgres",
	"postgres":   "postgres",
	"mysql":      "mysql",
	"mariadb":    "mysql",
}

// DatabaseSink applies configured SQL statements with the generated
// values, typically ALTER ROLE or ALTER USER to set the password that
// was just provisioned elsewhere. Statements are text templates over
// {{.Name}} and {{.Value}}:
//
//	statements:
//	  db_password: ALTER ROLE app_user WITH PASSWORD '{{.Value}}'
//
// Values are interpolated directly because DDL cannot take bind
// parameters; the generated character set contains no quote or escape
// characters, so this stays injection-safe for generated values.
type DatabaseSink struct {
	name   string
	logger *logging.Logger
	config databaseSinkConfig
	db     *sql.DB // injected for tests; nil means open per call
}

type databaseSinkConfig struct {
	Driver     string
	DSN        string
	Host       string
	Port       string
	Database   string
	Username   string
	Password   string
	SSLMode    string
	Statements map[string]*template.Template
}

// DatabaseSinkOption is a functional option for configuring database sinks.
type DatabaseSinkOption func(*DatabaseSink)

// WithDB sets an already-open database handle (for testing).
func WithDB(db *sql.DB) DatabaseSinkOption {
	return func(s *DatabaseSink) {
		s.db = db
	}
}

// NewDatabaseSink creates a database sink.
func NewDatabaseSink(name string, configMap map[string]interface{}, opts ...DatabaseSinkOption) (*DatabaseSink, error) {
	var config databaseSinkConfig

	dbType, _ := configMap["driver"].(string)
	driver, ok := driverMap[strings.ToLower(dbType)]
	if !ok {
		return nil, dserrors.ConfigError{
			Field:      "driver",
			Value:      dbType,
			Message:    fmt.Sprintf("unsupported database driver for sink %q", name),
			Suggestion: "Supported drivers: postgres, mysql",
		}
	}
	config.Driver = driver

	if dsn, ok := configMap["dsn"].(string); ok {
		config.DSN = dsn
	}
	if host, ok := configMap["host"].(string); ok {
		config.Host = host
	}
	if port, ok := configMap["port"].(string); ok {
		config.Port = port
	}
	if database, ok := configMap["database"].(string); ok {
		config.Database = database
	}
	if username, ok := configMap["username"].(string); ok {
		config.Username = username
	}
	if password, ok := configMap["password"].(string); ok {
		config.Password = password
	}
	if sslMode, ok := configMap["sslmode"].(string); ok {
		config.SSLMode = sslMode
	}

	statements, _ := configMap["statements"].(map[string]interface{})
	if len(statements) == 0 {
		return nil, dserrors.ConfigError{
			Field:      "statements",
			Message:    fmt.Sprintf("at least one statement is required for sink %q", name),
			Suggestion: "Map secret names to SQL statements, e.g. db_password: ALTER ROLE app WITH PASSWORD '{{.Value}}'",
		}
	}
	config.Statements = make(map[string]*template.Template, len(statements))
	for secretName, raw := range statements {
		text, ok := raw.(string)
		if !ok {
			return nil, dserrors.ConfigError{
				Field:   "statements",
				Value:   secretName,
				Message: fmt.Sprintf("statement for %q must be a string", secretName),
			}
		}
		tmpl, err := template.New(secretName).Parse(text)
		if err != nil {
			return nil, dserrors.ConfigError{
				Field:      "statements",
				Value:      secretName,
				Message:    fmt.Sprintf("invalid statement template: %v", err),
				Suggestion: "Statements are Go text templates over {{.Name}} and {{.Value}}",
			}
		}
		config.Statements[secretName] = tmpl
	}

	if config.DSN == "" {
		dsn, err := buildDSN(driver, config)
		if err != nil {
			return nil, err
		}
		config.DSN = dsn
	}

	s := &DatabaseSink{
		name:   name,
		logger: logging.New(false, false),
		config: config,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// buildDSN creates a driver connection string from the individual
// connection fields.
func buildDSN(driver string, config databaseSinkConfig) (string, error) {
	if config.Host == "" || config.Database == "" || config.Username == "" {
		return "", dserrors.ConfigError{
			Field:      "dsn",
			Message:    "either dsn or host, database, and username are required",
			Suggestion: "Provide a full connection string or the individual connection fields",
		}
	}

	switch driver {
	case "postgres":
		port := config.Port
		if port == "" {
			port = "5432"
		}
		parts := []string{
			fmt.Sprintf("host=%s", config.Host),
			fmt.Sprintf("port=%s", port),
			fmt.Sprintf("dbname=%s", config.Database),
			fmt.Sprintf("user=%s", config.Username),
		}
		if config.Password != "" {
			parts = append(parts, fmt.Sprintf("password=%s", config.Password))
		}
		sslMode := config.SSLMode
		if sslMode == "" {
			sslMode = "require"
		}
		parts = append(parts, fmt.Sprintf("sslmode=%s", sslMode))
		return strings.Join(parts, " "), nil

	case "mysql":
		port := config.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			config.Username, config.Password, config.Host, port, config.Database), nil

	default:
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
}

// Name returns the sink name.
func (s *DatabaseSink) Name() string {
	return s.name
}

// Type returns the sink type.
func (s *DatabaseSink) Type() string {
	return "database"
}

// Write executes the configured statement for each batch entry inside a
// single transaction. Batch entries without a statement are skipped, so
// a database sink can consume a subset of the run.
func (s *DatabaseSink) Write(ctx context.Context, batch Batch) error {
	return s.withDB(ctx, "write", func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
		}
		defer func() { _ = tx.Rollback() }()

		for _, name := range batch.Names {
			tmpl, ok := s.config.Statements[name]
			if !ok {
				s.logger.Debug("No statement for %s, skipping", name)
				continue
			}

			statement, err := renderStatement(tmpl, name, batch.Values[name])
			if err != nil {
				return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
			}

			if _, err := tx.ExecContext(ctx, statement); err != nil {
				return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
			}
		}

		if err := tx.Commit(); err != nil {
			return dserrors.SinkError{Sink: s.name, Operation: "write", Err: err}
		}
		return nil
	})
}

// Check opens a connection and pings the database.
func (s *DatabaseSink) Check(ctx context.Context) error {
	return s.withDB(ctx, "check", func(db *sql.DB) error {
		return nil
	})
}

// withDB runs fn against the injected handle, or opens a fresh
// connection and pings it first.
func (s *DatabaseSink) withDB(ctx context.Context, op string, fn func(*sql.DB) error) error {
	if s.db != nil {
		return fn(s.db)
	}

	db, err := sql.Open(s.config.Driver, s.config.DSN)
	if err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: op, Err: err}
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return dserrors.SinkError{Sink: s.name, Operation: op, Err: err}
	}

	return fn(db)
}

func renderStatement(tmpl *template.Template, name, value string) (string, error) {
	var buf strings.Builder
	data := map[string]string{
		"Name":  name,
		"Value": value,
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering statement for %q: %w", name, err)
	}
	return buf.String(), nil
}

// NewDatabaseSinkFactory creates a database sink factory.
func NewDatabaseSinkFactory(name string, config map[string]interface{}) (Sink, error) {
	return NewDatabaseSink(name, config)
}
