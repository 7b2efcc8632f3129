package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-secure-vault/internal/config"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/migrations"
)

// Driver names registered with database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// DB is a database handle bound to one dialect: it knows the placeholder
// format for its queries and how to classify its driver errors.
type DB struct {
	*sql.DB
	driver             string
	builder            sq.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// NewDB wraps an open connection. driver selects the placeholder format and
// the error classifier.
func NewDB(conn *sql.DB, driver string, log *logger.Logger) *DB {
	db := &DB{DB: conn, driver: driver, logger: log}

	switch driver {
	case DriverPostgres:
		db.builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
		db.errorClassificator = NewPostgresErrorClassifier()
	default:
		db.builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)
		db.errorClassificator = NewSQLiteErrorClassifier()
	}

	return db
}

// Connect opens the database described by cfg, choosing the driver from
// cfg.Driver or, when empty, from the DSN.
func Connect(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	switch DriverFor(cfg) {
	case DriverPostgres:
		return NewConnectPostgres(ctx, cfg, log)
	default:
		return NewConnectSQLite(ctx, cfg, log)
	}
}

// DriverFor resolves the driver name for cfg.
func DriverFor(cfg config.DB) string {
	if cfg.Driver != "" {
		return cfg.Driver
	}

	dsn := strings.ToLower(cfg.DSN)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Driver reports the driver name of the handle.
func (db *DB) Driver() string {
	return db.driver
}

// Migrate applies the embedded schema migrations for the handle's dialect.
func (db *DB) Migrate() error {
	if err := migrations.Migrate(db.DB, db.driver); err != nil {
		db.logger.Err(err).Str("func", "*DB.Migrate").Msg("error applying migrations")
		return fmt.Errorf("error applying migrations: %w", err)
	}
	return nil
}

// classify wraps err with sentinel, adding ErrTransient when the driver
// reports a retryable condition.
func (db *DB) classify(err, sentinel error) error {
	if db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable {
		return fmt.Errorf("%w: %w: %w", ErrTransient, sentinel, err)
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
