package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// Store persists classification results and batch jobs.
type Store struct {
	db     *sqlx.DB
	driver string
	logger *zap.Logger
}

// Open establishes a new connection to the database.
func Open(driver, dsn string, logger *zap.Logger) (*Store, error) {
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY under concurrent batch jobs
		db.SetMaxOpenConns(1)
	}

	logger.Info("Successfully connected to the database", zap.String("driver", driver))

	return &Store{db: db, driver: driver, logger: logger}, nil
}

// Migrate runs the embedded migrations for the store's driver.
func (s *Store) Migrate() error {
	var (
		instance database.Driver
		err      error
	)
	switch s.driver {
	case DriverPostgres:
		instance, err = postgres.WithInstance(s.db.DB, &postgres.Config{})
	case DriverSQLite:
		instance, err = sqlite.WithInstance(s.db.DB, &sqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("couldn't get database instance for running migrations: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+s.driver)
	if err != nil {
		return fmt.Errorf("couldn't open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, s.driver, instance)
	if err != nil {
		return fmt.Errorf("couldn't create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("couldn't run database migration: %w", err)
	}

	s.logger.Info("Database migration was run successfully")
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
