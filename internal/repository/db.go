package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported database/sql drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

const createSessionsTable = `
	CREATE TABLE IF NOT EXISTS sessions (
		key_hash   VARCHAR(64) NOT NULL PRIMARY KEY,
		token      TEXT        NOT NULL,
		expires_at BIGINT      NOT NULL
	)`

// NewDB creates a connection pool for driver with the given DSN.
func NewDB(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	switch driver {
	case DriverSQLite:
		// One writer; also keeps ":memory:" databases on a single connection.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		slog.Warn("database ping failed", "driver", driver, "error", err)
	}

	return db, nil
}

// Migrate creates the sessions table when it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}
	return nil
}
