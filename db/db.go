package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens a pool for driver ("postgres" or "sqlite3") and pings it
// within timeout.
func Connect(driver, dsn string, timeout time.Duration, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	if driver == "sqlite3" {
		// sqlite allows a single writer.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("failed to close database handle after ping error", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv_scalars (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS kv_arrays (
		key   TEXT    NOT NULL,
		idx   INTEGER NOT NULL,
		value TEXT    NOT NULL,
		PRIMARY KEY (key, idx)
	)`,
	`CREATE TABLE IF NOT EXISTS fields (
		id      TEXT PRIMARY KEY,
		name    TEXT NOT NULL,
		team_id TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id            TEXT PRIMARY KEY,
		name          TEXT    NOT NULL UNIQUE,
		skill         INTEGER NOT NULL DEFAULT 0,
		home_field_id TEXT
	)`,
}

// Migrate creates the key-value and catalog tables. The statements are
// valid for both postgres and sqlite.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}
