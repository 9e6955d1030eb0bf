package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDSN builds a go-sqlite3 connection string. Transactions take the write lock
// up front (BEGIN IMMEDIATE) and wait up to busyTimeout for it.
func SQLiteDSN(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=%d&_foreign_keys=on&_journal_mode=WAL",
		path, busyTimeout.Milliseconds())
}

// NewSQLiteDB opens and pings a SQLite database.
func NewSQLiteDB(ctx context.Context, path string, busyTimeout time.Duration) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	db, err := sql.Open("sqlite3", SQLiteDSN(path, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return db, nil
}
