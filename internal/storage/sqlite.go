// Package storage implements persistence backed by SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the ConnectionStore interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: database path is required", common.ErrInvalidConfig)
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS connections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		platform TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		access_token TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		UNIQUE(platform, tenant_id)
	)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// SaveConnection inserts or replaces a platform connection. A connection
// saved as active deactivates every other connection in the same statement
// batch, so at most one connection is active at a time.
func (s *SQLiteStore) SaveConnection(ctx context.Context, conn *model.Connection) error {
	if conn == nil {
		return fmt.Errorf("connection cannot be nil")
	}
	if conn.Platform == "" || conn.TenantID == "" {
		return fmt.Errorf("%w: platform and tenant ID are required", common.ErrInvalidConfig)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if conn.Active {
		if _, err := tx.ExecContext(ctx, `UPDATE connections SET active = 0`); err != nil {
			return fmt.Errorf("failed to deactivate connections: %w", err)
		}
	}

	createdAt := conn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO connections (platform, tenant_id, access_token, active, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(platform, tenant_id) DO UPDATE SET
			access_token = excluded.access_token,
			active = excluded.active`,
		string(conn.Platform), conn.TenantID, conn.AccessToken, conn.Active, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		conn.ID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ActiveConnection returns the currently active platform connection.
func (s *SQLiteStore) ActiveConnection(ctx context.Context) (*model.Connection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, platform, tenant_id, access_token, active, created_at
		FROM connections WHERE active = 1 LIMIT 1`)

	conn, err := scanConnection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: active connection", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query active connection: %w", err)
	}
	return conn, nil
}

// ListConnections returns all stored connections, newest first.
func (s *SQLiteStore) ListConnections(ctx context.Context) ([]model.Connection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform, tenant_id, access_token, active, created_at
		FROM connections ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var conns []model.Connection
	for rows.Next() {
		conn, scanErr := scanConnection(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", scanErr)
		}
		conns = append(conns, *conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate connections: %w", err)
	}
	return conns, nil
}

// SetActiveConnection marks one connection active and all others inactive.
func (s *SQLiteStore) SetActiveConnection(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE connections SET active = 0`); err != nil {
		return fmt.Errorf("failed to deactivate connections: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE connections SET active = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to activate connection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: connection %d", common.ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnection(row rowScanner) (*model.Connection, error) {
	var conn model.Connection
	var platform string
	if err := row.Scan(&conn.ID, &platform, &conn.TenantID, &conn.AccessToken, &conn.Active, &conn.CreatedAt); err != nil {
		return nil, err
	}
	conn.Platform = model.Platform(platform)
	return &conn, nil
}

// Ensure SQLiteStore implements ConnectionStore.
var _ service.ConnectionStore = (*SQLiteStore)(nil)
