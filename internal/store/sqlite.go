// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides save-history persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS save_attempts (
			id              TEXT PRIMARY KEY,
			tenant_id       TEXT NOT NULL,
			success         INTEGER NOT NULL,
			config_ok       INTEGER NOT NULL,
			kb_ok           INTEGER NOT NULL,
			operations_json TEXT NOT NULL,
			started_at      DATETIME NOT NULL,
			finished_at     DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_save_attempts_tenant
			ON save_attempts(tenant_id, finished_at);

		CREATE INDEX IF NOT EXISTS idx_save_attempts_finished
			ON save_attempts(finished_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// AppendSave records one completed reconciliation run.
// Generates the ID if not set.
func (s *SQLiteStore) AppendSave(ctx context.Context, attempt *SaveAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	if attempt.TenantID == "" {
		return fmt.Errorf("tenant id is required")
	}

	opsJSON, err := json.Marshal(attempt.Operations)
	if err != nil {
		return fmt.Errorf("marshaling operations: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO save_attempts
			(id, tenant_id, success, config_ok, kb_ok, operations_json, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID,
		attempt.TenantID,
		boolToInt(attempt.Success),
		boolToInt(attempt.ConfigOK),
		boolToInt(attempt.KnowledgeBasesOK),
		string(opsJSON),
		attempt.StartedAt.UTC(),
		attempt.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting save attempt: %w", err)
	}
	return nil
}

// ListSaves returns attempts newest first, optionally filtered by tenant.
func (s *SQLiteStore) ListSaves(ctx context.Context, filter SaveFilter) ([]*SaveAttempt, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	query := `
		SELECT id, tenant_id, success, config_ok, kb_ok, operations_json, started_at, finished_at
		FROM save_attempts`
	args := []any{}
	if filter.TenantID != "" {
		query += ` WHERE tenant_id = ?`
		args = append(args, filter.TenantID)
	}
	query += ` ORDER BY finished_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying save attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*SaveAttempt
	for rows.Next() {
		attempt, err := scanSaveAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// GetSave returns one attempt by ID.
func (s *SQLiteStore) GetSave(ctx context.Context, id string) (*SaveAttempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, success, config_ok, kb_ok, operations_json, started_at, finished_at
		FROM save_attempts WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying save attempt: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanSaveAttempt(rows)
}

// PruneSavesBefore deletes attempts finished before the cutoff.
func (s *SQLiteStore) PruneSavesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM save_attempts WHERE finished_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning save attempts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}
	if n > 0 {
		s.logger.Info("pruned save history", "rows", n, "cutoff", cutoff)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanSaveAttempt(rows *sql.Rows) (*SaveAttempt, error) {
	var (
		attempt                 SaveAttempt
		success, configOK, kbOK int
		opsJSON                 string
	)
	if err := rows.Scan(
		&attempt.ID,
		&attempt.TenantID,
		&success,
		&configOK,
		&kbOK,
		&opsJSON,
		&attempt.StartedAt,
		&attempt.FinishedAt,
	); err != nil {
		return nil, fmt.Errorf("scanning save attempt: %w", err)
	}
	attempt.Success = success != 0
	attempt.ConfigOK = configOK != 0
	attempt.KnowledgeBasesOK = kbOK != 0
	if err := json.Unmarshal([]byte(opsJSON), &attempt.Operations); err != nil {
		return nil, fmt.Errorf("unmarshaling operations: %w", err)
	}
	return &attempt, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
