// Package sqlite implements repository.Repository on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"meshmap/internal/domain"
)

// Repository implements repository.Repository using SQLite.
type Repository struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and migrates the schema.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		collected_at DATETIME NOT NULL,
		node_count INTEGER NOT NULL DEFAULT 0,
		document JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS passes (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		connection_count INTEGER NOT NULL DEFAULT 0,
		unlinked_count INTEGER NOT NULL DEFAULT 0,
		data JSON NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_collected ON snapshots(collected_at);
	CREATE INDEX IF NOT EXISTS idx_passes_created ON passes(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveSnapshot stores one capture document with its indexed metadata.
func (r *Repository) SaveSnapshot(ctx context.Context, rec *domain.SnapshotRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("snapshot id is required")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, source, collected_at, node_count, document)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			collected_at = excluded.collected_at,
			node_count = excluded.node_count,
			document = excluded.document
	`, rec.ID, rec.Source, rec.CollectedAt, rec.NodeCount, rec.Document)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot loads one capture document by id, or nil when absent.
func (r *Repository) GetSnapshot(ctx context.Context, id string) (*domain.SnapshotRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, source, collected_at, node_count, document
		FROM snapshots WHERE id = ?
	`, id)

	rec := &domain.SnapshotRecord{}
	err := row.Scan(&rec.ID, &rec.Source, &rec.CollectedAt, &rec.NodeCount, &rec.Document)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return rec, nil
}

// ListSnapshots lists capture metadata, newest first, without documents.
func (r *Repository) ListSnapshots(ctx context.Context) ([]domain.SnapshotRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, collected_at, node_count
		FROM snapshots ORDER BY collected_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	records := make([]domain.SnapshotRecord, 0)
	for rows.Next() {
		var rec domain.SnapshotRecord
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.CollectedAt, &rec.NodeCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SavePass stores one immutable inference pass.
func (r *Repository) SavePass(ctx context.Context, pass *domain.InferencePass) error {
	if pass.ID == "" {
		return fmt.Errorf("pass id is required")
	}

	data, err := json.Marshal(pass)
	if err != nil {
		return fmt.Errorf("failed to marshal pass: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO passes (id, created_at, connection_count, unlinked_count, data)
		VALUES (?, ?, ?, ?, ?)
	`, pass.ID, pass.CreatedAt, len(pass.Connections), len(pass.Unlinked), data)
	if err != nil {
		return fmt.Errorf("failed to save pass: %w", err)
	}
	return nil
}

// GetPass loads one inference pass by id, or nil when absent.
func (r *Repository) GetPass(ctx context.Context, id string) (*domain.InferencePass, error) {
	row := r.db.QueryRowContext(ctx, `SELECT data FROM passes WHERE id = ?`, id)
	return scanPass(row)
}

// LatestPass loads the most recent inference pass, or nil when none exist.
func (r *Repository) LatestPass(ctx context.Context) (*domain.InferencePass, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT data FROM passes ORDER BY created_at DESC, id DESC LIMIT 1
	`)
	return scanPass(row)
}

// ListPasses lists inference passes newest first, up to limit (0 = all).
func (r *Repository) ListPasses(ctx context.Context, limit int) ([]domain.InferencePass, error) {
	query := `SELECT data FROM passes ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query passes: %w", err)
	}
	defer rows.Close()

	passes := make([]domain.InferencePass, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan pass: %w", err)
		}
		var pass domain.InferencePass
		if err := json.Unmarshal(data, &pass); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pass: %w", err)
		}
		passes = append(passes, pass)
	}
	return passes, rows.Err()
}

func scanPass(row *sql.Row) (*domain.InferencePass, error) {
	var data []byte
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pass: %w", err)
	}

	var pass domain.InferencePass
	if err := json.Unmarshal(data, &pass); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pass: %w", err)
	}
	return &pass, nil
}
