package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Store keeps each slot as a JSON blob row in a single state table.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// NewStore opens (creating if needed) the database file and its state table.
func NewStore(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		path = "stockwise.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	logger.Debug("sqlite store opened", zap.String("path", path))
	return &Store{db: db, path: path, logger: logger}, nil
}

// Load reads the payload for slot.
func (s *Store) Load(ctx context.Context, slot string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", slot, err)
	}
	return payload, true, nil
}

// Save upserts the payload for slot.
func (s *Store) Save(ctx context.Context, slot string, payload []byte) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO state(bucket, payload) VALUES(?, ?) ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
		slot, payload); err != nil {
		return fmt.Errorf("upsert %s: %w", slot, err)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
