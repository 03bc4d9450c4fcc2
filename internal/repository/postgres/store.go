package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schema = `CREATE TABLE IF NOT EXISTS stockwise_state (
	bucket TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store keeps each slot as a JSONB row in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStore connects to dsn and ensures the state table exists.
func NewStore(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dsn == "" {
		return nil, errors.New("postgres dsn must not be empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	return &Store{pool: pool, logger: logger}, nil
}

// Load reads the payload for slot.
func (s *Store) Load(ctx context.Context, slot string) ([]byte, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM stockwise_state WHERE bucket = $1`, slot).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", slot, err)
	}
	return payload, true, nil
}

// Save upserts the payload for slot.
func (s *Store) Save(ctx context.Context, slot string, payload []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO stockwise_state (bucket, payload) VALUES ($1, $2)
		 ON CONFLICT (bucket) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		slot, payload)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", slot, err)
	}
	s.logger.Debug("slot written", zap.String("slot", slot), zap.Int("bytes", len(payload)))
	return nil
}

// Close releases the connection pool.
func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}
