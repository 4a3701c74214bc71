package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/p-n-ai/pai-course/internal/platform/database"
)

type postgresBackend struct {
	db *database.DB
}

// NewPostgresStore keeps state in the app_state table of db.
func NewPostgresStore(db *database.DB, opts ...Option) *KVStore {
	return newKVStore(&postgresBackend{db: db}, opts...)
}

func (p *postgresBackend) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.Pool.QueryRow(ctx,
		`SELECT value FROM app_state WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query app_state %q: %w", key, err)
	}
	return value, nil
}

func (p *postgresBackend) set(ctx context.Context, key string, value []byte) error {
	_, err := p.db.Pool.Exec(ctx,
		`INSERT INTO app_state (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert app_state %q: %w", key, err)
	}
	return nil
}

func (p *postgresBackend) del(ctx context.Context, key string) error {
	if _, err := p.db.Pool.Exec(ctx, `DELETE FROM app_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete app_state %q: %w", key, err)
	}
	return nil
}

func (p *postgresBackend) ping(ctx context.Context) error {
	return p.db.HealthCheck(ctx)
}
