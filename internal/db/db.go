package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"JetScheduler/internal/store"
)

var _ store.KV = (*Store)(nil)

// Store is the Postgres implementation of store.KV. Every bucket shares
// one table; seq preserves first-insertion order for List.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, conn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, conn)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{Pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure kv schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	s.Pool.Close()
	return nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_store (
			seq        BIGSERIAL,
			bucket     TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (bucket, key)
		);
		CREATE INDEX IF NOT EXISTS idx_kv_bucket_seq ON kv_store(bucket, seq);
	`)
	return err
}

func (s *Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var value []byte
	err := s.Pool.QueryRow(ctx,
		`SELECT value FROM kv_store WHERE bucket=$1 AND key=$2`,
		bucket,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return value, err
}

func (s *Store) Put(ctx context.Context, bucket, key string, value []byte) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO kv_store (bucket, key, value, updated_at)
		 VALUES ($1,$2,$3,NOW())
		 ON CONFLICT (bucket, key) DO UPDATE SET
		     value=EXCLUDED.value,
		     updated_at=NOW()`,
		bucket,
		key,
		value,
	)
	return err
}

func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	tag, err := s.Pool.Exec(ctx,
		`DELETE FROM kv_store WHERE bucket=$1 AND key=$2`,
		bucket,
		key,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, bucket string) ([][]byte, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT value FROM kv_store WHERE bucket=$1 ORDER BY seq`,
		bucket,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([][]byte, 0)
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, rows.Err()
}
