package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Repository is a typed view over one bucket with JSON-encoded values.
type Repository[T any] struct {
	kv     KV
	bucket string
}

func NewRepository[T any](kv KV, bucket string) *Repository[T] {
	return &Repository[T]{kv: kv, bucket: bucket}
}

func (r *Repository[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	raw, err := r.kv.Get(ctx, r.bucket, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", r.bucket, key, err)
	}
	return v, nil
}

func (r *Repository[T]) Put(ctx context.Context, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", r.bucket, key, err)
	}
	return r.kv.Put(ctx, r.bucket, key, raw)
}

func (r *Repository[T]) Delete(ctx context.Context, key string) error {
	return r.kv.Delete(ctx, r.bucket, key)
}

func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	raws, err := r.kv.List(ctx, r.bucket)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", r.bucket, err)
		}
		out = append(out, v)
	}
	return out, nil
}
