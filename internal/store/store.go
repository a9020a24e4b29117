// Package store is the persistence boundary for the services. Values are
// opaque bytes grouped into buckets; List returns them in first-insertion
// order. Memory and Redis backends live here, Postgres lives in
// internal/db.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: key not found")

// Buckets used by the services.
const (
	BucketConfigurations = "configurations"
	BucketRecipients     = "recipients"
	BucketReports        = "reports"
	BucketAggregations   = "aggregations"
	BucketSchedules      = "schedules"
)

// KV must be safe for concurrent use. Get and Delete return ErrNotFound
// for a missing key. Overwriting a key keeps its original List position.
type KV interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, value []byte) error
	Delete(ctx context.Context, bucket, key string) error
	List(ctx context.Context, bucket string) ([][]byte, error)
	Close() error
}
