package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the backend's keys.
const DefaultRedisPrefix = "jet:"

// Each bucket is a hash of key -> value plus a list holding first-insertion
// order. The scripts keep both in step atomically.
var (
	putScript = redis.NewScript(`
local added = redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
if added == 1 then
	redis.call('RPUSH', KEYS[2], ARGV[1])
end
return added
`)

	deleteScript = redis.NewScript(`
local removed = redis.call('HDEL', KEYS[1], ARGV[1])
if removed == 1 then
	redis.call('LREM', KEYS[2], 0, ARGV[1])
end
return removed
`)
)

// Redis stores buckets in a Redis server.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

// Ping checks connectivity to Redis.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) hashKey(bucket string) string  { return r.prefix + bucket }
func (r *Redis) orderKey(bucket string) string { return r.prefix + bucket + ":order" }

func (r *Redis) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	v, err := r.rdb.HGet(ctx, r.hashKey(bucket), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis HGET %s/%s: %w", bucket, key, err)
	}
	return v, nil
}

func (r *Redis) Put(ctx context.Context, bucket, key string, value []byte) error {
	keys := []string{r.hashKey(bucket), r.orderKey(bucket)}
	if err := putScript.Run(ctx, r.rdb, keys, key, value).Err(); err != nil {
		return fmt.Errorf("redis put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, bucket, key string) error {
	keys := []string{r.hashKey(bucket), r.orderKey(bucket)}
	removed, err := deleteScript.Run(ctx, r.rdb, keys, key).Int64()
	if err != nil {
		return fmt.Errorf("redis delete %s/%s: %w", bucket, key, err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) List(ctx context.Context, bucket string) ([][]byte, error) {
	keys, err := r.rdb.LRange(ctx, r.orderKey(bucket), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis LRANGE %s: %w", bucket, err)
	}
	if len(keys) == 0 {
		return [][]byte{}, nil
	}

	vals, err := r.rdb.HMGet(ctx, r.hashKey(bucket), keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis HMGET %s: %w", bucket, err)
	}

	out := make([][]byte, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		out = append(out, []byte(s))
	}
	return out, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
