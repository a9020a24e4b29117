package store

import (
	"context"
	"sync"
)

type memBucket struct {
	values map[string][]byte
	order  []string
}

// Memory is the in-process backend used by default and in tests.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]*memBucket
}

func NewMemory() *Memory {
	return &Memory{buckets: make(map[string]*memBucket)}
}

func (m *Memory) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.buckets[bucket]
	if !ok {
		return nil, ErrNotFound
	}
	v, ok := b.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (m *Memory) Put(_ context.Context, bucket, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[bucket]
	if !ok {
		b = &memBucket{values: make(map[string][]byte)}
		m.buckets[bucket] = b
	}
	if _, exists := b.values[key]; !exists {
		b.order = append(b.order, key)
	}
	b.values[key] = clone(value)
	return nil
}

func (m *Memory) Delete(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[bucket]
	if !ok {
		return ErrNotFound
	}
	if _, exists := b.values[key]; !exists {
		return ErrNotFound
	}
	delete(b.values, key)
	for i, k := range b.order {
		if k == key {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) List(_ context.Context, bucket string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.buckets[bucket]
	if !ok {
		return [][]byte{}, nil
	}
	out := make([][]byte, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, clone(b.values[k]))
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
