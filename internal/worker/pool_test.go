package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func TestPool_RunsEveryTask(t *testing.T) {
	p := New(3, rate.NewLimiter(rate.Inf, 1), zap.NewNop())

	results := make([]int, 10)
	err := p.Run(context.Background(), len(results), func(_ context.Context, i int) error {
		results[i] = i * i
		return nil
	})
	require.NoError(t, err)

	for i, v := range results {
		assert.Equal(t, i*i, v)
	}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	p := New(2, nil, nil)

	var running, peak int32
	err := p.Run(context.Background(), 8, func(_ context.Context, _ int) error {
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestPool_ReturnsTaskError(t *testing.T) {
	p := New(1, nil, zap.NewNop())
	boom := errors.New("boom")

	var calls int32
	err := p.Run(context.Background(), 5, func(_ context.Context, i int) error {
		atomic.AddInt32(&calls, 1)
		if i == 1 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	// single worker: tasks after the failure see a cancelled context
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPool_CancelledContext(t *testing.T) {
	p := New(2, rate.NewLimiter(rate.Inf, 1), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx, 3, func(context.Context, int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPool_EmptyBatch(t *testing.T) {
	assert.NoError(t, New(0, nil, nil).Run(context.Background(), 0, nil))
}
