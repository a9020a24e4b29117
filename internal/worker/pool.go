package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Task handles item i of a batch.
type Task func(ctx context.Context, i int) error

// Pool fans a batch of data-source queries out over a fixed number of
// workers. Every task start waits on the shared limiter, so the datalake
// sees the same request rate no matter how many previews run at once.
type Pool struct {
	Workers int
	Limiter *rate.Limiter
	Log     *zap.Logger
}

func New(workers int, limiter *rate.Limiter, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{Workers: workers, Limiter: limiter, Log: logger}
}

// Run calls task for every i in [0, n) and waits for all of them. The first
// failure cancels the tasks that have not started yet. The returned error
// is the one with the lowest index, so results do not depend on scheduling.
func (p *Pool) Run(ctx context.Context, n int, task Task) error {
	if n == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	errs := make([]error, n)

	workers := p.Workers
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			for i := range jobs {

				// ----------------------------
				// Rate Limit
				// ----------------------------
				if p.Limiter != nil {
					if err := p.Limiter.Wait(ctx); err != nil {
						errs[i] = err
						continue
					}
				}

				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}

				if err := task(ctx, i); err != nil {
					p.Log.Debug("task failed",
						zap.Int("worker_id", id),
						zap.Int("task", i),
						zap.Error(err),
					)
					errs[i] = err
					cancel()
				}
			}
		}(w)
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	// A real failure outranks the cancellations it caused.
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
