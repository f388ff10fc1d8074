package domain

import (
	"context"
	"fmt"
	"sync"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voicerelay/internal/metrics"
	"golang.org/x/sync/semaphore"
)

// Dispatcher runs background tasks detached from the request that queued them.
// With maxConcurrent == 0 every task gets its own goroutine immediately; with
// a positive limit, excess tasks park in their goroutine until a slot frees up.
// Go never blocks the caller either way.
type Dispatcher struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
	log *logger.ZapLogger
}

func NewDispatcher(maxConcurrent int, log *logger.ZapLogger) *Dispatcher {
	d := &Dispatcher{log: log}
	if maxConcurrent > 0 {
		d.sem = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return d
}

func (d *Dispatcher) Go(name string, fn func(ctx context.Context)) {
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		ctx := context.Background()

		if d.sem != nil {
			if err := d.sem.Acquire(ctx, 1); err != nil {
				d.log.Log(logger.LogEntry{
					Level:   "error",
					Message: "dispatch acquire failed",
					Fields:  map[string]any{"task": name},
					Error:   err,
				})
				return
			}
			defer d.sem.Release(1)
		}

		metrics.ForwardsInFlight.Inc()
		defer metrics.ForwardsInFlight.Dec()

		defer func() {
			if r := recover(); r != nil {
				d.log.Log(logger.LogEntry{
					Level:   "error",
					Message: "background task panicked",
					Fields:  map[string]any{"task": name},
					Error:   fmt.Errorf("panic: %v", r),
				})
			}
		}()

		fn(ctx)
	}()
}

// Wait blocks until every dispatched task has returned or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
