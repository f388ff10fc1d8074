package domain

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_BoundedConcurrency(t *testing.T) {
	d := NewDispatcher(2, testLogger())

	var running, peak atomic.Int32
	for i := 0; i < 8; i++ {
		d.Go("task", func(ctx context.Context) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx))

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestDispatcher_UnboundedRunsEverythingAtOnce(t *testing.T) {
	d := NewDispatcher(0, testLogger())

	const n = 5
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(n)

	for i := 0; i < n; i++ {
		d.Go("task", func(ctx context.Context) {
			started.Done()
			<-release
		})
	}

	// every task must be running concurrently, otherwise this never returns
	waitOrFail(t, &started, 5*time.Second)
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx))
}

func TestDispatcher_GoDoesNotBlockWhenFull(t *testing.T) {
	d := NewDispatcher(1, testLogger())

	release := make(chan struct{})
	d.Go("first", func(ctx context.Context) { <-release })

	done := make(chan struct{})
	go func() {
		d.Go("second", func(ctx context.Context) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Go blocked while the dispatcher was saturated")
	}

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx))
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	d := NewDispatcher(0, testLogger())

	d.Go("boom", func(ctx context.Context) { panic("boom") })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, d.Wait(ctx))
}

func TestDispatcher_WaitHonoursContext(t *testing.T) {
	d := NewDispatcher(0, testLogger())

	release := make(chan struct{})
	defer close(release)
	d.Go("stuck", func(ctx context.Context) { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for tasks to start")
	}
}
