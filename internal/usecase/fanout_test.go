package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
)

func newTestPool(t *testing.T, size int) *ants.Pool {
	t.Helper()
	pool, err := ants.NewPool(size)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	t.Cleanup(pool.Release)
	return pool
}

func TestJoinAllRunsEveryTask(t *testing.T) {
	t.Parallel()

	for name, pool := range map[string]*ants.Pool{"pool": newTestPool(t, 4), "goroutines": nil} {
		pool := pool
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			results := make([]int, 10)
			err := joinAll(context.Background(), pool, len(results), func(_ context.Context, i int) error {
				results[i] = i * i
				return nil
			})
			if err != nil {
				t.Fatalf("joinAll error: %v", err)
			}
			for i, v := range results {
				if v != i*i {
					t.Fatalf("task %d did not run", i)
				}
			}
		})
	}
}

func TestJoinAllFirstErrorCancelsOthers(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var cancelled atomic.Int32
	var started sync.WaitGroup
	started.Add(7)

	err := joinAll(context.Background(), newTestPool(t, 8), 8, func(ctx context.Context, i int) error {
		if i == 0 {
			started.Wait()
			return boom
		}
		started.Done()
		select {
		case <-ctx.Done():
			cancelled.Add(1)
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected first error, got %v", err)
	}
	if got := cancelled.Load(); got != 7 {
		t.Fatalf("expected 7 cancelled siblings, got %d", got)
	}
}

func TestJoinAllParentCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	err := joinAll(ctx, nil, 3, func(context.Context, int) error {
		ran.Add(1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ran.Load() != 0 {
		t.Fatalf("tasks must not start on a cancelled context")
	}
}

func TestJoinAllEmpty(t *testing.T) {
	t.Parallel()

	if err := joinAll(context.Background(), nil, 0, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
