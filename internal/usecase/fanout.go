package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// joinAll runs task for every index in [0, n) concurrently and waits for all of them.
// The first failure cancels the context handed to the remaining tasks and is the
// combinator's result; callers must not keep results from a failed join.
func joinAll(ctx context.Context, pool *ants.Pool, n int, task func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := 0; i < n; i++ {
		run := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := task(ctx, i); err != nil {
				fail(err)
			}
		}

		wg.Add(1)
		if pool == nil {
			go run()
			continue
		}
		if err := pool.Submit(run); err != nil {
			wg.Done()
			fail(fmt.Errorf("submit task %d: %w", i, err))
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return parent.Err()
}
