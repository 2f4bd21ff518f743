// Package workerpool runs bounded concurrent work over a slice.
package workerpool

import (
	"context"
	"sync"
)

// Process calls process for every item using at most workerCount goroutines. The first
// error cancels the remaining work and is returned.
func Process[T any](ctx context.Context, workerCount int, items []T, process func(context.Context, T) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerCount = max(1, min(workerCount, len(items)))

	tasks := make(chan T)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for range workerCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				if ctx.Err() != nil {
					continue
				}
				if err := process(ctx, item); err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
				}
			}
		}()
	}

feed:
	for _, item := range items {
		select {
		case <-ctx.Done():
			break feed
		case tasks <- item:
		}
	}
	close(tasks)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// Map applies fn to every item concurrently and returns the results in input order.
func Map[T, R any](ctx context.Context, workerCount int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	type indexed struct {
		pos  int
		item T
	}

	work := make([]indexed, len(items))
	for i, item := range items {
		work[i] = indexed{pos: i, item: item}
	}

	results := make([]R, len(items))
	err := Process(ctx, workerCount, work, func(ctx context.Context, w indexed) error {
		r, err := fn(ctx, w.item)
		if err != nil {
			return err
		}
		results[w.pos] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
