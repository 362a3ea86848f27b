// Package parallel provides the order-preserving worker pool used for
// per-column work such as CSV type inference.
//
// A pool fans items out to a fixed number of goroutines and fans results back
// in by index. Every goroutine started by a call has exited by the time the
// call returns.
package parallel

import (
	"context"
	"sync"

	"github.com/paveg/colframe/internal/config"
)

// WorkerPool manages a pool of goroutines for parallel processing
type WorkerPool struct {
	numWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool. A non-positive count uses the
// configured worker pool size.
func NewWorkerPool(numWorkers int) *WorkerPool {
	return NewWorkerPoolWithContext(context.Background(), numWorkers)
}

// NewWorkerPoolWithContext creates a pool whose work stops when ctx is done
func NewWorkerPoolWithContext(ctx context.Context, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = config.GetGlobalConfig().Workers()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers: numWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Workers returns the number of goroutines a call fans out to
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// ProcessIndexed executes worker on every item in parallel and returns the
// results in input order. The first error stops the remaining items and is
// returned; so is the pool's context error when the pool is closed early.
func ProcessIndexed[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(int, T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(wp.ctx)
	defer cancel()

	itemCh := make(chan indexedItem[T])
	resultCh := make(chan indexedResult[R], len(items))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for range min(wp.numWorkers, len(items)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				if ctx.Err() != nil {
					continue
				}
				result, err := worker(item.index, item.value)
				if err != nil {
					fail(err)
					continue
				}
				resultCh <- indexedResult[R]{index: item.index, result: result}
			}
		}()
	}

	// Send items to workers
	go func() {
		defer close(itemCh)
		for i, item := range items {
			select {
			case <-ctx.Done():
				return
			case itemCh <- indexedItem[T]{index: i, value: item}:
			}
		}
	}()

	wg.Wait()
	close(resultCh)

	if firstErr != nil {
		return nil, firstErr
	}
	if err := wp.ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]R, len(items))
	for result := range resultCh {
		results[result.index] = result.result
	}
	return results, nil
}

// Close shuts down the worker pool
func (wp *WorkerPool) Close() {
	wp.cancel()
}

// indexedItem holds an item with its index
type indexedItem[T any] struct {
	index int
	value T
}

// indexedResult holds a result with its index
type indexedResult[R any] struct {
	index  int
	result R
}
