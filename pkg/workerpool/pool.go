// Package workerpool runs a batch of independent tasks with bounded
// concurrency and fail-fast collection.
package workerpool

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Task is one unit of work. It receives the context passed to Run.
type Task[T any] func(ctx context.Context) (T, error)

// Pool bounds the number of tasks running at the same time.
type Pool[T any] struct {
	size int
	sem  *semaphore.Weighted
}

type result[T any] struct {
	index int
	value T
	err   error
}

// New creates a pool running at most size tasks concurrently.
func New[T any](size int) (*Pool[T], error) {
	if size < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", size)
	}
	return &Pool[T]{
		size: size,
		sem:  semaphore.NewWeighted(int64(size)),
	}, nil
}

// Size returns the concurrency bound.
func (p *Pool[T]) Size() int {
	return p.size
}

// Run executes tasks and returns their results in task order.
//
// The first task error is returned immediately. No new tasks are started
// after that, tasks already running are left to finish in the background and
// their results are dropped. Run does not wait for them.
func (p *Pool[T]) Run(ctx context.Context, tasks []Task[T]) ([]T, error) {
	if len(tasks) == 0 {
		return []T{}, nil
	}

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	// Buffered so abandoned tasks never block on send.
	results := make(chan result[T], len(tasks))

	go func() {
		for i, task := range tasks {
			if err := p.sem.Acquire(dispatchCtx, 1); err != nil {
				return
			}
			go func(i int, task Task[T]) {
				defer p.sem.Release(1)
				value, err := task(ctx)
				results <- result[T]{index: i, value: value, err: err}
			}(i, task)
		}
	}()

	out := make([]T, len(tasks))
	for received := 0; received < len(tasks); received++ {
		select {
		case r := <-results:
			if r.err != nil {
				return nil, r.err
			}
			out[r.index] = r.value
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}
