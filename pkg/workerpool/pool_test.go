package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New[int](size); err == nil {
			t.Errorf("New(%d) expected error", size)
		}
	}
}

func TestRun_ResultsInTaskOrder(t *testing.T) {
	pool, err := New[int](4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tasks := make([]Task[int], 20)
	for i := range tasks {
		n := i
		tasks[i] = func(ctx context.Context) (int, error) {
			// Later tasks finish first.
			time.Sleep(time.Duration(20-n) * time.Millisecond)
			return n * n, nil
		}
	}

	got, err := pool.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, v := range got {
		if v != i*i {
			t.Errorf("result[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestRun_Empty(t *testing.T) {
	pool, _ := New[string](1)
	got, err := pool.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
}

func TestRun_ConcurrencyBound(t *testing.T) {
	const (
		workers = 3
		total   = 10
	)

	pool, err := New[int](workers)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var (
		mu      sync.Mutex
		running int
		peak    int
		calls   atomic.Int32
	)

	tasks := make([]Task[int], total)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (int, error) {
			calls.Add(1)
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			return 1, nil
		}
	}

	got, err := pool.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(got) != total {
		t.Errorf("expected %d results, got %d", total, len(got))
	}
	if calls.Load() != total {
		t.Errorf("expected %d calls, got %d", total, calls.Load())
	}
	if peak > workers {
		t.Errorf("peak concurrency %d exceeds bound %d", peak, workers)
	}
	if peak < 2 {
		t.Errorf("expected tasks to overlap, peak concurrency %d", peak)
	}
}

func TestRun_FailFastWithoutWaiting(t *testing.T) {
	pool, err := New[int](2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	release := make(chan struct{})
	defer close(release)

	boom := errors.New("boom")
	var started atomic.Int32

	tasks := []Task[int]{
		func(ctx context.Context) (int, error) {
			started.Add(1)
			<-release
			return 0, nil
		},
		func(ctx context.Context) (int, error) {
			started.Add(1)
			return 0, boom
		},
	}
	for i := 0; i < 8; i++ {
		tasks = append(tasks, func(ctx context.Context) (int, error) {
			started.Add(1)
			time.Sleep(50 * time.Millisecond)
			return 0, nil
		})
	}

	done := make(chan error, 1)
	go func() {
		_, err := pool.Run(context.Background(), tasks)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("Run() error = %v, want %v", err, boom)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() waited for the blocked task")
	}

	// The blocked task holds one slot, so at most one slot was free after the
	// failure and dispatch stopped before reaching all tasks.
	if n := started.Load(); n == int32(len(tasks)) {
		t.Errorf("expected dispatch to stop after the failure, %d of %d tasks started", n, len(tasks))
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	pool, _ := New[int](1)

	ctx, cancel := context.WithCancel(context.Background())
	block := make(chan struct{})
	defer close(block)

	tasks := []Task[int]{
		func(ctx context.Context) (int, error) {
			<-block
			return 0, nil
		},
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := pool.Run(ctx, tasks)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
