package concurrency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/shirou/gopsutil/v4/mem"

	"kleinpress/internal/common"
)

// NewWorkerPool creates a new worker pool instance
func NewWorkerPool(opts Options) *WorkerPool {
	workers := opts.Workers
	if workers <= 0 {
		workers = WorkerCount(0, 0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{workers: workers, timeout: opts.TaskTimeout, logger: logger}
}

// Workers returns the concurrency limit.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Run executes n tasks on the pool. onResult is called once per task from a
// single goroutine, in completion order. Tasks not started before ctx is
// done report ctx.Err(). Run returns ctx.Err() once every result has been
// delivered.
func Run[T any](ctx context.Context, wp *WorkerPool, n int, task TaskFunc[T], onResult func(Result[T])) error {
	if n <= 0 {
		return ctx.Err()
	}

	pool, err := ants.NewPool(min(wp.workers, n))
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan Result[T], n)
	var wg sync.WaitGroup
	wg.Add(n)

	go func() {
		for i := 0; i < n; i++ {
			index := i
			err := pool.Submit(func() {
				defer wg.Done()
				results <- execute(ctx, wp, index, task)
			})
			if err != nil {
				wg.Done() // Decrement since Submit failed
				wp.logger.Error("failed to submit task", slog.Int("index", index), slog.Any("error", err))
				results <- Result[T]{Index: index, Err: fmt.Errorf("submit task: %w", err)}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		onResult(result)
	}
	return ctx.Err()
}

func execute[T any](ctx context.Context, wp *WorkerPool, index int, task TaskFunc[T]) Result[T] {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Result[T]{Index: index, Err: err}
	}

	taskCtx, cancel := ctx, context.CancelFunc(func() {})
	if wp.timeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, wp.timeout)
	}
	defer cancel()

	done := make(chan Result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				wp.logger.Error("task panicked", slog.Int("index", index), slog.Any("panic", r))
				done <- Result[T]{Index: index, Err: fmt.Errorf("%w: %v", ErrTaskPanicked, r)}
			}
		}()
		value, err := task(taskCtx, index)
		done <- Result[T]{Index: index, Value: value, Err: err}
	}()

	var result Result[T]
	select {
	case result = <-done:
	case <-taskCtx.Done():
		result = Result[T]{Index: index, Err: taskCtx.Err()}
	}
	if result.Err != nil && ctx.Err() == nil && errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
		wp.logger.Warn("task timed out", slog.Int("index", index), slog.Duration("timeout", wp.timeout))
		result.Err = fmt.Errorf("%w after %s: %w", ErrTaskTimeout, wp.timeout, result.Err)
	}
	result.Elapsed = time.Since(start)
	return result
}

// WorkerCount picks a concurrency limit from the CPU count, an optional
// configured ceiling and the memory each worker is expected to need.
func WorkerCount(configured, memoryPerWorkerMB int) int {
	n := min(runtime.NumCPU(), common.MaxConcurrencyLimit)
	if configured > 0 {
		n = min(n, configured)
	}
	if memoryPerWorkerMB > 0 {
		if vm, err := mem.VirtualMemory(); err == nil && vm.Available > 0 {
			byMemory := int(vm.Available / (uint64(memoryPerWorkerMB) << 20))
			n = min(n, max(byMemory, 1))
		}
	}
	return max(n, 1)
}
