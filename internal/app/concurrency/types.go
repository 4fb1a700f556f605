package concurrency

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var (
	ErrTaskTimeout  = errors.New("task timed out")
	ErrTaskPanicked = errors.New("task panicked")
)

// TaskFunc processes the item at index. It must honour ctx.
type TaskFunc[T any] func(ctx context.Context, index int) (T, error)

// Result is the outcome of one task.
type Result[T any] struct {
	Index   int
	Value   T
	Err     error
	Elapsed time.Duration
}

// Options configures a WorkerPool.
type Options struct {
	// Workers caps concurrent tasks. Zero means WorkerCount(0, 0).
	Workers int
	// TaskTimeout bounds a single task. Zero disables the limit.
	TaskTimeout time.Duration
	Logger      *slog.Logger
}

// WorkerPool runs independent tasks on a bounded ants pool.
type WorkerPool struct {
	workers int
	timeout time.Duration
	logger  *slog.Logger
}
