package worker

import (
	"context"
	"idea-review-platform/internal/logger"
	"sync"
	"sync/atomic"
)

// Task is a function that represents a background job
type Task func(ctx context.Context) error

// Pool runs cache invalidation and notification fan-out off the request
// path. Tasks are best-effort: a full queue drops, never blocks a request.
type Pool struct {
	taskQueue chan Task
	wg        sync.WaitGroup
	isClosing atomic.Bool
}

func NewPool(size int) *Pool {
	wp := &Pool{
		taskQueue: make(chan Task, 1000),
	}

	for i := 0; i < size; i++ {
		wp.wg.Add(1)
		go wp.run()
	}

	return wp
}

func (wp *Pool) run() {
	defer wp.wg.Done()
	for task := range wp.taskQueue {
		if err := task(context.Background()); err != nil {
			logger.Log.Error().Err(err).Msg("worker task failed")
		}
	}
}

func (wp *Pool) Submit(t Task) {
	if wp.isClosing.Load() {
		logger.Log.Warn().Msg("task submitted during shutdown, dropping")
		return
	}
	select {
	case wp.taskQueue <- t:
	default:
		logger.Log.Warn().Msg("task queue full, dropping task")
	}
}

// Shutdown closes the queue and waits for workers to finish
func (wp *Pool) Shutdown() {
	wp.isClosing.Store(true)
	close(wp.taskQueue)
	wp.wg.Wait()
}
