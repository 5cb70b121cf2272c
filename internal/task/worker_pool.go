package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskQueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// taskTimeout bounds a single task execution; zero means no limit
	taskTimeout time.Duration

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is used for cancellation and shutdown signaling
	ctx context.Context

	// cancel is the function to call to cancel the context
	cancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once

	// logger for structured logging
	logger *slog.Logger

	// errorHandler is called when a task execution fails
	// If nil, errors are only logged
	errorHandler func(task Task, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int

	// TaskTimeout bounds each task execution. Zero disables the limit.
	TaskTimeout time.Duration
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
		TaskTimeout: time.Minute,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "worker_pool"))

	// Apply defaults for invalid config values
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	// Create a cancelable context for shutdown coordination
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		taskTimeout: config.TaskTimeout,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler allows setting a custom error handler for task execution failures.
// It must be called before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the workers. Calling it more than once has no effect.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := range p.workerCount {
			p.wg.Add(1)
			go p.worker(i + 1)
		}
	})
}

// Stop cancels running tasks and waits for every worker to exit.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("stopping worker pool")
		p.cancel()
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

// worker processes tasks from the queue
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	tasks := p.taskQueue.GetChannel()

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-tasks:
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			p.processTask(task, id)
		}
	}
}

// processTask executes a single task, turning a panic into an error
func (p *WorkerPool) processTask(task Task, workerID int) {
	log := p.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	ctx := p.ctx
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	start := time.Now()
	log.Debug("processing task")

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		return task.Execute(ctx)
	}()

	if err != nil {
		log.Error("task execution failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		if p.errorHandler != nil {
			p.errorHandler(task, err)
		}
		return
	}

	log.Debug("task completed", "duration_ms", time.Since(start).Milliseconds())
}
