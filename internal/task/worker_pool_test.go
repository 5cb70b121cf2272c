package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// mockTaskQueue implements TaskQueueReader for testing
type mockTaskQueue struct {
	ch chan Task
}

func newMockTaskQueue() *mockTaskQueue {
	return &mockTaskQueue{
		ch: make(chan Task, 10),
	}
}

func (m *mockTaskQueue) GetChannel() <-chan Task {
	return m.ch
}

func TestNewWorkerPool(t *testing.T) {
	t.Parallel()
	taskQueue := newMockTaskQueue()

	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 5}, setupTestLogger())
	assert.Equal(t, 5, pool.workerCount)
	assert.Equal(t, taskQueue, pool.taskQueue)
	assert.NotNil(t, pool.ctx)
	assert.NotNil(t, pool.cancel)
	assert.Nil(t, pool.errorHandler)

	pool = NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 0}, setupTestLogger())
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: -3}, nil)
	assert.Equal(t, 1, pool.workerCount)
}

func TestWorkerPool_StartStopIdempotent(t *testing.T) {
	t.Parallel()
	pool := NewWorkerPool(newMockTaskQueue(), DefaultWorkerPoolConfig(), setupTestLogger())

	pool.Start()
	pool.Start()
	pool.Stop()
	pool.Stop()
}

func TestWorkerPool_ProcessTask_Success(t *testing.T) {
	t.Parallel()
	taskQueue := newMockTaskQueue()
	completed := make(chan struct{})

	task := newStubTask()
	task.execFn = func(ctx context.Context) error {
		close(completed)
		return nil
	}

	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.Start()
	defer pool.Stop()

	taskQueue.ch <- task

	select {
	case <-completed:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for task to complete")
	}
}

func TestWorkerPool_ProcessTask_Error(t *testing.T) {
	t.Parallel()
	taskQueue := newMockTaskQueue()
	errorHandled := make(chan error, 1)

	expectedErr := errors.New("test error")
	task := newStubTask()
	task.execFn = func(ctx context.Context) error { return expectedErr }

	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.SetErrorHandler(func(task Task, err error) { errorHandled <- err })
	pool.Start()
	defer pool.Stop()

	taskQueue.ch <- task

	select {
	case err := <-errorHandled:
		assert.Equal(t, expectedErr, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for error handler")
	}
}

func TestWorkerPool_ProcessTask_Panic(t *testing.T) {
	t.Parallel()
	taskQueue := newMockTaskQueue()
	errorHandled := make(chan error, 1)

	task := newStubTask()
	task.execFn = func(ctx context.Context) error { panic("test panic") }

	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.SetErrorHandler(func(task Task, err error) { errorHandled <- err })
	pool.Start()
	defer pool.Stop()

	taskQueue.ch <- task

	select {
	case err := <-errorHandled:
		assert.Contains(t, err.Error(), "panic")
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for error handler after panic")
	}

	// The worker survives the panic
	done := make(chan struct{})
	next := newStubTask()
	next.execFn = func(ctx context.Context) error {
		close(done)
		return nil
	}
	taskQueue.ch <- next

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("worker did not recover from panic")
	}
}

func TestWorkerPool_TaskTimeout(t *testing.T) {
	t.Parallel()
	taskQueue := newMockTaskQueue()
	errorHandled := make(chan error, 1)

	task := newStubTask()
	task.execFn = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1, TaskTimeout: 20 * time.Millisecond}, setupTestLogger())
	pool.SetErrorHandler(func(task Task, err error) { errorHandled <- err })
	pool.Start()
	defer pool.Stop()

	taskQueue.ch <- task

	select {
	case err := <-errorHandled:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for task deadline")
	}
}

func TestWorkerPool_StopCancelsRunningTask(t *testing.T) {
	t.Parallel()
	taskQueue := newMockTaskQueue()
	taskStarted := make(chan struct{})
	taskCompleted := make(chan struct{})

	task := newStubTask()
	task.execFn = func(ctx context.Context) error {
		close(taskStarted)
		<-ctx.Done()
		close(taskCompleted)
		return ctx.Err()
	}

	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.Start()
	taskQueue.ch <- task

	select {
	case <-taskStarted:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for task to start")
	}

	stopDone := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopDone)
	}()

	for _, ch := range []chan struct{}{taskCompleted, stopDone} {
		select {
		case <-ch:
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timed out waiting for shutdown")
		}
	}
}

func TestWorkerPool_ExitsWhenQueueCloses(t *testing.T) {
	t.Parallel()
	queue := NewTaskQueue(10, setupTestLogger())
	var processed atomic.Int32

	for range 3 {
		task := newStubTask()
		task.execFn = func(ctx context.Context) error {
			processed.Add(1)
			return nil
		}
		assert.NoError(t, queue.Enqueue(task))
	}
	queue.Close()

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 2}, setupTestLogger())
	pool.Start()

	waited := make(chan struct{})
	go func() {
		pool.wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("workers did not exit after queue close")
	}
	assert.Equal(t, int32(3), processed.Load())
	pool.Stop()
}
