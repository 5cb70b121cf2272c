package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/synaptic/study-engine/internal/mocks"
	"github.com/synaptic/study-engine/internal/task"
)

type noopTask struct{ id uuid.UUID }

func (n noopTask) ID() uuid.UUID { return n.id }
func (n noopTask) Type() string { return "noop" }
func (n noopTask) Payload() []byte { return nil }
func (n noopTask) Status() task.TaskStatus { return task.TaskStatusPending }
func (n noopTask) Execute(context.Context) error { return nil }

type factoryFunc func(uuid.UUID) (task.Task, error)

func (f factoryFunc) CreateTask(id uuid.UUID) (task.Task, error) { return f(id) }

var okFactory = factoryFunc(func(id uuid.UUID) (task.Task, error) { return noopTask{id: id}, nil })

var fixedNow = time.Date(2026, 9, 14, 3, 0, 0, 0, time.UTC)

func newTestScheduler(
	reviews *mocks.MockReviewLogStore,
	factory TaskFactory,
	queue task.TaskQueueWriter,
) *Scheduler {
	s := New(Config{RefreshAt: "03:00", ActiveWindow: 48 * time.Hour}, reviews, factory, queue, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestEnqueueRefreshes(t *testing.T) {
	t.Parallel()
	reviews := &mocks.MockReviewLogStore{}
	learners := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	reviews.On("ActiveLearners", mock.Anything, fixedNow.Add(-48*time.Hour)).Return(learners, nil)

	queue := task.NewTaskQueue(10, nil)
	s := newTestScheduler(reviews, okFactory, queue)

	n, err := s.EnqueueRefreshes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	queue.Close()
	var got []uuid.UUID
	for tk := range queue.GetChannel() {
		got = append(got, tk.ID())
	}
	assert.Equal(t, learners, got)
	reviews.AssertExpectations(t)
}

func TestEnqueueRefreshesQueueFull(t *testing.T) {
	t.Parallel()
	reviews := &mocks.MockReviewLogStore{}
	reviews.On("ActiveLearners", mock.Anything, mock.Anything).
		Return([]uuid.UUID{uuid.New(), uuid.New(), uuid.New()}, nil)

	s := newTestScheduler(reviews, okFactory, task.NewTaskQueue(2, nil))

	n, err := s.EnqueueRefreshes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestEnqueueRefreshesSkipsBadLearner(t *testing.T) {
	t.Parallel()
	reviews := &mocks.MockReviewLogStore{}
	reviews.On("ActiveLearners", mock.Anything, mock.Anything).
		Return([]uuid.UUID{uuid.Nil, uuid.New()}, nil)

	factory := factoryFunc(func(id uuid.UUID) (task.Task, error) {
		if id == uuid.Nil {
			return nil, task.ErrEmptyLearner
		}
		return noopTask{id: id}, nil
	})
	s := newTestScheduler(reviews, factory, task.NewTaskQueue(10, nil))

	n, err := s.EnqueueRefreshes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEnqueueRefreshesStoreError(t *testing.T) {
	t.Parallel()
	reviews := &mocks.MockReviewLogStore{}
	reviews.On("ActiveLearners", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	s := newTestScheduler(reviews, okFactory, task.NewTaskQueue(10, nil))

	_, err := s.EnqueueRefreshes(context.Background())
	assert.Error(t, err)
}

func TestStartRejectsBadTime(t *testing.T) {
	t.Parallel()
	s := New(Config{RefreshAt: "25:99"}, &mocks.MockReviewLogStore{}, okFactory, task.NewTaskQueue(1, nil), nil)
	assert.Error(t, s.Start())
	s.Stop()
}

func TestStartStop(t *testing.T) {
	t.Parallel()
	s := New(Config{RefreshAt: "03:00"}, &mocks.MockReviewLogStore{}, okFactory, task.NewTaskQueue(1, nil), nil)
	require.NoError(t, s.Start())
	s.Stop()
}
