package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/synaptic/study-engine/internal/service/readiness"
)

// Common errors
var (
	ErrNilCalculator = errors.New("readiness calculator cannot be nil")
	ErrEmptyLearner  = errors.New("learner ID cannot be empty")
)

// ReadinessCalculator is the part of the readiness service a refresh needs.
type ReadinessCalculator interface {
	CalculateReadiness(ctx context.Context, learnerID uuid.UUID, examID *uuid.UUID) (*readiness.Readiness, error)
}

type readinessRefreshPayload struct {
	LearnerID uuid.UUID `json:"learner_id"`
}

// ReadinessRefreshTask recomputes a learner's overall readiness so the
// snapshot history keeps a daily data point even on days without requests.
type ReadinessRefreshTask struct {
	id         uuid.UUID
	learnerID  uuid.UUID
	calculator ReadinessCalculator
	logger     *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

var _ Task = (*ReadinessRefreshTask)(nil)

// NewReadinessRefreshTask creates a pending refresh for one learner.
func NewReadinessRefreshTask(
	learnerID uuid.UUID,
	calculator ReadinessCalculator,
	logger *slog.Logger,
) (*ReadinessRefreshTask, error) {
	if calculator == nil {
		return nil, ErrNilCalculator
	}
	if learnerID == uuid.Nil {
		return nil, ErrEmptyLearner
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReadinessRefreshTask{
		id:         uuid.New(),
		learnerID:  learnerID,
		calculator: calculator,
		logger:     logger.With("task_type", TaskTypeReadinessRefresh, "learner_id", learnerID),
		status:     TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *ReadinessRefreshTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ReadinessRefreshTask) Type() string {
	return TaskTypeReadinessRefresh
}

// Payload returns the task data as a byte slice
func (t *ReadinessRefreshTask) Payload() []byte {
	data, err := json.Marshal(readinessRefreshPayload{LearnerID: t.learnerID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *ReadinessRefreshTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *ReadinessRefreshTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute computes and stores a readiness snapshot without exam scope.
func (t *ReadinessRefreshTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	if err := ctx.Err(); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	result, err := t.calculator.CalculateReadiness(ctx, t.learnerID, nil)
	if err != nil {
		t.setStatus(TaskStatusFailed)
		t.logger.Error("readiness refresh failed", "error", err)
		return fmt.Errorf("failed to refresh readiness: %w", err)
	}

	t.setStatus(TaskStatusCompleted)
	t.logger.Debug("readiness refreshed",
		"overall_score", result.OverallScore,
		"snapshot_id", result.SnapshotID)
	return nil
}

// ReadinessRefreshTaskFactory creates ReadinessRefreshTask instances
type ReadinessRefreshTaskFactory struct {
	calculator ReadinessCalculator
	logger     *slog.Logger
}

// NewReadinessRefreshTaskFactory creates a new factory for ReadinessRefreshTasks
func NewReadinessRefreshTaskFactory(calculator ReadinessCalculator, logger *slog.Logger) *ReadinessRefreshTaskFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadinessRefreshTaskFactory{
		calculator: calculator,
		logger:     logger.With("component", "readiness_refresh_task_factory"),
	}
}

// CreateTask creates a new ReadinessRefreshTask for the learner
func (f *ReadinessRefreshTaskFactory) CreateTask(learnerID uuid.UUID) (Task, error) {
	t, err := NewReadinessRefreshTask(learnerID, f.calculator, f.logger)
	if err != nil {
		return nil, err
	}
	return t, nil
}
