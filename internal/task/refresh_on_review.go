package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/synaptic/study-engine/internal/events"
)

// TaskCreator builds a task for one learner.
type TaskCreator interface {
	CreateTask(learnerID uuid.UUID) (Task, error)
}

// RefreshOnReviewHandler enqueues a readiness refresh when a learner records
// a review. Refreshes are throttled to one per learner per MinInterval.
type RefreshOnReviewHandler struct {
	queue       TaskQueueWriter
	factory     TaskCreator
	minInterval time.Duration
	logger      *slog.Logger
	now         func() time.Time

	mu    sync.Mutex
	last  map[uuid.UUID]time.Time
	swept time.Time
}

var _ events.EventHandler = (*RefreshOnReviewHandler)(nil)

// NewRefreshOnReviewHandler creates the handler. It panics on a nil queue or factory.
func NewRefreshOnReviewHandler(
	queue TaskQueueWriter,
	factory TaskCreator,
	minInterval time.Duration,
	logger *slog.Logger,
) *RefreshOnReviewHandler {
	if queue == nil {
		panic("queue cannot be nil")
	}
	if factory == nil {
		panic("factory cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshOnReviewHandler{
		queue:       queue,
		factory:     factory,
		minInterval: minInterval,
		logger:      logger.With(slog.String("component", "refresh_on_review")),
		now:         time.Now,
		last:        make(map[uuid.UUID]time.Time),
	}
}

// HandleEvent ignores everything except review.recorded events.
func (h *RefreshOnReviewHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event == nil || event.Type != events.TypeReviewRecorded {
		return nil
	}
	if !h.claim(event.LearnerID) {
		h.logger.DebugContext(ctx, "refresh throttled",
			slog.String("learner_id", event.LearnerID.String()))
		return nil
	}

	t, err := h.factory.CreateTask(event.LearnerID)
	if err != nil {
		h.release(event.LearnerID)
		return fmt.Errorf("failed to create refresh task: %w", err)
	}
	if err := h.queue.Enqueue(t); err != nil {
		h.release(event.LearnerID)
		return fmt.Errorf("failed to enqueue refresh task: %w", err)
	}

	h.logger.DebugContext(ctx, "refresh enqueued",
		slog.String("learner_id", event.LearnerID.String()),
		slog.String("task_id", t.ID().String()))
	return nil
}

func (h *RefreshOnReviewHandler) claim(learnerID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.evictExpired(now)
	if last, ok := h.last[learnerID]; ok && now.Sub(last) < h.minInterval {
		return false
	}
	h.last[learnerID] = now
	return true
}

// evictExpired drops entries that no longer throttle anything. It scans at
// most once per minInterval; h.mu must be held.
func (h *RefreshOnReviewHandler) evictExpired(now time.Time) {
	if now.Sub(h.swept) < h.minInterval {
		return
	}
	for id, last := range h.last {
		if now.Sub(last) >= h.minInterval {
			delete(h.last, id)
		}
	}
	h.swept = now
}

func (h *RefreshOnReviewHandler) release(learnerID uuid.UUID) {
	h.mu.Lock()
	delete(h.last, learnerID)
	h.mu.Unlock()
}
