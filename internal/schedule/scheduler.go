// Package schedule runs the daily readiness refresh for recently active learners.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/synaptic/study-engine/internal/store"
	"github.com/synaptic/study-engine/internal/task"
)

// TaskFactory builds a refresh task for one learner.
type TaskFactory interface {
	CreateTask(learnerID uuid.UUID) (task.Task, error)
}

// Config controls when refreshes run and which learners they cover.
type Config struct {
	// RefreshAt is the daily UTC run time, "HH:MM".
	RefreshAt string
	// ActiveWindow selects learners with a review within this duration.
	ActiveWindow time.Duration
}

// Scheduler enqueues readiness refresh tasks on a daily schedule.
type Scheduler struct {
	cron    *gocron.Scheduler
	cfg     Config
	reviews store.ReviewLogStore
	factory TaskFactory
	queue   task.TaskQueueWriter
	now     func() time.Time
	logger  *slog.Logger
}

// New creates a scheduler. Nothing runs until Start.
func New(
	cfg Config,
	reviews store.ReviewLogStore,
	factory TaskFactory,
	queue task.TaskQueueWriter,
	logger *slog.Logger,
) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ActiveWindow <= 0 {
		cfg.ActiveWindow = 14 * 24 * time.Hour
	}
	return &Scheduler{
		cron:    gocron.NewScheduler(time.UTC),
		cfg:     cfg,
		reviews: reviews,
		factory: factory,
		queue:   queue,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger.With(slog.String("component", "readiness_scheduler")),
	}
}

// Start registers the daily job and starts the scheduler without blocking.
func (s *Scheduler) Start() error {
	_, err := s.cron.Every(1).Day().At(s.cfg.RefreshAt).Do(s.run)
	if err != nil {
		return fmt.Errorf("failed to schedule readiness refresh at %q: %w", s.cfg.RefreshAt, err)
	}
	s.cron.StartAsync()
	s.logger.Info("readiness refresh scheduled",
		slog.String("at", s.cfg.RefreshAt),
		slog.Duration("active_window", s.cfg.ActiveWindow))
	return nil
}

// Stop terminates the scheduler. Tasks already enqueued are unaffected.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.EnqueueRefreshes(ctx); err != nil {
		s.logger.Error("readiness refresh run failed", slog.String("error", err.Error()))
	}
}

// EnqueueRefreshes enqueues one refresh per active learner and returns how
// many were queued. A full queue stops the run; remaining learners are
// picked up the next day.
func (s *Scheduler) EnqueueRefreshes(ctx context.Context) (int, error) {
	since := s.now().Add(-s.cfg.ActiveWindow)
	learners, err := s.reviews.ActiveLearners(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to list active learners: %w", err)
	}

	queued := 0
	for _, learnerID := range learners {
		t, err := s.factory.CreateTask(learnerID)
		if err != nil {
			s.logger.Warn("skipping learner",
				slog.String("learner_id", learnerID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if err := s.queue.Enqueue(t); err != nil {
			if errors.Is(err, task.ErrQueueFull) || errors.Is(err, task.ErrQueueClosed) {
				s.logger.Warn("readiness refresh run cut short",
					slog.Int("queued", queued),
					slog.Int("active_learners", len(learners)),
					slog.String("error", err.Error()))
				return queued, nil
			}
			return queued, err
		}
		queued++
	}

	s.logger.Info("readiness refreshes enqueued",
		slog.Int("queued", queued),
		slog.Int("active_learners", len(learners)))
	return queued, nil
}
