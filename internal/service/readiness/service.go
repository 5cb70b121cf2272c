// Package readiness assembles a learner's study history, scores exam
// readiness and records the result as a snapshot.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/synaptic/study-engine/internal/domain"
	scoring "github.com/synaptic/study-engine/internal/domain/readiness"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/service"
	"github.com/synaptic/study-engine/internal/store"
	"golang.org/x/sync/errgroup"
)

const opCalculate = "calculate_readiness"

// ErrExamNotFound is returned when the requested exam scope does not exist.
var ErrExamNotFound = store.ErrExamNotFound

// Readiness is a scored result together with the snapshot it was stored as.
type Readiness struct {
	*scoring.Result
	SnapshotID uuid.UUID  `json:"snapshot_id"`
	ExamID     *uuid.UUID `json:"exam_id,omitempty"`
}

// ReadinessService computes and records readiness scores.
type ReadinessService interface {
	// CalculateReadiness scores the learner against examID (nil for no exam
	// scope) and inserts a new snapshot. Trend is relative to the latest
	// earlier snapshot for the same scope.
	CalculateReadiness(ctx context.Context, learnerID uuid.UUID, examID *uuid.UUID) (*Readiness, error)
}

// Stores groups the repositories the service reads and writes.
type Stores struct {
	Cards       store.CardStore
	Reviews     store.ReviewLogStore
	Assessments store.AssessmentStore
	Exams       store.ExamStore
	Snapshots   store.SnapshotStore
}

type readinessServiceImpl struct {
	stores Stores
	scorer *scoring.Scorer
	now    func() time.Time
	logger *slog.Logger
}

var _ ReadinessService = (*readinessServiceImpl)(nil)

// NewReadinessService creates a ReadinessService. now may be nil.
func NewReadinessService(
	stores Stores,
	scorer *scoring.Scorer,
	now func() time.Time,
	logger *slog.Logger,
) ReadinessService {
	if stores.Cards == nil || stores.Reviews == nil || stores.Assessments == nil ||
		stores.Exams == nil || stores.Snapshots == nil {
		panic("all readiness stores are required")
	}
	if scorer == nil {
		panic("scorer cannot be nil")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &readinessServiceImpl{
		stores: stores,
		scorer: scorer,
		now:    now,
		logger: logger.With(slog.String("component", "readiness_service")),
	}
}

// CalculateReadiness implements ReadinessService.CalculateReadiness.
func (s *readinessServiceImpl) CalculateReadiness(
	ctx context.Context,
	learnerID uuid.UUID,
	examID *uuid.UUID,
) (*Readiness, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("learner_id", learnerID.String()))
	now := s.now()
	params := s.scorer.Params()

	var (
		cards    []*domain.StudyCard
		attempts []domain.AssessmentAttempt
		days     []time.Time
		previous *domain.ReadinessSnapshot
		exam     *domain.Exam
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cards, err = s.stores.Cards.ListByLearner(gctx, learnerID)
		return wrapLoad("cards", err)
	})
	g.Go(func() error {
		var err error
		attempts, err = s.stores.Assessments.ListRecent(gctx, learnerID, examID, params.ExamWindow)
		return wrapLoad("assessment attempts", err)
	})
	g.Go(func() error {
		var err error
		days, err = s.stores.Reviews.StudyDays(gctx, learnerID, studyDaysSince(now, params))
		return wrapLoad("study days", err)
	})
	g.Go(func() error {
		snap, err := s.stores.Snapshots.GetLatest(gctx, learnerID, examID)
		if errors.Is(err, store.ErrSnapshotNotFound) {
			return nil
		}
		previous = snap
		return wrapLoad("previous snapshot", err)
	})
	if examID != nil {
		g.Go(func() error {
			var err error
			exam, err = s.stores.Exams.GetByID(gctx, learnerID, *examID)
			if store.IsNotFoundError(err) {
				return ErrExamNotFound
			}
			return wrapLoad("exam", err)
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrExamNotFound) {
			return nil, err
		}
		log.Error("failed to load readiness inputs", slog.String("error", err.Error()))
		return nil, service.NewServiceError(opCalculate, "failed to load study history", err)
	}

	in := scoring.Input{
		Cards:     cards,
		Attempts:  attempts,
		StudyDays: days,
		Previous:  previous,
		Now:       now,
	}
	if exam != nil {
		in.ExamTopics = exam.Topics
		examDate := exam.ExamDate
		in.ExamDate = &examDate
	}

	result := s.scorer.Score(in)
	snapshot := result.Snapshot(learnerID, examID)

	if err := s.stores.Snapshots.Create(ctx, snapshot); err != nil {
		log.Error("failed to store readiness snapshot", slog.String("error", err.Error()))
		return nil, service.NewServiceError(opCalculate, "failed to store readiness snapshot", err)
	}

	log.Info("readiness calculated",
		slog.Int("overall_score", result.OverallScore),
		slog.String("trend", string(result.Trend)),
		slog.Bool("has_study_data", result.HasStudyData))

	return &Readiness{Result: result, SnapshotID: snapshot.ID, ExamID: examID}, nil
}

// studyDaysSince covers both the frequency window and a full streak target.
func studyDaysSince(now time.Time, params *scoring.Params) time.Time {
	lookback := max(params.FrequencyWindowDays, params.StreakTarget) + 1
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -lookback)
}

func wrapLoad(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
