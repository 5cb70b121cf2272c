// Package gaps reports the cards and topics a learner is weakest on.
package gaps

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gapanalysis "github.com/synaptic/study-engine/internal/domain/gaps"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/service"
	"github.com/synaptic/study-engine/internal/store"
)

const opAnalyze = "analyze_gaps"

// ErrExamNotFound is returned when the requested exam scope does not exist.
var ErrExamNotFound = store.ErrExamNotFound

// GapService produces knowledge gap reports.
type GapService interface {
	// Analyze classifies the learner's cards. With an examID, exam topics
	// that have no cards are reported as weak topics.
	Analyze(ctx context.Context, learnerID uuid.UUID, examID *uuid.UUID) (*gapanalysis.Report, error)
}

type gapServiceImpl struct {
	cards    store.CardStore
	exams    store.ExamStore
	analyzer *gapanalysis.Analyzer
	now      func() time.Time
	logger   *slog.Logger
}

var _ GapService = (*gapServiceImpl)(nil)

// NewGapService creates a GapService. now may be nil.
func NewGapService(
	cards store.CardStore,
	exams store.ExamStore,
	analyzer *gapanalysis.Analyzer,
	now func() time.Time,
	logger *slog.Logger,
) GapService {
	if cards == nil || exams == nil {
		panic("cards and exams stores are required")
	}
	if analyzer == nil {
		panic("analyzer cannot be nil")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &gapServiceImpl{
		cards:    cards,
		exams:    exams,
		analyzer: analyzer,
		now:      now,
		logger:   logger.With(slog.String("component", "gap_service")),
	}
}

// Analyze implements GapService.Analyze.
func (s *gapServiceImpl) Analyze(
	ctx context.Context,
	learnerID uuid.UUID,
	examID *uuid.UUID,
) (*gapanalysis.Report, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("learner_id", learnerID.String()))

	var expected []string
	if examID != nil {
		exam, err := s.exams.GetByID(ctx, learnerID, *examID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil, ErrExamNotFound
			}
			log.Error("failed to load exam", slog.String("error", err.Error()))
			return nil, service.NewServiceError(opAnalyze, "failed to load exam", err)
		}
		expected = exam.Topics
	}

	cards, err := s.cards.ListByLearner(ctx, learnerID)
	if err != nil {
		log.Error("failed to load cards", slog.String("error", err.Error()))
		return nil, service.NewServiceError(opAnalyze, "failed to load cards", err)
	}

	report := s.analyzer.Analyze(cards, expected, s.now())

	log.Debug("gap analysis complete",
		slog.Int("total_cards", report.TotalCards),
		slog.Int("struggling", len(report.StrugglingCards)),
		slog.Int("at_risk", len(report.AtRiskCards)),
		slog.Int("weak_topics", len(report.WeakTopics)))
	return report, nil
}
