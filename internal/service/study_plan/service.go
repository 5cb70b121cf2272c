// Package study_plan turns a curriculum and a date range into a persisted,
// day-by-day study plan.
package study_plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/domain/plan"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/service"
	"github.com/synaptic/study-engine/internal/store"
)

const opGenerate = "generate_plan"

// Errors returned by GeneratePlan besides the plan package's validation errors.
var (
	ErrCurriculumNotFound  = store.ErrCurriculumNotFound
	ErrExamNotFound        = store.ErrExamNotFound
	ErrMissingEndDate      = fmt.Errorf("%w: end date or exam is required", domain.ErrValidation)
	ErrNoSessionsGenerated = plan.ErrNoSessionsGenerated
)

// PlanRequest describes the plan a learner asks for.
type PlanRequest struct {
	CurriculumID uuid.UUID
	// ExamID supplies the end date when EndDate is nil.
	ExamID    *uuid.UUID
	StartDate time.Time
	EndDate   *time.Time

	DailyTargetMinutes int
	IncludeWeekends    bool
	IncludeFinalReview bool
	// LearningStyle overrides the learner profile when set.
	LearningStyle domain.LearningStyle
}

// StudyPlanService generates and stores study plans.
type StudyPlanService interface {
	// GeneratePlan builds the plan and stores the header and every session in
	// one transaction.
	GeneratePlan(ctx context.Context, learnerID uuid.UUID, req PlanRequest) (*domain.StudyPlan, error)
}

// Stores groups the repositories the service uses.
type Stores struct {
	Curricula store.CurriculumStore
	Plans     store.PlanStore
	Learners  store.LearnerStore
	Exams     store.ExamStore
}

type studyPlanServiceImpl struct {
	db        *sqlx.DB
	stores    Stores
	generator *plan.Generator
	now       func() time.Time
	logger    *slog.Logger
}

var _ StudyPlanService = (*studyPlanServiceImpl)(nil)

// NewStudyPlanService creates a StudyPlanService. now may be nil.
func NewStudyPlanService(
	db *sqlx.DB,
	stores Stores,
	generator *plan.Generator,
	now func() time.Time,
	logger *slog.Logger,
) StudyPlanService {
	if db == nil {
		panic("db cannot be nil")
	}
	if stores.Curricula == nil || stores.Plans == nil || stores.Learners == nil || stores.Exams == nil {
		panic("all study plan stores are required")
	}
	if generator == nil {
		panic("generator cannot be nil")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &studyPlanServiceImpl{
		db:        db,
		stores:    stores,
		generator: generator,
		now:       now,
		logger:    logger.With(slog.String("component", "study_plan_service")),
	}
}

// GeneratePlan implements StudyPlanService.GeneratePlan.
func (s *studyPlanServiceImpl) GeneratePlan(
	ctx context.Context,
	learnerID uuid.UUID,
	req PlanRequest,
) (*domain.StudyPlan, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learner_id", learnerID.String()),
		slog.String("curriculum_id", req.CurriculumID.String()))
	now := s.now()

	weeks, err := s.stores.Curricula.GetWeeks(ctx, learnerID, req.CurriculumID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCurriculumNotFound
		}
		log.Error("failed to load curriculum", slog.String("error", err.Error()))
		return nil, service.NewServiceError(opGenerate, "failed to load curriculum", err)
	}

	endDate, err := s.resolveEndDate(ctx, learnerID, req)
	if err != nil {
		return nil, err
	}

	style, err := s.resolveStyle(ctx, learnerID, req.LearningStyle)
	if err != nil {
		return nil, err
	}

	start := req.StartDate
	if start.IsZero() {
		start = now
	}

	generated, err := s.generator.Generate(plan.Request{
		Weeks:              weeks,
		StartDate:          start,
		EndDate:            endDate,
		DailyTargetMinutes: req.DailyTargetMinutes,
		IncludeWeekends:    req.IncludeWeekends,
		LearningStyle:      style,
		Today:              now,
		IncludeFinalReview: req.IncludeFinalReview,
	})
	if err != nil {
		log.Warn("plan request rejected", slog.String("error", err.Error()))
		return nil, err
	}
	if generated.TotalSessions == 0 {
		log.Warn("no study days in requested range",
			slog.Time("start", start), slog.Time("end", endDate))
		return nil, ErrNoSessionsGenerated
	}

	curriculumID := req.CurriculumID
	studyPlan := &domain.StudyPlan{
		ID:              generated.ID,
		LearnerID:       learnerID,
		CurriculumID:    &curriculumID,
		ExamID:          req.ExamID,
		StartDate:       generated.StartDate,
		EndDate:         generated.EndDate,
		DailyTarget:     req.DailyTargetMinutes,
		IncludeWeekends: req.IncludeWeekends,
		LearningStyle:   style,
		TotalSessions:   generated.TotalSessions,
		TotalHours:      generated.TotalHours,
		WeekCount:       generated.WeekCount,
		CreatedAt:       now,
		Sessions:        generated.Sessions,
	}
	for i := range studyPlan.Sessions {
		studyPlan.Sessions[i].LearnerID = learnerID
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		plans := s.stores.Plans.WithTx(tx)
		if err := plans.Create(ctx, studyPlan); err != nil {
			return fmt.Errorf("failed to create plan: %w", err)
		}
		if err := plans.CreateSessions(ctx, studyPlan.Sessions); err != nil {
			return fmt.Errorf("failed to create sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to store study plan", slog.String("error", err.Error()))
		return nil, service.NewServiceError(opGenerate, "failed to store study plan", err)
	}

	log.Info("study plan generated",
		slog.String("plan_id", studyPlan.ID.String()),
		slog.Int("sessions", studyPlan.TotalSessions),
		slog.Float64("hours", studyPlan.TotalHours))
	return studyPlan, nil
}

func (s *studyPlanServiceImpl) resolveEndDate(
	ctx context.Context,
	learnerID uuid.UUID,
	req PlanRequest,
) (time.Time, error) {
	if req.EndDate != nil {
		return *req.EndDate, nil
	}
	if req.ExamID == nil {
		return time.Time{}, ErrMissingEndDate
	}

	exam, err := s.stores.Exams.GetByID(ctx, learnerID, *req.ExamID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return time.Time{}, ErrExamNotFound
		}
		return time.Time{}, service.NewServiceError(opGenerate, "failed to load exam", err)
	}
	return exam.ExamDate, nil
}

// resolveStyle prefers an explicit style and falls back to the learner profile.
// A learner without a profile gets the default activity modes.
func (s *studyPlanServiceImpl) resolveStyle(
	ctx context.Context,
	learnerID uuid.UUID,
	explicit domain.LearningStyle,
) (domain.LearningStyle, error) {
	if explicit != "" {
		return explicit, nil
	}

	profile, err := s.stores.Learners.GetProfile(ctx, learnerID)
	switch {
	case errors.Is(err, store.ErrLearnerNotFound):
		return "", nil
	case err != nil:
		return "", service.NewServiceError(opGenerate, "failed to load learner profile", err)
	}
	return profile.LearningStyle, nil
}
