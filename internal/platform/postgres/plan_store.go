package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/store"
)

// PostgresCurriculumStore reads curriculum outlines.
type PostgresCurriculumStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCurriculumStore creates a curriculum store.
func NewPostgresCurriculumStore(db store.DBTX, logger *slog.Logger) *PostgresCurriculumStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCurriculumStore{
		db:     db,
		logger: logger.With(slog.String("component", "curriculum_store")),
	}
}

var _ store.CurriculumStore = (*PostgresCurriculumStore)(nil)

type curriculumWeekRow struct {
	CurriculumID uuid.UUID      `db:"curriculum_id"`
	WeekNumber   int            `db:"week_number"`
	Topic        string         `db:"topic"`
	Readings     pq.StringArray `db:"readings"`
	Assignments  pq.StringArray `db:"assignments"`
	Objectives   pq.StringArray `db:"objectives"`
}

// GetWeeks implements store.CurriculumStore.GetWeeks
func (s *PostgresCurriculumStore) GetWeeks(
	ctx context.Context,
	learnerID, curriculumID uuid.UUID,
) ([]domain.CurriculumWeek, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT w.curriculum_id, w.week_number, w.topic, w.readings, w.assignments, w.objectives
		FROM curriculum_weeks w
		JOIN curricula c ON c.id = w.curriculum_id
		WHERE c.id = $1 AND c.learner_id = $2
		ORDER BY w.week_number
	`
	var rows []curriculumWeekRow
	if err := s.db.SelectContext(ctx, &rows, query, curriculumID, learnerID); err != nil {
		log.Error("failed to load curriculum weeks",
			slog.String("error", err.Error()),
			slog.String("curriculum_id", curriculumID.String()))
		return nil, MapError(err)
	}
	if len(rows) == 0 {
		return nil, store.ErrCurriculumNotFound
	}

	weeks := make([]domain.CurriculumWeek, len(rows))
	for i, r := range rows {
		weeks[i] = domain.CurriculumWeek{
			CurriculumID: r.CurriculumID,
			WeekNumber:   r.WeekNumber,
			Topic:        r.Topic,
			Readings:     []string(r.Readings),
			Assignments:  []string(r.Assignments),
			Objectives:   []string(r.Objectives),
		}
	}
	return weeks, nil
}

// PostgresPlanStore implements store.PlanStore.
type PostgresPlanStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPlanStore creates a plan store.
func NewPostgresPlanStore(db store.DBTX, logger *slog.Logger) *PostgresPlanStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPlanStore{
		db:     db,
		logger: logger.With(slog.String("component", "plan_store")),
	}
}

var _ store.PlanStore = (*PostgresPlanStore)(nil)

// WithTx implements store.PlanStore.WithTx
func (s *PostgresPlanStore) WithTx(tx *sqlx.Tx) store.PlanStore {
	return &PostgresPlanStore{db: tx, logger: s.logger}
}

// Create implements store.PlanStore.Create
func (s *PostgresPlanStore) Create(ctx context.Context, plan *domain.StudyPlan) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO study_plans (
			id, learner_id, curriculum_id, exam_id, start_date, end_date,
			daily_target_minutes, include_weekends, learning_style,
			total_sessions, total_hours, week_count, created_at)
		VALUES (
			:id, :learner_id, :curriculum_id, :exam_id, :start_date, :end_date,
			:daily_target_minutes, :include_weekends, :learning_style,
			:total_sessions, :total_hours, :week_count, :created_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, plan); err != nil {
		log.Error("failed to create study plan",
			slog.String("error", err.Error()),
			slog.String("plan_id", plan.ID.String()))
		return MapError(err)
	}
	return nil
}

// CreateSessions implements store.PlanStore.CreateSessions
func (s *PostgresPlanStore) CreateSessions(ctx context.Context, sessions []domain.StudySession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(sessions) == 0 {
		return nil
	}

	query := `
		INSERT INTO study_sessions (
			id, plan_id, learner_id, scheduled_date, estimated_minutes,
			mode, topic, week_number, role, status)
		VALUES (
			:id, :plan_id, :learner_id, :scheduled_date, :estimated_minutes,
			:mode, :topic, :week_number, :role, :status)
	`
	for i := range sessions {
		if _, err := s.db.NamedExecContext(ctx, query, &sessions[i]); err != nil {
			log.Error("failed to create study session",
				slog.String("error", err.Error()),
				slog.String("plan_id", sessions[i].PlanID.String()),
				slog.Int("index", i))
			return MapError(err)
		}
	}

	log.Debug("study sessions created",
		slog.String("plan_id", sessions[0].PlanID.String()),
		slog.Int("count", len(sessions)))
	return nil
}

// PostgresLearnerStore reads learner preferences.
type PostgresLearnerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLearnerStore creates a learner store.
func NewPostgresLearnerStore(db store.DBTX, logger *slog.Logger) *PostgresLearnerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLearnerStore{
		db:     db,
		logger: logger.With(slog.String("component", "learner_store")),
	}
}

var _ store.LearnerStore = (*PostgresLearnerStore)(nil)

// GetProfile implements store.LearnerStore.GetProfile
func (s *PostgresLearnerStore) GetProfile(ctx context.Context, learnerID uuid.UUID) (*domain.LearnerProfile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT learner_id, learning_style, updated_at FROM learners WHERE learner_id = $1`
	var profile domain.LearnerProfile
	if err := s.db.GetContext(ctx, &profile, query, learnerID); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrLearnerNotFound
		}
		log.Error("failed to get learner profile",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, mapped
	}
	return &profile, nil
}
