package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/store"
)

// PostgresAssessmentStore reads attempts written by the assessment subsystem.
type PostgresAssessmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAssessmentStore creates an assessment store.
func NewPostgresAssessmentStore(db store.DBTX, logger *slog.Logger) *PostgresAssessmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAssessmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "assessment_store")),
	}
}

var _ store.AssessmentStore = (*PostgresAssessmentStore)(nil)

type attemptRow struct {
	ID             uuid.UUID  `db:"id"`
	LearnerID      uuid.UUID  `db:"learner_id"`
	ExamID         *uuid.UUID `db:"exam_id"`
	TotalQuestions int        `db:"total_questions"`
	CorrectCount   int        `db:"correct_count"`
	TopicScores    []byte     `db:"topic_scores"`
	CompletedAt    time.Time  `db:"completed_at"`
}

func (r attemptRow) toDomain() (domain.AssessmentAttempt, error) {
	a := domain.AssessmentAttempt{
		ID:             r.ID,
		LearnerID:      r.LearnerID,
		ExamID:         r.ExamID,
		TotalQuestions: r.TotalQuestions,
		CorrectCount:   r.CorrectCount,
		CompletedAt:    r.CompletedAt,
	}
	if len(r.TopicScores) > 0 {
		if err := json.Unmarshal(r.TopicScores, &a.TopicScores); err != nil {
			return a, fmt.Errorf("invalid topic_scores for attempt %s: %w", r.ID, err)
		}
	}
	return a, nil
}

// ListRecent implements store.AssessmentStore.ListRecent
func (s *PostgresAssessmentStore) ListRecent(
	ctx context.Context,
	learnerID uuid.UUID,
	examID *uuid.UUID,
	limit int,
) ([]domain.AssessmentAttempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, learner_id, exam_id, total_questions, correct_count, topic_scores, completed_at
		FROM assessment_attempts
		WHERE learner_id = $1 AND ($2::uuid IS NULL OR exam_id = $2)
		ORDER BY completed_at DESC
		LIMIT $3
	`
	var rows []attemptRow
	if err := s.db.SelectContext(ctx, &rows, query, learnerID, examID, limit); err != nil {
		log.Error("failed to list assessment attempts",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}

	attempts := make([]domain.AssessmentAttempt, 0, len(rows))
	for _, r := range rows {
		a, err := r.toDomain()
		if err != nil {
			// A malformed breakdown does not invalidate the overall score.
			log.Warn("ignoring malformed topic scores",
				slog.String("error", err.Error()),
				slog.String("attempt_id", r.ID.String()))
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

// PostgresExamStore reads exam definitions.
type PostgresExamStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresExamStore creates an exam store.
func NewPostgresExamStore(db store.DBTX, logger *slog.Logger) *PostgresExamStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresExamStore{
		db:     db,
		logger: logger.With(slog.String("component", "exam_store")),
	}
}

var _ store.ExamStore = (*PostgresExamStore)(nil)

type examRow struct {
	ID        uuid.UUID      `db:"id"`
	LearnerID uuid.UUID      `db:"learner_id"`
	Title     string         `db:"title"`
	ExamDate  time.Time      `db:"exam_date"`
	Topics    pq.StringArray `db:"topics"`
	CreatedAt time.Time      `db:"created_at"`
}

// GetByID implements store.ExamStore.GetByID
func (s *PostgresExamStore) GetByID(ctx context.Context, learnerID, examID uuid.UUID) (*domain.Exam, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, learner_id, title, exam_date, topics, created_at
		FROM exams
		WHERE id = $1 AND learner_id = $2
	`
	var row examRow
	if err := s.db.GetContext(ctx, &row, query, examID, learnerID); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			log.Debug("exam not found", slog.String("exam_id", examID.String()))
			return nil, store.ErrExamNotFound
		}
		log.Error("failed to get exam",
			slog.String("error", err.Error()),
			slog.String("exam_id", examID.String()))
		return nil, mapped
	}

	return &domain.Exam{
		ID:        row.ID,
		LearnerID: row.LearnerID,
		Title:     row.Title,
		ExamDate:  row.ExamDate,
		Topics:    []string(row.Topics),
		CreatedAt: row.CreatedAt,
	}, nil
}
