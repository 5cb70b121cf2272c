package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/store"
)

// PostgresReviewLogStore implements store.ReviewLogStore.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a review log store. If logger is nil,
// a default logger will be used.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// WithTx implements store.ReviewLogStore.WithTx
func (s *PostgresReviewLogStore) WithTx(tx *sqlx.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{db: tx, logger: s.logger}
}

// Create implements store.ReviewLogStore.Create
func (s *PostgresReviewLogStore) Create(ctx context.Context, event *domain.ReviewEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO review_events (id, card_id, learner_id, grade, interval_days, ease_factor, reviewed_at)
		VALUES (:id, :card_id, :learner_id, :grade, :interval_days, :ease_factor, :reviewed_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, event); err != nil {
		log.Error("failed to record review",
			slog.String("error", err.Error()),
			slog.String("card_id", event.CardID.String()))
		return MapError(err)
	}
	return nil
}

// StudyDays implements store.ReviewLogStore.StudyDays
func (s *PostgresReviewLogStore) StudyDays(
	ctx context.Context,
	learnerID uuid.UUID,
	since time.Time,
) ([]time.Time, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT DISTINCT date_trunc('day', reviewed_at AT TIME ZONE 'UTC') AS day
		FROM review_events
		WHERE learner_id = $1 AND reviewed_at >= $2
		ORDER BY day
	`
	days := []time.Time{}
	if err := s.db.SelectContext(ctx, &days, query, learnerID, since); err != nil {
		log.Error("failed to load study days",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}

	for i, d := range days {
		days[i] = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	return days, nil
}

// ActiveLearners implements store.ReviewLogStore.ActiveLearners
func (s *PostgresReviewLogStore) ActiveLearners(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT DISTINCT learner_id FROM review_events WHERE reviewed_at >= $1 ORDER BY learner_id`
	ids := []uuid.UUID{}
	if err := s.db.SelectContext(ctx, &ids, query, since); err != nil {
		log.Error("failed to list active learners", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return ids, nil
}
