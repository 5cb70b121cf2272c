package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/store"
)

const cardColumns = `
	id, learner_id, topic, source_document_id, front, back,
	ease_factor, interval_days, repetitions, maturity_tier,
	times_reviewed, times_correct, last_reviewed_at, next_review_at,
	created_at, updated_at`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sqlx.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger}
}

// CreateMultiple implements store.CardStore.CreateMultiple
// Every card is validated before any insert is issued.
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []*domain.StudyCard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}

	for _, card := range cards {
		card.Topic = domain.NormalizeTopic(card.Topic)
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during create",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return err
		}
	}

	query := `
		INSERT INTO study_cards (` + cardColumns + `)
		VALUES (
			:id, :learner_id, :topic, :source_document_id, :front, :back,
			:ease_factor, :interval_days, :repetitions, :maturity_tier,
			:times_reviewed, :times_correct, :last_reviewed_at, :next_review_at,
			:created_at, :updated_at)
	`
	for _, card := range cards {
		if _, err := s.db.NamedExecContext(ctx, query, card); err != nil {
			log.Error("failed to create card",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return MapError(err)
		}
	}

	log.Info("cards created successfully", slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.StudyCard, error) {
	query := `SELECT ` + cardColumns + ` FROM study_cards WHERE id = $1 AND learner_id = $2`
	return s.getOne(ctx, query, learnerID, cardID)
}

// GetForUpdate implements store.CardStore.GetForUpdate
// The row stays locked until the surrounding transaction ends.
func (s *PostgresCardStore) GetForUpdate(
	ctx context.Context,
	learnerID, cardID uuid.UUID,
) (*domain.StudyCard, error) {
	query := `SELECT ` + cardColumns + ` FROM study_cards WHERE id = $1 AND learner_id = $2 FOR UPDATE`
	return s.getOne(ctx, query, learnerID, cardID)
}

func (s *PostgresCardStore) getOne(
	ctx context.Context,
	query string,
	learnerID, cardID uuid.UUID,
) (*domain.StudyCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var card domain.StudyCard
	if err := s.db.GetContext(ctx, &card, query, cardID, learnerID); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			log.Debug("card not found",
				slog.String("card_id", cardID.String()),
				slog.String("learner_id", learnerID.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, mapped
	}
	return &card, nil
}

// UpdateSchedule implements store.CardStore.UpdateSchedule
func (s *PostgresCardStore) UpdateSchedule(ctx context.Context, card *domain.StudyCard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during schedule update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		UPDATE study_cards
		SET ease_factor = :ease_factor,
			interval_days = :interval_days,
			repetitions = :repetitions,
			maturity_tier = :maturity_tier,
			times_reviewed = :times_reviewed,
			times_correct = :times_correct,
			last_reviewed_at = :last_reviewed_at,
			next_review_at = :next_review_at,
			updated_at = :updated_at
		WHERE id = :id AND learner_id = :learner_id
	`
	result, err := s.db.NamedExecContext(ctx, query, card)
	if err != nil {
		log.Error("failed to update card schedule",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		log.Debug("card not found for schedule update", slog.String("card_id", card.ID.String()))
		return err
	}

	log.Debug("card schedule updated",
		slog.String("card_id", card.ID.String()),
		slog.Int("interval_days", card.IntervalDays),
		slog.String("tier", string(card.MaturityTier)))
	return nil
}

// ListByLearner implements store.CardStore.ListByLearner
func (s *PostgresCardStore) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.StudyCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM study_cards WHERE learner_id = $1 ORDER BY created_at, id`

	cards := []*domain.StudyCard{}
	if err := s.db.SelectContext(ctx, &cards, query, learnerID); err != nil {
		log.Error("failed to list cards",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}

	log.Debug("listed cards",
		slog.String("learner_id", learnerID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// ListDue implements store.CardStore.ListDue
func (s *PostgresCardStore) ListDue(
	ctx context.Context,
	learnerID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.StudyCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + cardColumns + `
		FROM study_cards
		WHERE learner_id = $1 AND (next_review_at IS NULL OR next_review_at <= $2)
		ORDER BY next_review_at ASC NULLS FIRST, created_at ASC
		LIMIT $3
	`

	cards := []*domain.StudyCard{}
	if err := s.db.SelectContext(ctx, &cards, query, learnerID, now, limit); err != nil {
		log.Error("failed to list due cards",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}
	return cards, nil
}
