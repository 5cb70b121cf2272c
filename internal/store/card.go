package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/synaptic/study-engine/internal/domain"
)

// CardStore defines the interface for study card persistence.
type CardStore interface {
	// CreateMultiple saves multiple cards to the store.
	// IMPORTANT: This method MUST be run within a transaction for atomicity.
	// Use WithTx together with store.RunInTransaction.
	//
	// Usage example:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sqlx.Tx) error {
	//       return cardStore.WithTx(tx).CreateMultiple(ctx, cards)
	//   })
	CreateMultiple(ctx context.Context, cards []*domain.StudyCard) error

	// GetByID retrieves a learner's card by its ID.
	// Returns ErrCardNotFound if the card does not exist or belongs to another learner.
	GetByID(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.StudyCard, error)

	// GetForUpdate retrieves a card with a row-level lock using SELECT FOR UPDATE.
	// It must be called inside a transaction; the lock serializes concurrent
	// review submissions for the same card.
	// Returns ErrCardNotFound if the card does not exist or belongs to another learner.
	GetForUpdate(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.StudyCard, error)

	// UpdateSchedule persists the scheduling state and counters of a card.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateSchedule(ctx context.Context, card *domain.StudyCard) error

	// ListByLearner returns every card owned by the learner, in creation order.
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.StudyCard, error)

	// ListDue returns at most limit cards whose next review is at or before now,
	// earliest due first. Cards that were never scheduled are included.
	ListDue(ctx context.Context, learnerID uuid.UUID, now time.Time, limit int) ([]*domain.StudyCard, error)

	// WithTx returns a CardStore that runs its queries on tx.
	WithTx(tx *sqlx.Tx) CardStore
}

// ReviewLogStore persists applied reviews.
type ReviewLogStore interface {
	// Create appends a review event.
	Create(ctx context.Context, event *domain.ReviewEvent) error

	// StudyDays returns the distinct days, at or after since, on which the
	// learner reviewed at least one card. Each day is midnight UTC.
	StudyDays(ctx context.Context, learnerID uuid.UUID, since time.Time) ([]time.Time, error)

	// ActiveLearners returns the learners with any review at or after since.
	ActiveLearners(ctx context.Context, since time.Time) ([]uuid.UUID, error)

	// WithTx returns a ReviewLogStore that runs its queries on tx.
	WithTx(tx *sqlx.Tx) ReviewLogStore
}
