// Package card_review applies review grades to study cards and lists the
// cards due for review.
package card_review

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/store"
)

// ReviewRequest is a learner's grade for one card.
type ReviewRequest struct {
	Grade domain.ReviewGrade
	// IdempotencyKey, when set, makes a replayed submission return the
	// original result instead of applying the grade again.
	IdempotencyKey string
}

// ReviewResult is the outcome of a review submission.
type ReviewResult struct {
	Card       *domain.StudyCard   `json:"card"`
	Event      *domain.ReviewEvent `json:"event"`
	Retention  float64             `json:"retention"`
	Replayed   bool                `json:"replayed"`
	ReviewedAt time.Time           `json:"reviewed_at"`
}

// CardReviewService provides methods for reviewing study cards
// using the spaced repetition scheduler.
type CardReviewService interface {
	// ListDue returns at most limit cards whose next review is due, earliest first.
	ListDue(ctx context.Context, learnerID uuid.UUID, limit int) ([]*domain.StudyCard, error)

	// SubmitReview applies grade to the card inside one transaction:
	// the card row is locked, the next state is computed, and the card and
	// a review event are written.
	//
	// Errors:
	//   - ErrInvalidGrade for a grade outside again/hard/good/easy
	//   - ErrCardNotFound when the card does not exist for the learner
	//   - store.ErrRequestInProgress when the idempotency key is still in use
	//   - ErrPersistFailed (wrapped in *service.ServiceError) when the
	//     computed state could not be saved; retry the whole submission
	SubmitReview(ctx context.Context, learnerID, cardID uuid.UUID, req ReviewRequest) (*ReviewResult, error)
}

// Common error types for CardReviewService
var (
	// ErrCardNotFound indicates that the card does not exist or belongs to another learner.
	ErrCardNotFound = store.ErrCardNotFound

	// ErrInvalidGrade indicates an invalid grade was provided.
	ErrInvalidGrade = domain.ErrInvalidGrade

	// ErrPersistFailed indicates the scheduled state was computed but could not be saved.
	ErrPersistFailed = errors.New("failed to persist review")
)
