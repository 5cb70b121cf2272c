package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTopic is used for cards created without a topic label.
const DefaultTopic = "General"

// DefaultEaseFactor is the ease factor assigned to a card that has never been reviewed.
const DefaultEaseFactor = 2.5

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardLearnerIDEmpty is returned when a card's learner ID is empty or nil.
	ErrCardLearnerIDEmpty = errors.New("card learner ID cannot be empty")

	// ErrInvalidInterval is returned when a card carries a negative interval.
	ErrInvalidInterval = errors.New("interval must be greater than or equal to 0")

	// ErrInvalidEaseFactor is returned when a card carries an ease factor at or below 1.0.
	ErrInvalidEaseFactor = errors.New("ease factor must be greater than 1.0")

	// ErrInvalidCounters is returned when review counters are negative or inconsistent.
	ErrInvalidCounters = errors.New("review counters are inconsistent")
)

// MaturityTier is a coarse bucket summarizing how well-learned a card is.
// Tiers are only ever assigned by the review scheduler.
type MaturityTier string

// Maturity tiers, from least to most learned.
const (
	TierNew      MaturityTier = "new"
	TierLearning MaturityTier = "learning"
	TierYoung    MaturityTier = "young"
	TierMature   MaturityTier = "mature"
)

// Valid reports whether t is one of the known tiers.
func (t MaturityTier) Valid() bool {
	switch t {
	case TierNew, TierLearning, TierYoung, TierMature:
		return true
	default:
		return false
	}
}

// StudyCard is one memorizable unit owned by a learner, together with its
// spaced repetition scheduling state.
type StudyCard struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	LearnerID        uuid.UUID    `json:"learner_id" db:"learner_id"`
	Topic            string       `json:"topic" db:"topic"`
	SourceDocumentID *uuid.UUID   `json:"source_document_id,omitempty" db:"source_document_id"`
	Front            string       `json:"front" db:"front"`
	Back             string       `json:"back" db:"back"`
	EaseFactor       float64      `json:"ease_factor" db:"ease_factor"`
	IntervalDays     int          `json:"interval_days" db:"interval_days"`
	Repetitions      int          `json:"repetitions" db:"repetitions"`
	MaturityTier     MaturityTier `json:"maturity_tier" db:"maturity_tier"`
	TimesReviewed    int          `json:"times_reviewed" db:"times_reviewed"`
	TimesCorrect     int          `json:"times_correct" db:"times_correct"`
	LastReviewedAt   *time.Time   `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
	NextReviewAt     *time.Time   `json:"next_review_at,omitempty" db:"next_review_at"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// NewStudyCard creates a new, never-reviewed card for a learner.
// An empty topic is replaced with DefaultTopic.
func NewStudyCard(learnerID uuid.UUID, topic, front, back string) (*StudyCard, error) {
	now := time.Now().UTC()
	card := &StudyCard{
		ID:           uuid.New(),
		LearnerID:    learnerID,
		Topic:        NormalizeTopic(topic),
		Front:        front,
		Back:         back,
		EaseFactor:   DefaultEaseFactor,
		MaturityTier: TierNew,
		NextReviewAt: &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the StudyCard has valid data.
func (c *StudyCard) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrCardIDEmpty)
	}
	if c.LearnerID == uuid.Nil {
		return NewValidationError("learner_id", "cannot be empty", ErrCardLearnerIDEmpty)
	}
	if c.IntervalDays < 0 {
		return NewValidationError("interval_days", "cannot be negative", ErrInvalidInterval)
	}
	if c.EaseFactor <= 1.0 {
		return NewValidationError("ease_factor", "must be greater than 1.0", ErrInvalidEaseFactor)
	}
	if c.Repetitions < 0 || c.TimesReviewed < 0 || c.TimesCorrect < 0 ||
		c.TimesCorrect > c.TimesReviewed {
		return NewValidationError("counters", "must be non-negative and correct <= reviewed", ErrInvalidCounters)
	}
	if !c.MaturityTier.Valid() {
		return NewValidationError("maturity_tier", "unknown tier", ErrValidation)
	}
	return nil
}

// Accuracy returns the fraction of reviews answered correctly, or 0 for a card
// that has never been reviewed.
func (c *StudyCard) Accuracy() float64 {
	if c.TimesReviewed == 0 {
		return 0
	}
	return float64(c.TimesCorrect) / float64(c.TimesReviewed)
}

// Reviewed reports whether the card has at least one recorded review.
func (c *StudyCard) Reviewed() bool {
	return c.LastReviewedAt != nil && !c.LastReviewedAt.IsZero()
}

// Clone returns a deep copy of the card.
func (c *StudyCard) Clone() *StudyCard {
	clone := *c
	if c.SourceDocumentID != nil {
		id := *c.SourceDocumentID
		clone.SourceDocumentID = &id
	}
	if c.LastReviewedAt != nil {
		t := *c.LastReviewedAt
		clone.LastReviewedAt = &t
	}
	if c.NextReviewAt != nil {
		t := *c.NextReviewAt
		clone.NextReviewAt = &t
	}
	return &clone
}

// TopicKey is the identity of a topic: labels that differ only in case or
// surrounding space name the same topic.
func TopicKey(topic string) string {
	return strings.ToLower(NormalizeTopic(topic))
}

// NormalizeTopic trims a topic label and falls back to DefaultTopic.
func NormalizeTopic(topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return DefaultTopic
	}
	return topic
}
