package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReviewGrade represents the recall quality a learner reports for a card review.
type ReviewGrade string

// Possible review grade values
const (
	GradeAgain ReviewGrade = "again"
	GradeHard  ReviewGrade = "hard"
	GradeGood  ReviewGrade = "good"
	GradeEasy  ReviewGrade = "easy"
)

// Valid reports whether g is one of the enumerated grades.
func (g ReviewGrade) Valid() bool {
	switch g {
	case GradeAgain, GradeHard, GradeGood, GradeEasy:
		return true
	default:
		return false
	}
}

// Passing reports whether the grade counts as a successful recall.
func (g ReviewGrade) Passing() bool {
	return g == GradeHard || g == GradeGood || g == GradeEasy
}

// Quality maps the grade onto the 0-5 SM-2 quality scale.
// Invalid grades map to 0.
func (g ReviewGrade) Quality() int {
	switch g {
	case GradeAgain:
		return 1
	case GradeHard:
		return 3
	case GradeGood:
		return 4
	case GradeEasy:
		return 5
	default:
		return 0
	}
}

// ParseReviewGrade converts a string into a ReviewGrade.
// Matching is exact; anything else is rejected rather than coerced.
func ParseReviewGrade(s string) (ReviewGrade, error) {
	g := ReviewGrade(s)
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
	return g, nil
}

// GradeFromQuality converts a 0-5 SM-2 quality score into a ReviewGrade.
// Scores below 3 are failing recalls.
func GradeFromQuality(q int) (ReviewGrade, error) {
	switch {
	case q < 0 || q > 5:
		return "", fmt.Errorf("%w: quality %d outside 0-5", ErrInvalidGrade, q)
	case q < 3:
		return GradeAgain, nil
	case q == 3:
		return GradeHard, nil
	case q == 4:
		return GradeGood, nil
	default:
		return GradeEasy, nil
	}
}

// ReviewEvent is the persisted log entry for one applied review.
// The set of distinct review dates drives the consistency factor of readiness scoring.
type ReviewEvent struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	CardID       uuid.UUID   `json:"card_id" db:"card_id"`
	LearnerID    uuid.UUID   `json:"learner_id" db:"learner_id"`
	Grade        ReviewGrade `json:"grade" db:"grade"`
	IntervalDays int         `json:"interval_days" db:"interval_days"`
	EaseFactor   float64     `json:"ease_factor" db:"ease_factor"`
	ReviewedAt   time.Time   `json:"reviewed_at" db:"reviewed_at"`
}

// NewReviewEvent builds a log entry from a card that has just been rescheduled.
func NewReviewEvent(card *StudyCard, grade ReviewGrade, reviewedAt time.Time) *ReviewEvent {
	return &ReviewEvent{
		ID:           uuid.New(),
		CardID:       card.ID,
		LearnerID:    card.LearnerID,
		Grade:        grade,
		IntervalDays: card.IntervalDays,
		EaseFactor:   card.EaseFactor,
		ReviewedAt:   reviewedAt,
	}
}

// LearningStyle identifies the learner's preferred way of studying.
type LearningStyle string

// Supported learning styles
const (
	StyleVisual         LearningStyle = "visual"
	StyleAuditory       LearningStyle = "auditory"
	StyleKinesthetic    LearningStyle = "kinesthetic"
	StyleReadingWriting LearningStyle = "reading_writing"
	StyleMixed          LearningStyle = "mixed"
)

// ParseLearningStyle normalizes a style name. An empty string is accepted and
// means "no preference".
func ParseLearningStyle(s string) (LearningStyle, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch LearningStyle(normalized) {
	case "", StyleVisual, StyleAuditory, StyleKinesthetic, StyleReadingWriting, StyleMixed:
		return LearningStyle(normalized), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLearningStyle, s)
}

// LearnerProfile holds the per-learner preferences the engine consults.
type LearnerProfile struct {
	LearnerID     uuid.UUID     `json:"learner_id" db:"learner_id"`
	LearningStyle LearningStyle `json:"learning_style" db:"learning_style"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}
