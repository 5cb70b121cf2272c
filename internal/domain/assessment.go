package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentAttempt is a completed practice-exam result produced by the
// assessment subsystem. The engine only reads these.
type AssessmentAttempt struct {
	ID             uuid.UUID          `json:"id" db:"id"`
	LearnerID      uuid.UUID          `json:"learner_id" db:"learner_id"`
	ExamID         *uuid.UUID         `json:"exam_id,omitempty" db:"exam_id"`
	TotalQuestions int                `json:"total_questions" db:"total_questions"`
	CorrectCount   int                `json:"correct_count" db:"correct_count"`
	TopicScores    map[string]float64 `json:"topic_scores,omitempty" db:"-"`
	CompletedAt    time.Time          `json:"completed_at" db:"completed_at"`
}

// ScorePercent returns the attempt score on a 0-100 scale.
// The second result is false when the attempt has no questions.
func (a *AssessmentAttempt) ScorePercent() (float64, bool) {
	if a.TotalQuestions <= 0 {
		return 0, false
	}
	correct := a.CorrectCount
	if correct < 0 {
		correct = 0
	}
	if correct > a.TotalQuestions {
		correct = a.TotalQuestions
	}
	return float64(correct) / float64(a.TotalQuestions) * 100, true
}

// Exam is a dated target a learner is preparing for. Topics, when present,
// define the scope readiness is measured against.
type Exam struct {
	ID        uuid.UUID `json:"id" db:"id"`
	LearnerID uuid.UUID `json:"learner_id" db:"learner_id"`
	Title     string    `json:"title" db:"title"`
	ExamDate  time.Time `json:"exam_date" db:"exam_date"`
	Topics    []string  `json:"topics,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Trend describes the direction of readiness relative to the previous snapshot.
type Trend string

// Trend values
const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// ReadinessSnapshot is a persisted point-in-time readiness result.
// Trend comparison always uses the most recent prior snapshot for the same
// learner and exam scope.
type ReadinessSnapshot struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	LearnerID           uuid.UUID  `json:"learner_id" db:"learner_id"`
	ExamID              *uuid.UUID `json:"exam_id,omitempty" db:"exam_id"`
	OverallScore        int        `json:"overall_score" db:"overall_score"`
	TopicCoverage       float64    `json:"topic_coverage" db:"topic_coverage"`
	MasteryLevel        float64    `json:"mastery_level" db:"mastery_level"`
	MockExamPerformance float64    `json:"mock_exam_performance" db:"mock_exam_performance"`
	ConsistencyBonus    float64    `json:"consistency_bonus" db:"consistency_bonus"`
	Trend               Trend      `json:"trend" db:"trend"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
}
