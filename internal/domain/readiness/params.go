package readiness

import (
	"math"

	"github.com/synaptic/study-engine/internal/domain"
)

// Weights are the contributions of each factor to the overall score.
// They must sum to 1.
type Weights struct {
	TopicCoverage float64
	Mastery       float64
	MockExam      float64
	Consistency   float64
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.TopicCoverage + w.Mastery + w.MockExam + w.Consistency
}

// Params defines all tunables of the readiness scorer.
type Params struct {
	Weights Weights

	// Topic coverage
	MinCardsPerTopic int
	ExpectedTopics   int

	// Mastery tier weights on a 0-100 scale
	TierWeights map[domain.MaturityTier]float64

	// Mock exam performance
	ExamWindow       int
	ExamDecay        float64
	NeutralExamScore float64

	// Consistency
	StreakTarget        int
	FrequencyWindowDays int
	FrequencyTarget     int

	// TrendThreshold is the minimum score change counted as improving or declining.
	TrendThreshold int
}

// NewDefaultParams returns the standard scorer configuration.
func NewDefaultParams() *Params {
	return &Params{
		Weights: Weights{
			TopicCoverage: 0.30,
			Mastery:       0.35,
			MockExam:      0.25,
			Consistency:   0.10,
		},

		MinCardsPerTopic: 5,
		ExpectedTopics:   5,

		TierWeights: map[domain.MaturityTier]float64{
			domain.TierMature:   100,
			domain.TierYoung:    70,
			domain.TierLearning: 40,
			domain.TierNew:      10,
		},

		ExamWindow:       10,
		ExamDecay:        0.8,
		NeutralExamScore: 50,

		StreakTarget:        7,
		FrequencyWindowDays: 14,
		FrequencyTarget:     10,

		TrendThreshold: 5,
	}
}

// Validate checks that the parameters are consistent.
func (p *Params) Validate() error {
	w := p.Weights
	if w.TopicCoverage < 0 || w.Mastery < 0 || w.MockExam < 0 || w.Consistency < 0 {
		return domain.NewValidationError("weights", "cannot be negative", nil)
	}
	if math.Abs(w.Sum()-1) > 1e-6 {
		return domain.NewValidationError("weights", "must sum to 1", nil)
	}
	if p.MinCardsPerTopic < 1 || p.ExpectedTopics < 1 {
		return domain.NewValidationError("topic_coverage", "card and topic targets must be at least 1", nil)
	}
	for _, tier := range []domain.MaturityTier{
		domain.TierNew, domain.TierLearning, domain.TierYoung, domain.TierMature,
	} {
		v, ok := p.TierWeights[tier]
		if !ok || v < 0 || v > 100 {
			return domain.NewValidationError("tier_weights", "need a 0-100 weight for every tier", nil)
		}
	}
	if p.ExamWindow < 1 {
		return domain.NewValidationError("exam_window", "must be at least 1", nil)
	}
	if p.ExamDecay <= 0 || p.ExamDecay > 1 {
		return domain.NewValidationError("exam_decay", "must be in (0, 1]", nil)
	}
	if p.NeutralExamScore < 0 || p.NeutralExamScore > 100 {
		return domain.NewValidationError("neutral_exam_score", "must be between 0 and 100", nil)
	}
	if p.StreakTarget < 1 || p.FrequencyWindowDays < 1 || p.FrequencyTarget < 1 {
		return domain.NewValidationError("consistency", "targets and window must be at least 1", nil)
	}
	if p.TrendThreshold < 0 {
		return domain.NewValidationError("trend_threshold", "cannot be negative", nil)
	}
	return nil
}
