package gaps

import (
	"github.com/synaptic/study-engine/internal/domain"
)

// Params holds the thresholds used to classify cards and topics.
type Params struct {
	// Card-level struggling detection
	LowEaseThreshold      float64
	MinReviewsForAccuracy int
	LowAccuracyThreshold  float64

	// Card-level decay detection
	StaleDaysThreshold float64
	AtRiskRetention    float64

	// Urgency cutovers
	CriticalEaseFloor    float64
	CriticalRetention    float64
	HighUrgencyRetention float64

	// Topic-level weakness
	TopicLowEase           float64
	TopicLowAccuracy       float64
	TopicLowRetention      float64
	TopicMasteryMinCards   int
	TopicLowMatureFraction float64
	MaxWeakTopics          int
}

// NewDefaultParams returns the standard thresholds.
func NewDefaultParams() *Params {
	return &Params{
		LowEaseThreshold:      1.8,
		MinReviewsForAccuracy: 3,
		LowAccuracyThreshold:  0.5,

		StaleDaysThreshold: 14,
		AtRiskRetention:    0.7,

		CriticalEaseFloor:    1.5,
		CriticalRetention:    0.4,
		HighUrgencyRetention: 0.55,

		TopicLowEase:           2.0,
		TopicLowAccuracy:       0.6,
		TopicLowRetention:      0.7,
		TopicMasteryMinCards:   5,
		TopicLowMatureFraction: 0.3,
		MaxWeakTopics:          5,
	}
}

// Merge returns a copy of p with every positive field of override applied.
func (p *Params) Merge(override Params) *Params {
	merged := *p
	setF := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	setI := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}

	setF(&merged.LowEaseThreshold, override.LowEaseThreshold)
	setI(&merged.MinReviewsForAccuracy, override.MinReviewsForAccuracy)
	setF(&merged.LowAccuracyThreshold, override.LowAccuracyThreshold)
	setF(&merged.StaleDaysThreshold, override.StaleDaysThreshold)
	setF(&merged.AtRiskRetention, override.AtRiskRetention)
	setF(&merged.CriticalEaseFloor, override.CriticalEaseFloor)
	setF(&merged.CriticalRetention, override.CriticalRetention)
	setF(&merged.HighUrgencyRetention, override.HighUrgencyRetention)
	setF(&merged.TopicLowEase, override.TopicLowEase)
	setF(&merged.TopicLowAccuracy, override.TopicLowAccuracy)
	setF(&merged.TopicLowRetention, override.TopicLowRetention)
	setI(&merged.TopicMasteryMinCards, override.TopicMasteryMinCards)
	setF(&merged.TopicLowMatureFraction, override.TopicLowMatureFraction)
	setI(&merged.MaxWeakTopics, override.MaxWeakTopics)

	return &merged
}

// Validate checks the thresholds are usable.
func (p *Params) Validate() error {
	for name, v := range map[string]float64{
		"low_accuracy_threshold":    p.LowAccuracyThreshold,
		"at_risk_retention":         p.AtRiskRetention,
		"critical_retention":        p.CriticalRetention,
		"high_urgency_retention":    p.HighUrgencyRetention,
		"topic_low_accuracy":        p.TopicLowAccuracy,
		"topic_low_retention":       p.TopicLowRetention,
		"topic_low_mature_fraction": p.TopicLowMatureFraction,
	} {
		if v < 0 || v > 1 {
			return domain.NewValidationError(name, "must be between 0 and 1", nil)
		}
	}
	if p.CriticalRetention > p.HighUrgencyRetention {
		return domain.NewValidationError("critical_retention", "cannot exceed high_urgency_retention", nil)
	}
	if p.MaxWeakTopics < 1 {
		return domain.NewValidationError("max_weak_topics", "must be at least 1", nil)
	}
	if p.StaleDaysThreshold < 0 {
		return domain.NewValidationError("stale_days_threshold", "cannot be negative", nil)
	}
	return nil
}
