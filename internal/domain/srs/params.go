package srs

import (
	"fmt"

	"github.com/synaptic/study-engine/internal/domain"
)

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Core limits
	MinEaseFactor     float64
	DefaultEaseFactor float64

	// FailEasePenalty is subtracted from the ease factor on a failing grade
	FailEasePenalty float64

	// Interval schedule for the first two successful repetitions
	FirstInterval  int
	SecondInterval int

	// Maturity tier cutovers
	LearningMaxRepetitions int
	MatureIntervalDays     int

	// DecayHalfLifeMultiplier scales the interval to get the retention half-life.
	// With 1.0 the estimated retention is 50% when the elapsed time equals the interval.
	DecayHalfLifeMultiplier float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	MinEaseFactor           float64
	DefaultEaseFactor       float64
	FailEasePenalty         float64
	FirstInterval           int
	SecondInterval          int
	LearningMaxRepetitions  int
	MatureIntervalDays      int
	DecayHalfLifeMultiplier float64
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:     1.3,
		DefaultEaseFactor: domain.DefaultEaseFactor,
		FailEasePenalty:   0.20,

		FirstInterval:  1,
		SecondInterval: 6,

		LearningMaxRepetitions: 2,
		MatureIntervalDays:     21,

		DecayHalfLifeMultiplier: 1.0,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.DefaultEaseFactor > 0 {
		params.DefaultEaseFactor = config.DefaultEaseFactor
	}
	if config.FailEasePenalty > 0 {
		params.FailEasePenalty = config.FailEasePenalty
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.LearningMaxRepetitions > 0 {
		params.LearningMaxRepetitions = config.LearningMaxRepetitions
	}
	if config.MatureIntervalDays > 0 {
		params.MatureIntervalDays = config.MatureIntervalDays
	}
	if config.DecayHalfLifeMultiplier > 0 {
		params.DecayHalfLifeMultiplier = config.DecayHalfLifeMultiplier
	}

	return params
}

// Validate checks that the parameters describe a usable schedule.
func (p *Params) Validate() error {
	if p.MinEaseFactor <= 1.0 {
		return domain.NewValidationError("min_ease_factor", "must be greater than 1.0", nil)
	}
	if p.DefaultEaseFactor < p.MinEaseFactor {
		return domain.NewValidationError("default_ease_factor",
			fmt.Sprintf("must be at least the floor %.2f", p.MinEaseFactor), nil)
	}
	if p.FailEasePenalty < 0 {
		return domain.NewValidationError("fail_ease_penalty", "cannot be negative", nil)
	}
	if p.FirstInterval < 1 || p.SecondInterval < p.FirstInterval {
		return domain.NewValidationError("intervals", "need 1 <= first <= second", nil)
	}
	if p.LearningMaxRepetitions < 1 {
		return domain.NewValidationError("learning_max_repetitions", "must be at least 1", nil)
	}
	if p.MatureIntervalDays < 1 {
		return domain.NewValidationError("mature_interval_days", "must be at least 1", nil)
	}
	if p.DecayHalfLifeMultiplier <= 0 {
		return domain.NewValidationError("decay_half_life_multiplier", "must be positive", nil)
	}
	return nil
}
