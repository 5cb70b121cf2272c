package srs

import (
	"errors"
	"testing"

	"github.com/synaptic/study-engine/internal/domain"
)

func TestNewDefaultParams(t *testing.T) {
	params := NewDefaultParams()

	if params.MinEaseFactor != 1.3 {
		t.Errorf("MinEaseFactor should default to 1.3, got %f", params.MinEaseFactor)
	}
	if params.DefaultEaseFactor != 2.5 {
		t.Errorf("DefaultEaseFactor should default to 2.5, got %f", params.DefaultEaseFactor)
	}
	if params.FirstInterval != 1 || params.SecondInterval != 6 {
		t.Errorf("Expected 1/6 day opening intervals, got %d/%d", params.FirstInterval, params.SecondInterval)
	}
	if params.MatureIntervalDays != 21 {
		t.Errorf("MatureIntervalDays should default to 21, got %d", params.MatureIntervalDays)
	}
	if err := params.Validate(); err != nil {
		t.Errorf("default params should be valid: %v", err)
	}
}

func TestNewParams(t *testing.T) {
	params := NewParams(ParamsConfig{
		MinEaseFactor:      1.5,
		FailEasePenalty:    0.3,
		MatureIntervalDays: 30,
	})

	if params.MinEaseFactor != 1.5 {
		t.Errorf("Expected overridden MinEaseFactor 1.5, got %f", params.MinEaseFactor)
	}
	if params.FailEasePenalty != 0.3 {
		t.Errorf("Expected overridden FailEasePenalty 0.3, got %f", params.FailEasePenalty)
	}
	if params.MatureIntervalDays != 30 {
		t.Errorf("Expected overridden MatureIntervalDays 30, got %d", params.MatureIntervalDays)
	}
	// Unset fields keep defaults
	if params.SecondInterval != 6 {
		t.Errorf("Expected default SecondInterval 6, got %d", params.SecondInterval)
	}
	if params.DecayHalfLifeMultiplier != 1.0 {
		t.Errorf("Expected default multiplier 1.0, got %f", params.DecayHalfLifeMultiplier)
	}
}

func TestParamsValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(p *Params)
	}{
		{"floor at or below one", func(p *Params) { p.MinEaseFactor = 1.0 }},
		{"default below floor", func(p *Params) { p.DefaultEaseFactor = 1.2 }},
		{"negative penalty", func(p *Params) { p.FailEasePenalty = -0.1 }},
		{"second interval shorter than first", func(p *Params) { p.FirstInterval = 3; p.SecondInterval = 2 }},
		{"zero mature cutover", func(p *Params) { p.MatureIntervalDays = 0 }},
		{"zero decay multiplier", func(p *Params) { p.DecayHalfLifeMultiplier = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := NewDefaultParams()
			tc.mutate(params)
			err := params.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}
