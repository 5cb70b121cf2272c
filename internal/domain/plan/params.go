package plan

import (
	"fmt"

	"github.com/synaptic/study-engine/internal/domain"
)

// Params holds the activity tables the generator draws from.
type Params struct {
	// ModeDurations is the base duration in minutes of each activity mode.
	ModeDurations map[domain.ActivityMode]int
	// StyleModes ranks activity modes per learning style.
	StyleModes map[domain.LearningStyle][]domain.ActivityMode
	// DefaultModes is used when no style, or an unknown one, is given.
	DefaultModes []domain.ActivityMode
	// NewMaterialMultiplier scales the base duration of first-day sessions.
	NewMaterialMultiplier int
	// AssessmentMode is scheduled on the last day of each week block.
	AssessmentMode domain.ActivityMode
	// FinalReviewMode is used for the optional final review day.
	FinalReviewMode domain.ActivityMode
	// MaxPlanDays caps the calendar span of a plan, start and end inclusive.
	MaxPlanDays int
}

// NewDefaultParams returns the standard activity tables.
func NewDefaultParams() *Params {
	return &Params{
		ModeDurations: map[domain.ActivityMode]int{
			domain.ModeReading:        45,
			domain.ModeVideo:          30,
			domain.ModeFlashcards:     20,
			domain.ModePracticeQuiz:   25,
			domain.ModeAudioSummary:   20,
			domain.ModeDiscussion:     30,
			domain.ModeHandsOn:        45,
			domain.ModeMindMap:        30,
			domain.ModeWrittenSummary: 30,
			domain.ModePracticeTest:   60,
		},
		StyleModes: map[domain.LearningStyle][]domain.ActivityMode{
			domain.StyleVisual: {
				domain.ModeVideo, domain.ModeMindMap, domain.ModeFlashcards,
				domain.ModePracticeQuiz, domain.ModeReading,
			},
			domain.StyleAuditory: {
				domain.ModeAudioSummary, domain.ModeDiscussion, domain.ModeFlashcards,
				domain.ModePracticeQuiz, domain.ModeReading,
			},
			domain.StyleKinesthetic: {
				domain.ModeHandsOn, domain.ModePracticeQuiz, domain.ModeFlashcards,
				domain.ModeMindMap,
			},
			domain.StyleReadingWriting: {
				domain.ModeReading, domain.ModeWrittenSummary, domain.ModeFlashcards,
				domain.ModePracticeQuiz,
			},
			domain.StyleMixed: {
				domain.ModeReading, domain.ModeVideo, domain.ModeFlashcards,
				domain.ModePracticeQuiz, domain.ModeHandsOn,
			},
		},
		DefaultModes: []domain.ActivityMode{
			domain.ModeReading, domain.ModeFlashcards, domain.ModePracticeQuiz,
			domain.ModeWrittenSummary,
		},
		NewMaterialMultiplier: 2,
		AssessmentMode:        domain.ModePracticeTest,
		FinalReviewMode:       domain.ModeFlashcards,
		MaxPlanDays:           366,
	}
}

// Validate checks every referenced mode has a positive base duration.
func (p *Params) Validate() error {
	if len(p.DefaultModes) == 0 {
		return domain.NewValidationError("default_modes", "cannot be empty", nil)
	}
	if p.MaxPlanDays < 1 {
		return domain.NewValidationError("max_plan_days", "must be at least 1", nil)
	}
	if p.NewMaterialMultiplier < 1 {
		return domain.NewValidationError("new_material_multiplier", "must be at least 1", nil)
	}

	check := func(mode domain.ActivityMode) error {
		if p.ModeDurations[mode] <= 0 {
			return domain.NewValidationError("mode_durations",
				fmt.Sprintf("missing positive duration for %q", mode), nil)
		}
		return nil
	}

	for _, mode := range append([]domain.ActivityMode{p.AssessmentMode, p.FinalReviewMode}, p.DefaultModes...) {
		if err := check(mode); err != nil {
			return err
		}
	}
	for style, modes := range p.StyleModes {
		if len(modes) == 0 {
			return domain.NewValidationError("style_modes", fmt.Sprintf("no modes for style %q", style), nil)
		}
		for _, mode := range modes {
			if err := check(mode); err != nil {
				return err
			}
		}
	}
	return nil
}
