package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/synaptic/study-engine/internal/domain"
)

// Common errors
var (
	ErrNilCard      = errors.New("study card cannot be nil")
	ErrInvalidGrade = domain.ErrInvalidGrade
)

// Service defines the interface for SRS algorithm operations
type Service interface {
	// Schedule computes the card state after a review with the given grade.
	// The returned card is a new value; the input is not modified.
	// Applying the same grade twice advances the card twice, so callers must
	// not retry a Schedule+persist pair blindly.
	Schedule(card *domain.StudyCard, grade domain.ReviewGrade, now time.Time) (*domain.StudyCard, error)

	// Retention estimates the current recall probability of a card.
	// Cards that have never been reviewed report 1.
	Retention(card *domain.StudyCard, now time.Time) float64

	// Tier classifies a card's scheduling state into a maturity tier.
	Tier(repetitions, intervalDays int) domain.MaturityTier

	// Params returns the parameters the service was built with.
	Params() *Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters.
// It returns an error when the parameters are invalid.
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: srs params cannot be nil", domain.ErrValidation)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

// Schedule implements Service.Schedule
func (s *defaultService) Schedule(
	card *domain.StudyCard,
	grade domain.ReviewGrade,
	now time.Time,
) (*domain.StudyCard, error) {
	if card == nil {
		return nil, ErrNilCard
	}
	if !grade.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGrade, grade)
	}

	return calculateNextCard(card, grade, now, s.params), nil
}

// Retention implements Service.Retention
func (s *defaultService) Retention(card *domain.StudyCard, now time.Time) float64 {
	if card == nil || !card.Reviewed() {
		return 1.0
	}
	return EstimateRetention(DaysSince(*card.LastReviewedAt, now), card.IntervalDays, s.params)
}

// Tier implements Service.Tier
func (s *defaultService) Tier(repetitions, intervalDays int) domain.MaturityTier {
	return Tier(repetitions, intervalDays, s.params)
}

// Params implements Service.Params
func (s *defaultService) Params() *Params {
	return s.params
}
