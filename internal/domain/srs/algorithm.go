package srs

import (
	"math"
	"time"

	"github.com/synaptic/study-engine/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor based on the review grade.
//
// Passing grades use the canonical SM-2 update
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// where q is the grade's 0-5 quality. A failing grade subtracts
// params.FailEasePenalty instead. The result never drops below params.MinEaseFactor.
func calculateNewEaseFactor(currentEF float64, grade domain.ReviewGrade, params *Params) float64 {
	var newEF float64
	if grade.Passing() {
		q := float64(5 - grade.Quality())
		newEF = currentEF + (0.1 - q*(0.08+q*0.02))
	} else {
		newEF = currentEF - params.FailEasePenalty
	}

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	return newEF
}

// calculateNewInterval determines the next interval in days.
//
// repetitions is the consecutive-correct count after this review has been applied:
//   - a failing grade always yields 1 day
//   - the first successful repetition yields params.FirstInterval
//   - the second yields params.SecondInterval
//   - afterwards the previous interval is multiplied by the new ease factor and
//     rounded to the nearest whole day
func calculateNewInterval(
	previousInterval int,
	repetitions int,
	easeFactor float64,
	grade domain.ReviewGrade,
	params *Params,
) int {
	if !grade.Passing() {
		return 1
	}

	switch repetitions {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	}

	if previousInterval < 1 {
		previousInterval = 1
	}
	next := int(math.Round(float64(previousInterval) * easeFactor))
	if next < 1 {
		next = 1
	}
	return next
}

// Tier classifies a card from its scheduling state.
// This is the only place maturity tiers are decided.
func Tier(repetitions, intervalDays int, params *Params) domain.MaturityTier {
	switch {
	case repetitions <= 0:
		return domain.TierNew
	case repetitions <= params.LearningMaxRepetitions:
		return domain.TierLearning
	case intervalDays < params.MatureIntervalDays:
		return domain.TierYoung
	default:
		return domain.TierMature
	}
}

// calculateNextCard returns a copy of card with the review applied.
// The input card is never modified.
func calculateNextCard(
	card *domain.StudyCard,
	grade domain.ReviewGrade,
	now time.Time,
	params *Params,
) *domain.StudyCard {
	next := card.Clone()

	if next.EaseFactor <= 0 {
		next.EaseFactor = params.DefaultEaseFactor
	}

	next.TimesReviewed++
	if grade.Passing() {
		next.Repetitions++
		next.TimesCorrect++
	} else {
		next.Repetitions = 0
	}

	next.EaseFactor = calculateNewEaseFactor(next.EaseFactor, grade, params)
	next.IntervalDays = calculateNewInterval(
		card.IntervalDays,
		next.Repetitions,
		next.EaseFactor,
		grade,
		params,
	)
	next.MaturityTier = Tier(next.Repetitions, next.IntervalDays, params)

	reviewedAt := now
	due := now.AddDate(0, 0, next.IntervalDays)
	next.LastReviewedAt = &reviewedAt
	next.NextReviewAt = &due
	next.UpdatedAt = now

	return next
}
