package srs

import (
	"math"
	"time"
)

// EstimateRetention estimates the probability that a card is still recalled
// daysSinceReview days after its last review, given its current interval.
//
// The model is an exponential decay with a half-life of
// intervalDays * params.DecayHalfLifeMultiplier:
//
//	R = 2^(-days / halfLife)
//
// R is 1 at zero elapsed days and falls towards 0 as time passes. Negative
// elapsed time is treated as zero and intervals below one day as one day.
func EstimateRetention(daysSinceReview float64, intervalDays int, params *Params) float64 {
	if daysSinceReview <= 0 || math.IsNaN(daysSinceReview) {
		return 1.0
	}
	if intervalDays < 1 {
		intervalDays = 1
	}

	halfLife := float64(intervalDays) * params.DecayHalfLifeMultiplier
	if halfLife <= 0 {
		halfLife = float64(intervalDays)
	}

	r := math.Exp2(-daysSinceReview / halfLife)
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// DaysSince returns the fractional number of days between last and now.
// It returns 0 when last is after now.
func DaysSince(last, now time.Time) float64 {
	d := now.Sub(last)
	if d <= 0 {
		return 0
	}
	return d.Hours() / 24
}
