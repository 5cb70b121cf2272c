package srs

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/synaptic/study-engine/internal/domain"
)

func newTestCard(ef float64, interval, reps int) *domain.StudyCard {
	return &domain.StudyCard{
		ID:           uuid.New(),
		LearnerID:    uuid.New(),
		Topic:        "Biology",
		EaseFactor:   ef,
		IntervalDays: interval,
		Repetitions:  reps,
		MaturityTier: Tier(reps, interval, NewDefaultParams()),
	}
}

func TestCalculateNewEaseFactor(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  float64
		grade    domain.ReviewGrade
		expected float64
	}{
		{
			name:     "Again applies the fixed penalty",
			current:  2.5,
			grade:    domain.GradeAgain,
			expected: 2.3, // 2.5 - 0.2
		},
		{
			name:     "Hard uses SM-2 quality 3",
			current:  2.5,
			grade:    domain.GradeHard,
			expected: 2.36, // 2.5 - 0.14
		},
		{
			name:     "Good leaves ease factor unchanged",
			current:  2.5,
			grade:    domain.GradeGood,
			expected: 2.5,
		},
		{
			name:     "Easy increases ease factor",
			current:  2.5,
			grade:    domain.GradeEasy,
			expected: 2.6,
		},
		{
			name:     "Again is floored",
			current:  1.35,
			grade:    domain.GradeAgain,
			expected: 1.3,
		},
		{
			name:     "Hard is floored",
			current:  1.4,
			grade:    domain.GradeHard,
			expected: 1.3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			newEF := calculateNewEaseFactor(tc.current, tc.grade, params)

			epsilon := 0.001
			if math.Abs(newEF-tc.expected) > epsilon {
				t.Errorf("Expected ease factor %f, got %f", tc.expected, newEF)
			}
		})
	}
}

func TestCalculateNewInterval(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		previous int
		reps     int
		ef       float64
		grade    domain.ReviewGrade
		expected int
	}{
		{"failing grade resets to one day", 40, 0, 2.5, domain.GradeAgain, 1},
		{"first repetition", 0, 1, 2.5, domain.GradeGood, 1},
		{"second repetition", 1, 2, 2.5, domain.GradeGood, 6},
		{"third repetition multiplies by ease", 6, 3, 2.5, domain.GradeGood, 15},
		{"rounds to nearest day", 6, 3, 2.36, domain.GradeHard, 14}, // 14.16
		{"rounds half up", 4, 4, 2.625, domain.GradeGood, 11},       // 10.5
		{"zero previous interval treated as one", 0, 3, 2.5, domain.GradeGood, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNewInterval(tc.previous, tc.reps, tc.ef, tc.grade, params)
			if got != tc.expected {
				t.Errorf("Expected interval %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestTier(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		reps     int
		interval int
		expected domain.MaturityTier
	}{
		{0, 0, domain.TierNew},
		{0, 1, domain.TierNew},
		{1, 1, domain.TierLearning},
		{2, 6, domain.TierLearning},
		{3, 15, domain.TierYoung},
		{3, 20, domain.TierYoung},
		{3, 21, domain.TierMature},
		{8, 120, domain.TierMature},
	}

	for _, tc := range testCases {
		if got := Tier(tc.reps, tc.interval, params); got != tc.expected {
			t.Errorf("Tier(%d, %d) = %s, want %s", tc.reps, tc.interval, got, tc.expected)
		}
	}

	custom := NewParams(ParamsConfig{LearningMaxRepetitions: 3, MatureIntervalDays: 30})
	if got := Tier(3, 25, custom); got != domain.TierLearning {
		t.Errorf("custom cutover: expected learning, got %s", got)
	}
	if got := Tier(4, 25, custom); got != domain.TierYoung {
		t.Errorf("custom cutover: expected young, got %s", got)
	}
}

func TestCalculateNextCard(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("good grade on second-repetition card", func(t *testing.T) {
		card := newTestCard(2.5, 6, 2)
		next := calculateNextCard(card, domain.GradeGood, now, params)

		expectedInterval := int(math.Round(6 * next.EaseFactor))
		if next.IntervalDays != expectedInterval {
			t.Errorf("Expected interval %d, got %d", expectedInterval, next.IntervalDays)
		}
		if next.Repetitions != 3 {
			t.Errorf("Expected 3 repetitions, got %d", next.Repetitions)
		}
		if next.MaturityTier != domain.TierYoung {
			t.Errorf("Expected young tier for a %d day interval, got %s", next.IntervalDays, next.MaturityTier)
		}
		if next.TimesReviewed != 1 || next.TimesCorrect != 1 {
			t.Errorf("Expected counters 1/1, got %d/%d", next.TimesReviewed, next.TimesCorrect)
		}
	})

	t.Run("good grade crossing the mature cutover", func(t *testing.T) {
		card := newTestCard(2.5, 10, 3)
		next := calculateNextCard(card, domain.GradeGood, now, params)
		if next.IntervalDays != 25 || next.MaturityTier != domain.TierMature {
			t.Errorf("Expected 25 days mature, got %d days %s", next.IntervalDays, next.MaturityTier)
		}
	})

	t.Run("failing grade counts review but not correct", func(t *testing.T) {
		card := newTestCard(2.5, 30, 5)
		card.TimesReviewed = 5
		card.TimesCorrect = 5
		next := calculateNextCard(card, domain.GradeAgain, now, params)

		if next.Repetitions != 0 || next.IntervalDays != 1 {
			t.Errorf("Expected reset to reps 0 / interval 1, got %d / %d", next.Repetitions, next.IntervalDays)
		}
		if next.TimesReviewed != 6 || next.TimesCorrect != 5 {
			t.Errorf("Expected counters 6/5, got %d/%d", next.TimesReviewed, next.TimesCorrect)
		}
		if next.MaturityTier != domain.TierNew {
			t.Errorf("Expected new tier after a lapse, got %s", next.MaturityTier)
		}
	})

	t.Run("timestamps are set from now", func(t *testing.T) {
		card := newTestCard(2.5, 0, 0)
		next := calculateNextCard(card, domain.GradeGood, now, params)

		if next.LastReviewedAt == nil || !next.LastReviewedAt.Equal(now) {
			t.Errorf("Expected last reviewed at %v, got %v", now, next.LastReviewedAt)
		}
		if next.NextReviewAt == nil || !next.NextReviewAt.Equal(now.AddDate(0, 0, 1)) {
			t.Errorf("Expected next review tomorrow, got %v", next.NextReviewAt)
		}
		if !next.UpdatedAt.Equal(now) {
			t.Errorf("Expected updated at %v, got %v", now, next.UpdatedAt)
		}
	})

	t.Run("input card is not modified", func(t *testing.T) {
		card := newTestCard(2.5, 6, 2)
		_ = calculateNextCard(card, domain.GradeEasy, now, params)
		if card.Repetitions != 2 || card.IntervalDays != 6 || card.EaseFactor != 2.5 ||
			card.LastReviewedAt != nil {
			t.Errorf("input card was mutated: %+v", card)
		}
	})
}

func TestRepeatedFailuresAlwaysReset(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	starts := []*domain.StudyCard{
		newTestCard(2.5, 0, 0),
		newTestCard(1.3, 1, 1),
		newTestCard(2.8, 90, 9),
		newTestCard(1.9, 14, 3),
	}

	for _, card := range starts {
		current := card
		for i := 0; i < 6; i++ {
			current = calculateNextCard(current, domain.GradeAgain, now.AddDate(0, 0, i), params)
			if current.IntervalDays != 1 || current.Repetitions != 0 {
				t.Fatalf("failure %d from %+v: interval %d reps %d", i, card, current.IntervalDays, current.Repetitions)
			}
		}
	}
}

func TestEaseFactorNeverBelowFloor(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	grades := []domain.ReviewGrade{
		domain.GradeAgain, domain.GradeHard, domain.GradeAgain, domain.GradeHard,
		domain.GradeGood, domain.GradeAgain, domain.GradeHard, domain.GradeHard,
		domain.GradeEasy, domain.GradeAgain, domain.GradeAgain, domain.GradeHard,
	}

	card := newTestCard(2.5, 0, 0)
	for i, g := range grades {
		card = calculateNextCard(card, g, now.AddDate(0, 0, i), params)
		if card.EaseFactor < params.MinEaseFactor {
			t.Fatalf("after grade %d (%s) ease %f dropped below floor %f", i, g, card.EaseFactor, params.MinEaseFactor)
		}
	}
}
