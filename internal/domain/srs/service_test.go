package srs

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/synaptic/study-engine/internal/domain"
)

func TestServiceSchedule(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)

	t.Run("rejects nil card", func(t *testing.T) {
		_, err := svc.Schedule(nil, domain.GradeGood, now)
		if !errors.Is(err, ErrNilCard) {
			t.Errorf("expected ErrNilCard, got %v", err)
		}
	})

	t.Run("rejects grades outside the enumeration", func(t *testing.T) {
		for _, g := range []domain.ReviewGrade{"", "GOOD", "perfect", "3"} {
			_, err := svc.Schedule(newTestCard(2.5, 0, 0), g, now)
			if !errors.Is(err, ErrInvalidGrade) {
				t.Errorf("grade %q: expected ErrInvalidGrade, got %v", g, err)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("grade %q: expected ErrValidation, got %v", g, err)
			}
		}
	})

	t.Run("walks a new card to mature", func(t *testing.T) {
		card := newTestCard(2.5, 0, 0)
		wantIntervals := []int{1, 6, 15, 38}
		wantTiers := []domain.MaturityTier{
			domain.TierLearning, domain.TierLearning, domain.TierYoung, domain.TierMature,
		}

		for i := range wantIntervals {
			next, err := svc.Schedule(card, domain.GradeGood, now.AddDate(0, 0, i))
			if err != nil {
				t.Fatalf("review %d: unexpected error %v", i, err)
			}
			if next.IntervalDays != wantIntervals[i] {
				t.Errorf("review %d: expected interval %d, got %d", i, wantIntervals[i], next.IntervalDays)
			}
			if next.MaturityTier != wantTiers[i] {
				t.Errorf("review %d: expected tier %s, got %s", i, wantTiers[i], next.MaturityTier)
			}
			card = next
		}
	})
}

func TestNewServiceWithParams(t *testing.T) {
	if _, err := NewServiceWithParams(nil); err == nil {
		t.Error("expected error for nil params")
	}

	bad := NewDefaultParams()
	bad.MinEaseFactor = 0.5
	if _, err := NewServiceWithParams(bad); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	svc, err := NewServiceWithParams(NewParams(ParamsConfig{MatureIntervalDays: 10}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := svc.Tier(3, 12); got != domain.TierMature {
		t.Errorf("expected configured cutover to apply, got %s", got)
	}
}

func TestServiceRetention(t *testing.T) {
	svc := NewDefaultService()
	now := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	unreviewed := newTestCard(2.5, 0, 0)
	if r := svc.Retention(unreviewed, now); r != 1.0 {
		t.Errorf("unreviewed card should report full retention, got %f", r)
	}

	card := newTestCard(2.5, 10, 3)
	last := now.AddDate(0, 0, -10)
	card.LastReviewedAt = &last
	if r := svc.Retention(card, now); math.Abs(r-0.5) > 1e-9 {
		t.Errorf("expected 0.5 retention after one interval, got %f", r)
	}
}
