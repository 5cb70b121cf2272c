package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewStudyCard(t *testing.T) {
	t.Parallel() // Enable parallel execution
	learnerID := uuid.New()

	card, err := NewStudyCard(learnerID, "  Cell Biology ", "What is ATP?", "Energy currency")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if card.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if card.LearnerID != learnerID {
		t.Errorf("Expected learner ID %s, got %s", learnerID, card.LearnerID)
	}
	if card.Topic != "Cell Biology" {
		t.Errorf("Expected trimmed topic, got %q", card.Topic)
	}
	if card.EaseFactor != DefaultEaseFactor {
		t.Errorf("Expected ease factor %f, got %f", DefaultEaseFactor, card.EaseFactor)
	}
	if card.MaturityTier != TierNew {
		t.Errorf("Expected tier new, got %s", card.MaturityTier)
	}
	if card.Repetitions != 0 || card.IntervalDays != 0 {
		t.Errorf("Expected zero scheduling state, got reps %d interval %d", card.Repetitions, card.IntervalDays)
	}
	if card.Reviewed() {
		t.Error("New card should not be reviewed")
	}
	if card.NextReviewAt == nil {
		t.Error("New card should be due immediately")
	}

	// Empty topic falls back to the default
	card, err = NewStudyCard(learnerID, "", "front", "back")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if card.Topic != DefaultTopic {
		t.Errorf("Expected default topic, got %q", card.Topic)
	}

	// Nil learner is rejected
	_, err = NewStudyCard(uuid.Nil, "Topic", "front", "back")
	if !errors.Is(err, ErrCardLearnerIDEmpty) {
		t.Errorf("Expected ErrCardLearnerIDEmpty, got %v", err)
	}
}

func TestStudyCardValidate(t *testing.T) {
	t.Parallel()

	valid := func() *StudyCard {
		return &StudyCard{
			ID:            uuid.New(),
			LearnerID:     uuid.New(),
			Topic:         "Chemistry",
			EaseFactor:    2.5,
			IntervalDays:  6,
			Repetitions:   2,
			MaturityTier:  TierLearning,
			TimesReviewed: 3,
			TimesCorrect:  2,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *StudyCard)
		wantErr error
	}{
		{"valid card", func(c *StudyCard) {}, nil},
		{"nil id", func(c *StudyCard) { c.ID = uuid.Nil }, ErrCardIDEmpty},
		{"nil learner", func(c *StudyCard) { c.LearnerID = uuid.Nil }, ErrCardLearnerIDEmpty},
		{"negative interval", func(c *StudyCard) { c.IntervalDays = -1 }, ErrInvalidInterval},
		{"ease at one", func(c *StudyCard) { c.EaseFactor = 1.0 }, ErrInvalidEaseFactor},
		{"negative repetitions", func(c *StudyCard) { c.Repetitions = -1 }, ErrInvalidCounters},
		{"correct above reviewed", func(c *StudyCard) { c.TimesCorrect = 4 }, ErrInvalidCounters},
		{"unknown tier", func(c *StudyCard) { c.MaturityTier = "veteran" }, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := valid()
			tt.mutate(card)
			err := card.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("Expected a ValidationError, got %T", err)
			}
		})
	}
}

func TestStudyCardAccuracy(t *testing.T) {
	t.Parallel()

	card := &StudyCard{}
	if card.Accuracy() != 0 {
		t.Errorf("Expected 0 accuracy for unreviewed card, got %f", card.Accuracy())
	}

	card.TimesReviewed = 4
	card.TimesCorrect = 3
	if card.Accuracy() != 0.75 {
		t.Errorf("Expected 0.75 accuracy, got %f", card.Accuracy())
	}
}

func TestStudyCardClone(t *testing.T) {
	t.Parallel()

	reviewed := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	due := reviewed.AddDate(0, 0, 6)
	doc := uuid.New()
	card := &StudyCard{
		ID:               uuid.New(),
		LearnerID:        uuid.New(),
		SourceDocumentID: &doc,
		LastReviewedAt:   &reviewed,
		NextReviewAt:     &due,
	}

	clone := card.Clone()
	*clone.LastReviewedAt = clone.LastReviewedAt.Add(time.Hour)
	*clone.NextReviewAt = clone.NextReviewAt.Add(time.Hour)
	*clone.SourceDocumentID = uuid.New()

	if !card.LastReviewedAt.Equal(reviewed) || !card.NextReviewAt.Equal(due) {
		t.Error("Clone shares time pointers with the original")
	}
	if *card.SourceDocumentID != doc {
		t.Error("Clone shares the source document pointer with the original")
	}
}

func TestMaturityTierValid(t *testing.T) {
	t.Parallel()

	for _, tier := range []MaturityTier{TierNew, TierLearning, TierYoung, TierMature} {
		if !tier.Valid() {
			t.Errorf("Expected %s to be valid", tier)
		}
	}
	if MaturityTier("").Valid() || MaturityTier("Mature").Valid() {
		t.Error("Expected unknown tiers to be invalid")
	}
}

func TestTopicKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		same bool
	}{
		{" Biology ", "biology", true},
		{"BIOLOGY", "Biology", true},
		{"", DefaultTopic, true},
		{"   ", "general", true},
		{"Biology", "Bio logy", false},
	}

	for _, tt := range tests {
		if got := TopicKey(tt.a) == TopicKey(tt.b); got != tt.same {
			t.Errorf("TopicKey(%q) == TopicKey(%q) is %v, want %v", tt.a, tt.b, got, tt.same)
		}
	}
}
