package gaps

import (
	"sort"
	"time"

	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/domain/srs"
)

// TopicAggregate summarizes the cards of one topic. It is derived on demand
// and never persisted.
type TopicAggregate struct {
	Topic          string                      `json:"topic"`
	CardCount      int                         `json:"card_count"`
	TierCounts     map[domain.MaturityTier]int `json:"tier_counts"`
	ReviewedCards  int                         `json:"reviewed_cards"`
	TimesReviewed  int                         `json:"times_reviewed"`
	TimesCorrect   int                         `json:"times_correct"`
	LastReviewedAt *time.Time                  `json:"last_reviewed_at,omitempty"`

	// Accuracy is TimesCorrect/TimesReviewed, 0 with no reviews.
	Accuracy float64 `json:"accuracy"`
	// AverageEase is the mean ease factor across all cards in the topic.
	AverageEase float64 `json:"average_ease"`
	// AverageRetention is the mean estimated retention across reviewed cards,
	// 1 when none have been reviewed.
	AverageRetention float64 `json:"average_retention"`
	// MatureFraction is the share of cards in the mature tier.
	MatureFraction float64 `json:"mature_fraction"`
}

// HasReviews reports whether any card in the topic has been reviewed.
func (a *TopicAggregate) HasReviews() bool {
	return a.TimesReviewed > 0
}

// BuildTopicAggregates groups cards by topic and computes per-topic statistics.
// Topics are matched by domain.TopicKey and labelled with the first spelling
// seen. Cards with an empty topic are counted under domain.DefaultTopic.
// The result is sorted by topic name. Nil srsParams use the defaults.
func BuildTopicAggregates(cards []*domain.StudyCard, now time.Time, srsParams *srs.Params) []TopicAggregate {
	if srsParams == nil {
		srsParams = srs.NewDefaultParams()
	}

	type acc struct {
		agg          TopicAggregate
		easeSum      float64
		retentionSum float64
	}

	byTopic := make(map[string]*acc)
	for _, card := range cards {
		if card == nil {
			continue
		}
		key := domain.TopicKey(card.Topic)
		a, ok := byTopic[key]
		if !ok {
			a = &acc{agg: TopicAggregate{
				Topic:      domain.NormalizeTopic(card.Topic),
				TierCounts: make(map[domain.MaturityTier]int),
			}}
			byTopic[key] = a
		}

		a.agg.CardCount++
		a.agg.TierCounts[card.MaturityTier]++
		a.agg.TimesReviewed += card.TimesReviewed
		a.agg.TimesCorrect += card.TimesCorrect
		a.easeSum += card.EaseFactor

		if card.Reviewed() {
			a.agg.ReviewedCards++
			a.retentionSum += srs.EstimateRetention(
				srs.DaysSince(*card.LastReviewedAt, now), card.IntervalDays, srsParams)
			if a.agg.LastReviewedAt == nil || card.LastReviewedAt.After(*a.agg.LastReviewedAt) {
				t := *card.LastReviewedAt
				a.agg.LastReviewedAt = &t
			}
		}
	}

	result := make([]TopicAggregate, 0, len(byTopic))
	for _, a := range byTopic {
		agg := a.agg
		agg.AverageEase = a.easeSum / float64(agg.CardCount)
		agg.MatureFraction = float64(agg.TierCounts[domain.TierMature]) / float64(agg.CardCount)
		if agg.TimesReviewed > 0 {
			agg.Accuracy = float64(agg.TimesCorrect) / float64(agg.TimesReviewed)
		}
		agg.AverageRetention = 1.0
		if agg.ReviewedCards > 0 {
			agg.AverageRetention = a.retentionSum / float64(agg.ReviewedCards)
		}
		result = append(result, agg)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Topic < result[j].Topic
	})
	return result
}
