// Package gaps finds cards a learner is struggling with, cards whose memory is
// decaying, and topics that need attention.
package gaps

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/domain/srs"
)

// Urgency ranks how soon a finding should be acted on.
type Urgency string

// Urgency values, most urgent first
const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// Rank orders urgencies with critical as 0.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	default:
		return 3
	}
}

// Reason explains why a topic was flagged as weak.
type Reason string

// Weak topic reasons, in the priority order they are checked
const (
	ReasonNoFlashcards Reason = "no_flashcards"
	ReasonLowEase      Reason = "low_ease"
	ReasonLowAccuracy  Reason = "low_accuracy"
	ReasonLowRetention Reason = "low_retention"
	ReasonLowMastery   Reason = "low_mastery"
)

// CardFinding is a card flagged by the analyzer.
type CardFinding struct {
	Card            *domain.StudyCard `json:"card"`
	Urgency         Urgency           `json:"urgency"`
	Retention       float64           `json:"retention"`
	DaysSinceReview float64           `json:"days_since_review"`
}

// WeakTopic is a topic that needs attention.
type WeakTopic struct {
	Topic            string  `json:"topic"`
	Reason           Reason  `json:"reason"`
	Score            float64 `json:"score"`
	Urgency          Urgency `json:"urgency"`
	CardCount        int     `json:"card_count"`
	Accuracy         float64 `json:"accuracy"`
	AverageEase      float64 `json:"average_ease"`
	AverageRetention float64 `json:"average_retention"`
	MatureFraction   float64 `json:"mature_fraction"`
}

// Report is the full gap analysis for a learner.
type Report struct {
	StrugglingCards []CardFinding    `json:"struggling_cards"`
	AtRiskCards     []CardFinding    `json:"at_risk_cards"`
	WeakTopics      []WeakTopic      `json:"weak_topics"`
	Topics          []TopicAggregate `json:"topics"`
	TotalCards      int              `json:"total_cards"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Analyzer classifies cards and topics. It holds no state beyond its
// parameters and is safe for concurrent use.
type Analyzer struct {
	params    *Params
	srsParams *srs.Params
}

// NewAnalyzer creates an Analyzer. Nil parameters fall back to defaults.
func NewAnalyzer(params *Params, srsParams *srs.Params) (*Analyzer, error) {
	if params == nil {
		params = NewDefaultParams()
	}
	if srsParams == nil {
		srsParams = srs.NewDefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gap analyzer params: %w", err)
	}
	return &Analyzer{params: params, srsParams: srsParams}, nil
}

// Params returns the analyzer's thresholds.
func (a *Analyzer) Params() *Params {
	return a.params
}

// IsStruggling reports whether a card has a low ease factor, or enough reviews
// to judge accuracy and a low accuracy.
func (a *Analyzer) IsStruggling(card *domain.StudyCard) bool {
	if card == nil {
		return false
	}
	if card.EaseFactor < a.params.LowEaseThreshold {
		return true
	}
	return card.TimesReviewed >= a.params.MinReviewsForAccuracy &&
		card.Accuracy() < a.params.LowAccuracyThreshold
}

// IsAtRisk reports whether a young or mature card has gone long enough without
// review that its estimated retention is low. The estimated retention is
// returned alongside; it is 1 for cards never reviewed.
func (a *Analyzer) IsAtRisk(card *domain.StudyCard, now time.Time) (bool, float64) {
	if card == nil || !card.Reviewed() {
		return false, 1.0
	}

	days := srs.DaysSince(*card.LastReviewedAt, now)
	retention := srs.EstimateRetention(days, card.IntervalDays, a.srsParams)

	if card.MaturityTier != domain.TierYoung && card.MaturityTier != domain.TierMature {
		return false, retention
	}
	return days > a.params.StaleDaysThreshold && retention < a.params.AtRiskRetention, retention
}

// Urgency assigns an urgency to a single card.
func (a *Analyzer) Urgency(card *domain.StudyCard, now time.Time) Urgency {
	struggling := a.IsStruggling(card)
	atRisk, retention := a.IsAtRisk(card, now)
	return a.cardUrgency(card, struggling, atRisk, retention)
}

func (a *Analyzer) cardUrgency(card *domain.StudyCard, struggling, atRisk bool, retention float64) Urgency {
	switch {
	case struggling && atRisk:
		return UrgencyCritical
	case struggling && card.EaseFactor < a.params.CriticalEaseFloor:
		return UrgencyCritical
	case struggling:
		return UrgencyHigh
	case atRisk && retention < a.params.CriticalRetention:
		return UrgencyHigh
	case atRisk && retention < a.params.HighUrgencyRetention:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// AnalyzeTopics returns the weak topics among expectedTopics and the topics
// present in cards, most severe (lowest score) first. Expected topics that
// have no cards are always flagged with ReasonNoFlashcards.
// The list is not truncated; Analyze applies MaxWeakTopics.
func (a *Analyzer) AnalyzeTopics(cards []*domain.StudyCard, expectedTopics []string, now time.Time) []WeakTopic {
	return a.analyzeAggregates(BuildTopicAggregates(cards, now, a.srsParams), expectedTopics)
}

func (a *Analyzer) analyzeAggregates(aggregates []TopicAggregate, expectedTopics []string) []WeakTopic {
	present := make(map[string]bool, len(aggregates))
	for _, agg := range aggregates {
		present[domain.TopicKey(agg.Topic)] = true
	}

	var weak []WeakTopic
	seenExpected := make(map[string]bool)
	for _, topic := range expectedTopics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		key := domain.TopicKey(topic)
		if present[key] || seenExpected[key] {
			continue
		}
		seenExpected[key] = true
		weak = append(weak, WeakTopic{
			Topic:   topic,
			Reason:  ReasonNoFlashcards,
			Score:   0,
			Urgency: UrgencyCritical,
		})
	}

	for i := range aggregates {
		agg := &aggregates[i]
		reason, flagged := a.topicReason(agg)
		if !flagged {
			continue
		}
		score := TopicScore(agg)
		weak = append(weak, WeakTopic{
			Topic:            agg.Topic,
			Reason:           reason,
			Score:            score,
			Urgency:          topicUrgency(score),
			CardCount:        agg.CardCount,
			Accuracy:         agg.Accuracy,
			AverageEase:      agg.AverageEase,
			AverageRetention: agg.AverageRetention,
			MatureFraction:   agg.MatureFraction,
		})
	}

	sort.SliceStable(weak, func(i, j int) bool {
		if weak[i].Score != weak[j].Score {
			return weak[i].Score < weak[j].Score
		}
		return weak[i].Topic < weak[j].Topic
	})
	return weak
}

func (a *Analyzer) topicReason(agg *TopicAggregate) (Reason, bool) {
	if agg.AverageEase < a.params.TopicLowEase {
		return ReasonLowEase, true
	}
	if agg.HasReviews() {
		if agg.Accuracy < a.params.TopicLowAccuracy {
			return ReasonLowAccuracy, true
		}
		if agg.AverageRetention < a.params.TopicLowRetention {
			return ReasonLowRetention, true
		}
	}
	if agg.CardCount >= a.params.TopicMasteryMinCards &&
		agg.MatureFraction < a.params.TopicLowMatureFraction {
		return ReasonLowMastery, true
	}
	return "", false
}

// TopicScore is the composite 0-100 health of a topic:
// 40% accuracy, 30% retention, 30% mature fraction.
func TopicScore(agg *TopicAggregate) float64 {
	return (0.4*agg.Accuracy + 0.3*agg.AverageRetention + 0.3*agg.MatureFraction) * 100
}

func topicUrgency(score float64) Urgency {
	switch {
	case score < 25:
		return UrgencyCritical
	case score < 50:
		return UrgencyHigh
	case score < 75:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// Analyze produces the full report: struggling cards ordered by ascending ease,
// at-risk cards ordered by ascending retention, and at most MaxWeakTopics weak
// topics ordered by ascending score.
func (a *Analyzer) Analyze(cards []*domain.StudyCard, expectedTopics []string, now time.Time) *Report {
	report := &Report{
		StrugglingCards: []CardFinding{},
		AtRiskCards:     []CardFinding{},
		GeneratedAt:     now,
	}

	for _, card := range cards {
		if card == nil {
			continue
		}
		report.TotalCards++

		struggling := a.IsStruggling(card)
		atRisk, retention := a.IsAtRisk(card, now)
		if !struggling && !atRisk {
			continue
		}

		finding := CardFinding{
			Card:      card,
			Urgency:   a.cardUrgency(card, struggling, atRisk, retention),
			Retention: retention,
		}
		if card.Reviewed() {
			finding.DaysSinceReview = srs.DaysSince(*card.LastReviewedAt, now)
		}

		if struggling {
			report.StrugglingCards = append(report.StrugglingCards, finding)
		}
		if atRisk {
			report.AtRiskCards = append(report.AtRiskCards, finding)
		}
	}

	sort.SliceStable(report.StrugglingCards, func(i, j int) bool {
		return report.StrugglingCards[i].Card.EaseFactor < report.StrugglingCards[j].Card.EaseFactor
	})
	sort.SliceStable(report.AtRiskCards, func(i, j int) bool {
		return report.AtRiskCards[i].Retention < report.AtRiskCards[j].Retention
	})

	report.Topics = BuildTopicAggregates(cards, now, a.srsParams)
	weak := a.analyzeAggregates(report.Topics, expectedTopics)
	if len(weak) > a.params.MaxWeakTopics {
		weak = weak[:a.params.MaxWeakTopics]
	}
	if weak == nil {
		weak = []WeakTopic{}
	}
	report.WeakTopics = weak

	return report
}
