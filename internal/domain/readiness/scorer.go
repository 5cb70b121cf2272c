// Package readiness combines topic coverage, card mastery, practice exam
// results and study consistency into a single 0-100 exam readiness score.
package readiness

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/domain/gaps"
)

// Input is everything the scorer needs for one learner and exam scope.
// Missing data is allowed and yields neutral factor values.
type Input struct {
	Cards    []*domain.StudyCard
	Attempts []domain.AssessmentAttempt
	// StudyDays are timestamps of study activity; only their calendar dates matter.
	StudyDays []time.Time
	// ExamTopics restricts topic coverage to the exam scope when non-empty.
	ExamTopics []string
	ExamDate   *time.Time
	// Previous is the most recent prior snapshot for the same scope, if any.
	Previous *domain.ReadinessSnapshot
	Now      time.Time
}

// Factors holds the four 0-100 factor scores.
type Factors struct {
	TopicCoverage       float64 `json:"topic_coverage"`
	MasteryLevel        float64 `json:"mastery_level"`
	MockExamPerformance float64 `json:"mock_exam_performance"`
	ConsistencyBonus    float64 `json:"consistency_bonus"`
}

// Result is the outcome of a readiness calculation.
type Result struct {
	OverallScore  int              `json:"overall_score"`
	Factors       Factors          `json:"factors"`
	Trend         domain.Trend     `json:"trend"`
	TrendDelta    int              `json:"trend_delta"`
	PreviousScore *int             `json:"previous_score,omitempty"`
	DaysUntilExam *int             `json:"days_until_exam,omitempty"`
	WeakTopics    []gaps.WeakTopic `json:"weak_topics"`
	CurrentStreak int              `json:"current_streak"`
	RecentDays    int              `json:"recent_study_days"`
	// HasStudyData is false when the learner has no cards, attempts or study
	// activity, in which case the score reflects neutral defaults only.
	HasStudyData    bool      `json:"has_study_data"`
	Recommendations []string  `json:"recommendations"`
	CalculatedAt    time.Time `json:"calculated_at"`
}

// Snapshot converts the result into a persistable snapshot.
func (r *Result) Snapshot(learnerID uuid.UUID, examID *uuid.UUID) *domain.ReadinessSnapshot {
	return &domain.ReadinessSnapshot{
		ID:                  uuid.New(),
		LearnerID:           learnerID,
		ExamID:              examID,
		OverallScore:        r.OverallScore,
		TopicCoverage:       r.Factors.TopicCoverage,
		MasteryLevel:        r.Factors.MasteryLevel,
		MockExamPerformance: r.Factors.MockExamPerformance,
		ConsistencyBonus:    r.Factors.ConsistencyBonus,
		Trend:               r.Trend,
		CreatedAt:           r.CalculatedAt,
	}
}

// Scorer computes readiness results. It is stateless and safe for concurrent use.
type Scorer struct {
	params   *Params
	analyzer *gaps.Analyzer
}

// NewScorer creates a Scorer. Nil params use the defaults; a nil analyzer is
// built with default gap thresholds.
func NewScorer(params *Params, analyzer *gaps.Analyzer) (*Scorer, error) {
	if params == nil {
		params = NewDefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid readiness params: %w", err)
	}
	if analyzer == nil {
		var err error
		analyzer, err = gaps.NewAnalyzer(nil, nil)
		if err != nil {
			return nil, err
		}
	}
	return &Scorer{params: params, analyzer: analyzer}, nil
}

// Params returns the scorer's configuration.
func (s *Scorer) Params() *Params {
	return s.params
}

// Score computes the readiness result for in. It never fails: absent data
// maps to neutral defaults.
func (s *Scorer) Score(in Input) *Result {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	consistency, streak, recent := s.Consistency(in.StudyDays, now)
	factors := Factors{
		TopicCoverage:       s.TopicCoverage(in.Cards, in.ExamTopics),
		MasteryLevel:        s.MasteryLevel(in.Cards),
		MockExamPerformance: s.MockExamPerformance(in.Attempts),
		ConsistencyBonus:    consistency,
	}

	result := &Result{
		OverallScore:  s.Overall(factors),
		Factors:       factors,
		CurrentStreak: streak,
		RecentDays:    recent,
		HasStudyData:  len(in.Cards) > 0 || len(in.Attempts) > 0 || len(in.StudyDays) > 0,
		CalculatedAt:  now,
	}

	result.Trend, result.TrendDelta = s.Trend(result.OverallScore, in.Previous)
	if in.Previous != nil {
		prev := in.Previous.OverallScore
		result.PreviousScore = &prev
	}

	if in.ExamDate != nil {
		days := DaysUntil(*in.ExamDate, now)
		result.DaysUntilExam = &days
	}

	result.WeakTopics = s.analyzer.Analyze(in.Cards, in.ExamTopics, now).WeakTopics
	result.Recommendations = s.recommend(factors, result.WeakTopics)

	return result
}

// Overall combines the factor scores into the rounded, clamped overall score.
func (s *Scorer) Overall(f Factors) int {
	w := s.params.Weights
	sum := w.TopicCoverage*f.TopicCoverage +
		w.Mastery*f.MasteryLevel +
		w.MockExam*f.MockExamPerformance +
		w.Consistency*f.ConsistencyBonus
	return int(clamp(math.Round(sum), 0, 100))
}

// TopicCoverage scores how many topics have enough cards. Each topic earns
// min(1, cards/MinCardsPerTopic) credit; the total is normalized against
// ExpectedTopics and capped at 100. When examTopics is non-empty only those
// topics count, and exam topics without cards earn nothing.
func (s *Scorer) TopicCoverage(cards []*domain.StudyCard, examTopics []string) float64 {
	counts := make(map[string]int)
	for _, card := range cards {
		if card == nil {
			continue
		}
		counts[domain.TopicKey(card.Topic)]++
	}

	topics := make([]string, 0)
	seen := make(map[string]bool)
	if len(examTopics) > 0 {
		for _, t := range examTopics {
			if strings.TrimSpace(t) == "" {
				continue
			}
			key := domain.TopicKey(t)
			if seen[key] {
				continue
			}
			seen[key] = true
			topics = append(topics, key)
		}
	} else {
		for key := range counts {
			topics = append(topics, key)
		}
	}

	var credits float64
	for _, topic := range topics {
		credits += math.Min(1, float64(counts[topic])/float64(s.params.MinCardsPerTopic))
	}
	return math.Min(100, credits/float64(s.params.ExpectedTopics)*100)
}

// MasteryLevel is the mean tier weight across cards, 0 with no cards.
func (s *Scorer) MasteryLevel(cards []*domain.StudyCard) float64 {
	var total float64
	var n int
	for _, card := range cards {
		if card == nil {
			continue
		}
		total += s.params.TierWeights[card.MaturityTier]
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// MockExamPerformance is the recency-weighted mean score of the latest
// ExamWindow attempts. Attempt i (0 = newest) has weight ExamDecay^i.
// Attempts without questions are ignored. With no usable attempts the
// neutral score is returned.
func (s *Scorer) MockExamPerformance(attempts []domain.AssessmentAttempt) float64 {
	usable := make([]domain.AssessmentAttempt, 0, len(attempts))
	for _, a := range attempts {
		if a.TotalQuestions > 0 {
			usable = append(usable, a)
		}
	}
	if len(usable) == 0 {
		return s.params.NeutralExamScore
	}

	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].CompletedAt.After(usable[j].CompletedAt)
	})
	if len(usable) > s.params.ExamWindow {
		usable = usable[:s.params.ExamWindow]
	}

	var weighted, weights float64
	weight := 1.0
	for i := range usable {
		score, _ := usable[i].ScorePercent()
		weighted += score * weight
		weights += weight
		weight *= s.params.ExamDecay
	}
	return weighted / weights
}

// Consistency returns the consistency factor together with the current streak
// and the number of distinct study days in the trailing window.
//
// The streak counts consecutive study days ending today, or ending yesterday
// when nothing has been studied yet today. Days are taken in now's location.
func (s *Scorer) Consistency(studyDays []time.Time, now time.Time) (float64, int, int) {
	today := dateOf(now)
	days := make(map[time.Time]bool, len(studyDays))
	for _, d := range studyDays {
		day := dateOf(d.In(now.Location()))
		if day.After(today) {
			continue
		}
		days[day] = true
	}

	streak := 0
	cursor := today
	if !days[cursor] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for days[cursor] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	windowStart := today.AddDate(0, 0, -(s.params.FrequencyWindowDays - 1))
	recent := 0
	for day := range days {
		if !day.Before(windowStart) {
			recent++
		}
	}

	streakScore := math.Min(100, float64(streak)/float64(s.params.StreakTarget)*100)
	frequencyScore := math.Min(100, float64(recent)/float64(s.params.FrequencyTarget)*100)
	return (streakScore + frequencyScore) / 2, streak, recent
}

// Trend compares the current score against the previous snapshot.
// It reports stable with a zero delta when there is no previous snapshot.
func (s *Scorer) Trend(current int, previous *domain.ReadinessSnapshot) (domain.Trend, int) {
	if previous == nil {
		return domain.TrendStable, 0
	}
	delta := current - previous.OverallScore
	switch {
	case delta >= s.params.TrendThreshold:
		return domain.TrendImproving, delta
	case delta <= -s.params.TrendThreshold:
		return domain.TrendDeclining, delta
	default:
		return domain.TrendStable, delta
	}
}

// DaysUntil returns the whole days remaining until examDate, rounded up.
// It never returns a negative value.
func DaysUntil(examDate, now time.Time) int {
	d := examDate.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

func (s *Scorer) recommend(f Factors, weak []gaps.WeakTopic) []string {
	type factor struct {
		score float64
		hint  string
	}
	candidates := []factor{
		{f.TopicCoverage, fmt.Sprintf("Create flashcards for topics with fewer than %d cards", s.params.MinCardsPerTopic)},
		{f.MasteryLevel, "Keep reviewing due cards so more of them reach the mature tier"},
		{f.MockExamPerformance, "Take a practice exam and review the questions you missed"},
		{f.ConsistencyBonus, "Study a little every day to build a streak"},
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score < candidates[j].score
	})

	recs := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		if c.score < 70 {
			recs = append(recs, c.hint)
		}
	}
	if len(weak) > 0 {
		recs = append(recs, fmt.Sprintf("Focus next on %s (%s)", weak[0].Topic, weak[0].Reason))
	}
	return recs
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
