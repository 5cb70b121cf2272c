package main

import (
	"fmt"

	"github.com/synaptic/study-engine/internal/config"
	"github.com/synaptic/study-engine/internal/domain"
	gapanalysis "github.com/synaptic/study-engine/internal/domain/gaps"
	"github.com/synaptic/study-engine/internal/domain/plan"
	scoring "github.com/synaptic/study-engine/internal/domain/readiness"
	"github.com/synaptic/study-engine/internal/domain/srs"
)

// engine holds the stateless domain components built from configuration.
type engine struct {
	srsParams *srs.Params
	srs       srs.Service
	analyzer  *gapanalysis.Analyzer
	scorer    *scoring.Scorer
	generator *plan.Generator
}

func newEngine(cfg config.EngineConfig) (*engine, error) {
	srsParams := srsParamsFromConfig(cfg.SRS)
	srsService, err := srs.NewServiceWithParams(srsParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create SRS service: %w", err)
	}

	analyzer, err := gapanalysis.NewAnalyzer(gapParamsFromConfig(cfg.Gaps), srsParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create gap analyzer: %w", err)
	}

	scorer, err := scoring.NewScorer(readinessParamsFromConfig(cfg.Readiness), analyzer)
	if err != nil {
		return nil, fmt.Errorf("failed to create readiness scorer: %w", err)
	}

	planParams, err := planParamsFromConfig(cfg.Plan)
	if err != nil {
		return nil, err
	}
	generator, err := plan.NewGenerator(planParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create plan generator: %w", err)
	}

	return &engine{
		srsParams: srsParams,
		srs:       srsService,
		analyzer:  analyzer,
		scorer:    scorer,
		generator: generator,
	}, nil
}

func srsParamsFromConfig(c config.SRSConfig) *srs.Params {
	return srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:           c.MinEaseFactor,
		DefaultEaseFactor:       c.DefaultEaseFactor,
		FailEasePenalty:         c.FailEasePenalty,
		FirstInterval:           c.FirstInterval,
		SecondInterval:          c.SecondInterval,
		LearningMaxRepetitions:  c.LearningMaxRepetitions,
		MatureIntervalDays:      c.MatureIntervalDays,
		DecayHalfLifeMultiplier: c.DecayHalfLifeMultiplier,
	})
}

func gapParamsFromConfig(c config.GapsConfig) *gapanalysis.Params {
	p := gapanalysis.NewDefaultParams()
	setFloat(&p.LowEaseThreshold, c.LowEaseThreshold)
	setInt(&p.MinReviewsForAccuracy, c.MinReviewsForAccuracy)
	setFloat(&p.LowAccuracyThreshold, c.LowAccuracyThreshold)
	setFloat(&p.StaleDaysThreshold, c.StaleDaysThreshold)
	setFloat(&p.AtRiskRetention, c.AtRiskRetention)
	setFloat(&p.CriticalEaseFloor, c.CriticalEaseFloor)
	setFloat(&p.CriticalRetention, c.CriticalRetention)
	setFloat(&p.HighUrgencyRetention, c.HighUrgencyRetention)
	setFloat(&p.TopicLowEase, c.TopicLowEase)
	setFloat(&p.TopicLowAccuracy, c.TopicLowAccuracy)
	setFloat(&p.TopicLowRetention, c.TopicLowRetention)
	setInt(&p.TopicMasteryMinCards, c.TopicMasteryMinCards)
	setFloat(&p.TopicLowMatureFraction, c.TopicLowMatureFraction)
	setInt(&p.MaxWeakTopics, c.MaxWeakTopics)
	return p
}

func readinessParamsFromConfig(c config.ReadinessConfig) *scoring.Params {
	p := scoring.NewDefaultParams()
	if c.CoverageWeight > 0 && c.MasteryWeight > 0 && c.MockExamWeight > 0 && c.ConsistencyWeight > 0 {
		p.Weights = scoring.Weights{
			TopicCoverage: c.CoverageWeight,
			Mastery:       c.MasteryWeight,
			MockExam:      c.MockExamWeight,
			Consistency:   c.ConsistencyWeight,
		}
	}
	setInt(&p.MinCardsPerTopic, c.MinCardsPerTopic)
	setInt(&p.ExpectedTopics, c.ExpectedTopics)
	setInt(&p.ExamWindow, c.ExamWindow)
	setFloat(&p.ExamDecay, c.ExamDecay)
	setFloat(&p.NeutralExamScore, c.NeutralExamScore)
	setInt(&p.StreakTarget, c.StreakTarget)
	setInt(&p.FrequencyWindowDays, c.FrequencyWindowDays)
	setInt(&p.FrequencyTarget, c.FrequencyTarget)
	setInt(&p.TrendThreshold, c.TrendThreshold)
	return p
}

func planParamsFromConfig(c config.PlanConfig) (*plan.Params, error) {
	p := plan.NewDefaultParams()
	setInt(&p.NewMaterialMultiplier, c.NewMaterialMultiplier)
	setInt(&p.MaxPlanDays, c.MaxPlanDays)
	for name, minutes := range c.ModeDurations {
		mode := domain.ActivityMode(name)
		if _, ok := p.ModeDurations[mode]; !ok {
			return nil, fmt.Errorf("unknown activity mode %q in plan.mode_durations", name)
		}
		p.ModeDurations[mode] = minutes
	}
	return p, nil
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
