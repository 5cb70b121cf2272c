package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout" validate:"gt=0"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
}

// RedisConfig configures the optional review idempotency guard.
// An empty URL disables it.
type RedisConfig struct {
	URL            string        `mapstructure:"url" validate:"omitempty,url"`
	KeyPrefix      string        `mapstructure:"key_prefix"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl" validate:"gt=0"`
}

// JobsConfig controls the background readiness refresh.
type JobsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	WorkerCount int    `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize   int    `mapstructure:"queue_size" validate:"gte=1"`
	RefreshAt   string `mapstructure:"refresh_at" validate:"required,datetime=15:04"`
	// ActiveWindow selects learners with a review inside this window.
	ActiveWindow time.Duration `mapstructure:"active_window" validate:"gt=0"`
	// RefreshOnReview enqueues a refresh after a review, at most once per
	// learner per interval. Zero disables it.
	RefreshOnReview time.Duration `mapstructure:"refresh_on_review" validate:"gte=0"`
}

// EngineConfig holds the tunables of the scheduling engine.
// Zero values keep the built-in defaults.
type EngineConfig struct {
	SRS       SRSConfig       `mapstructure:"srs"`
	Gaps      GapsConfig      `mapstructure:"gaps"`
	Readiness ReadinessConfig `mapstructure:"readiness"`
	Plan      PlanConfig      `mapstructure:"plan"`
}

// SRSConfig overrides the review scheduler parameters.
type SRSConfig struct {
	MinEaseFactor           float64 `mapstructure:"min_ease_factor" validate:"gte=0"`
	DefaultEaseFactor       float64 `mapstructure:"default_ease_factor" validate:"gte=0"`
	FailEasePenalty         float64 `mapstructure:"fail_ease_penalty" validate:"gte=0"`
	FirstInterval           int     `mapstructure:"first_interval" validate:"gte=0"`
	SecondInterval          int     `mapstructure:"second_interval" validate:"gte=0"`
	LearningMaxRepetitions  int     `mapstructure:"learning_max_repetitions" validate:"gte=0"`
	MatureIntervalDays      int     `mapstructure:"mature_interval_days" validate:"gte=0"`
	DecayHalfLifeMultiplier float64 `mapstructure:"decay_half_life_multiplier" validate:"gte=0"`
}

// GapsConfig overrides the knowledge gap thresholds.
type GapsConfig struct {
	LowEaseThreshold       float64 `mapstructure:"low_ease_threshold" validate:"gte=0"`
	MinReviewsForAccuracy  int     `mapstructure:"min_reviews_for_accuracy" validate:"gte=0"`
	LowAccuracyThreshold   float64 `mapstructure:"low_accuracy_threshold" validate:"gte=0,lte=1"`
	StaleDaysThreshold     float64 `mapstructure:"stale_days_threshold" validate:"gte=0"`
	AtRiskRetention        float64 `mapstructure:"at_risk_retention" validate:"gte=0,lte=1"`
	CriticalEaseFloor      float64 `mapstructure:"critical_ease_floor" validate:"gte=0"`
	CriticalRetention      float64 `mapstructure:"critical_retention" validate:"gte=0,lte=1"`
	HighUrgencyRetention   float64 `mapstructure:"high_urgency_retention" validate:"gte=0,lte=1"`
	TopicLowEase           float64 `mapstructure:"topic_low_ease" validate:"gte=0"`
	TopicLowAccuracy       float64 `mapstructure:"topic_low_accuracy" validate:"gte=0,lte=1"`
	TopicLowRetention      float64 `mapstructure:"topic_low_retention" validate:"gte=0,lte=1"`
	TopicMasteryMinCards   int     `mapstructure:"topic_mastery_min_cards" validate:"gte=0"`
	TopicLowMatureFraction float64 `mapstructure:"topic_low_mature_fraction" validate:"gte=0,lte=1"`
	MaxWeakTopics          int     `mapstructure:"max_weak_topics" validate:"gte=0"`
}

// ReadinessConfig overrides the readiness scorer parameters.
// Weights are only applied when all four are set.
type ReadinessConfig struct {
	CoverageWeight      float64 `mapstructure:"coverage_weight" validate:"gte=0,lte=1"`
	MasteryWeight       float64 `mapstructure:"mastery_weight" validate:"gte=0,lte=1"`
	MockExamWeight      float64 `mapstructure:"mock_exam_weight" validate:"gte=0,lte=1"`
	ConsistencyWeight   float64 `mapstructure:"consistency_weight" validate:"gte=0,lte=1"`
	MinCardsPerTopic    int     `mapstructure:"min_cards_per_topic" validate:"gte=0"`
	ExpectedTopics      int     `mapstructure:"expected_topics" validate:"gte=0"`
	ExamWindow          int     `mapstructure:"exam_window" validate:"gte=0"`
	ExamDecay           float64 `mapstructure:"exam_decay" validate:"gte=0,lte=1"`
	NeutralExamScore    float64 `mapstructure:"neutral_exam_score" validate:"gte=0,lte=100"`
	StreakTarget        int     `mapstructure:"streak_target" validate:"gte=0"`
	FrequencyWindowDays int     `mapstructure:"frequency_window_days" validate:"gte=0"`
	FrequencyTarget     int     `mapstructure:"frequency_target" validate:"gte=0"`
	TrendThreshold      int     `mapstructure:"trend_threshold" validate:"gte=0"`
}

// PlanConfig overrides the plan generator tables.
type PlanConfig struct {
	NewMaterialMultiplier int            `mapstructure:"new_material_multiplier" validate:"gte=0"`
	ModeDurations         map[string]int `mapstructure:"mode_durations" validate:"dive,gt=0"`
	MaxPlanDays           int            `mapstructure:"max_plan_days" validate:"gte=0"`
}
