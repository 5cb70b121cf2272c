package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. STUDY_SERVER_PORT.
const EnvPrefix = "STUDY"

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first when present.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path. An empty path searches
// for config.yaml in the working directory and ./config.
func LoadFrom(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "20s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.ping_timeout", "5s")
	v.SetDefault("database.migrate_on_start", false)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.key_prefix", "study:review:")
	v.SetDefault("redis.idempotency_ttl", "24h")

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.worker_count", 2)
	v.SetDefault("jobs.queue_size", 100)
	v.SetDefault("jobs.refresh_at", "03:00")
	v.SetDefault("jobs.active_window", "336h")
	v.SetDefault("jobs.refresh_on_review", "15m")

	// Engine keys default to zero so that environment overrides are picked up
	// by Unmarshal; zero means "use the built-in value".
	for _, key := range []string{
		"srs.min_ease_factor", "srs.default_ease_factor", "srs.fail_ease_penalty",
		"srs.first_interval", "srs.second_interval", "srs.learning_max_repetitions",
		"srs.mature_interval_days", "srs.decay_half_life_multiplier",
		"gaps.low_ease_threshold", "gaps.min_reviews_for_accuracy", "gaps.low_accuracy_threshold",
		"gaps.stale_days_threshold", "gaps.at_risk_retention", "gaps.critical_ease_floor",
		"gaps.critical_retention", "gaps.high_urgency_retention", "gaps.topic_low_ease",
		"gaps.topic_low_accuracy", "gaps.topic_low_retention", "gaps.topic_mastery_min_cards",
		"gaps.topic_low_mature_fraction", "gaps.max_weak_topics",
		"readiness.coverage_weight", "readiness.mastery_weight", "readiness.mock_exam_weight",
		"readiness.consistency_weight", "readiness.min_cards_per_topic", "readiness.expected_topics",
		"readiness.exam_window", "readiness.exam_decay", "readiness.neutral_exam_score",
		"readiness.streak_target", "readiness.frequency_window_days", "readiness.frequency_target",
		"readiness.trend_threshold",
		"plan.new_material_multiplier", "plan.max_plan_days",
	} {
		v.SetDefault("engine."+key, 0)
	}
}
