// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"`
	Storage  StorageConfig  `mapstructure:"storage"`
	DB       DBConfig       `mapstructure:"db"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AnalysisConfig governs the analysis pipeline and circuit breakers.
type AnalysisConfig struct {
	Workers          int `mapstructure:"workers"`
	QueueDepth       int `mapstructure:"queue_depth"`
	FactorTimeoutMs  int `mapstructure:"factor_timeout_ms"`
	StageDelayMs     int `mapstructure:"stage_delay_ms"`
	BreakerThreshold int `mapstructure:"breaker_threshold"`
	BreakerResetSecs int `mapstructure:"breaker_reset_seconds"`
}

// FetcherConfig configures the page fetcher.
type FetcherConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
}

// StorageConfig sets paths and content types for raw markup archival.
type StorageConfig struct {
	GCSBucket   string `mapstructure:"gcs_bucket"`
	Prefix      string `mapstructure:"prefix"`
	ContentType string `mapstructure:"content_type"`
}

// DBConfig controls access to the relational database. An empty DSN selects
// the in-memory run store.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// PubSubConfig holds metadata for completion notifications. An empty
// project ID disables publishing.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAGEFACTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("analysis.workers", 2)
	v.SetDefault("analysis.queue_depth", 64)
	v.SetDefault("analysis.factor_timeout_ms", 2000)
	v.SetDefault("analysis.stage_delay_ms", 0)
	v.SetDefault("analysis.breaker_threshold", 3)
	v.SetDefault("analysis.breaker_reset_seconds", 60)
	v.SetDefault("fetcher.user_agent", "pagefactor-bot/0.1")
	v.SetDefault("fetcher.timeout_seconds", 15)
	v.SetDefault("fetcher.respect_robots", true)
	v.SetDefault("storage.prefix", "markup")
	v.SetDefault("storage.content_type", "text/html; charset=utf-8")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Analysis.Workers <= 0 {
		return fmt.Errorf("analysis.workers must be > 0")
	}
	if c.Analysis.QueueDepth <= 0 {
		return fmt.Errorf("analysis.queue_depth must be > 0")
	}
	if c.Analysis.FactorTimeoutMs <= 0 {
		return fmt.Errorf("analysis.factor_timeout_ms must be > 0")
	}
	if c.Analysis.BreakerThreshold <= 0 {
		return fmt.Errorf("analysis.breaker_threshold must be > 0")
	}
	if c.Analysis.BreakerResetSecs <= 0 {
		return fmt.Errorf("analysis.breaker_reset_seconds must be > 0")
	}
	if c.Fetcher.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetcher.timeout_seconds must be > 0")
	}
	if c.PubSub.ProjectID != "" && c.PubSub.TopicName == "" {
		return fmt.Errorf("pubsub.topic_name must be set when pubsub.project_id is set")
	}
	return nil
}

// FactorTimeout returns the per-factor breaker call budget.
func (c Config) FactorTimeout() time.Duration {
	return time.Duration(c.Analysis.FactorTimeoutMs) * time.Millisecond
}

// StageDelay returns the artificial pause between factors.
func (c Config) StageDelay() time.Duration {
	return time.Duration(c.Analysis.StageDelayMs) * time.Millisecond
}

// BreakerReset returns the breaker open-state reset window.
func (c Config) BreakerReset() time.Duration {
	return time.Duration(c.Analysis.BreakerResetSecs) * time.Second
}

// FetchTimeout returns the page fetch budget.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetcher.TimeoutSeconds) * time.Second
}
