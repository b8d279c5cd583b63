package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Apollo     ApolloConfig     `yaml:"apollo" mapstructure:"apollo"`
	Instantly  InstantlyConfig  `yaml:"instantly" mapstructure:"instantly"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ApolloConfig holds Apollo.io API settings.
type ApolloConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	PageSize        int    `yaml:"page_size" mapstructure:"page_size"`
	MaxPages        int    `yaml:"max_pages" mapstructure:"max_pages"`
	RevealBatchSize int    `yaml:"reveal_batch_size" mapstructure:"reveal_batch_size"`
	RevealDelayMs   int    `yaml:"reveal_delay_ms" mapstructure:"reveal_delay_ms"`
}

// InstantlyConfig holds Instantly.ai API settings.
type InstantlyConfig struct {
	Key                string `yaml:"key" mapstructure:"key"`
	BaseURL            string `yaml:"base_url" mapstructure:"base_url"`
	DedupeBatchSize    int    `yaml:"dedupe_batch_size" mapstructure:"dedupe_batch_size"`
	DedupeBatchDelayMs int    `yaml:"dedupe_batch_delay_ms" mapstructure:"dedupe_batch_delay_ms"`
}

// PipelineConfig configures session persistence for the four-stage pipeline.
type PipelineConfig struct {
	Session    string `yaml:"session" mapstructure:"session"`
	TTLMinutes int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// RetryConfig configures retries of transient upstream failures.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// MonitoringConfig configures the email-health alert checker.
type MonitoringConfig struct {
	Enabled              bool    `yaml:"enabled" mapstructure:"enabled"`
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	MinAvgWarmupProgress float64 `yaml:"min_avg_warmup_progress" mapstructure:"min_avg_warmup_progress"`
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials also honor the unprefixed names used by the dashboard.
	_ = v.BindEnv("apollo.key", "OUTREACH_APOLLO_KEY", "APOLLO_API_KEY")
	_ = v.BindEnv("instantly.key", "OUTREACH_INSTANTLY_KEY", "INSTANTLY_API_KEY")

	v.SetDefault("apollo.key", "")
	v.SetDefault("apollo.base_url", "https://api.apollo.io/api/v1")
	v.SetDefault("apollo.page_size", 100)
	v.SetDefault("apollo.max_pages", 500)
	v.SetDefault("apollo.reveal_batch_size", 10)
	v.SetDefault("apollo.reveal_delay_ms", 100)
	v.SetDefault("instantly.key", "")
	v.SetDefault("instantly.base_url", "https://api.instantly.ai/api/v2")
	v.SetDefault("instantly.dedupe_batch_size", 50)
	v.SetDefault("instantly.dedupe_batch_delay_ms", 200)
	v.SetDefault("pipeline.session", "default")
	v.SetDefault("pipeline.ttl_minutes", 60)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 5)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("retry.max_attempts", 2)
	v.SetDefault("retry.initial_backoff_ms", 250)
	v.SetDefault("retry.max_backoff_ms", 5000)
	v.SetDefault("monitoring.enabled", false)
	v.SetDefault("monitoring.check_interval_secs", 900)
	v.SetDefault("monitoring.min_avg_warmup_progress", 60)
	v.SetDefault("monitoring.webhook_url", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Missing API
// keys are not errors here: stages report them as configuration errors
// when they run.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "pipeline", "serve":
		if mode == "serve" && (c.Server.Port < 1 || c.Server.Port > 65535) {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
		if c.Apollo.PageSize < 1 || c.Apollo.PageSize > 100 {
			errs = append(errs, "apollo.page_size must be between 1 and 100")
		}
		if c.Apollo.RevealBatchSize < 1 || c.Apollo.RevealBatchSize > 10 {
			errs = append(errs, "apollo.reveal_batch_size must be between 1 and 10")
		}
		if c.Instantly.DedupeBatchSize < 1 {
			errs = append(errs, "instantly.dedupe_batch_size must be positive")
		}
		if c.Pipeline.TTLMinutes < 1 {
			errs = append(errs, "pipeline.ttl_minutes must be positive")
		}
	case "api":
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	switch c.Store.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for postgres")
		}
	default:
		errs = append(errs, "store.driver must be one of memory, sqlite, postgres")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
