// Package config loads application configuration from a yaml file and
// BANKIQ_-prefixed environment variables, and initializes the global
// logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	FDIC    FDICConfig    `yaml:"fdic" mapstructure:"fdic"`
	EDGAR   EDGARConfig   `yaml:"edgar" mapstructure:"edgar"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Compare CompareConfig `yaml:"compare" mapstructure:"compare"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// FDICConfig configures the FDIC BankFind client.
type FDICConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// EDGARConfig configures the SEC EDGAR client.
type EDGARConfig struct {
	DataBaseURL string `yaml:"data_base_url" mapstructure:"data_base_url"`
	WWWBaseURL  string `yaml:"www_base_url" mapstructure:"www_base_url"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScoringConfig points at an optional weights/thresholds override file.
type ScoringConfig struct {
	WeightsFile string `yaml:"weights_file" mapstructure:"weights_file"`
}

// CacheConfig configures assessment result caching.
type CacheConfig struct {
	ScoreTTLMins int `yaml:"score_ttl_mins" mapstructure:"score_ttl_mins"`
	AlertTTLMins int `yaml:"alert_ttl_mins" mapstructure:"alert_ttl_mins"`
}

// CompareConfig configures peer comparisons.
type CompareConfig struct {
	Years      []int `yaml:"years" mapstructure:"years"`
	MaxPeriods int   `yaml:"max_periods" mapstructure:"max_periods"`
}

// StoreConfig configures the dataset store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BANKIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("fdic.base_url", "https://api.fdic.gov")
	v.SetDefault("fdic.timeout_secs", 10)
	v.SetDefault("fdic.rate_limit", 5)
	v.SetDefault("edgar.data_base_url", "https://data.sec.gov")
	v.SetDefault("edgar.www_base_url", "https://www.sec.gov")
	v.SetDefault("edgar.user_agent", "bankiq-cli research agent contact@bankiq.dev")
	v.SetDefault("edgar.timeout_secs", 10)
	v.SetDefault("cache.score_ttl_mins", 60)
	v.SetDefault("cache.alert_ttl_mins", 30)
	v.SetDefault("compare.years", []int{2023, 2024, 2025})
	v.SetDefault("compare.max_periods", 8)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "bankiq.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
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
