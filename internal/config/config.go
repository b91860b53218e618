// Package config defines the process configuration for swellwatch.
//
// Values are resolved from the OS environment, falling back to a .env
// file in the working directory, then to the defaults in the struct tags.
// Invalid values fail Load before any component is built.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the top-level configuration. Components receive only the
// subset they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`

	Catalog  CatalogConfig
	Tides    TideConfig
	Upstream UpstreamConfig
	Matching MatchingConfig
	Kafka    KafkaConfig
	Watch    WatchConfig
}

// CatalogConfig locates the reference station catalog.
type CatalogConfig struct {
	DBPath string `envconfig:"CATALOG_DB_PATH" default:"data/swellwatch.db" validate:"required"`
	// Shapefile, when set, is merged over the SQLite catalog.
	Shapefile string `envconfig:"CATALOG_SHAPEFILE"`
}

// TideConfig tunes the tide prediction cache.
type TideConfig struct {
	CacheTTL     time.Duration `envconfig:"TIDE_CACHE_TTL" default:"1h" validate:"gt=0"`
	WindowHours  int           `envconfig:"TIDE_WINDOW_HOURS" default:"24" validate:"min=1,max=720"`
	FetchTimeout time.Duration `envconfig:"TIDE_FETCH_TIMEOUT" default:"10s" validate:"gt=0"`
}

// UpstreamConfig holds NOAA endpoints and HTTP client settings.
type UpstreamConfig struct {
	TidesURL   string `envconfig:"NOAA_TIDES_URL" default:"https://api.tidesandcurrents.noaa.gov/api/prod/datagetter" validate:"required,url"`
	MDAPIURL   string `envconfig:"NOAA_MDAPI_URL" default:"https://api.tidesandcurrents.noaa.gov/mdapi/prod/webapi" validate:"required,url"`
	NDBCURL    string `envconfig:"NDBC_URL" default:"https://www.ndbc.noaa.gov" validate:"required,url"`
	UserAgent  string `envconfig:"HTTP_USER_AGENT" default:"swellwatch/1.0"`
	MaxRetries int    `envconfig:"HTTP_MAX_RETRIES" default:"2" validate:"min=0,max=10"`
}

// MatchingConfig tunes station lookup, ranking and evaluation fan-out.
type MatchingConfig struct {
	SearchRadiusMiles  float64 `envconfig:"SEARCH_RADIUS_MILES" default:"50" validate:"gt=0"`
	RankBandMiles      float64 `envconfig:"RANK_BAND_MILES" default:"10" validate:"gte=0"`
	RankExposureWeight float64 `envconfig:"RANK_EXPOSURE_WEIGHT" default:"0.5" validate:"gte=0,lte=1"`
	EvalConcurrency    int     `envconfig:"EVAL_CONCURRENCY" default:"8" validate:"min=1,max=256"`
}

// KafkaConfig enables publishing matches to Kafka. With no brokers,
// matches are written to the log.
type KafkaConfig struct {
	Brokers      []string `envconfig:"KAFKA_BROKERS"`
	MatchesTopic string   `envconfig:"KAFKA_TOPIC_MATCHES" default:"surf-matches" validate:"required"`
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// WatchConfig sets the watch loop cadence.
type WatchConfig struct {
	Interval time.Duration `envconfig:"WATCH_INTERVAL" default:"30m" validate:"gte=1m"`
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrParsing indicates an environment value could not be converted to
	// its field type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrValidation indicates the populated struct broke a validation rule.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
)

// ConfigError is returned by Load.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load reads .env if present, processes the environment and validates the
// result.
func Load() (*Config, error) {
	// godotenv does not override variables already set.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}
	return &cfg, nil
}
