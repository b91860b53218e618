package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "data/swellwatch.db", cfg.Catalog.DBPath)
	assert.Empty(t, cfg.Catalog.Shapefile)
	assert.Equal(t, time.Hour, cfg.Tides.CacheTTL)
	assert.Equal(t, 24, cfg.Tides.WindowHours)
	assert.Equal(t, 10*time.Second, cfg.Tides.FetchTimeout)
	assert.Equal(t, "https://www.ndbc.noaa.gov", cfg.Upstream.NDBCURL)
	assert.Equal(t, 2, cfg.Upstream.MaxRetries)
	assert.Equal(t, 50.0, cfg.Matching.SearchRadiusMiles)
	assert.Equal(t, 0.5, cfg.Matching.RankExposureWeight)
	assert.Equal(t, 8, cfg.Matching.EvalConcurrency)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "surf-matches", cfg.Kafka.MatchesTopic)
	assert.Equal(t, 30*time.Minute, cfg.Watch.Interval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("CATALOG_SHAPEFILE", "/tmp/stations.shp")
	t.Setenv("TIDE_CACHE_TTL", "15m")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("RANK_EXPOSURE_WEIGHT", "0")
	t.Setenv("WATCH_INTERVAL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "/tmp/stations.shp", cfg.Catalog.Shapefile)
	assert.Equal(t, 15*time.Minute, cfg.Tides.CacheTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 0.0, cfg.Matching.RankExposureWeight)
	assert.Equal(t, 5*time.Minute, cfg.Watch.Interval)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		wantType ConfigErrorType
	}{
		{"unparseable duration", "TIDE_CACHE_TTL", "soon", ErrParsing},
		{"unparseable int", "EVAL_CONCURRENCY", "many", ErrParsing},
		{"weight above one", "RANK_EXPOSURE_WEIGHT", "1.5", ErrValidation},
		{"negative weight", "RANK_EXPOSURE_WEIGHT", "-0.1", ErrValidation},
		{"zero radius", "SEARCH_RADIUS_MILES", "0", ErrValidation},
		{"bad env", "APP_ENV", "staging", ErrValidation},
		{"bad log format", "LOG_FORMAT", "xml", ErrValidation},
		{"bad url", "NDBC_URL", "not a url", ErrValidation},
		{"watch too fast", "WATCH_INTERVAL", "10s", ErrValidation},
		{"zero concurrency", "EVAL_CONCURRENCY", "0", ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantType, cfgErr.Type)
			assert.Contains(t, err.Error(), string(tt.wantType))
			assert.NotNil(t, errors.Unwrap(err))
		})
	}
}
