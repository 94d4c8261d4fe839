package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 5, cfg.UpcomingLimit)
	assert.Equal(t, 30, cfg.ExportRateLimit)
	assert.Empty(t, cfg.Today)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SCHOOLEVENTS_PORT", "9090")
	t.Setenv("SCHOOLEVENTS_SCHOOL_NAME", "Riverside Academy")
	t.Setenv("SCHOOLEVENTS_LOG_FORMAT", "json")
	t.Setenv("SCHOOLEVENTS_TIMEZONE", "UTC")
	t.Setenv("SCHOOLEVENTS_UPCOMING_LIMIT", "3")
	t.Setenv("SCHOOLEVENTS_TODAY", "2025-05-18")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "Riverside Academy", cfg.SchoolName)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 3, cfg.UpcomingLimit)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	now, err := cfg.Clock(loc)
	require.NoError(t, err)
	y, m, d := now().Date()
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.May, m)
	assert.Equal(t, 18, d)
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"log format", "SCHOOLEVENTS_LOG_FORMAT", "xml"},
		{"timezone", "SCHOOLEVENTS_TIMEZONE", "Mars/Olympus_Mons"},
		{"today", "SCHOOLEVENTS_TODAY", "18/05/2025"},
		{"upcoming limit", "SCHOOLEVENTS_UPCOMING_LIMIT", "0"},
		{"rate limit type", "SCHOOLEVENTS_EXPORT_RATE_LIMIT", "lots"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestClockWithoutToday(t *testing.T) {
	cfg := &Config{}
	now, err := cfg.Clock(time.UTC)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), now(), time.Second)
}
