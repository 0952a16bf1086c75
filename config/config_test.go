package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.RequestTimeout)
	assert.Empty(t, cfg.Database.URL, "empty URL selects the in-memory store")
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Redis.StudentTTL)
	assert.Equal(t, 4, cfg.Events.Workers)
	assert.Equal(t, 65.0, cfg.Grading.PassingPercentage)
	assert.Equal(t, 100, cfg.Grading.MaxPageSize)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"APP_ENV":                  "Production",
		"DATABASE_URL":             "postgres://app@db:5432/school",
		"HTTP_PORT":                "9000",
		"REDIS_ENABLED":            "true",
		"REDIS_ADDR":               "cache:6379",
		"REDIS_STUDENT_TTL":        "2m",
		"EVENTS_ASYNC":             "false",
		"PAGINATION_MAX_PAGE_SIZE": "25",
		"LOG_FORMAT":               "json",
	})
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Redis.StudentTTL)
	assert.False(t, cfg.Events.Async)
	assert.Equal(t, 25, cfg.Grading.MaxPageSize)
}

func TestLoadFrom_ReportsEveryProblem(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"APP_ENV":        "production",
		"HTTP_PORT":      "0",
		"EVENTS_WORKERS": "0",
		"LOG_FORMAT":     "xml",
	})
	require.Error(t, err)
	for _, want := range []string{
		"DATABASE_URL is required in production",
		"HTTP_PORT must be 1-65535",
		"EVENTS_WORKERS must be at least 1",
		"LOG_FORMAT must be json or text",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadFrom_BadValue(t *testing.T) {
	_, err := LoadFrom(map[string]string{"HTTP_READ_TIMEOUT": "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
