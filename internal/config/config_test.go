package config_test

import (
	"testing"
	"time"

	"roompad/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/roompad")
	t.Setenv("ROOM_TOKEN_SECRET", "s3cret")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/roompad", cfg.Database.URL)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 12*time.Hour, cfg.RoomTokenTTL)
	assert.Equal(t, 20, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ROOM_TOKEN_SECRET", "")

	_, err := config.Load()

	assert.Error(t, err)
}

func TestLoad_InvalidLogLevelFallsBackToInfo(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/roompad")
	t.Setenv("ROOM_TOKEN_SECRET", "s3cret")
	t.Setenv("LOG_LEVEL", "chatty")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_RejectsNonPositiveRateLimit(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/roompad")
	t.Setenv("ROOM_TOKEN_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_MAX", "0")

	_, err := config.Load()

	assert.Error(t, err)
}

func TestLoadDatabase_OnlyNeedsDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/admin")
	t.Setenv("ROOM_TOKEN_SECRET", "")

	db, err := config.LoadDatabase()

	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/admin", db.URL)
}

func TestLoadRedis_IgnoresServerSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ROOM_TOKEN_SECRET", "")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "2")

	r, err := config.LoadRedis()

	require.NoError(t, err)
	assert.Equal(t, "redis:6380", r.RedisAddr)
	assert.Equal(t, 2, r.RedisDB)
}
