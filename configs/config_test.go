package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HIBP_KANON_API_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./migrations", cfg.Database.MigrationsPath)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=breach_monitor sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, "secret", cfg.HIBP.KAnonAPIToken)
	assert.Equal(t, "@daily", cfg.Purge.Schedule)
	assert.Equal(t, 30*24*time.Hour, cfg.Purge.MaxAge)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HIBP_KANON_API_TOKEN", "secret")
	t.Setenv("DB_NAME", "monitor_test")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_SUBSCRIBER_TTL", "45s")
	t.Setenv("PURGE_SCHEDULE", "@every 1h")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "monitor_test", cfg.Database.DBName)
	assert.Equal(t, 3, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 45*time.Second, cfg.Cache.SubscriberTTL)
	assert.Equal(t, "@every 1h", cfg.Purge.Schedule)
	assert.Equal(t, 0, cfg.Redis.DB, "unparsable ints fall back to the default")
}

func TestLoad_RejectsNonPositivePurgeAge(t *testing.T) {
	t.Setenv("HIBP_KANON_API_TOKEN", "secret")
	t.Setenv("PURGE_MAX_AGE", "-1h")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_PanicsWithoutHIBPToken(t *testing.T) {
	t.Setenv("HIBP_KANON_API_TOKEN", "")

	assert.Panics(t, func() { _, _ = Load() })
}
