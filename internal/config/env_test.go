package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("TEAMBOARD_API_KEY", "secret")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "local", env.Env)
	assert.Equal(t, "3100", env.HTTPPort)
	assert.Equal(t, "local", env.StorageEnv.Type)
	assert.Equal(t, ".teamboard/data", env.BaseDir)
	assert.True(t, env.StorageEnv.Watch)
	assert.Equal(t, time.Hour, env.SweepEnv.Interval)
	assert.Equal(t, 8, env.SweepEnv.Concurrency)
	assert.False(t, VAPIDEnvFromEnv(env).Configured())
	assert.Equal(t, slog.LevelDebug, env.SlogLevel())
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("TEAMBOARD_API_KEY", "secret")
	t.Setenv("TEAMBOARD_LOG_LEVEL", "warn")
	t.Setenv("TEAMBOARD_SWEEP_INTERVAL", "15m")
	t.Setenv("TEAMBOARD_SWEEP_CONCURRENCY", "2")
	t.Setenv("TEAMBOARD_STORAGE_TYPE", "s3")
	t.Setenv("TEAMBOARD_S3_BUCKET", "boards")
	t.Setenv("TEAMBOARD_VAPID_PUBLIC_KEY", "pub")
	t.Setenv("TEAMBOARD_VAPID_PRIVATE_KEY", "priv")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, env.SlogLevel())
	assert.Equal(t, 15*time.Minute, env.SweepEnv.Interval)
	assert.Equal(t, 2, env.SweepEnv.Concurrency)
	assert.Equal(t, "boards", StorageEnvFromEnv(env).S3Bucket)
	assert.True(t, VAPIDEnvFromEnv(env).Configured())
}

func TestLoadEnv_Errors(t *testing.T) {
	t.Setenv("TEAMBOARD_API_KEY", "")
	require.NoError(t, os.Unsetenv("TEAMBOARD_API_KEY"))
	_, err := LoadEnv()
	assert.Error(t, err)

	t.Setenv("TEAMBOARD_API_KEY", "secret")
	t.Setenv("TEAMBOARD_STORAGE_TYPE", "s3")
	_, err = LoadEnv()
	assert.Error(t, err)
}
