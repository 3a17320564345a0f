package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 1, cfg.AICount)
	assert.Equal(t, 21, cfg.TargetScore)
	assert.Equal(t, 600*time.Millisecond, cfg.AIDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.RefillDelay)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, 21, cfg.Rules().TargetScore)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("CHKOUBA_ADDR", "127.0.0.1:9000")
	t.Setenv("CHKOUBA_AI_COUNT", "2")
	t.Setenv("CHKOUBA_TARGET_SCORE", "11")
	t.Setenv("CHKOUBA_AI_DELAY", "1s")
	t.Setenv("CHKOUBA_LOG_FORMAT", "json")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 2, cfg.AICount)
	assert.Equal(t, 11, cfg.Rules().TargetScore)
	assert.Equal(t, time.Second, cfg.AIDelay)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)

	_, isJSON := cfg.NewLogger().Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
}

func TestParseErrors(t *testing.T) {
	tests := map[string][2]string{
		"not an int":     {"CHKOUBA_AI_COUNT", "many"},
		"too many AI":    {"CHKOUBA_AI_COUNT", "4"},
		"zero target":    {"CHKOUBA_TARGET_SCORE", "0"},
		"bad duration":   {"CHKOUBA_AI_DELAY", "soon"},
		"bad log format": {"CHKOUBA_LOG_FORMAT", "xml"},
		"bad log level":  {"CHKOUBA_LOG_LEVEL", "loud"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestNewLoggerLevel(t *testing.T) {
	cfg := Config{LogLevel: "debug", LogFormat: "text"}
	log := cfg.NewLogger()
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}
