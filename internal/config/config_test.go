package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"GLOBOTRACK_LLM_PROVIDER", "GLOBOTRACK_LLM_MODEL", "GLOBOTRACK_LLM_TIMEOUT",
		"GLOBOTRACK_LLM_RATE", "GLOBOTRACK_STORE", "GLOBOTRACK_LOG_LEVEL", "REDIS_DB",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ProviderGoogleAI, cfg.LLMProvider)
	assert.Equal(t, "gemini-3-flash-preview", cfg.LLMModel)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 1.0, cfg.LLMRate)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GLOBOTRACK_LLM_PROVIDER", "Bedrock")
	t.Setenv("GLOBOTRACK_LLM_TIMEOUT", "5s")
	t.Setenv("GLOBOTRACK_LLM_RATE", "0.5")
	t.Setenv("GLOBOTRACK_STORE", "REDIS")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("GLOBOTRACK_LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, ProviderBedrock, cfg.LLMProvider)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 0.5, cfg.LLMRate)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadFallsBackOnGarbage(t *testing.T) {
	t.Setenv("GLOBOTRACK_LLM_TIMEOUT", "soon")
	t.Setenv("GLOBOTRACK_LLM_RATE", "-2")
	t.Setenv("REDIS_DB", "zero")

	cfg := Load()

	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 1.0, cfg.LLMRate)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var console, file bytes.Buffer
	logger := SetupLoggerWithWriters(&console, &file, slog.LevelInfo)

	logger.Info("route search", "origin", "London")
	logger.Debug("hidden")

	assert.Contains(t, console.String(), "route search")
	assert.NotContains(t, console.String(), "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "London", entry["origin"])
}

func TestSetupLoggerFileOnly(t *testing.T) {
	var file bytes.Buffer
	logger := SetupLoggerWithWriters(nil, &file, slog.LevelInfo)
	logger.Info("quiet")
	assert.Contains(t, file.String(), "quiet")
}

func TestSetupLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "globotrack.log")
	logger, cleanup := SetupLogger(path, slog.LevelInfo, nil)
	logger.Info("hello")
	require.NoError(t, cleanup())
	assert.FileExists(t, path)
}
