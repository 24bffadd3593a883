package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	// Unset the optional knobs so defaults are exercised. t.Setenv first so
	// the original values come back after the test.
	for _, key := range []string{
		"STORYMODE_MODEL", "STORYMODE_DB", "STORYMODE_CHAPTERS",
		"STORYMODE_TEARDOWN_DELAY", "STORYMODE_HISTORY_SIZE", "DEBUG",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "storymode.db", cfg.DBPath)
	assert.Equal(t, 90*time.Second, cfg.TeardownDelay)
	assert.Equal(t, 30, cfg.HistorySize)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "storymode", cfg.Tracing.ServiceName)
	assert.Equal(t, "development", cfg.Tracing.Environment)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORYMODE_DB", "/tmp/test.db")
	t.Setenv("STORYMODE_TEARDOWN_DELAY", "2m")
	t.Setenv("STORYMODE_HISTORY_SIZE", "12")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, 2*time.Minute, cfg.TeardownDelay)
	assert.Equal(t, 12, cfg.HistorySize)
	assert.True(t, cfg.Debug)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestValidateRejectsNonPositiveKnobs(t *testing.T) {
	cfg := Config{OpenAIAPIKey: "sk-test", HistorySize: 0, TeardownDelay: time.Second}
	require.Error(t, cfg.Validate())

	cfg = Config{OpenAIAPIKey: "sk-test", HistorySize: 10, TeardownDelay: 0}
	require.Error(t, cfg.Validate())

	cfg = Config{OpenAIAPIKey: "sk-test", HistorySize: 10, TeardownDelay: time.Second}
	require.NoError(t, cfg.Validate())
}
