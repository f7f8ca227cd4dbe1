package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/studyhall")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, int64(5), cfg.Quota.FreeFlashcardDailyLimit)
	assert.Equal(t, int64(10), cfg.Quota.FreeQnADailyLimit)
	assert.Equal(t, int64(0), cfg.Quota.FreeQuizDailyLimit)
	assert.Equal(t, BackendPostgres, cfg.Ledger.Backend)
	assert.Equal(t, 90, cfg.Ledger.RetentionDays)
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	required := []string{"DATABASE_URL", "JWT_SECRET", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"}

	for _, key := range required {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_QuotaOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("FREE_FLASHCARD_DAILY_LIMIT", "3")
	t.Setenv("FREE_QNA_DAILY_LIMIT", "-1")
	t.Setenv("FREE_QUIZ_DAILY_LIMIT", "2")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int64(3), cfg.Quota.FreeFlashcardDailyLimit)
	assert.Equal(t, int64(-1), cfg.Quota.FreeQnADailyLimit)
	assert.Equal(t, int64(2), cfg.Quota.FreeQuizDailyLimit)
}

func TestLoad_RejectsInvalidLimits(t *testing.T) {
	cases := map[string]string{
		"FREE_FLASHCARD_DAILY_LIMIT": "-2",
		"FREE_QNA_DAILY_LIMIT":       "ten",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, value)

			_, err := load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_LedgerBackendValidation(t *testing.T) {
	setRequired(t)

	t.Setenv("LEDGER_BACKEND", "redis")
	_, err := load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Ledger.Backend)

	t.Setenv("LEDGER_BACKEND", "mongo")
	_, err = load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")

	t.Setenv("LEDGER_BACKEND", "cassandra")
	_, err = load()
	require.Error(t, err)
}

func TestStorageConfig_Enabled(t *testing.T) {
	assert.False(t, StorageConfig{Endpoint: "localhost:9000"}.Enabled())
	assert.True(t, StorageConfig{Endpoint: "localhost:9000", Bucket: "uploads"}.Enabled())
}

func TestLoad_AllowedOrigins(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://studyhall.app, ,http://localhost:5173")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://studyhall.app", "http://localhost:5173"}, cfg.AllowedOrigins)
}
