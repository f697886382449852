package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"pulse-orchestrator/internal/infra/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "news-db", cfg.DBHost)
	assert.Equal(t, "news_pulse", cfg.DBName)
	assert.Equal(t, "http://genai-gateway:11434", cfg.GenAIURL)
	assert.Equal(t, "pulse-pro", cfg.AnalysisModel)
	assert.Equal(t, "pulse-flash", cfg.ChatModel)
	assert.Equal(t, 120, cfg.GenAITimeoutSeconds)
	assert.Equal(t, 30, cfg.GenAIRequestsPerMin)
	assert.Equal(t, 10, cfg.SnapshotMaxAgeMin)
	assert.Equal(t, 3, cfg.TraceMaxAttempts)
	assert.Equal(t, "prompts.json", cfg.PromptOverridesFile)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("GENAI_ANALYSIS_MODEL", "custom-model")
	t.Setenv("TRACE_MAX_ATTEMPTS", "5")

	cfg := config.Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "custom-model", cfg.AnalysisModel)
	assert.Equal(t, 5, cfg.TraceMaxAttempts)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("GENAI_TIMEOUT_SECONDS", "not-a-number")

	cfg := config.Load()
	assert.Equal(t, 120, cfg.GenAITimeoutSeconds)
}

func TestLoad_PasswordFromSecretFile(t *testing.T) {
	secretPath := filepath.Join(t.TempDir(), "db_password")
	require.NoError(t, os.WriteFile(secretPath, []byte("s3cret\n"), 0o600))
	t.Setenv("DB_PASSWORD_FILE", secretPath)

	cfg := config.Load()
	assert.Equal(t, "s3cret", cfg.DBPassword)
}

func TestLoad_DirectPasswordWinsOverFile(t *testing.T) {
	secretPath := filepath.Join(t.TempDir(), "db_password")
	require.NoError(t, os.WriteFile(secretPath, []byte("from-file"), 0o600))
	t.Setenv("DB_PASSWORD_FILE", secretPath)
	t.Setenv("DB_PASSWORD", "from-env")

	cfg := config.Load()
	assert.Equal(t, "from-env", cfg.DBPassword)
}
