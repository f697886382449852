package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env                 string
	Port                string
	DBHost              string
	DBPort              string
	DBUser              string
	DBPassword          string
	DBName              string
	GenAIURL            string
	AnalysisModel       string
	AnalysisThink       string
	ChatModel           string
	ChatThink           string
	GenAITimeoutSeconds int
	GenAIRequestsPerMin int
	SnapshotMaxAgeMin   int
	TraceMaxAttempts    int
	PromptOverridesFile string
}

func Load() *Config {
	return &Config{
		Env:                 getEnv("ENV", "development"),
		Port:                getEnv("PORT", "3001"),
		DBHost:              getEnv("DB_HOST", "news-db"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", "news_user"),
		DBPassword:          getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "news_password"),
		DBName:              getEnv("DB_NAME", "news_pulse"),
		GenAIURL:            getEnv("GENAI_GATEWAY_URL", "http://genai-gateway:11434"),
		AnalysisModel:       getEnv("GENAI_ANALYSIS_MODEL", "pulse-pro"),
		AnalysisThink:       getEnv("GENAI_ANALYSIS_THINK", "high"),
		ChatModel:           getEnv("GENAI_CHAT_MODEL", "pulse-flash"),
		ChatThink:           getEnv("GENAI_CHAT_THINK", "low"),
		GenAITimeoutSeconds: getEnvInt("GENAI_TIMEOUT_SECONDS", 120),
		GenAIRequestsPerMin: getEnvInt("GENAI_REQUESTS_PER_MINUTE", 30),
		SnapshotMaxAgeMin:   getEnvInt("SNAPSHOT_MAX_AGE_MINUTES", 10),
		TraceMaxAttempts:    getEnvInt("TRACE_MAX_ATTEMPTS", 3),
		PromptOverridesFile: getEnv("PROMPT_OVERRIDES_FILE", "prompts.json"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getSecret prefers the direct environment variable, then a file path named
// by fileEnvKey (container secret mounts), then the fallback.
func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
