package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "PDFTR_"

// parseEnv overlays Config with PDFTR_* environment variables. A dotenv
// file named with -e/-env is loaded first and must exist; otherwise ./.env
// is loaded when present. Variables already set in the process win over
// the file. Unparsable values keep the current setting.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg.ServerURL = getEnv("SERVER_URL", cfg.ServerURL)
	cfg.DatabasePath = getEnv("DB", cfg.DatabasePath)
	cfg.KeyFile = getEnv("KEY_FILE", cfg.KeyFile)
	cfg.ExportDir = getEnv("EXPORT_DIR", cfg.ExportDir)
	cfg.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RefreshInterval = getEnvAsDuration("REFRESH_INTERVAL", cfg.RefreshInterval)
	cfg.MaxTokens = getEnvAsInt("MAX_TOKENS", cfg.MaxTokens)
	cfg.TokenBudgetRatio = getEnvAsFloat("TOKEN_BUDGET_RATIO", cfg.TokenBudgetRatio)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(envPrefix + key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil && value > 0 && value <= 1 {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
