// Package config provides configuration for the battle service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the battle service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Transcript database
	DatabaseURL string

	// Generation provider settings
	LLMMode        string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	GatewayURL     string
	GatewayAPIKey  string

	// Timeouts
	GenerationTimeout time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:          getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:       getEnv("DATABASE_URL", "file:battles.db?cache=shared&mode=rwc"),
		LLMMode:           getEnv("LLM_MODE", "openai"),
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTemperature:    getEnvFloat("LLM_TEMPERATURE", 0.8),
		LLMMaxTokens:      getEnvInt("LLM_MAX_TOKENS", 0),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		GatewayURL:        getEnv("LLM_GATEWAY_URL", "http://localhost:4000"),
		GatewayAPIKey:     getEnv("LLM_GATEWAY_API_KEY", ""),
		GenerationTimeout: time.Duration(getEnvInt("GENERATION_TIMEOUT_MS", 60000)) * time.Millisecond,
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}
