// Package config provides configuration for the assistant client tools.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the client configuration.
type Config struct {
	// Backend endpoints
	AssistantURL string
	AssistantWS  string

	// Timeouts
	RequestTimeout time.Duration

	// Stub server settings
	StubPort  int
	StubDelay time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from the environment, reading a local .env file
// first when one exists.
func Load() *Config {
	// A missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	return &Config{
		AssistantURL:   getEnv("ASSISTANT_URL", "http://localhost:8098"),
		AssistantWS:    getEnv("ASSISTANT_WS_URL", "ws://localhost:8098/ws"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_MS", 300000)) * time.Millisecond,
		StubPort:       getEnvInt("STUB_PORT", 8098),
		StubDelay:      time.Duration(getEnvInt("STUB_DELAY_MS", 50)) * time.Millisecond,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
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
