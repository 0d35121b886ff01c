package config

import (
	"os"
	"strconv"
	"strings"
)

// PlaceholderKeyPrefix marks an API key that was never replaced with a real
// credential. A key carrying this prefix is treated as "not configured".
const PlaceholderKeyPrefix = "YOUR_"

// Config holds all application configuration
type Config struct {
	Port         string
	DatabasePath string
	Environment  string // "production" or "development"

	// AI gateway configuration
	AIEndpoint string // Gemini generateContent URL, key is appended as ?key=
	AIAPIKey   string

	// Duplication sweep tuning
	DuplicationWorkers    int // concurrent gateway calls per sweep
	DuplicationCandidates int // how many recent complaints a new submission is checked against

	// Outbound throttle for the AI gateway (requests per second)
	AIRequestsPerSecond int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3001"),
		DatabasePath: getEnv("DATABASE_PATH", "complaintdesk.db"),
		Environment:  getEnv("ENVIRONMENT", "development"),

		AIEndpoint: getEnv("AI_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"),
		AIAPIKey:   getEnv("AI_API_KEY", ""),

		DuplicationWorkers:    getIntEnv("DUPLICATION_WORKERS", 4),
		DuplicationCandidates: getIntEnv("DUPLICATION_CANDIDATES", 10),
		AIRequestsPerSecond:   getIntEnv("AI_REQUESTS_PER_SECOND", 5),
	}
}

// AIConfigured reports whether the AI gateway has a usable API key.
// An empty key or one still holding the setup placeholder means the operator
// never configured the integration.
func (c *Config) AIConfigured() bool {
	return c.AIAPIKey != "" && !strings.HasPrefix(c.AIAPIKey, PlaceholderKeyPrefix)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
