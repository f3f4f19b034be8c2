package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the transparency backend service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port           string
	TrustedProxies []string

	// Security
	JWTSecret string

	// OpenAI configuration
	OpenAIAPIKey string
	OpenAIModel  string
	AITimeout    time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBName:     getEnv("DB_NAME", "veriscope"),

		// Server defaults
		Port:           getEnv("PORT", "8080"),
		TrustedProxies: getListEnv("TRUSTED_PROXIES", nil),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-here"),

		// OpenAI defaults. An empty API key keeps the service on the
		// local fallback generator.
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AITimeout:    time.Duration(getIntEnv("AI_TIMEOUT_SECONDS", 5)) * time.Second,

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable with a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getListEnv gets a comma-separated environment variable with a default value
func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
