package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the reporting client.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	APIBaseURL    string
	SessionDBPath string
	LogLevel      string

	// Transport settings
	HTTPTimeout    time.Duration
	CredentialMode string // "header" or "cookie"
	APIToken       string
	RateLimitRPS   float64
	RateLimitBurst int

	// Identity settings
	SessionJWTSecret string

	// View settings
	PageSize      int
	StatsPageSize int
	StatsCacheTTL time.Duration
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
// It centralizes all configuration logic for the client.
func LoadConfig() {
	// Try the current directory first, then the parent (common when the
	// binary is run from a subdirectory of the checkout).
	errEnv := godotenv.Load()
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found. Relying on OS environment variables.")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	credentialMode := strings.ToLower(getEnv("CREDENTIAL_MODE", "header"))
	if credentialMode != "header" && credentialMode != "cookie" {
		log.Printf("Invalid CREDENTIAL_MODE '%s', falling back to 'header'", credentialMode)
		credentialMode = "header"
	}

	Cfg = &AppConfig{
		APIBaseURL:    getEnv("PORTVIEW_API_BASE_URL", "http://localhost:8085"),
		SessionDBPath: getEnv("PORTVIEW_SESSION_DB", "./portview-session.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		HTTPTimeout:    getEnvAsDuration("HTTP_TIMEOUT", 15*time.Second),
		CredentialMode: credentialMode,
		APIToken:       getEnv("API_TOKEN", ""),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),

		SessionJWTSecret: getEnv("SESSION_JWT_SECRET", ""),

		PageSize:      getEnvAsInt("PAGE_SIZE", 10),
		StatsPageSize: getEnvAsInt("STATS_PAGE_SIZE", 1000),
		StatsCacheTTL: getEnvAsDuration("STATS_CACHE_TTL", 5*time.Minute),
	}

	log.Printf("Configuration loaded: APIBaseURL=%s, LogLevel=%s, SessionDB=%s, CredentialMode=%s",
		Cfg.APIBaseURL, Cfg.LogLevel, Cfg.SessionDBPath, Cfg.CredentialMode)
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsFloat retrieves an environment variable as a float or returns a fallback.
func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %g", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
