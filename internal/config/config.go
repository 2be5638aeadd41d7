package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Play guard
	DeviceCookieMaxAgeDays int
	PlayedCookieMaxAgeDays int

	// Bank directory
	BankDirectoryURL  string
	BankLogoDir       string
	BankLogoTTLDays   int
	BankSyncTimeoutMS int

	// Security
	JWTSecret          string
	ClaimTokenTTLHours int
	SessionTimeoutMin  int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/tetlixi?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Play guard
		DeviceCookieMaxAgeDays: getEnvInt("DEVICE_COOKIE_MAX_AGE_DAYS", 365),
		PlayedCookieMaxAgeDays: getEnvInt("PLAYED_COOKIE_MAX_AGE_DAYS", 30),

		// Bank directory
		BankDirectoryURL:  getEnv("BANK_DIRECTORY_URL", "https://api.vietqr.io/v2/banks"),
		BankLogoDir:       getEnv("BANK_LOGO_DIR", "public/banks"),
		BankLogoTTLDays:   getEnvInt("BANK_LOGO_TTL_DAYS", 7),
		BankSyncTimeoutMS: getEnvInt("BANK_SYNC_TIMEOUT_MS", 10000),

		// Security
		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		ClaimTokenTTLHours: getEnvInt("CLAIM_TOKEN_TTL_HOURS", 720),
		SessionTimeoutMin:  getEnvInt("SESSION_TIMEOUT_MINUTES", 240),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
