package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer       string // Issuer claim shared by access and refresh tokens
	CookieDomain string // Domain attribute on the auth cookies

	PrivateKeyFile    string // Optional: path to a PEM RSA private key for access token signing
	RefreshSecretFile string // Optional: path to the HS256 refresh token secret

	AdminFirstName string // Seed admin account, created on startup when absent
	AdminLastName  string
	AdminEmail     string // Seeding is skipped when empty
	AdminPassword  string

	DatabaseFile         string        // Path to SQLite database file (default: ./auth.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired refresh row purge interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               getEnvOrDefault("AUTH_ISSUER", "auth-service"),
		CookieDomain:         getEnvOrDefault("AUTH_COOKIE_DOMAIN", "localhost"),
		PrivateKeyFile:       os.Getenv("AUTH_PRIVATE_KEY_FILE"),
		RefreshSecretFile:    os.Getenv("AUTH_REFRESH_SECRET_FILE"),
		AdminFirstName:       getEnvOrDefault("ADMIN_FIRSTNAME", "Admin"),
		AdminLastName:        getEnvOrDefault("ADMIN_LASTNAME", "User"),
		AdminEmail:           os.Getenv("ADMIN_EMAIL"),
		AdminPassword:        os.Getenv("ADMIN_PASSWORD"),
		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
