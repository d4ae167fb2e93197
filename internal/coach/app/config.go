package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // Issuer claim for access tokens (default: quiero-coach)

	DatabaseFile string // Path to SQLite database file (default: ./quiero.db)
	PepperFile   string // Path to password hashing pepper file (default: ./pepper)

	SendGridAPIKey string // Optional: without it mail is logged instead of sent
	MailFromName   string // Display name on outgoing mail (default: Quiero)
	MailFromAddr   string // From address on outgoing mail

	BaseURL      string // Public origin used in emailed links (default: http://localhost:8080)
	FrontendBase string // Front-end origin for the /login redirect (default: BaseURL)
	CORSOrigin   string // Allowed CORS origin (default: *)

	InvitationTTL time.Duration // Invitation link validity (default: 7 days)
	ResetTTL      time.Duration // Password reset link validity (default: 60 minutes)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Token sweep interval (default: 15m)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:       getEnvOrDefault("QUIERO_ISSUER", "quiero-coach"),
		DatabaseFile: getEnvOrDefault("QUIERO_DATABASE_FILE", "quiero.db"),
		PepperFile:   getEnvOrDefault("QUIERO_PEPPER_FILE", "pepper"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFromName:   getEnvOrDefault("MAIL_FROM_NAME", "Quiero"),
		MailFromAddr:   os.Getenv("MAIL_FROM_ADDR"),

		BaseURL:    getEnvOrDefault("QUIERO_BASE_URL", "http://localhost:8080"),
		CORSOrigin: getEnvOrDefault("CORS_ORIGIN", "*"),

		InvitationTTL: getEnvDurationOrDefault("INVITATION_TTL", 7*24*time.Hour),
		ResetTTL:      getEnvDurationOrDefault("RESET_TTL", 60*time.Minute),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 15*time.Minute),
	}

	cfg.FrontendBase = getEnvOrDefault("QUIERO_FRONTEND_BASE", cfg.BaseURL)

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

	// Duration string first (e.g. "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
