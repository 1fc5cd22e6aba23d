package config

import (
	"errors"
	"os"
	"strconv"
)

type Config struct {
	// Port is the ops HTTP listener port for /health and /metrics (default 8081).
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// EncryptionKey is the Fernet key used to decrypt stored GitHub PATs.
	// Must match the key the web API encrypts with. Required in prod.
	EncryptionKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	// EmailFrom is the sender address for notification emails.
	EmailFrom string

	// ApplicationURL is the base URL of the web frontend, used for links in
	// notification emails.
	ApplicationURL string

	// PollInterval is the number of seconds between schedule reconciliation
	// passes (default 60).
	PollInterval int

	// SchedulerTimezone is the IANA timezone cron expressions are evaluated in
	// (default UTC).
	SchedulerTimezone string

	// GitHubBaseURL is the GitHub REST API base (override for GitHub Enterprise
	// or tests).
	GitHubBaseURL string

	// GitHubTimeout is the per-request timeout in seconds for GitHub calls
	// (default 15).
	GitHubTimeout int

	// GitHubRateLimit caps outbound GitHub requests per second across all jobs
	// (default 10).
	GitHubRateLimit int

	// FetchConcurrency bounds how many repositories one job fetches in parallel
	// (default 8).
	FetchConcurrency int

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// Env is "dev" (default) or "prod". When "prod", ENCRYPTION_KEY must be set.
	Env string
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8081"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "prnotify"),
		DBUser: getEnv("DB_USER", "prnotify"),
		DBPass: getEnv("DB_PASS", "prnotify"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		EmailFrom:      getEnv("EMAIL_FROM", ""),
		ApplicationURL: getEnv("APPLICATION_URL", "http://localhost:5173"),

		PollInterval:      getEnvInt("SCHEDULE_POLL_INTERVAL", 60),
		SchedulerTimezone: getEnv("SCHEDULER_TIMEZONE", "UTC"),

		GitHubBaseURL:   getEnv("GITHUB_BASE_URL", "https://api.github.com"),
		GitHubTimeout:   getEnvInt("GITHUB_TIMEOUT_SECONDS", 15),
		GitHubRateLimit: getEnvInt("GITHUB_RATE_LIMIT", 10),

		FetchConcurrency: getEnvInt("FETCH_CONCURRENCY", 8),

		LogFormat: getEnv("LOG_FORMAT", "text"),
		Env:       getEnv("ENV", "dev"),
	}
}

// Validate rejects configuration the scheduler cannot safely run with.
// ENCRYPTION_KEY has no usable default, so prod requires it explicitly; in
// dev a missing key still fails later when the cipher is built, with a
// clearer message here.
func (c Config) Validate() error {
	if c.Env == "prod" && c.EncryptionKey == "" {
		return errors.New("ENCRYPTION_KEY is required when ENV=prod")
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
