package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	RedisURL string

	JWTSecret string
	JWTTTL    time.Duration

	// Emails seeded into the admin allowlist at startup.
	AdminEmails []string

	// Display name interpolated into drafts and notifications, and the
	// From address stamped onto rendered draft messages.
	SenderName  string
	SenderEmail string

	ReviewCacheTTL time.Duration
	// How long a staged transition may sit unconfirmed before the
	// sweeper discards it.
	StagedTransitionTTL time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		SenderName:  getEnv("SENDER_NAME", "Bibliomaniacs Review Team"),
		SenderEmail: getEnv("SENDER_EMAIL", "reviews@bibliomaniacs.org"),
	}

	if raw := os.Getenv("ADMIN_EMAILS"); raw != "" {
		for _, email := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(email); trimmed != "" {
				cfg.AdminEmails = append(cfg.AdminEmails, trimmed)
			}
		}
	}

	var err error
	cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.ReviewCacheTTL, err = time.ParseDuration(getEnv("REVIEW_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REVIEW_CACHE_TTL: %w", err)
	}
	cfg.StagedTransitionTTL, err = time.ParseDuration(getEnv("STAGED_TRANSITION_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid STAGED_TRANSITION_TTL: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
