package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret string

	LeaderboardTTL time.Duration
	LeaderboardMax int

	// Execution budget for a single background job run. A run exceeding
	// this is cancelled; the next scheduled tick catches up.
	JobBudget time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		JWTSecret: getEnv("JWT_SECRET", "12345"),

		LeaderboardMax: 100,
	}

	var err error
	cfg.LeaderboardTTL, err = time.ParseDuration(getEnv("LEADERBOARD_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_TTL: %w", err)
	}
	cfg.JobBudget, err = time.ParseDuration(getEnv("JOB_BUDGET", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_BUDGET: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
