package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port int

	// Storage. DatabaseURL is optional; without it only the local
	// SQLite file under DataDir is used.
	DatabaseURL string
	DataDir     string

	// Page details cache
	CacheEnabled         bool
	CacheTTL             time.Duration
	CacheCleanupSchedule string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int

	// Wikipedia
	WikipediaUserAgent string
	WikipediaBaseURL   string
	DetailConcurrency  int

	// RSS Feed
	FeedTitle       string
	FeedDescription string
	FeedLink        string
	FeedAuthor      string
}

// Load reads configuration from environment variables, after loading a
// .env file from the working directory when one exists
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnvAsInt("PORT", 8080),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DataDir:              getEnv("DATA_DIR", "data"),
		CacheEnabled:         getEnvAsBool("CACHE_ENABLED", true),
		CacheTTL:             getEnvAsDuration("CACHE_TTL", 24*time.Hour),
		CacheCleanupSchedule: getEnv("CACHE_CLEANUP_SCHEDULE", "@every 1h"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvAsInt("REDIS_DB", 0),
		WikipediaUserAgent:   getEnv("WIKIPEDIA_USER_AGENT", ""),
		WikipediaBaseURL:     getEnv("WIKIPEDIA_BASE_URL", ""),
		DetailConcurrency:    getEnvAsInt("DETAIL_CONCURRENCY", 10),
		FeedTitle:            getEnv("FEED_TITLE", "My WikiTok Likes"),
		FeedDescription:      getEnv("FEED_DESCRIPTION", "Wikipedia articles I liked"),
		FeedLink:             getEnv("FEED_LINK", "http://localhost:8080"),
		FeedAuthor:           getEnv("FEED_AUTHOR", "WikiTok User"),
	}

	// Validate
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.DetailConcurrency <= 0 {
		return nil, fmt.Errorf("DETAIL_CONCURRENCY must be positive, got %d", cfg.DetailConcurrency)
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
