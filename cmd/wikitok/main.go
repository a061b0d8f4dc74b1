package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/tkilaker/wikitok/internal/aggregator"
	"github.com/tkilaker/wikitok/internal/cache"
	"github.com/tkilaker/wikitok/internal/config"
	"github.com/tkilaker/wikitok/internal/database"
	"github.com/tkilaker/wikitok/internal/likes"
	"github.com/tkilaker/wikitok/internal/preferences"
	"github.com/tkilaker/wikitok/internal/server"
	"github.com/tkilaker/wikitok/internal/userid"
	"github.com/tkilaker/wikitok/internal/wikipedia"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.Println("Starting WikiTok...")

	// Open storage
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	installID := userid.Load(filepath.Join(cfg.DataDir, userid.FileName))
	log.Printf("Installation user id: %s", installID)

	// Page details cache
	var details cache.Store
	if cfg.CacheEnabled {
		c, closeCache, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer closeCache()
		details = c
	}

	// Wikipedia client and aggregator
	client := wikipedia.New(wikipedia.Config{
		Endpoint:  cfg.WikipediaBaseURL,
		UserAgent: cfg.WikipediaUserAgent,
	})
	feed := aggregator.New(client, aggregator.Config{
		Cache:             details,
		DetailConcurrency: cfg.DetailConcurrency,
	})
	log.Println("Initialized article aggregator")

	// Create server
	srv := server.New(feed, preferences.NewService(store), likes.NewService(store), cfg, installID)
	log.Println("Initialized server")

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Server starting on http://localhost%s", addr)
	if err := srv.Start(ctx, addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Println("Shutting down gracefully...")
	return nil
}

// openStore opens the local SQLite database and, when DATABASE_URL is set,
// puts Postgres in front of it
func openStore(ctx context.Context, cfg *config.Config) (database.Backend, error) {
	local, err := database.NewSQLite(ctx, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	log.Printf("Opened local database in %s", cfg.DataDir)

	if cfg.DatabaseURL == "" {
		return local, nil
	}

	remote, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("Postgres unavailable, using local database only: %v", err)
		return local, nil
	}
	log.Println("Connected to database")

	return database.NewFallback(remote, local), nil
}

// openCache connects to Redis when configured, otherwise keeps details in
// memory and schedules periodic cleanup
func openCache(cfg *config.Config) (cache.Store, func(), error) {
	if cfg.RedisAddr != "" {
		redis, err := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err == nil {
			log.Printf("Connected to redis at %s", cfg.RedisAddr)
			return redis, func() { redis.Close() }, nil
		}
		log.Printf("Redis unavailable, caching in memory: %v", err)
	}

	memory := cache.NewMemory(cfg.CacheTTL)

	c := cron.New()
	if _, err := c.AddFunc(cfg.CacheCleanupSchedule, func() {
		if removed := memory.Cleanup(); removed > 0 {
			log.Printf("Removed %d expired cache entries", removed)
		}
	}); err != nil {
		return nil, nil, fmt.Errorf("invalid cache cleanup schedule %q: %w", cfg.CacheCleanupSchedule, err)
	}
	c.Start()

	return memory, func() { c.Stop() }, nil
}
