package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tkilaker/wikitok/internal/models"
)

// RedisConfig configures the Redis connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis is a Store shared between instances of the service
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies connectivity
func NewRedis(cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Redis{client: client, ttl: cfg.TTL}, nil
}

// Close closes the underlying Redis client
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string) (models.PageDetails, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Error reading %s from redis: %v", key, err)
		}
		return models.PageDetails{}, false
	}

	var details models.PageDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		log.Printf("Error decoding cached %s: %v", key, err)
		return models.PageDetails{}, false
	}
	return details, true
}

func (r *Redis) Set(ctx context.Context, key string, details models.PageDetails) {
	raw, err := json.Marshal(details)
	if err != nil {
		log.Printf("Error encoding %s for redis: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		log.Printf("Error writing %s to redis: %v", key, err)
	}
}
