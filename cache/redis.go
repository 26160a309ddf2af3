package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis cache configuration.
type RedisConfig struct {
	Addr     string        // Redis server address (e.g., "localhost:6379")
	Password string        // Redis password (if any)
	DB       int           // Redis database number
	Prefix   string        // Key prefix for namespacing
	TTL      time.Duration // Time-to-live for entries (0 means no expiration)
}

// Redis is a Store backed by a Redis server, for sharing results across
// processes.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis-based result cache.
func NewRedis(config *RedisConfig) *Redis {
	if config == nil {
		config = &RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "docqa:results:",
		}
	}
	if config.Prefix == "" {
		config.Prefix = "docqa:results:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &Redis{
		client: client,
		prefix: config.Prefix,
		ttl:    config.TTL,
	}
}

// Get returns the cached entry for the question, or nil on a miss.
func (r *Redis) Get(ctx context.Context, question string) (*Entry, error) {
	data, err := r.client.Get(ctx, r.prefix+Key(question)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached result: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}
	return &entry, nil
}

// Set stores the entry under its question key.
func (r *Redis) Set(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return nil
	}
	clone := *entry
	if clone.CachedAt.IsZero() {
		clone.CachedAt = time.Now()
	}

	data, err := json.Marshal(&clone)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+Key(entry.Question), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store result in Redis: %w", err)
	}
	return nil
}

// Clear removes all cached entries under the prefix.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached results: %w", err)
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cached results: %w", err)
		}
	}
	return nil
}

// Ping checks if the Redis connection is alive.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
