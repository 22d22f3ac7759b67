package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/globotrack/internal/models"
	"github.com/redis/go-redis/v9"
)

// redisKey namespaces the profile inside a shared Redis.
const redisKey = "globotrack:" + ProfileKey

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps the profile JSON under a single Redis key.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ ProfileStore = (*RedisStore)(nil)

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	s := NewRedisStoreFromClient(client, logger)
	s.logger.Info("redis profile store ready", "addr", cfg.Addr, "db", cfg.DB)
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{client: client, logger: logger}
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Load reads the profile key.
func (s *RedisStore) Load(ctx context.Context) (*models.UserProfile, error) {
	data, err := s.client.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return decodeProfile(data, s.logger), nil
}

// Save overwrites the profile key without expiry.
func (s *RedisStore) Save(ctx context.Context, profile models.UserProfile) error {
	data, err := encodeProfile(profile)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey, data, 0).Err(); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Clear deletes the profile key.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}
