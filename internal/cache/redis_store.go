package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
)

const defaultKey = "sportsbook_explorer:last_result"

// RedisStore keeps the last result set in Redis
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisStoreConfig holds Redis store configuration
type RedisStoreConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // zero keeps the result until overwritten
	Key      string
}

// NewRedisStore creates a new Redis-backed result store
func NewRedisStore(config RedisStoreConfig, logger zerolog.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	key := config.Key
	if key == "" {
		key = defaultKey
	}

	return &RedisStore{
		client: client,
		key:    key,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "redis_store").Logger(),
	}
}

// Save overwrites the stored result set
func (s *RedisStore) Save(ctx context.Context, rs *models.ResultSet) error {
	data, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("failed to marshal result set: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	s.logger.Debug().
		Str("key", s.key).
		Str("result_id", rs.ID.String()).
		Int("rows", len(rs.Rows)).
		Dur("ttl", s.ttl).
		Msg("stored last result")

	return nil
}

// Last returns the stored result set or models.ErrNoResult
func (s *RedisStore) Last(ctx context.Context) (*models.ResultSet, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrNoResult
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var rs models.ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result set: %w", err)
	}

	return &rs, nil
}

// Ping checks Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
