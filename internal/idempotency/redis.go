package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisClient parses url and verifies the server answers PING.
func NewRedisClient(ctx context.Context, url string, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("redis connection established")

	return client, nil
}

// NewRedisStore creates a Store backed by Redis. Records expire after ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) Store {
	return &redisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "idempotency").Logger(),
	}
}

func (s *redisStore) Get(ctx context.Context, key string) (uuid.UUID, bool, error) {
	val, err := s.client.Get(ctx, orderCreateKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to read idempotency key")
		return uuid.Nil, false, fmt.Errorf("failed to read idempotency key: %w", err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("idempotency key holds invalid order ID")
		return uuid.Nil, false, nil
	}

	return id, true, nil
}

func (s *redisStore) Put(ctx context.Context, key string, orderID uuid.UUID) error {
	ok, err := s.client.SetNX(ctx, orderCreateKey(key), orderID.String(), s.ttl).Result()
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to write idempotency key")
		return fmt.Errorf("failed to write idempotency key: %w", err)
	}

	if !ok {
		s.logger.Debug().Str("key", key).Msg("idempotency key already recorded")
	}

	return nil
}
