package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/suyogshakya/rentwheels/internal/config"
	"github.com/suyogshakya/rentwheels/internal/domain"
)

const redisKeyPrefix = "rentwheels:pending:"

// RedisStore is the durable, TTL-capable backend. Intents survive process
// restarts and expire server-side, so Sweep has nothing to do.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Put(ctx context.Context, intent *domain.BookingIntent) error {
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+intent.TransactionID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store intent: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, transactionID string) (*domain.BookingIntent, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+transactionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NewUnknownTransactionError(transactionID)
		}
		return nil, fmt.Errorf("load intent: %w", err)
	}

	var intent domain.BookingIntent
	if err := json.Unmarshal(payload, &intent); err != nil {
		return nil, fmt.Errorf("unmarshal intent: %w", err)
	}
	return &intent, nil
}

func (s *RedisStore) Delete(ctx context.Context, transactionID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+transactionID).Err(); err != nil {
		return fmt.Errorf("delete intent: %w", err)
	}
	return nil
}

// FindByAmount scans the pending keyspace. This only runs on the flag-gated
// fallback path for callbacks missing a transaction id, so the scan cost is
// acceptable.
func (s *RedisStore) FindByAmount(ctx context.Context, amount, tolerance float64) ([]*domain.BookingIntent, error) {
	var matches []*domain.BookingIntent

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		payload, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("load intent during scan: %w", err)
		}

		var intent domain.BookingIntent
		if err := json.Unmarshal(payload, &intent); err != nil {
			continue
		}
		if math.Abs(intent.TotalAmount-amount) <= tolerance {
			matches = append(matches, &intent)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan pending keyspace: %w", err)
	}
	return matches, nil
}

// Sweep is a no-op: Redis expires entries via the per-key TTL set on Put.
func (s *RedisStore) Sweep(ctx context.Context, olderThan time.Duration) ([]*domain.BookingIntent, error) {
	return nil, nil
}
