package credential

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "symptomcheck:session:"

// RedisStore keeps readiness flags in Redis so they survive across
// replicas. Each flag expires after the configured TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStore(addr, password string, db int, ttl time.Duration, logger *slog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb, ttl: ttl, logger: logger}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (s *RedisStore) Ready(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		s.logger.Error("redis session lookup failed", "err", err)
		return false, fmt.Errorf("session ready: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) MarkReady(ctx context.Context, sessionID string) error {
	if err := s.client.Set(ctx, sessionKey(sessionID), "1", s.ttl).Err(); err != nil {
		s.logger.Error("redis session set failed", "err", err)
		return fmt.Errorf("session mark ready: %w", err)
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		s.logger.Error("redis session delete failed", "err", err)
		return fmt.Errorf("session invalidate: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
