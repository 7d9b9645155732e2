package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in redis so every server instance sees sign-outs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redisURL (redis://host:port/db) and pings it.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func sessionKeyFor(tokenID string) string { return "careconnect:session:" + tokenID }
func userKeyFor(userID string) string     { return "careconnect:user_sessions:" + userID }

func (s *RedisStore) Put(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyFor(tokenID), userID, ttl)
	pipe.SAdd(ctx, userKeyFor(userID), tokenID)
	pipe.Expire(ctx, userKeyFor(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Active(ctx context.Context, tokenID string) (bool, error) {
	_, err := s.client.Get(ctx, sessionKeyFor(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup session: %w", err)
	}
	return true, nil
}

func (s *RedisStore) Revoke(ctx context.Context, tokenID string) error {
	userID, err := s.client.Get(ctx, sessionKeyFor(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup session: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyFor(tokenID))
	pipe.SRem(ctx, userKeyFor(userID), tokenID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *RedisStore) RevokeAllForUser(ctx context.Context, userID string) (int, error) {
	jtis, err := s.client.SMembers(ctx, userKeyFor(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("list user sessions: %w", err)
	}
	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, sessionKeyFor(jti))
	}
	keys = append(keys, userKeyFor(userID))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}
	return len(jtis), nil
}

// Ping satisfies the health handler.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
