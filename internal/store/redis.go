// Package store provides storage backends for zamowbot.
//
// This file implements the Redis-backed session store. Sessions are stored
// as JSON under a key prefix with a sliding TTL.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zamowbot/zamowbot/internal/models"
)

const (
	// sessionKeyPrefix namespaces session keys in Redis.
	sessionKeyPrefix = "zamowbot:session:"
	// DefaultSessionTTL is how long an idle session survives.
	DefaultSessionTTL = 24 * time.Hour
)

// RedisSessionStore keeps sessions in Redis with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore connects to Redis at the given address and verifies
// the connection.
func NewRedisSessionStore(ctx context.Context, addr, password string, db int) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Redis ping failed", "error", err, "addr", addr)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	slog.Debug("Redis session store ready", "addr", addr, "db", db)
	return &RedisSessionStore{client: client, ttl: DefaultSessionTTL}, nil
}

// NewRedisSessionStoreFromClient wraps an existing client; used by tests.
func NewRedisSessionStoreFromClient(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: DefaultSessionTTL}
}

// Close releases the Redis client.
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

// GetSession returns the stored session or nil when absent.
func (s *RedisSessionStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session failed: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return &session, nil
}

// SaveSession upserts the session JSON and refreshes the TTL.
func (s *RedisSessionStore) SaveSession(ctx context.Context, session *models.Session) error {
	if session == nil || session.ID == "" {
		return models.ErrSessionNotFound
	}
	session.UpdatedAt = time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = session.UpdatedAt
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session failed: %w", err)
	}
	return nil
}

// DeleteSession removes a session key.
func (s *RedisSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis delete session failed: %w", err)
	}
	return nil
}

// ListSessionIDs scans for all session keys.
func (s *RedisSessionStore) ListSessionIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(sessionKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan sessions failed: %w", err)
	}
	return ids, nil
}
