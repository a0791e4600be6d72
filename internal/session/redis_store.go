package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/game-catalog-backend/internal/domain"
)

// KeyPrefix is the Redis key prefix for all session hashes.
const KeyPrefix = "session:"

type redisSession struct {
	ID           string `redis:"id"`
	UserID       string `redis:"user_id"`
	Username     string `redis:"username"`
	CreatedAt    int64  `redis:"created_at"`
	LastActivity int64  `redis:"last_activity"`
	ExpiresAt    int64  `redis:"expires_at"`
}

// RedisStore keeps each session in a hash whose key expires with it.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session: redis connection failed: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, sess *domain.Session) error {
	key := KeyPrefix + sess.ID
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"id":            sess.ID,
		"user_id":       sess.UserID,
		"username":      sess.Username,
		"created_at":    sess.CreatedAt.UnixMilli(),
		"last_activity": sess.LastActivity.UnixMilli(),
		"expires_at":    sess.ExpiresAt.UnixMilli(),
	})
	pipe.ExpireAt(ctx, key, sess.ExpiresAt)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, id string, now time.Time) (*domain.Session, error) {
	var rs redisSession
	if err := s.client.HGetAll(ctx, KeyPrefix+id).Scan(&rs); err != nil {
		return nil, err
	}
	if rs.ID == "" {
		return nil, ErrNotFound
	}
	sess := &domain.Session{
		ID:           rs.ID,
		UserID:       rs.UserID,
		Username:     rs.Username,
		CreatedAt:    time.UnixMilli(rs.CreatedAt).UTC(),
		LastActivity: time.UnixMilli(rs.LastActivity).UTC(),
		ExpiresAt:    time.UnixMilli(rs.ExpiresAt).UTC(),
	}
	if sess.Expired(now) {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *RedisStore) Touch(ctx context.Context, id string, now, expiresAt time.Time) error {
	if _, err := s.Get(ctx, id, now); err != nil {
		return err
	}
	key := KeyPrefix + id
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "last_activity", now.UnixMilli(), "expires_at", expiresAt.UnixMilli())
	pipe.ExpireAt(ctx, key, expiresAt)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, KeyPrefix+id).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }
