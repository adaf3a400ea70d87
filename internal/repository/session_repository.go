package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionKeyPrefix = "academia:session:"

// SessionRepository tracks issued web sessions in Redis so they can be revoked
// before the cookie expires. A nil client turns every call into a no-op and
// Exists reports true.
type SessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionRepository constructs a session registry.
func NewSessionRepository(client *redis.Client, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{client: client, logger: logger}
}

// Enabled reports whether sessions are tracked.
func (r *SessionRepository) Enabled() bool {
	return r != nil && r.client != nil
}

// Register records the session id for its lifetime and indexes it by user.
func (r *SessionRepository) Register(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	if !r.Enabled() {
		return nil
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sessionID), userID, ttl)
	pipe.SAdd(ctx, userSessionsKey(userID), sessionID)
	pipe.Expire(ctx, userSessionsKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis register session: %w", err)
	}
	return nil
}

// Exists reports whether the session is still registered.
func (r *SessionRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	if !r.Enabled() {
		return true, nil
	}
	err := r.client.Get(ctx, sessionKey(sessionID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get session: %w", err)
	}
	return true, nil
}

// Revoke forgets one session.
func (r *SessionRepository) Revoke(ctx context.Context, sessionID string) error {
	if !r.Enabled() {
		return nil
	}
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis revoke session: %w", err)
	}
	return nil
}

// RevokeUser forgets every session of the user.
func (r *SessionRepository) RevokeUser(ctx context.Context, userID int64) error {
	if !r.Enabled() {
		return nil
	}
	ids, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("redis list user sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(userID))
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis revoke user sessions: %w", err)
	}
	r.logger.Debug("sessions revoked", zap.Int64("user_id", userID), zap.Int("count", len(ids)))
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *SessionRepository) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Close()
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func userSessionsKey(userID int64) string {
	return fmt.Sprintf("%suser:%d", sessionKeyPrefix, userID)
}
