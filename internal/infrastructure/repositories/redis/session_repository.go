package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisSessionRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisSessionRepository(client *redis.Client, prefix string) ports.SessionRepository {
	return &RedisSessionRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisSessionRepository) sessionKey(id domain.SessionID) string {
	return r.prefix + "session:" + string(id)
}

func (r *RedisSessionRepository) recentKey() string {
	return r.prefix + "sessions:recent"
}

func (r *RedisSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, r.sessionKey(session.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set session in Redis: %w", err)
	}
	if err := r.client.LPush(ctx, r.recentKey(), string(session.ID)).Err(); err != nil {
		return fmt.Errorf("failed to index session: %w", err)
	}

	return nil
}

func (r *RedisSessionRepository) GetByID(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (r *RedisSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	if _, err := r.GetByID(ctx, session.ID); err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, r.sessionKey(session.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update session in Redis: %w", err)
	}

	return nil
}

// List returns sessions newest first. The recent index is written by
// LPush, so a plain range already has the right order.
func (r *RedisSessionRepository) List(ctx context.Context, limit int) ([]*domain.Session, error) {
	end := int64(-1)
	if limit > 0 {
		end = int64(limit) - 1
	}

	ids, err := r.client.LRange(ctx, r.recentKey(), 0, end).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions from Redis: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := r.GetByID(ctx, domain.SessionID(id))
		if err != nil {
			// Skip entries whose blob is gone
			continue
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}
