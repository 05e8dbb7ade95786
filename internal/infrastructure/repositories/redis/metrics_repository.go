package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// RedisMetricsRepository appends samples to a per-session list, so the
// newest sample is always the tail.
type RedisMetricsRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisMetricsRepository(client *redis.Client, prefix string) ports.MetricsRepository {
	return &RedisMetricsRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisMetricsRepository) samplesKey(sessionID domain.SessionID) string {
	return r.prefix + "metrics:" + string(sessionID)
}

func (r *RedisMetricsRepository) Append(ctx context.Context, sample *domain.LiveMetrics) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics sample: %w", err)
	}

	if err := r.client.RPush(ctx, r.samplesKey(sample.SessionID), data).Err(); err != nil {
		return fmt.Errorf("failed to append metrics sample in Redis: %w", err)
	}

	return nil
}

func (r *RedisMetricsRepository) Latest(ctx context.Context, sessionID domain.SessionID) (*domain.LiveMetrics, error) {
	data, err := r.client.LIndex(ctx, r.samplesKey(sessionID), -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest metrics from Redis: %w", err)
	}

	var sample domain.LiveMetrics
	if err := json.Unmarshal([]byte(data), &sample); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics sample: %w", err)
	}

	return &sample, nil
}

func (r *RedisMetricsRepository) ListBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.LiveMetrics, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	items, err := r.client.LRange(ctx, r.samplesKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics from Redis: %w", err)
	}

	samples := make([]*domain.LiveMetrics, 0, len(items))
	for _, item := range items {
		var sample domain.LiveMetrics
		if err := json.Unmarshal([]byte(item), &sample); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metrics sample: %w", err)
		}
		samples = append(samples, &sample)
	}

	return samples, nil
}
