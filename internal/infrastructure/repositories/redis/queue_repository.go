package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// positionScale folds (position, seq) into a single sorted-set score.
// Sequence numbers stay far below the scale in practice, so scores
// order by position first and insertion order second.
const positionScale = 1e9

type RedisQueueRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisQueueRepository(client *redis.Client, prefix string) ports.QueueRepository {
	return &RedisQueueRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisQueueRepository) entryKey(id domain.EntryID) string {
	return r.prefix + "queue:entry:" + string(id)
}

func (r *RedisQueueRepository) orderKey() string {
	return r.prefix + "queue:order"
}

func (r *RedisQueueRepository) seqKey() string {
	return r.prefix + "queue:seq"
}

func queueScore(position int, seq int64) float64 {
	return float64(position)*positionScale + float64(seq)
}

func (r *RedisQueueRepository) Add(ctx context.Context, entry *domain.QueueEntry) error {
	seq, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate queue sequence: %w", err)
	}
	entry.Seq = seq

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal queue entry: %w", err)
	}

	if err := r.client.Set(ctx, r.entryKey(entry.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set queue entry in Redis: %w", err)
	}
	if err := r.client.ZAdd(ctx, r.orderKey(), redis.Z{
		Score:  queueScore(entry.Position, entry.Seq),
		Member: string(entry.ID),
	}).Err(); err != nil {
		return fmt.Errorf("failed to order queue entry: %w", err)
	}

	return nil
}

func (r *RedisQueueRepository) GetByID(ctx context.Context, id domain.EntryID) (*domain.QueueEntry, error) {
	data, err := r.client.Get(ctx, r.entryKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue entry from Redis: %w", err)
	}

	var entry domain.QueueEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue entry: %w", err)
	}

	return &entry, nil
}

func (r *RedisQueueRepository) Update(ctx context.Context, entry *domain.QueueEntry) error {
	if _, err := r.GetByID(ctx, entry.ID); err != nil {
		return err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal queue entry: %w", err)
	}

	if err := r.client.Set(ctx, r.entryKey(entry.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update queue entry in Redis: %w", err)
	}
	if err := r.client.ZAdd(ctx, r.orderKey(), redis.Z{
		Score:  queueScore(entry.Position, entry.Seq),
		Member: string(entry.ID),
	}).Err(); err != nil {
		return fmt.Errorf("failed to reorder queue entry: %w", err)
	}

	return nil
}

func (r *RedisQueueRepository) Remove(ctx context.Context, id domain.EntryID) error {
	deleted, err := r.client.Del(ctx, r.entryKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete queue entry from Redis: %w", err)
	}
	if deleted == 0 {
		return domain.ErrEntryNotFound
	}

	if err := r.client.ZRem(ctx, r.orderKey(), string(id)).Err(); err != nil {
		return fmt.Errorf("failed to unorder queue entry: %w", err)
	}

	return nil
}

func (r *RedisQueueRepository) RemoveByVideo(ctx context.Context, videoID domain.VideoID) (int, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.VideoID != videoID {
			continue
		}
		if err := r.Remove(ctx, entry.ID); err != nil && err != domain.ErrEntryNotFound {
			return removed, err
		}
		removed++
	}

	return removed, nil
}

func (r *RedisQueueRepository) List(ctx context.Context) ([]*domain.QueueEntry, error) {
	ids, err := r.client.ZRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list queue order from Redis: %w", err)
	}

	entries := make([]*domain.QueueEntry, 0, len(ids))
	for _, id := range ids {
		entry, err := r.GetByID(ctx, domain.EntryID(id))
		if err != nil {
			// Skip entries whose blob is gone
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Renumber validates every id before touching positions, so a stale id
// list leaves the queue unchanged.
func (r *RedisQueueRepository) Renumber(ctx context.Context, ordered []domain.EntryID) error {
	entries := make([]*domain.QueueEntry, 0, len(ordered))
	for _, id := range ordered {
		entry, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	for i, entry := range entries {
		entry.Position = i
		if err := r.Update(ctx, entry); err != nil {
			return err
		}
	}

	return nil
}

func (r *RedisQueueRepository) Clear(ctx context.Context) error {
	ids, err := r.client.ZRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list queue order from Redis: %w", err)
	}

	for _, id := range ids {
		if err := r.client.Del(ctx, r.entryKey(domain.EntryID(id))).Err(); err != nil {
			return fmt.Errorf("failed to delete queue entry from Redis: %w", err)
		}
	}

	if err := r.client.Del(ctx, r.orderKey()).Err(); err != nil {
		return fmt.Errorf("failed to clear queue order: %w", err)
	}

	return nil
}
