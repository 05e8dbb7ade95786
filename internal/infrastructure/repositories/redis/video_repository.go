package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisVideoRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisVideoRepository(client *redis.Client, prefix string) ports.VideoRepository {
	return &RedisVideoRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisVideoRepository) videoKey(id domain.VideoID) string {
	return r.prefix + "video:" + string(id)
}

func (r *RedisVideoRepository) indexKey() string {
	return r.prefix + "videos"
}

func (r *RedisVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	data, err := json.Marshal(video)
	if err != nil {
		return fmt.Errorf("failed to marshal video: %w", err)
	}

	if err := r.client.Set(ctx, r.videoKey(video.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set video in Redis: %w", err)
	}
	if err := r.client.SAdd(ctx, r.indexKey(), string(video.ID)).Err(); err != nil {
		return fmt.Errorf("failed to index video: %w", err)
	}

	return nil
}

func (r *RedisVideoRepository) GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	data, err := r.client.Get(ctx, r.videoKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video from Redis: %w", err)
	}

	var video domain.Video
	if err := json.Unmarshal([]byte(data), &video); err != nil {
		return nil, fmt.Errorf("failed to unmarshal video: %w", err)
	}

	return &video, nil
}

func (r *RedisVideoRepository) Update(ctx context.Context, video *domain.Video) error {
	if _, err := r.GetByID(ctx, video.ID); err != nil {
		return err
	}

	data, err := json.Marshal(video)
	if err != nil {
		return fmt.Errorf("failed to marshal video: %w", err)
	}

	if err := r.client.Set(ctx, r.videoKey(video.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update video in Redis: %w", err)
	}

	return nil
}

func (r *RedisVideoRepository) Delete(ctx context.Context, id domain.VideoID) error {
	deleted, err := r.client.Del(ctx, r.videoKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete video from Redis: %w", err)
	}
	if deleted == 0 {
		return domain.ErrVideoNotFound
	}

	if err := r.client.SRem(ctx, r.indexKey(), string(id)).Err(); err != nil {
		return fmt.Errorf("failed to unindex video: %w", err)
	}

	return nil
}

func (r *RedisVideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list videos from Redis: %w", err)
	}

	videos := make([]*domain.Video, 0, len(ids))
	for _, id := range ids {
		video, err := r.GetByID(ctx, domain.VideoID(id))
		if err != nil {
			// Skip entries whose blob is gone
			continue
		}
		videos = append(videos, video)
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].UploadedAt.Before(videos[j].UploadedAt)
	})

	return videos, nil
}
