package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisSettingsRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisSettingsRepository(client *redis.Client, prefix string) ports.SettingsRepository {
	return &RedisSettingsRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisSettingsRepository) settingsKey() string {
	return r.prefix + "settings"
}

func (r *RedisSettingsRepository) credentialsKey() string {
	return r.prefix + "credentials"
}

func (r *RedisSettingsRepository) GetSettings(ctx context.Context) (*domain.StreamSettings, error) {
	data, err := r.client.Get(ctx, r.settingsKey()).Result()
	if err == redis.Nil {
		return nil, domain.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings from Redis: %w", err)
	}

	var settings domain.StreamSettings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &settings, nil
}

func (r *RedisSettingsRepository) SaveSettings(ctx context.Context, settings *domain.StreamSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := r.client.Set(ctx, r.settingsKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save settings in Redis: %w", err)
	}

	return nil
}

func (r *RedisSettingsRepository) GetCredentials(ctx context.Context) (*domain.Credentials, error) {
	data, err := r.client.Get(ctx, r.credentialsKey()).Result()
	if err == redis.Nil {
		return nil, domain.ErrCredentialsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials from Redis: %w", err)
	}

	var creds domain.Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}

	return &creds, nil
}

func (r *RedisSettingsRepository) SaveCredentials(ctx context.Context, creds *domain.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := r.client.Set(ctx, r.credentialsKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save credentials in Redis: %w", err)
	}

	return nil
}
