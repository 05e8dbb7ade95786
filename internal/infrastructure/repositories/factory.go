package repositories

import (
	"context"

	"livecast/internal/core/ports"
	"livecast/internal/infrastructure/repositories/memory"
	redisrepo "livecast/internal/infrastructure/repositories/redis"
	"livecast/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories with fallback support: when
// redis is enabled but unreachable, it degrades to memory repositories
// instead of refusing to start.
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	prefix      string
	logger      *zap.SugaredLogger
}

func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		prefix:   cfg.Redis.KeyPrefix,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			cfg.Redis.KeyPrefix,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

func (f *RepositoryFactory) CreateVideoRepository() ports.VideoRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisVideoRepository(f.redisClient, f.prefix)
	}
	return memory.NewMemoryVideoRepository()
}

func (f *RepositoryFactory) CreateQueueRepository() ports.QueueRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisQueueRepository(f.redisClient, f.prefix)
	}
	return memory.NewMemoryQueueRepository()
}

func (f *RepositoryFactory) CreateSessionRepository() ports.SessionRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisSessionRepository(f.redisClient, f.prefix)
	}
	return memory.NewMemorySessionRepository()
}

func (f *RepositoryFactory) CreateMetricsRepository() ports.MetricsRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisMetricsRepository(f.redisClient, f.prefix)
	}
	return memory.NewMemoryMetricsRepository()
}

func (f *RepositoryFactory) CreateSettingsRepository() ports.SettingsRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisSettingsRepository(f.redisClient, f.prefix)
	}
	return memory.NewMemorySettingsRepository()
}

// RedisClient exposes the shared client for the event relay; nil when
// running on memory repositories.
func (f *RepositoryFactory) RedisClient() *redis.Client {
	return f.redisClient
}

// Close closes the Redis connection if used.
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks Redis connection health.
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
