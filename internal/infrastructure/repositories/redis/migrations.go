package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const currentSchemaVersion = 1

// Migration is a single schema version step.
type Migration struct {
	Version int
	Up      func(ctx context.Context, client *redis.Client, prefix string) error
}

// Migrate brings the key schema up to the current version. The version
// itself lives under the configured prefix so separate deployments can
// share one redis.
func Migrate(ctx context.Context, client *redis.Client, prefix string, logger *zap.SugaredLogger) error {
	versionKey := prefix + "schema:version"

	version, err := getSchemaVersion(ctx, client, versionKey)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if version >= currentSchemaVersion {
		if logger != nil {
			logger.Infow("schema is up to date", "version", version)
		}
		return nil
	}

	for _, migration := range migrations() {
		if migration.Version <= version {
			continue
		}

		if logger != nil {
			logger.Infow("running migration", "version", migration.Version)
		}

		if err := migration.Up(ctx, client, prefix); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}
		if err := client.Set(ctx, versionKey, migration.Version, 0).Err(); err != nil {
			return fmt.Errorf("failed to update schema version: %w", err)
		}
	}

	if logger != nil {
		logger.Infow("migrations completed", "version", currentSchemaVersion)
	}

	return nil
}

func getSchemaVersion(ctx context.Context, client *redis.Client, key string) (int, error) {
	version, err := client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func migrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Up: func(ctx context.Context, client *redis.Client, prefix string) error {
				// Seed the queue sequence counter so entry ordering
				// survives restarts from the first Add on.
				return client.SetNX(ctx, prefix+"queue:seq", 0, 0).Err()
			},
		},
	}
}
