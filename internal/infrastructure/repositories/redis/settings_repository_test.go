package redis

import (
	"context"
	"testing"
	"time"

	"livecast/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSettingsRepository_MissingRecords(t *testing.T) {
	repo := NewRedisSettingsRepository(newTestClient(t), testPrefix)
	ctx := context.Background()

	_, err := repo.GetSettings(ctx)
	assert.ErrorIs(t, err, domain.ErrSettingsNotFound)

	_, err = repo.GetCredentials(ctx)
	assert.ErrorIs(t, err, domain.ErrCredentialsNotFound)
}

func TestRedisSettingsRepository_RoundTrip(t *testing.T) {
	repo := NewRedisSettingsRepository(newTestClient(t), testPrefix)
	ctx := context.Background()

	require.NoError(t, repo.SaveSettings(ctx, &domain.StreamSettings{
		Quality:   "720p",
		Bitrate:   "2500",
		AutoQueue: true,
		UpdatedAt: time.Now().UTC(),
	}))
	settings, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "720p", settings.Quality)
	assert.True(t, settings.AutoQueue)

	require.NoError(t, repo.SaveCredentials(ctx, &domain.Credentials{
		PageID:      "123456789",
		AccessToken: "EAAtesttoken",
		UpdatedAt:   time.Now().UTC(),
	}))
	creds, err := repo.GetCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "123456789", creds.PageID)
}
