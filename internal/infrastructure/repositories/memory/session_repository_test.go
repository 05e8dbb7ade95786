package memory

import (
	"context"
	"testing"

	"livecast/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	for _, id := range []domain.SessionID{"sess_1", "sess_2", "sess_3"} {
		require.NoError(t, repo.Create(ctx, &domain.Session{ID: id, Status: domain.SessionStatusStopped}))
	}

	sessions, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, domain.SessionID("sess_3"), sessions[0].ID)
	assert.Equal(t, domain.SessionID("sess_1"), sessions[2].ID)

	limited, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, domain.SessionID("sess_3"), limited[0].ID)
	assert.Equal(t, domain.SessionID("sess_2"), limited[1].ID)
}

func TestMemorySessionRepository_UpdateMissing(t *testing.T) {
	repo := NewMemorySessionRepository()
	err := repo.Update(context.Background(), &domain.Session{ID: "sess_missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemorySessionRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Session{ID: "sess_1", Status: domain.SessionStatusStreaming}))

	got, err := repo.GetByID(ctx, "sess_1")
	require.NoError(t, err)
	got.Status = domain.SessionStatusError

	fresh, err := repo.GetByID(ctx, "sess_1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusStreaming, fresh.Status)
}
