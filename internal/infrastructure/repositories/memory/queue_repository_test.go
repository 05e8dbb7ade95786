package memory

import (
	"context"
	"testing"
	"time"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addEntry(t *testing.T, repo ports.QueueRepository, id string, videoID string, position int) *domain.QueueEntry {
	t.Helper()
	entry := &domain.QueueEntry{
		ID:       domain.EntryID(id),
		VideoID:  domain.VideoID(videoID),
		Position: position,
		AddedAt:  time.Now(),
	}
	require.NoError(t, repo.Add(context.Background(), entry))
	return entry
}

func TestMemoryQueueRepository_AddAssignsSequence(t *testing.T) {
	repo := NewMemoryQueueRepository()

	first := addEntry(t, repo, "entry_a", "vid_1", 0)
	second := addEntry(t, repo, "entry_b", "vid_2", 0)

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
}

func TestMemoryQueueRepository_ListOrdersByPositionThenSeq(t *testing.T) {
	repo := NewMemoryQueueRepository()

	addEntry(t, repo, "entry_late", "vid_1", 1)
	addEntry(t, repo, "entry_head", "vid_2", 0)
	addEntry(t, repo, "entry_tie", "vid_3", 0)

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, domain.EntryID("entry_head"), entries[0].ID)
	assert.Equal(t, domain.EntryID("entry_tie"), entries[1].ID)
	assert.Equal(t, domain.EntryID("entry_late"), entries[2].ID)
}

func TestMemoryQueueRepository_RenumberIsAllOrNothing(t *testing.T) {
	repo := NewMemoryQueueRepository()
	ctx := context.Background()

	addEntry(t, repo, "entry_a", "vid_1", 5)
	addEntry(t, repo, "entry_b", "vid_2", 9)

	err := repo.Renumber(ctx, []domain.EntryID{"entry_b", "entry_missing", "entry_a"})
	require.ErrorIs(t, err, domain.ErrEntryNotFound)

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, entries[0].Position, "failed renumber must not touch positions")
	assert.Equal(t, 9, entries[1].Position)

	require.NoError(t, repo.Renumber(ctx, []domain.EntryID{"entry_b", "entry_a"}))
	entries, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryID("entry_b"), entries[0].ID)
	assert.Equal(t, 0, entries[0].Position)
	assert.Equal(t, domain.EntryID("entry_a"), entries[1].ID)
	assert.Equal(t, 1, entries[1].Position)
}

func TestMemoryQueueRepository_RemoveByVideo(t *testing.T) {
	repo := NewMemoryQueueRepository()
	ctx := context.Background()

	addEntry(t, repo, "entry_a", "vid_dup", 0)
	addEntry(t, repo, "entry_b", "vid_keep", 1)
	addEntry(t, repo, "entry_c", "vid_dup", 2)

	removed, err := repo.RemoveByVideo(ctx, "vid_dup")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EntryID("entry_b"), entries[0].ID)
}

func TestMemoryQueueRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryQueueRepository()
	ctx := context.Background()

	addEntry(t, repo, "entry_a", "vid_1", 0)

	got, err := repo.GetByID(ctx, "entry_a")
	require.NoError(t, err)
	got.Position = 99

	fresh, err := repo.GetByID(ctx, "entry_a")
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Position, "mutating a returned entry must not change the store")
}

func TestMemoryQueueRepository_RemoveMissing(t *testing.T) {
	repo := NewMemoryQueueRepository()
	err := repo.Remove(context.Background(), "entry_missing")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestMemoryQueueRepository_Clear(t *testing.T) {
	repo := NewMemoryQueueRepository()
	ctx := context.Background()

	addEntry(t, repo, "entry_a", "vid_1", 0)
	require.NoError(t, repo.Clear(ctx))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	next := addEntry(t, repo, "entry_b", "vid_2", 0)
	assert.Equal(t, int64(2), next.Seq, "sequence keeps counting after a clear")
}
