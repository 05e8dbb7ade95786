package memory

import (
	"context"
	"sort"
	"sync"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

// MemoryQueueRepository keeps queue entries in process memory. Add
// assigns the insertion sequence on the caller's entry; List orders by
// (position, seq).
type MemoryQueueRepository struct {
	entries map[domain.EntryID]*domain.QueueEntry
	nextSeq int64
	mu      sync.RWMutex
}

func NewMemoryQueueRepository() ports.QueueRepository {
	return &MemoryQueueRepository{
		entries: make(map[domain.EntryID]*domain.QueueEntry),
	}
}

func (r *MemoryQueueRepository) Add(ctx context.Context, entry *domain.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSeq++
	entry.Seq = r.nextSeq

	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *MemoryQueueRepository) GetByID(ctx context.Context, id domain.EntryID) (*domain.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists {
		return nil, domain.ErrEntryNotFound
	}

	copied := *entry
	return &copied, nil
}

func (r *MemoryQueueRepository) Update(ctx context.Context, entry *domain.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[entry.ID]; !exists {
		return domain.ErrEntryNotFound
	}

	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *MemoryQueueRepository) Remove(ctx context.Context, id domain.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; !exists {
		return domain.ErrEntryNotFound
	}

	delete(r.entries, id)
	return nil
}

func (r *MemoryQueueRepository) RemoveByVideo(ctx context.Context, videoID domain.VideoID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.entries {
		if entry.VideoID == videoID {
			delete(r.entries, id)
			removed++
		}
	}

	return removed, nil
}

func (r *MemoryQueueRepository) List(ctx context.Context) ([]*domain.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*domain.QueueEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		copied := *entry
		entries = append(entries, &copied)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Position != entries[j].Position {
			return entries[i].Position < entries[j].Position
		}
		return entries[i].Seq < entries[j].Seq
	})

	return entries, nil
}

// Renumber validates every id before touching positions, so a stale id
// list leaves the queue unchanged.
func (r *MemoryQueueRepository) Renumber(ctx context.Context, ordered []domain.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ordered {
		if _, exists := r.entries[id]; !exists {
			return domain.ErrEntryNotFound
		}
	}

	for i, id := range ordered {
		r.entries[id].Position = i
	}

	return nil
}

func (r *MemoryQueueRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[domain.EntryID]*domain.QueueEntry)
	return nil
}
