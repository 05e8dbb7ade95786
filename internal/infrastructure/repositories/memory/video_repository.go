package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

// MemoryVideoRepository keeps videos in process memory. Reads and
// writes go through copies so callers never alias the stored state.
type MemoryVideoRepository struct {
	videos map[domain.VideoID]*domain.Video
	mu     sync.RWMutex
}

func NewMemoryVideoRepository() ports.VideoRepository {
	return &MemoryVideoRepository{
		videos: make(map[domain.VideoID]*domain.Video),
	}
}

func (r *MemoryVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[video.ID]; exists {
		return fmt.Errorf("video already exists: %s", video.ID)
	}

	copied := *video
	r.videos[video.ID] = &copied
	return nil
}

func (r *MemoryVideoRepository) GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	video, exists := r.videos[id]
	if !exists {
		return nil, domain.ErrVideoNotFound
	}

	copied := *video
	return &copied, nil
}

func (r *MemoryVideoRepository) Update(ctx context.Context, video *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[video.ID]; !exists {
		return domain.ErrVideoNotFound
	}

	copied := *video
	r.videos[video.ID] = &copied
	return nil
}

func (r *MemoryVideoRepository) Delete(ctx context.Context, id domain.VideoID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[id]; !exists {
		return domain.ErrVideoNotFound
	}

	delete(r.videos, id)
	return nil
}

func (r *MemoryVideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	videos := make([]*domain.Video, 0, len(r.videos))
	for _, video := range r.videos {
		copied := *video
		videos = append(videos, &copied)
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].UploadedAt.Before(videos[j].UploadedAt)
	})

	return videos, nil
}
