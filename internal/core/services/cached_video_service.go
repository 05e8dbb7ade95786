package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	"livecast/pkg/cache"
)

// CachedVideoService wraps VideoService with read-through caching for
// the video catalog. Mutations invalidate the affected keys.
type CachedVideoService struct {
	baseService ports.VideoService
	cache       *cache.CacheWithFallback
	videoTTL    time.Duration
}

func NewCachedVideoService(baseService ports.VideoService, videoTTL time.Duration) *CachedVideoService {
	return &CachedVideoService{
		baseService: baseService,
		cache:       cache.NewCacheWithFallback(videoTTL),
		videoTTL:    videoTTL,
	}
}

func (s *CachedVideoService) Upload(ctx context.Context, originalName string, size int64, content io.Reader) (*domain.Video, error) {
	video, err := s.baseService.Upload(ctx, originalName, size, content)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate("videos:list:")

	return video, nil
}

func (s *CachedVideoService) Get(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	cacheKey := fmt.Sprintf("video:%s", id)

	value, err := s.cache.GetOrSet(ctx, cacheKey, func(ctx context.Context) (interface{}, error) {
		return s.baseService.Get(ctx, id)
	}, s.videoTTL)

	if err != nil {
		return nil, err
	}

	return value.(*domain.Video), nil
}

func (s *CachedVideoService) List(ctx context.Context) ([]*domain.Video, error) {
	cacheKey := "videos:list:all"

	value, err := s.cache.GetOrSet(ctx, cacheKey, func(ctx context.Context) (interface{}, error) {
		return s.baseService.List(ctx)
	}, s.videoTTL)

	if err != nil {
		return nil, err
	}

	return value.([]*domain.Video), nil
}

func (s *CachedVideoService) Delete(ctx context.Context, id domain.VideoID) error {
	err := s.baseService.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.cache.Invalidate(fmt.Sprintf("video:%s", id))
	s.cache.Invalidate("videos:list:")

	return nil
}

// Stop stops the cache cleanup.
func (s *CachedVideoService) Stop() {
	s.cache.Stop()
}
