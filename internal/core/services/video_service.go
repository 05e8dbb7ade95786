package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	"livecast/pkg/utils"
	"livecast/pkg/validation"
)

type videoService struct {
	videoRepo ports.VideoRepository
	queueRepo ports.QueueRepository
	store     ports.FileStore
	prober    ports.MediaProber
	stream    ports.StreamService
	notifier  ports.Notifier
	logger    *zap.SugaredLogger
}

func NewVideoService(
	videoRepo ports.VideoRepository,
	queueRepo ports.QueueRepository,
	store ports.FileStore,
	prober ports.MediaProber,
	stream ports.StreamService,
	notifier ports.Notifier,
	logger *zap.SugaredLogger,
) ports.VideoService {
	return &videoService{
		videoRepo: videoRepo,
		queueRepo: queueRepo,
		store:     store,
		prober:    prober,
		stream:    stream,
		notifier:  notifier,
		logger:    logger,
	}
}

// Upload stores the file, records the video and probes it for duration.
// A failed probe leaves the video in error status but keeps the file so
// the operator can inspect it.
func (s *videoService) Upload(ctx context.Context, originalName string, size int64, content io.Reader) (*domain.Video, error) {
	if err := validation.ValidateUploadFilename(originalName); err != nil {
		return nil, err
	}

	storedName := utils.GenerateStoredName(originalName)
	written, err := s.store.Save(ctx, storedName, content)
	if err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}
	if size > 0 && written != size {
		s.logger.Warnw("upload size mismatch",
			"original_name", originalName,
			"declared", size,
			"written", written)
	}

	video := &domain.Video{
		ID:           domain.VideoID(utils.GenerateVideoID()),
		OriginalName: originalName,
		StoredName:   storedName,
		SizeBytes:    written,
		Status:       domain.VideoStatusUploaded,
		UploadedAt:   time.Now(),
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		if removeErr := s.store.Remove(ctx, storedName); removeErr != nil {
			s.logger.Warnw("failed to remove orphaned upload", "stored_name", storedName, "error", removeErr)
		}
		return nil, fmt.Errorf("failed to create video record: %w", err)
	}

	s.probe(ctx, video)

	s.logger.Infow("video uploaded",
		"video_id", video.ID,
		"original_name", originalName,
		"size_bytes", written,
		"status", video.Status)

	return video, nil
}

func (s *videoService) probe(ctx context.Context, video *domain.Video) {
	video.Status = domain.VideoStatusProcessing
	if err := s.videoRepo.Update(ctx, video); err != nil {
		s.logger.Errorw("failed to mark video processing", "video_id", video.ID, "error", err)
		return
	}

	info, err := s.prober.Probe(ctx, s.store.Path(video.StoredName))
	if err != nil {
		video.Status = domain.VideoStatusError
		s.logger.Warnw("video probe failed", "video_id", video.ID, "error", err)
	} else {
		video.DurationSeconds = &info.DurationSeconds
		video.SizeBytes = info.SizeBytes
		video.Status = domain.VideoStatusReady
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		s.logger.Errorw("failed to update probed video", "video_id", video.ID, "error", err)
	}
}

func (s *videoService) Get(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	if err := validation.ValidateVideoID(string(id)); err != nil {
		return nil, err
	}

	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return video, nil
}

func (s *videoService) List(ctx context.Context) ([]*domain.Video, error) {
	videos, err := s.videoRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return videos, nil
}

// Delete removes the record, its backing file and any queue entries
// referencing it. The video on air cannot be deleted.
func (s *videoService) Delete(ctx context.Context, id domain.VideoID) error {
	if err := validation.ValidateVideoID(string(id)); err != nil {
		return err
	}

	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get video: %w", err)
	}

	if status, err := s.stream.Status(ctx); err == nil &&
		status.Session != nil && status.Session.VideoID == id {
		return fmt.Errorf("%w: video %s is on air", domain.ErrVideoInUse, id)
	}

	removed, err := s.queueRepo.RemoveByVideo(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrEntryNotFound) {
		return fmt.Errorf("failed to purge queue entries: %w", err)
	}
	if removed > 0 {
		queue, listErr := s.queueRepo.List(ctx)
		if listErr == nil {
			s.notifier.Notify(domain.NewEvent(domain.EventQueueUpdated, domain.QueueUpdatedPayload{Queue: queue}))
		}
	}

	if err := s.store.Remove(ctx, video.StoredName); err != nil {
		s.logger.Warnw("failed to remove video file", "stored_name", video.StoredName, "error", err)
	}

	if err := s.videoRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete video record: %w", err)
	}

	s.logger.Infow("video deleted", "video_id", id, "purged_entries", removed)
	return nil
}
