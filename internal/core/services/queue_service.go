package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	"livecast/pkg/utils"
	"livecast/pkg/validation"
)

type queueService struct {
	queueRepo ports.QueueRepository
	videoRepo ports.VideoRepository
	notifier  ports.Notifier
	logger    *zap.SugaredLogger

	// mu serializes mutations so position renumbering stays consistent.
	mu sync.Mutex
}

func NewQueueService(
	queueRepo ports.QueueRepository,
	videoRepo ports.VideoRepository,
	notifier ports.Notifier,
	logger *zap.SugaredLogger,
) ports.QueueService {
	return &queueService{
		queueRepo: queueRepo,
		videoRepo: videoRepo,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *queueService) Enqueue(ctx context.Context, videoID domain.VideoID) (*domain.QueueEntry, error) {
	if err := validation.ValidateVideoID(string(videoID)); err != nil {
		return nil, err
	}

	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		return nil, fmt.Errorf("failed to resolve video for queue: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.renumber(ctx)
	if err != nil {
		return nil, err
	}

	entry := &domain.QueueEntry{
		ID:       domain.EntryID(utils.GenerateEntryID()),
		VideoID:  videoID,
		Position: len(current),
		AddedAt:  time.Now(),
	}

	if err := s.queueRepo.Add(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add queue entry: %w", err)
	}
	s.publish(append(current, entry))

	s.logger.Infow("queue entry added",
		"entry_id", entry.ID,
		"video_id", videoID,
		"position", entry.Position)

	return entry, nil
}

// Head returns the front entry without removing it, or nil when the
// queue is empty.
func (s *queueService) Head(ctx context.Context) (*domain.QueueEntry, error) {
	queue, err := s.queueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	if len(queue) == 0 {
		return nil, nil
	}
	return queue[0], nil
}

func (s *queueService) List(ctx context.Context) ([]*domain.QueueEntry, error) {
	queue, err := s.queueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return queue, nil
}

func (s *queueService) Remove(ctx context.Context, id domain.EntryID) error {
	if err := validation.ValidateEntryID(string(id)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.queueRepo.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove queue entry: %w", err)
	}

	queue, err := s.renumber(ctx)
	if err != nil {
		return err
	}
	s.publish(queue)

	s.logger.Infow("queue entry removed", "entry_id", id)
	return nil
}

// Reorder moves a single entry to newPosition and renumbers the rest,
// preserving their relative order. Positions past the tail clamp to
// the tail.
func (s *queueService) Reorder(ctx context.Context, id domain.EntryID, newPosition int) ([]*domain.QueueEntry, error) {
	if err := validation.ValidateEntryID(string(id)); err != nil {
		return nil, err
	}
	if err := validation.ValidatePosition(newPosition); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queue, err := s.queueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	from := -1
	for i, entry := range queue {
		if entry.ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return nil, domain.ErrEntryNotFound
	}

	moved := queue[from]
	rest := append(append([]*domain.QueueEntry{}, queue[:from]...), queue[from+1:]...)
	if newPosition > len(rest) {
		newPosition = len(rest)
	}

	ordered := make([]domain.EntryID, 0, len(queue))
	for _, entry := range rest[:newPosition] {
		ordered = append(ordered, entry.ID)
	}
	ordered = append(ordered, moved.ID)
	for _, entry := range rest[newPosition:] {
		ordered = append(ordered, entry.ID)
	}

	if err := s.queueRepo.Renumber(ctx, ordered); err != nil {
		return nil, fmt.Errorf("failed to renumber queue: %w", err)
	}

	queue, err = s.queueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	s.publish(queue)

	s.logger.Infow("queue entry reordered",
		"entry_id", id,
		"new_position", newPosition)

	return queue, nil
}

// Assign binds a queue entry to the session currently streaming it.
func (s *queueService) Assign(ctx context.Context, id domain.EntryID, sessionID domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.queueRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load queue entry: %w", err)
	}

	entry.SessionID = &sessionID
	if err := s.queueRepo.Update(ctx, entry); err != nil {
		return fmt.Errorf("failed to update queue entry: %w", err)
	}

	queue, err := s.queueRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}
	s.publish(queue)

	s.logger.Debugw("queue entry assigned to session",
		"entry_id", id,
		"session_id", sessionID)

	return nil
}

func (s *queueService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.queueRepo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	s.publish([]*domain.QueueEntry{})

	s.logger.Infow("queue cleared")
	return nil
}

// renumber rewrites positions to 0..n-1 in current order and returns
// the refreshed queue.
func (s *queueService) renumber(ctx context.Context) ([]*domain.QueueEntry, error) {
	queue, err := s.queueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	ordered := make([]domain.EntryID, len(queue))
	for i, entry := range queue {
		ordered[i] = entry.ID
	}
	if err := s.queueRepo.Renumber(ctx, ordered); err != nil {
		return nil, fmt.Errorf("failed to renumber queue: %w", err)
	}

	for i, entry := range queue {
		entry.Position = i
	}
	return queue, nil
}

func (s *queueService) publish(queue []*domain.QueueEntry) {
	s.notifier.Notify(domain.NewEvent(domain.EventQueueUpdated, domain.QueueUpdatedPayload{Queue: queue}))
}
