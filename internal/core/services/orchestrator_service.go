package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	apperrors "livecast/pkg/errors"
	"livecast/pkg/utils"
	"livecast/pkg/validation"
)

const defaultStreamTitle = "Live stream"

// streamOrchestrator drives the single active broadcast: it ties the
// platform live target, the encoder subprocess and the session record
// together, and advances the queue when an item finishes cleanly.
type streamOrchestrator struct {
	sessionRepo ports.SessionRepository
	videoRepo   ports.VideoRepository
	queue       ports.QueueService
	settings    ports.SettingsService
	platform    ports.LivePlatform
	supervisor  ports.ProcessSupervisor
	store       ports.FileStore
	notifier    ports.Notifier
	logger      *zap.SugaredLogger

	state *sessionState

	// opMu serializes start and stop against each other and against
	// encoder exit handling. TryLock gives API callers fail-fast
	// conflict errors instead of queueing behind a slow launch.
	opMu sync.Mutex

	lastTitle       string
	lastDescription string
}

func NewStreamOrchestrator(
	sessionRepo ports.SessionRepository,
	videoRepo ports.VideoRepository,
	queue ports.QueueService,
	settings ports.SettingsService,
	platform ports.LivePlatform,
	supervisor ports.ProcessSupervisor,
	store ports.FileStore,
	notifier ports.Notifier,
	logger *zap.SugaredLogger,
) ports.StreamService {
	return &streamOrchestrator{
		sessionRepo: sessionRepo,
		videoRepo:   videoRepo,
		queue:       queue,
		settings:    settings,
		platform:    platform,
		supervisor:  supervisor,
		store:       store,
		notifier:    notifier,
		logger:      logger,
		state:       newSessionState(),
	}
}

func (s *streamOrchestrator) Start(ctx context.Context, req ports.StartStreamRequest) (*domain.Session, error) {
	if err := validation.ValidateVideoID(string(req.VideoID)); err != nil {
		return nil, err
	}
	if req.Title == "" {
		req.Title = defaultStreamTitle
	}
	if err := validation.ValidateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateDescription(req.Description); err != nil {
		return nil, err
	}

	if !s.opMu.TryLock() {
		return nil, fmt.Errorf("%w: another operation is in progress", domain.ErrAlreadyStreaming)
	}
	defer s.opMu.Unlock()

	return s.startLocked(ctx, req)
}

// startLocked runs the full start sequence. The caller must hold opMu.
func (s *streamOrchestrator) startLocked(ctx context.Context, req ports.StartStreamRequest) (*domain.Session, error) {
	if phase := s.state.Phase(); phase != domain.PhaseIdle {
		return nil, fmt.Errorf("%w: session phase is %s", domain.ErrAlreadyStreaming, phase)
	}

	video, err := s.videoRepo.GetByID(ctx, req.VideoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	creds, err := s.settings.GetCredentials(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:          domain.SessionID(utils.GenerateSessionID()),
		Status:      domain.SessionStatusIdle,
		VideoID:     video.ID,
		Title:       req.Title,
		Description: req.Description,
		Quality:     cfg.Quality,
		Bitrate:     cfg.Bitrate,
		StartedAt:   time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.state.Begin(session); err != nil {
		return nil, err
	}

	s.logger.Infow("starting stream",
		"session_id", session.ID,
		"video_id", video.ID,
		"quality", cfg.Quality,
		"bitrate", cfg.Bitrate)

	target, err := s.platform.CreateLiveTarget(ctx, creds, session.Title, session.Description)
	if err != nil {
		s.failStart(ctx, session, err)
		return nil, fmt.Errorf("failed to create live target: %w", err)
	}
	session.LiveTargetID = target.ID
	session.IngestURL = target.IngestURL

	sessionID := session.ID
	err = s.supervisor.Launch(ctx, ports.LaunchOptions{
		InputPath: s.store.Path(video.StoredName),
		IngestURL: target.IngestURL,
		Quality:   cfg.Quality,
		Bitrate:   cfg.Bitrate,
		OnExit: func(exit ports.ExitStatus) {
			s.handleEncoderExit(sessionID, exit)
		},
	})
	if err != nil {
		s.endLiveTargetQuietly(creds, target.ID)
		s.failStart(ctx, session, err)
		if errors.Is(err, domain.ErrInputNotFound) || errors.Is(err, domain.ErrEncoderRunning) {
			return nil, fmt.Errorf("failed to launch encoder: %w", err)
		}
		return nil, apperrors.NewProcessError("encoder failed to start", err)
	}

	if err := s.state.To(domain.PhaseLive); err != nil {
		s.logger.Errorw("failed to enter live phase", "session_id", session.ID, "error", err)
	}
	session.Status = domain.SessionStatusStreaming
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		s.logger.Errorw("failed to persist live session", "session_id", session.ID, "error", err)
	}

	s.lastTitle = session.Title
	s.lastDescription = session.Description

	if head, headErr := s.queue.Head(ctx); headErr == nil && head != nil && head.VideoID == video.ID {
		if assignErr := s.queue.Assign(ctx, head.ID, session.ID); assignErr != nil {
			s.logger.Warnw("failed to assign queue entry", "entry_id", head.ID, "error", assignErr)
		}
	}

	snapshot := *session
	s.notifier.Notify(domain.NewEvent(domain.EventStreamStarted, domain.StreamStartedPayload{
		Session: &snapshot,
		Video:   video,
	}))

	s.logger.Infow("stream started",
		"session_id", session.ID,
		"video_id", video.ID,
		"target_id", target.ID)

	return &snapshot, nil
}

func (s *streamOrchestrator) Stop(ctx context.Context) (*domain.Session, error) {
	if !s.opMu.TryLock() {
		return nil, fmt.Errorf("%w: another operation is in progress", domain.ErrNoActiveStream)
	}
	defer s.opMu.Unlock()

	if phase := s.state.Phase(); phase != domain.PhaseLive {
		return nil, domain.ErrNoActiveStream
	}
	session := s.state.Session()

	if err := s.state.To(domain.PhaseStopping); err != nil {
		return nil, err
	}

	stopped, err := s.supervisor.Terminate(ctx)
	if err != nil {
		reason := fmt.Sprintf("terminate failed: %v", err)
		s.finishSession(ctx, session, domain.SessionStatusError, reason)
		s.notifier.Notify(domain.NewEvent(domain.EventStreamStopped, domain.StreamStoppedPayload{
			SessionID: session.ID,
			Reason:    reason,
		}))
		return nil, fmt.Errorf("failed to terminate encoder: %w", err)
	}
	if !stopped {
		s.logger.Warnw("terminate found no encoder process", "session_id", session.ID)
	}

	if creds, credsErr := s.settings.GetCredentials(ctx); credsErr == nil {
		s.endLiveTargetQuietly(creds, session.LiveTargetID)
	}

	s.finishSession(ctx, session, domain.SessionStatusStopped, "")
	s.notifier.Notify(domain.NewEvent(domain.EventStreamStopped, domain.StreamStoppedPayload{
		SessionID: session.ID,
	}))

	s.logger.Infow("stream stopped", "session_id", session.ID)

	snapshot := *session
	return &snapshot, nil
}

// Status reports the current phase without touching the operation
// lock, so it stays responsive while a start or stop is in flight.
func (s *streamOrchestrator) Status(ctx context.Context) (*ports.StreamStatus, error) {
	phase, session := s.state.Snapshot()
	return &ports.StreamStatus{
		IsStreaming: phase == domain.PhaseLive,
		Phase:       phase,
		Session:     session,
	}, nil
}

func (s *streamOrchestrator) Sessions(ctx context.Context, limit int) ([]*domain.Session, error) {
	sessions, err := s.sessionRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// handleEncoderExit reacts to an encoder exit that was not requested
// through Stop. A clean exit means the input finished and the queue may
// advance; anything else marks the session as failed and waits for an
// explicit new start.
func (s *streamOrchestrator) handleEncoderExit(sessionID domain.SessionID, exit ports.ExitStatus) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	session := s.state.Session()
	if phase := s.state.Phase(); phase != domain.PhaseLive || session == nil || session.ID != sessionID {
		s.logger.Debugw("ignoring stale encoder exit", "session_id", sessionID, "phase", phase)
		return
	}

	if creds, credsErr := s.settings.GetCredentials(ctx); credsErr == nil {
		s.endLiveTargetQuietly(creds, session.LiveTargetID)
	}

	if exit.Err == nil && exit.Code == 0 {
		s.logger.Infow("encoder finished input",
			"session_id", session.ID,
			"video_id", session.VideoID)
		s.finishSession(ctx, session, domain.SessionStatusStopped, "")
		s.notifier.Notify(domain.NewEvent(domain.EventStreamStopped, domain.StreamStoppedPayload{
			SessionID: session.ID,
			Reason:    "completed",
		}))
		s.advanceQueue(ctx, session)
		return
	}

	reason := fmt.Sprintf("encoder exited unexpectedly: code %d", exit.Code)
	if exit.Err != nil {
		reason = fmt.Sprintf("encoder exited unexpectedly: %v", exit.Err)
	}
	s.logger.Errorw("encoder exited unexpectedly",
		"session_id", session.ID,
		"exit_code", exit.Code,
		"error", exit.Err)
	s.finishSession(ctx, session, domain.SessionStatusError, reason)
	s.notifier.Notify(domain.NewEvent(domain.EventStreamStopped, domain.StreamStoppedPayload{
		SessionID: session.ID,
		Reason:    reason,
	}))
}

// advanceQueue drops the entry consumed by the finished session and,
// when auto queue is enabled, starts the next head as a new session.
// A failed auto start is logged and left for the operator; it is not
// retried and the queue does not skip ahead.
func (s *streamOrchestrator) advanceQueue(ctx context.Context, finished *domain.Session) {
	entries, err := s.queue.List(ctx)
	if err != nil {
		s.logger.Warnw("failed to list queue after stream end", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.SessionID != nil && *entry.SessionID == finished.ID {
			if err := s.queue.Remove(ctx, entry.ID); err != nil {
				s.logger.Warnw("failed to remove consumed queue entry", "entry_id", entry.ID, "error", err)
			}
			break
		}
	}

	cfg, err := s.settings.GetSettings(ctx)
	if err != nil || !cfg.AutoQueue {
		return
	}

	head, err := s.queue.Head(ctx)
	if err != nil {
		s.logger.Warnw("failed to read queue head", "error", err)
		return
	}
	if head == nil {
		s.logger.Infow("queue drained", "last_session_id", finished.ID)
		return
	}

	next, err := s.startLocked(ctx, ports.StartStreamRequest{
		VideoID:     head.VideoID,
		Title:       s.lastTitle,
		Description: s.lastDescription,
	})
	if err != nil {
		s.logger.Errorw("failed to auto-start next queue entry",
			"video_id", head.VideoID,
			"error", err)
		return
	}

	s.logger.Infow("auto-advanced to next queue entry",
		"session_id", next.ID,
		"video_id", head.VideoID)
}

// failStart records a session that never reached live. Start failures
// are returned to the caller, not broadcast.
func (s *streamOrchestrator) failStart(ctx context.Context, session *domain.Session, cause error) {
	if err := s.state.To(domain.PhaseError); err != nil {
		s.logger.Errorw("failed to enter error phase", "session_id", session.ID, "error", err)
	}
	now := time.Now()
	session.Status = domain.SessionStatusError
	session.LastError = cause.Error()
	session.EndedAt = &now
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		s.logger.Errorw("failed to persist failed session", "session_id", session.ID, "error", err)
	}
	if err := s.state.Reset(); err != nil {
		s.logger.Errorw("failed to reset session state", "error", err)
	}
}

// finishSession moves the session to its terminal state and frees the
// state machine for the next one.
func (s *streamOrchestrator) finishSession(ctx context.Context, session *domain.Session, status domain.SessionStatus, lastError string) {
	target := domain.PhaseEnded
	if status == domain.SessionStatusError {
		target = domain.PhaseError
	}
	if err := s.state.To(target); err != nil {
		s.logger.Errorw("failed to enter terminal phase", "session_id", session.ID, "error", err)
	}

	now := time.Now()
	session.Status = status
	session.EndedAt = &now
	if lastError != "" {
		session.LastError = lastError
	}
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		s.logger.Errorw("failed to persist finished session", "session_id", session.ID, "error", err)
	}
	if err := s.state.Reset(); err != nil {
		s.logger.Errorw("failed to reset session state", "error", err)
	}

	s.logger.Infow("session finished",
		"session_id", session.ID,
		"status", status,
		"on_air", utils.FormatDuration(now.Sub(session.StartedAt)),
	)
}

// endLiveTargetQuietly asks the platform to end the live target on a
// background context. Failures are logged, never surfaced.
func (s *streamOrchestrator) endLiveTargetQuietly(creds *domain.Credentials, targetID string) {
	if targetID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ended, err := s.platform.EndLiveTarget(ctx, creds, targetID)
	if err != nil {
		s.logger.Warnw("failed to end live target", "target_id", targetID, "error", err)
		return
	}
	if !ended {
		s.logger.Warnw("live target was not ended", "target_id", targetID)
	}
}
