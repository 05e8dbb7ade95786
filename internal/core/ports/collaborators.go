package ports

import (
	"context"
	"io"

	"livecast/internal/core/domain"
)

// LaunchOptions describe one encoder subprocess run.
type LaunchOptions struct {
	InputPath string
	IngestURL string
	Quality   string
	Bitrate   string // kbps
	OnExit    func(ExitStatus)
}

// ExitStatus reports how the encoder subprocess finished. OnExit fires
// only for exits that were not requested through Terminate and happened
// after the launch was confirmed.
type ExitStatus struct {
	Code int
	Err  error
}

// ProcessSupervisor owns at most one encoder subprocess. Launch blocks
// for the confirmation window and fails if the process dies within it.
// Terminate reports false when there was nothing to stop.
type ProcessSupervisor interface {
	Launch(ctx context.Context, opts LaunchOptions) error
	Terminate(ctx context.Context) (bool, error)
	IsHealthy() bool
}

type MediaProber interface {
	Probe(ctx context.Context, path string) (*domain.MediaInfo, error)
}

type LivePlatform interface {
	CreateLiveTarget(ctx context.Context, creds *domain.Credentials, title, description string) (*domain.LiveTarget, error)
	EndLiveTarget(ctx context.Context, creds *domain.Credentials, targetID string) (bool, error)
	TargetMetrics(ctx context.Context, creds *domain.Credentials, targetID string) (*domain.LiveMetrics, error)
}

// Notifier fans events out to connected clients, fire-and-forget.
type Notifier interface {
	Notify(event domain.Event)
}

// MetricsSource supplies engagement counters for the active session.
type MetricsSource interface {
	Sample(ctx context.Context, session *domain.Session) (*domain.LiveMetrics, error)
}

// FileStore persists uploaded video files.
type FileStore interface {
	Save(ctx context.Context, storedName string, content io.Reader) (int64, error)
	Remove(ctx context.Context, storedName string) error
	Path(storedName string) string
	Exists(storedName string) bool
}
