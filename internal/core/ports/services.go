package ports

import (
	"context"
	"io"

	"livecast/internal/core/domain"
)

type VideoService interface {
	Upload(ctx context.Context, originalName string, size int64, content io.Reader) (*domain.Video, error)
	Get(ctx context.Context, id domain.VideoID) (*domain.Video, error)
	List(ctx context.Context) ([]*domain.Video, error)
	Delete(ctx context.Context, id domain.VideoID) error
}

type QueueService interface {
	Enqueue(ctx context.Context, videoID domain.VideoID) (*domain.QueueEntry, error)
	Head(ctx context.Context) (*domain.QueueEntry, error)
	List(ctx context.Context) ([]*domain.QueueEntry, error)
	Remove(ctx context.Context, id domain.EntryID) error
	Reorder(ctx context.Context, id domain.EntryID, newPosition int) ([]*domain.QueueEntry, error)
	Assign(ctx context.Context, id domain.EntryID, sessionID domain.SessionID) error
	Clear(ctx context.Context) error
}

type StartStreamRequest struct {
	VideoID     domain.VideoID
	Title       string
	Description string
}

// StreamStatus is the read-only snapshot returned by Status.
type StreamStatus struct {
	IsStreaming bool                `json:"is_streaming"`
	Phase       domain.SessionPhase `json:"phase"`
	Session     *domain.Session     `json:"session"`
}

// StreamService is the orchestration facade. Start and Stop are
// serialized against each other; Status never blocks on them.
type StreamService interface {
	Start(ctx context.Context, req StartStreamRequest) (*domain.Session, error)
	Stop(ctx context.Context) (*domain.Session, error)
	Status(ctx context.Context) (*StreamStatus, error)
	Sessions(ctx context.Context, limit int) ([]*domain.Session, error)
}

type SettingsService interface {
	GetSettings(ctx context.Context) (*domain.StreamSettings, error)
	UpdateSettings(ctx context.Context, settings *domain.StreamSettings) (*domain.StreamSettings, error)
	GetCredentials(ctx context.Context) (*domain.Credentials, error)
	UpdateCredentials(ctx context.Context, creds *domain.Credentials) (*domain.Credentials, error)
}

type MetricsService interface {
	Latest(ctx context.Context, sessionID domain.SessionID) (*domain.LiveMetrics, error)
	History(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.LiveMetrics, error)
}
