package ports

import (
	"context"

	"livecast/internal/core/domain"
)

type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error)
	Update(ctx context.Context, video *domain.Video) error
	Delete(ctx context.Context, id domain.VideoID) error
	List(ctx context.Context) ([]*domain.Video, error)
}

// QueueRepository stores queue entries. List returns entries ordered by
// position, ties broken by insertion sequence.
type QueueRepository interface {
	Add(ctx context.Context, entry *domain.QueueEntry) error
	GetByID(ctx context.Context, id domain.EntryID) (*domain.QueueEntry, error)
	Update(ctx context.Context, entry *domain.QueueEntry) error
	Remove(ctx context.Context, id domain.EntryID) error
	RemoveByVideo(ctx context.Context, videoID domain.VideoID) (int, error)
	List(ctx context.Context) ([]*domain.QueueEntry, error)
	Renumber(ctx context.Context, ordered []domain.EntryID) error
	Clear(ctx context.Context) error
}

// SessionRepository keeps session history. Sessions are never deleted.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id domain.SessionID) (*domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	List(ctx context.Context, limit int) ([]*domain.Session, error)
}

// MetricsRepository is append-only; Latest returns the sample with the
// highest timestamp for a session.
type MetricsRepository interface {
	Append(ctx context.Context, sample *domain.LiveMetrics) error
	Latest(ctx context.Context, sessionID domain.SessionID) (*domain.LiveMetrics, error)
	ListBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.LiveMetrics, error)
}

type SettingsRepository interface {
	GetSettings(ctx context.Context) (*domain.StreamSettings, error)
	SaveSettings(ctx context.Context, settings *domain.StreamSettings) error
	GetCredentials(ctx context.Context) (*domain.Credentials, error)
	SaveCredentials(ctx context.Context, creds *domain.Credentials) error
}
