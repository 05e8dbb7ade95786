package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	"livecast/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

// newTestRouter builds a gin engine with the same recovery and error
// classification chain the server runs.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zaptest.NewLogger(t).Sugar()
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.ErrorHandlerMiddleware(logger))
	return router
}

func perform(router *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type fakeStreamService struct {
	session   *domain.Session
	startErr  error
	stopErr   error
	status    *ports.StreamStatus
	statusErr error
	sessions  []*domain.Session

	startReq  ports.StartStreamRequest
	lastLimit int
}

func (f *fakeStreamService) Start(ctx context.Context, req ports.StartStreamRequest) (*domain.Session, error) {
	f.startReq = req
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.session, nil
}

func (f *fakeStreamService) Stop(ctx context.Context) (*domain.Session, error) {
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	return f.session, nil
}

func (f *fakeStreamService) Status(ctx context.Context) (*ports.StreamStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if f.status != nil {
		return f.status, nil
	}
	return &ports.StreamStatus{Phase: domain.PhaseIdle}, nil
}

func (f *fakeStreamService) Sessions(ctx context.Context, limit int) ([]*domain.Session, error) {
	f.lastLimit = limit
	return f.sessions, nil
}

type fakeVideoService struct {
	video  *domain.Video
	videos []*domain.Video
	err    error

	uploadedName string
	uploadedSize int64
	uploadedData []byte
	deletedID    domain.VideoID
}

func (f *fakeVideoService) Upload(ctx context.Context, originalName string, size int64, content io.Reader) (*domain.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	f.uploadedName = originalName
	f.uploadedSize = size
	f.uploadedData = data
	return f.video, nil
}

func (f *fakeVideoService) Get(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.video, nil
}

func (f *fakeVideoService) List(ctx context.Context) ([]*domain.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.videos, nil
}

func (f *fakeVideoService) Delete(ctx context.Context, id domain.VideoID) error {
	f.deletedID = id
	return f.err
}

type fakeQueueService struct {
	entry *domain.QueueEntry
	queue []*domain.QueueEntry
	err   error

	enqueuedVideo domain.VideoID
	removedEntry  domain.EntryID
	movedEntry    domain.EntryID
	movedTo       int
	cleared       bool
}

func (f *fakeQueueService) Enqueue(ctx context.Context, videoID domain.VideoID) (*domain.QueueEntry, error) {
	f.enqueuedVideo = videoID
	if f.err != nil {
		return nil, f.err
	}
	return f.entry, nil
}

func (f *fakeQueueService) Head(ctx context.Context) (*domain.QueueEntry, error) {
	return f.entry, f.err
}

func (f *fakeQueueService) List(ctx context.Context) ([]*domain.QueueEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.queue, nil
}

func (f *fakeQueueService) Remove(ctx context.Context, id domain.EntryID) error {
	f.removedEntry = id
	return f.err
}

func (f *fakeQueueService) Reorder(ctx context.Context, id domain.EntryID, newPosition int) ([]*domain.QueueEntry, error) {
	f.movedEntry = id
	f.movedTo = newPosition
	if f.err != nil {
		return nil, f.err
	}
	return f.queue, nil
}

func (f *fakeQueueService) Assign(ctx context.Context, id domain.EntryID, sessionID domain.SessionID) error {
	return f.err
}

func (f *fakeQueueService) Clear(ctx context.Context) error {
	f.cleared = true
	return f.err
}

type fakeSettingsService struct {
	settings *domain.StreamSettings
	creds    *domain.Credentials
	err      error

	updatedSettings *domain.StreamSettings
	updatedCreds    *domain.Credentials
}

func (f *fakeSettingsService) GetSettings(ctx context.Context) (*domain.StreamSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.settings, nil
}

func (f *fakeSettingsService) UpdateSettings(ctx context.Context, settings *domain.StreamSettings) (*domain.StreamSettings, error) {
	f.updatedSettings = settings
	if f.err != nil {
		return nil, f.err
	}
	return settings, nil
}

func (f *fakeSettingsService) GetCredentials(ctx context.Context) (*domain.Credentials, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.creds, nil
}

func (f *fakeSettingsService) UpdateCredentials(ctx context.Context, creds *domain.Credentials) (*domain.Credentials, error) {
	f.updatedCreds = creds
	if f.err != nil {
		return nil, f.err
	}
	return creds, nil
}

type fakeMetricsService struct {
	latest  *domain.LiveMetrics
	history []*domain.LiveMetrics
	err     error

	lastSession domain.SessionID
	lastLimit   int
}

func (f *fakeMetricsService) Latest(ctx context.Context, sessionID domain.SessionID) (*domain.LiveMetrics, error) {
	f.lastSession = sessionID
	if f.err != nil {
		return nil, f.err
	}
	return f.latest, nil
}

func (f *fakeMetricsService) History(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.LiveMetrics, error) {
	f.lastSession = sessionID
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}
