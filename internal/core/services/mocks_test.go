package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

// MockVideoRepository is a testify mock for ports.VideoRepository.
type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *MockVideoRepository) GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Video), args.Error(1)
}

func (m *MockVideoRepository) Update(ctx context.Context, video *domain.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *MockVideoRepository) Delete(ctx context.Context, id domain.VideoID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Video), args.Error(1)
}

// Stateful fakes shared by the service tests. The repos mirror the
// in-memory implementations closely enough to exercise ordering and
// renumbering behavior.

type fakeVideoRepo struct {
	mu     sync.Mutex
	videos map[domain.VideoID]*domain.Video
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[domain.VideoID]*domain.Video)}
}

func (r *fakeVideoRepo) Create(ctx context.Context, video *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *video
	r.videos[video.ID] = &copied
	return nil
}

func (r *fakeVideoRepo) GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, ok := r.videos[id]
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	copied := *video
	return &copied, nil
}

func (r *fakeVideoRepo) Update(ctx context.Context, video *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[video.ID]; !ok {
		return domain.ErrVideoNotFound
	}
	copied := *video
	r.videos[video.ID] = &copied
	return nil
}

func (r *fakeVideoRepo) Delete(ctx context.Context, id domain.VideoID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[id]; !ok {
		return domain.ErrVideoNotFound
	}
	delete(r.videos, id)
	return nil
}

func (r *fakeVideoRepo) List(ctx context.Context) ([]*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	videos := make([]*domain.Video, 0, len(r.videos))
	for _, video := range r.videos {
		copied := *video
		videos = append(videos, &copied)
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].UploadedAt.Before(videos[j].UploadedAt) })
	return videos, nil
}

type fakeQueueRepo struct {
	mu      sync.Mutex
	entries map[domain.EntryID]*domain.QueueEntry
	nextSeq int64
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{entries: make(map[domain.EntryID]*domain.QueueEntry)}
}

func (r *fakeQueueRepo) Add(ctx context.Context, entry *domain.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	entry.Seq = r.nextSeq
	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *fakeQueueRepo) GetByID(ctx context.Context, id domain.EntryID) (*domain.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	copied := *entry
	return &copied, nil
}

func (r *fakeQueueRepo) Update(ctx context.Context, entry *domain.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.ID]; !ok {
		return domain.ErrEntryNotFound
	}
	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *fakeQueueRepo) Remove(ctx context.Context, id domain.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return domain.ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeQueueRepo) RemoveByVideo(ctx context.Context, videoID domain.VideoID) (int, error) {
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

func (r *fakeQueueRepo) List(ctx context.Context) ([]*domain.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *fakeQueueRepo) Renumber(ctx context.Context, ordered []domain.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, id := range ordered {
		entry, ok := r.entries[id]
		if !ok {
			return domain.ErrEntryNotFound
		}
		entry.Position = i
	}
	return nil
}

func (r *fakeQueueRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[domain.EntryID]*domain.QueueEntry)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]*domain.Session
	order    []domain.SessionID
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[domain.SessionID]*domain.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	r.order = append(r.order, session.ID)
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) List(ctx context.Context, limit int) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]*domain.Session, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		if limit > 0 && len(sessions) >= limit {
			break
		}
		copied := *r.sessions[r.order[i]]
		sessions = append(sessions, &copied)
	}
	return sessions, nil
}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings *domain.StreamSettings
	creds    *domain.Credentials
}

func (r *fakeSettingsRepo) GetSettings(ctx context.Context) (*domain.StreamSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return nil, domain.ErrSettingsNotFound
	}
	copied := *r.settings
	return &copied, nil
}

func (r *fakeSettingsRepo) SaveSettings(ctx context.Context, settings *domain.StreamSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *settings
	r.settings = &copied
	return nil
}

func (r *fakeSettingsRepo) GetCredentials(ctx context.Context) (*domain.Credentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.creds == nil {
		return nil, domain.ErrCredentialsNotFound
	}
	copied := *r.creds
	return &copied, nil
}

func (r *fakeSettingsRepo) SaveCredentials(ctx context.Context, creds *domain.Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *creds
	r.creds = &copied
	return nil
}

type fakeMetricsRepo struct {
	mu      sync.Mutex
	samples map[domain.SessionID][]*domain.LiveMetrics
}

func newFakeMetricsRepo() *fakeMetricsRepo {
	return &fakeMetricsRepo{samples: make(map[domain.SessionID][]*domain.LiveMetrics)}
}

func (r *fakeMetricsRepo) Append(ctx context.Context, metrics *domain.LiveMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *metrics
	r.samples[metrics.SessionID] = append(r.samples[metrics.SessionID], &copied)
	return nil
}

func (r *fakeMetricsRepo) Latest(ctx context.Context, sessionID domain.SessionID) (*domain.LiveMetrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	samples := r.samples[sessionID]
	if len(samples) == 0 {
		return nil, nil
	}
	copied := *samples[len(samples)-1]
	return &copied, nil
}

func (r *fakeMetricsRepo) ListBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.LiveMetrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	samples := r.samples[sessionID]
	if limit > 0 && len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}
	out := make([]*domain.LiveMetrics, 0, len(samples))
	for _, sample := range samples {
		copied := *sample
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMetricsRepo) count(sessionID domain.SessionID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples[sessionID])
}

// captureNotifier records events for assertions.
type captureNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *captureNotifier) Notify(event domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *captureNotifier) byType(eventType domain.EventType) []domain.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Event
	for _, event := range n.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type fakeFileStore struct {
	mu    sync.Mutex
	files map[string][]byte
	dir   string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[string][]byte), dir: "/uploads"}
}

func (s *fakeFileStore) Save(ctx context.Context, storedName string, content io.Reader) (int64, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[storedName] = data
	return int64(len(data)), nil
}

func (s *fakeFileStore) Remove(ctx context.Context, storedName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, storedName)
	return nil
}

func (s *fakeFileStore) Path(storedName string) string {
	return s.dir + "/" + storedName
}

func (s *fakeFileStore) Exists(storedName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[storedName]
	return ok
}

type fakeProber struct {
	info *domain.MediaInfo
	err  error
}

func (p *fakeProber) Probe(ctx context.Context, path string) (*domain.MediaInfo, error) {
	if p.err != nil {
		return nil, p.err
	}
	copied := *p.info
	return &copied, nil
}

// fakeSupervisor records launches and lets tests trigger the exit
// callback of the most recent launch.
type fakeSupervisor struct {
	mu         sync.Mutex
	launches   []ports.LaunchOptions
	launchErr  error
	blockCh    chan struct{}
	running    bool
	terminated int
	onExit     func(ports.ExitStatus)
}

func (s *fakeSupervisor) Launch(ctx context.Context, opts ports.LaunchOptions) error {
	s.mu.Lock()
	s.launches = append(s.launches, opts)
	blockCh := s.blockCh
	s.mu.Unlock()

	if blockCh != nil {
		<-blockCh
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.launchErr != nil {
		return s.launchErr
	}
	s.running = true
	s.onExit = opts.OnExit
	return nil
}

func (s *fakeSupervisor) Terminate(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminated++
	if !s.running {
		return false, nil
	}
	s.running = false
	s.onExit = nil
	return true, nil
}

func (s *fakeSupervisor) IsHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// fireExit simulates an unrequested encoder exit.
func (s *fakeSupervisor) fireExit(status ports.ExitStatus) {
	s.mu.Lock()
	onExit := s.onExit
	s.running = false
	s.onExit = nil
	s.mu.Unlock()

	if onExit != nil {
		onExit(status)
	}
}

func (s *fakeSupervisor) launchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.launches)
}

func (s *fakeSupervisor) lastLaunch() ports.LaunchOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launches[len(s.launches)-1]
}

type fakePlatform struct {
	mu        sync.Mutex
	target    *domain.LiveTarget
	createErr error
	metrics   *domain.LiveMetrics
	created   int
	ended     []string
}

func (p *fakePlatform) CreateLiveTarget(ctx context.Context, creds *domain.Credentials, title, description string) (*domain.LiveTarget, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.created++
	if p.target != nil {
		copied := *p.target
		return &copied, nil
	}
	return &domain.LiveTarget{
		ID:        fmt.Sprintf("target-%d", p.created),
		IngestURL: fmt.Sprintf("rtmps://ingest.example.com/rtmp/key-%d", p.created),
	}, nil
}

func (p *fakePlatform) EndLiveTarget(ctx context.Context, creds *domain.Credentials, targetID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ended = append(p.ended, targetID)
	return true, nil
}

func (p *fakePlatform) TargetMetrics(ctx context.Context, creds *domain.Credentials, targetID string) (*domain.LiveMetrics, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.metrics == nil {
		return nil, fmt.Errorf("no metrics for target %s", targetID)
	}
	copied := *p.metrics
	return &copied, nil
}

func (p *fakePlatform) endedTargets() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ended...)
}

type fakeStreamStatus struct {
	mu     sync.Mutex
	status ports.StreamStatus
}

func (f *fakeStreamStatus) Start(ctx context.Context, req ports.StartStreamRequest) (*domain.Session, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeStreamStatus) Stop(ctx context.Context) (*domain.Session, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeStreamStatus) Status(ctx context.Context) (*ports.StreamStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := f.status
	return &copied, nil
}

func (f *fakeStreamStatus) Sessions(ctx context.Context, limit int) ([]*domain.Session, error) {
	return nil, nil
}

func (f *fakeStreamStatus) set(status ports.StreamStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}
