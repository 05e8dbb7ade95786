package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

// MetricsSampler polls engagement counters for the live session on a
// fixed cadence, appends them to history and fans them out. Ticks that
// find no live session, or whose session disappears mid-sample, are
// skipped without error.
type MetricsSampler struct {
	stream   ports.StreamService
	source   ports.MetricsSource
	repo     ports.MetricsRepository
	notifier ports.Notifier
	interval time.Duration
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMetricsSampler(
	stream ports.StreamService,
	source ports.MetricsSource,
	repo ports.MetricsRepository,
	notifier ports.Notifier,
	interval time.Duration,
	logger *zap.SugaredLogger,
) *MetricsSampler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &MetricsSampler{
		stream:   stream,
		source:   source,
		repo:     repo,
		notifier: notifier,
		interval: interval,
		logger:   logger,
	}
}

func (m *MetricsSampler) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})

	go m.loop(m.stopCh, m.doneCh)

	m.logger.Infow("metrics sampler started", "interval", m.interval)
}

func (m *MetricsSampler) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stopCh)
	<-doneCh

	m.logger.Infow("metrics sampler stopped")
}

func (m *MetricsSampler) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.sampleOnce()
		}
	}
}

func (m *MetricsSampler) sampleOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	status, err := m.stream.Status(ctx)
	if err != nil || !status.IsStreaming || status.Session == nil {
		return
	}

	sample, err := m.source.Sample(ctx, status.Session)
	if err != nil {
		m.logger.Debugw("metrics sample skipped",
			"session_id", status.Session.ID,
			"error", err)
		return
	}
	sample.SessionID = status.Session.ID
	if sample.SampledAt.IsZero() {
		sample.SampledAt = time.Now()
	}

	if err := m.repo.Append(ctx, sample); err != nil {
		m.logger.Warnw("failed to append metrics sample",
			"session_id", sample.SessionID,
			"error", err)
		return
	}

	m.notifier.Notify(domain.NewEvent(domain.EventMetricsUpdated, domain.MetricsUpdatedPayload{Metrics: sample}))
}

// Latest returns the most recent sample for a session, or nil when the
// session has no samples yet.
func (m *MetricsSampler) Latest(ctx context.Context, sessionID domain.SessionID) (*domain.LiveMetrics, error) {
	sample, err := m.repo.Latest(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest metrics: %w", err)
	}
	return sample, nil
}

func (m *MetricsSampler) History(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.LiveMetrics, error) {
	samples, err := m.repo.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics history: %w", err)
	}
	return samples, nil
}
