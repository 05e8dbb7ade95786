package monitoring

import (
	"context"
	"time"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

// InstrumentedMetricsSource times every sampling round-trip against
// the wrapped source, failures included.
type InstrumentedMetricsSource struct {
	next      ports.MetricsSource
	collector *PrometheusCollector
}

var _ ports.MetricsSource = (*InstrumentedMetricsSource)(nil)

func NewInstrumentedMetricsSource(next ports.MetricsSource, collector *PrometheusCollector) *InstrumentedMetricsSource {
	return &InstrumentedMetricsSource{next: next, collector: collector}
}

func (s *InstrumentedMetricsSource) Sample(ctx context.Context, session *domain.Session) (*domain.LiveMetrics, error) {
	start := time.Now()
	sample, err := s.next.Sample(ctx, session)
	s.collector.ObserveSamplerDuration(time.Since(start))
	return sample, err
}
