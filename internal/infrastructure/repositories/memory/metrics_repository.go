package memory

import (
	"context"
	"sync"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

// MemoryMetricsRepository holds per-session metrics samples in append
// order. Latest is the last appended sample; an empty history is not
// an error.
type MemoryMetricsRepository struct {
	samples map[domain.SessionID][]*domain.LiveMetrics
	mu      sync.RWMutex
}

func NewMemoryMetricsRepository() ports.MetricsRepository {
	return &MemoryMetricsRepository{
		samples: make(map[domain.SessionID][]*domain.LiveMetrics),
	}
}

func (r *MemoryMetricsRepository) Append(ctx context.Context, sample *domain.LiveMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *sample
	r.samples[sample.SessionID] = append(r.samples[sample.SessionID], &copied)
	return nil
}

func (r *MemoryMetricsRepository) Latest(ctx context.Context, sessionID domain.SessionID) (*domain.LiveMetrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	samples := r.samples[sessionID]
	if len(samples) == 0 {
		return nil, nil
	}

	copied := *samples[len(samples)-1]
	return &copied, nil
}

func (r *MemoryMetricsRepository) ListBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.LiveMetrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

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
