package platform

import (
	"context"
	"fmt"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

type metricsSource struct {
	platform ports.LivePlatform
	settings ports.SettingsService
}

// NewMetricsSource adapts the platform client into a MetricsSource for
// the sampler, resolving credentials on every sample so a token change
// takes effect without a restart.
func NewMetricsSource(livePlatform ports.LivePlatform, settings ports.SettingsService) ports.MetricsSource {
	return &metricsSource{platform: livePlatform, settings: settings}
}

func (s *metricsSource) Sample(ctx context.Context, session *domain.Session) (*domain.LiveMetrics, error) {
	if session == nil || session.LiveTargetID == "" {
		return nil, fmt.Errorf("session has no live target")
	}

	creds, err := s.settings.GetCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}

	metrics, err := s.platform.TargetMetrics(ctx, creds, session.LiveTargetID)
	if err != nil {
		return nil, err
	}

	metrics.SessionID = session.ID
	return metrics, nil
}
