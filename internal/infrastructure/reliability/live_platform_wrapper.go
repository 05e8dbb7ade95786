package reliability

import (
	"context"

	"go.uber.org/zap"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	"livecast/pkg/circuitbreaker"
	"livecast/pkg/retry"
)

// LivePlatformWrapper wraps a LivePlatform with retry logic and a
// circuit breaker. Creating a live target is never retried; a second
// attempt can leave an orphaned broadcast on the platform. Metrics
// reads pass straight through so sampler noise cannot trip the breaker
// for control operations.
type LivePlatformWrapper struct {
	platform ports.LivePlatform
	logger   *zap.SugaredLogger

	retryConfig    retry.Config
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewLivePlatformWrapper creates a new wrapper with retry and circuit breaker
func NewLivePlatformWrapper(
	platform ports.LivePlatform,
	retryConfig retry.Config,
	cbConfig circuitbreaker.Config,
	logger *zap.SugaredLogger,
) *LivePlatformWrapper {
	retryConfig.NonRetryableErrors = append(retryConfig.NonRetryableErrors, circuitbreaker.ErrOpen)

	wrapper := &LivePlatformWrapper{
		platform:       platform,
		logger:         logger,
		retryConfig:    retryConfig,
		circuitBreaker: circuitbreaker.New(cbConfig),
	}

	wrapper.circuitBreaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Infow("platform circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
	})

	return wrapper
}

// CreateLiveTarget registers a broadcast through the circuit breaker,
// single attempt.
func (w *LivePlatformWrapper) CreateLiveTarget(ctx context.Context, creds *domain.Credentials, title, description string) (*domain.LiveTarget, error) {
	result, err := w.circuitBreaker.ExecuteWithResult(ctx, func() (interface{}, error) {
		return w.platform.CreateLiveTarget(ctx, creds, title, description)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.LiveTarget), nil
}

// EndLiveTarget finishes a broadcast with retry logic; the call is
// idempotent on the platform side.
func (w *LivePlatformWrapper) EndLiveTarget(ctx context.Context, creds *domain.Credentials, targetID string) (bool, error) {
	if !w.retryConfig.Enabled {
		return w.endThroughBreaker(ctx, creds, targetID)
	}

	return retry.RetryWithResult(ctx, w.retryConfig, func() (bool, error) {
		return w.endThroughBreaker(ctx, creds, targetID)
	})
}

func (w *LivePlatformWrapper) endThroughBreaker(ctx context.Context, creds *domain.Credentials, targetID string) (bool, error) {
	result, err := w.circuitBreaker.ExecuteWithResult(ctx, func() (interface{}, error) {
		return w.platform.EndLiveTarget(ctx, creds, targetID)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// TargetMetrics reads counters without retry or breaker accounting.
func (w *LivePlatformWrapper) TargetMetrics(ctx context.Context, creds *domain.Credentials, targetID string) (*domain.LiveMetrics, error) {
	return w.platform.TargetMetrics(ctx, creds, targetID)
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (w *LivePlatformWrapper) GetCircuitBreakerStats() circuitbreaker.Stats {
	return w.circuitBreaker.GetStats()
}
