package monitoring

import (
	"context"
	"sync"
	"time"
)

const defaultCheckTimeout = 3 * time.Second

type HealthChecker struct {
	checks []HealthCheck
	mu     sync.RWMutex
}

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck struct {
	Name    string
	Timeout time.Duration
	Check   func(ctx context.Context) error
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make([]HealthCheck, 0),
	}
}

func (h *HealthChecker) AddCheck(name string, timeout time.Duration, check func(ctx context.Context) error) {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.checks = append(h.checks, HealthCheck{
		Name:    name,
		Timeout: timeout,
		Check:   check,
	})
}

// CheckAll runs every registered check with its own timeout and
// reports the aggregate. One failing dependency marks the whole
// service unhealthy.
func (h *HealthChecker) CheckAll(ctx context.Context) HealthStatus {
	h.mu.RLock()
	checks := make([]HealthCheck, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	for _, check := range checks {
		if err := h.runCheck(ctx, check); err != nil {
			status.Status = "unhealthy"
			status.Checks[check.Name] = err.Error()
		} else {
			status.Checks[check.Name] = "healthy"
		}
	}

	return status
}

// IsHealthy reports whether every dependency check passes.
func (h *HealthChecker) IsHealthy(ctx context.Context) bool {
	return h.CheckAll(ctx).Status == "healthy"
}

func (h *HealthChecker) runCheck(ctx context.Context, check HealthCheck) error {
	checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	return check.Check(checkCtx)
}
