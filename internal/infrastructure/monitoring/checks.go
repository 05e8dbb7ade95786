package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/redis/go-redis/v9"
)

// AddFFmpegCheck verifies the encoder binary can be resolved and
// executed on this host.
func (h *HealthChecker) AddFFmpegCheck(binary string) {
	h.AddCheck("ffmpeg", time.Second, func(ctx context.Context) error {
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("ffmpeg binary not available: %w", err)
		}
		return nil
	})
}

// AddStorageCheck verifies the upload directory accepts writes.
func (h *HealthChecker) AddStorageCheck(dir string) {
	h.AddCheck("storage", 2*time.Second, func(ctx context.Context) error {
		probe, err := os.CreateTemp(dir, ".healthz-*")
		if err != nil {
			return fmt.Errorf("storage directory not writable: %w", err)
		}
		name := probe.Name()
		if err := probe.Close(); err != nil {
			os.Remove(name)
			return err
		}
		return os.Remove(name)
	})
}

// AddRedisCheck verifies the shared Redis connection answers pings.
func (h *HealthChecker) AddRedisCheck(client *redis.Client) {
	h.AddCheck("redis", 2*time.Second, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// AddPlatformCheck verifies the streaming platform's API host is
// reachable. Any HTTP response counts; only transport failures mark
// the platform down.
func (h *HealthChecker) AddPlatformCheck(baseURL string, httpClient *http.Client) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}

	h.AddCheck("platform", 5*time.Second, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
		if err != nil {
			return fmt.Errorf("failed to build platform probe: %w", err)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("platform unreachable: %w", err)
		}
		resp.Body.Close()
		return nil
	})
}
