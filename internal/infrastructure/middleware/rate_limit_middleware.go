package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"livecast/pkg/config"
	apperrors "livecast/pkg/errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Idle limiters are pruned so the per-IP map cannot grow without bound.
const (
	limiterIdleTTL   = 10 * time.Minute
	pruneEveryInsert = 256
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiterStore struct {
	mu      sync.Mutex
	entries map[string]*ipLimiter
	limit   rate.Limit
	burst   int
	inserts int
}

func newIPLimiterStore(limit rate.Limit, burst int) *ipLimiterStore {
	return &ipLimiterStore{
		entries: make(map[string]*ipLimiter),
		limit:   limit,
		burst:   burst,
	}
}

func (s *ipLimiterStore) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[ip] = entry
		s.inserts++
		if s.inserts >= pruneEveryInsert {
			s.inserts = 0
			s.prune()
		}
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (s *ipLimiterStore) prune() {
	cutoff := time.Now().Add(-limiterIdleTTL)
	for ip, entry := range s.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(s.entries, ip)
		}
	}
}

// clientIP picks the first valid address from X-Forwarded-For, falling
// back to the connection's remote address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// NewHTTPRateLimitMiddleware throttles API traffic per client IP and
// caps the number of requests in flight. Rejections use the same error
// envelope as the classification middleware.
func NewHTTPRateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	if !cfg.RateLimiting.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	store := newIPLimiterStore(
		rate.Limit(cfg.RateLimiting.HTTP.RequestsPerSecond),
		cfg.RateLimiting.HTTP.Burst,
	)

	var inflight chan struct{}
	if cfg.RateLimiting.HTTP.MaxConcurrent > 0 {
		inflight = make(chan struct{}, cfg.RateLimiting.HTTP.MaxConcurrent)
	}

	return func(c *gin.Context) {
		if inflight != nil {
			select {
			case inflight <- struct{}{}:
				defer func() { <-inflight }()
			default:
				appErr := apperrors.NewServiceUnavailableError("too many concurrent requests")
				c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
					"error":   string(appErr.Code),
					"message": appErr.Message,
				})
				return
			}
		}

		if !store.allow(clientIP(c.Request)) {
			appErr := apperrors.NewRateLimitError()
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
				"error":   string(appErr.Code),
				"message": appErr.Message,
			})
			return
		}

		c.Next()
	}
}
