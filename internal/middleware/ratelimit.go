package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voicedrop/voicedrop-api/internal/handler"
	"github.com/voicedrop/voicedrop-api/pkg/metrics"
)

// WindowLimiter is a sliding-window request counter keyed by caller
// identifier. One instance is shared by every route class; the class name is
// part of the bucket key so classes never starve each other.
type WindowLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	window   time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewWindowLimiter(window time.Duration, m *metrics.Metrics) *WindowLimiter {
	l := &WindowLimiter{
		requests: make(map[string][]time.Time),
		window:   window,
		metrics:  m,
		now:      time.Now,
	}
	go l.cleanupLoop()
	return l
}

func (l *WindowLimiter) cleanupLoop() {
	for {
		time.Sleep(l.window)
		l.cleanup()
	}
}

func (l *WindowLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, times := range l.requests {
		var valid []time.Time
		for _, t := range times {
			if now.Sub(t) <= l.window {
				valid = append(valid, t)
			}
		}
		if len(valid) == 0 {
			delete(l.requests, key)
		} else {
			l.requests[key] = valid
		}
	}
}

// Allow records a request against the bucket and reports whether it is within
// the limit. The request is only counted when allowed, so rejected calls do
// not extend the caller's penalty.
func (l *WindowLimiter) Allow(key string, limit int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	var valid []time.Time
	for _, t := range l.requests[key] {
		if now.Sub(t) <= l.window {
			valid = append(valid, t)
		}
	}

	if len(valid) >= limit {
		l.requests[key] = valid
		return false
	}

	l.requests[key] = append(valid, now)
	return true
}

// Limit enforces the given per-identifier limit for a route class.
func (l *WindowLimiter) Limit(class string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := class + ":" + callerIdentifier(c)

		if !l.Allow(key, limit) {
			if l.metrics != nil {
				l.metrics.RateLimitRejections.WithLabelValues(class).Inc()
			}
			c.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, handler.NewErrorResponse("rate limit exceeded"))
			return
		}

		c.Next()
	}
}

// callerIdentifier resolves who to bucket the request under: the first entry
// of X-Forwarded-For, then X-Real-IP, then a shared fallback bucket.
func callerIdentifier(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			fwd = fwd[:idx]
		}
		if id := strings.TrimSpace(fwd); id != "" {
			return id
		}
	}
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	return "unknown"
}
