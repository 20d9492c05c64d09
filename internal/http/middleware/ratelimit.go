package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/yungbote/trustlens-backend/internal/http/response"
	"github.com/yungbote/trustlens-backend/internal/observability"
	"github.com/yungbote/trustlens-backend/internal/platform/ctxutil"
)

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows each authenticated user a burst of requests refilled at a fixed rate.
// Requests over the limit are rejected, never queued.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*userLimiter
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	metrics  *observability.Metrics
}

// NewRateLimiter builds a limiter allowing perMinute requests per user per minute.
func NewRateLimiter(perMinute, burst int, metrics *observability.Metrics) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*userLimiter),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		metrics:  metrics,
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, ok := rl.limiters[key]; ok {
		l.lastSeen = time.Now()
		return l.limiter
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[key] = &userLimiter{limiter: l, lastSeen: time.Now()}
	return l
}

// StartCleanup drops idle limiters until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				rl.sweep(time.Now())
			}
		}
	}()
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k, l := range rl.limiters {
		if now.Sub(l.lastSeen) > rl.idleTTL {
			delete(rl.limiters, k)
		}
	}
}

// Middleware keys by user id, falling back to client IP for anonymous callers.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
			key = "user:" + rd.UserID.String()
		}
		if !rl.get(key).Allow() {
			route := c.FullPath()
			if route == "" {
				route = "unknown"
			}
			rl.metrics.IncRateLimited(route)
			retryAfter := max(int(1.0/float64(rl.rate)), 1)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.AbortError(c, http.StatusTooManyRequests, "rate_limited", "Too many analysis requests. Please wait a moment and try again.")
			return
		}
		c.Next()
	}
}
