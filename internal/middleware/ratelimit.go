package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// RateLimitConfig bounds each client to Requests per Window. CounterTimeout
// caps each call to the shared counter before the local limiter takes over.
type RateLimitConfig struct {
	Requests       int
	Window         time.Duration
	TrustProxy     bool
	CounterTimeout time.Duration
}

// RateLimiter counts requests in a shared store when one is configured and
// falls back to per-process token buckets when it is absent or failing.
type RateLimiter struct {
	counter repository.RateCounter
	cfg     RateLimitConfig
	logger  *zap.Logger

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(counter repository.RateCounter, cfg RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if cfg.Requests <= 0 {
		cfg.Requests = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.CounterTimeout <= 0 {
		cfg.CounterTimeout = 250 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		counter:   counter,
		cfg:       cfg,
		logger:    logger,
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

// Limit wraps next with the limiter. scope separates counters of different
// route groups.
func (rl *RateLimiter) Limit(scope string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			key := scope + ":" + rl.clientIP(ctx)
			allowed, retryAfter := rl.allow(ctx, key)
			if !allowed {
				ctx.Response.Header.Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				writeJSON(ctx, http.StatusTooManyRequests, transport.NewError(domain.ErrTooManyRequests.Message, nil))
				return
			}
			next(ctx)
		}
	}
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, time.Duration) {
	if rl.counter != nil {
		hitCtx, cancel := context.WithTimeout(ctx, rl.cfg.CounterTimeout)
		count, resetAt, err := rl.counter.Hit(hitCtx, key, rl.cfg.Window)
		cancel()
		if err == nil {
			return count <= int64(rl.cfg.Requests), time.Until(resetAt)
		}
		rl.logger.Warn("shared rate counter unavailable, using local limiter", zap.Error(err))
	}

	limiter := rl.visitor(key)
	if limiter.Allow() {
		return true, 0
	}
	return false, rl.cfg.Window / time.Duration(rl.cfg.Requests)
}

func (rl *RateLimiter) visitor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.cfg.Window {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.cfg.Window {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		every := rate.Every(rl.cfg.Window / time.Duration(rl.cfg.Requests))
		v = &visitor{limiter: rate.NewLimiter(every, rl.cfg.Requests)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (rl *RateLimiter) clientIP(ctx *fasthttp.RequestCtx) string {
	if rl.cfg.TrustProxy {
		if fwd := string(ctx.Request.Header.Peek("X-Forwarded-For")); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(first)
		}
		if ip := string(ctx.Request.Header.Peek("X-Real-IP")); ip != "" {
			return ip
		}
	}
	return ctx.RemoteIP().String()
}
