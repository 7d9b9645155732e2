package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/careconnect/careconnect/internal/platform/auth"
)

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerSecond: 50, BurstSize: 100}
}

type limiters struct {
	cfg RateLimitConfig
	mu  sync.Mutex
	m   map[string]*rate.Limiter
}

func (l *limiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.m[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.BurstSize)
		l.m[key] = lim
	}
	return lim
}

// retryAfter returns whole seconds until lim would admit one more request.
func retryAfter(lim *rate.Limiter) int {
	r := lim.Reserve()
	defer r.Cancel()
	if !r.OK() || r.Delay() == rate.InfDuration {
		return 1
	}
	return int(math.Ceil(r.Delay().Seconds()))
}

// RateLimit keys limiters by signed-in user, falling back to client IP for
// anonymous calls such as sign-in.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	l := &limiters{cfg: cfg, m: make(map[string]*rate.Limiter)}
	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if s := auth.SessionFromContext(c.Request().Context()); s != nil {
				key = s.UserID.String()
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limitHeader)
			lim := l.get(key)
			if !lim.Allow() {
				h.Set("Retry-After", strconv.Itoa(retryAfter(lim)))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
