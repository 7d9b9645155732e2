package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const pingTimeout = 3 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type connStats struct {
	Max      int32  `json:"max"`
	Open     int32  `json:"open"`
	Idle     int32  `json:"idle"`
	InUse    int32  `json:"in_use"`
	Acquires int64  `json:"acquires"`
	Waited   string `json:"waited"`
}

type storeHealth struct {
	Status string     `json:"status"`
	Conns  *connStats `json:"connections,omitempty"`
}

func statsOf(pool *pgxpool.Pool) *connStats {
	if pool == nil {
		return nil
	}
	s := pool.Stat()
	return &connStats{
		Max:      s.MaxConns(),
		Open:     s.TotalConns(),
		Idle:     s.IdleConns(),
		InUse:    s.AcquiredConns(),
		Acquires: s.AcquireCount(),
		Waited:   s.AcquireDuration().String(),
	}
}

// HealthHandler answers 200 when the database responds to a ping and 503
// otherwise. The ping error itself is never returned to the caller.
func HealthHandler(p Pinger, pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()

		h := storeHealth{Status: "healthy", Conns: statsOf(pool)}
		code := http.StatusOK
		if err := p.Ping(ctx); err != nil {
			h.Status, code = "unhealthy", http.StatusServiceUnavailable
		}
		return c.JSON(code, h)
	}
}
