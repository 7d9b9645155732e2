package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/careconnect/careconnect/internal/platform/auth"
)

func levelFor(status int) zerolog.Level {
	switch {
	case status >= 500:
		return zerolog.ErrorLevel
	case status >= 400:
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

// Logger emits one access line per request. Handlers reach the same
// request-tagged logger through zerolog.Ctx.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			began := time.Now()
			rid, _ := c.Get("request_id").(string)
			l := logger.With().Str("request_id", rid).Logger()
			c.SetRequest(c.Request().WithContext(l.WithContext(c.Request().Context())))

			err := next(c)
			if err != nil {
				// let echo write the error response so the status is final
				c.Error(err)
			}

			res := c.Response()
			evt := l.WithLevel(levelFor(res.Status))
			if res.Status >= 500 {
				evt = evt.Err(err)
			}
			if s := auth.SessionFromContext(c.Request().Context()); s != nil {
				evt = evt.Stringer("user_id", s.UserID).Str("role", string(s.Role))
			}
			evt.Str("method", c.Request().Method).
				Str("route", c.Path()).
				Str("uri", c.Request().RequestURI).
				Int("status", res.Status).
				Int64("bytes", res.Size).
				Dur("took", time.Since(began)).
				Str("ip", c.RealIP()).
				Msg("request")
			return nil
		}
	}
}
