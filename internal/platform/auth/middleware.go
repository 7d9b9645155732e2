package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Middleware authenticates the bearer token, checks that its session is
// still live, and binds the Session to the request context. Websocket
// upgrades may pass the token as the access_token query parameter.
func Middleware(tokens *TokenIssuer, store SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr, err := bearerToken(c)
			if err != nil {
				return err
			}

			session, err := tokens.Parse(tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := c.Request().Context()
			active, err := store.Active(ctx, session.TokenID)
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("session store lookup failed")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
			}
			if !active {
				return echo.NewHTTPError(http.StatusUnauthorized, "session has ended")
			}

			c.Set("user_id", session.UserID.String())
			c.SetRequest(c.Request().WithContext(WithSession(ctx, session)))
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		if q := c.QueryParam("access_token"); q != "" && strings.HasPrefix(c.Request().URL.Path, "/ws") {
			return q, nil
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
	}
	return strings.TrimSpace(parts[1]), nil
}

// Skipper returns an echo skipper that bypasses authentication for the given
// path prefixes.
func Skipper(prefixes ...string) func(c echo.Context) bool {
	return func(c echo.Context) bool {
		path := c.Request().URL.Path
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}
}

// WithSkipper wraps mw so requests matched by skip go straight to the handler.
func WithSkipper(mw echo.MiddlewareFunc, skip func(c echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		wrapped := mw(next)
		return func(c echo.Context) error {
			if skip(c) {
				return next(c)
			}
			return wrapped(c)
		}
	}
}
