package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequireCapability allows the request when the session holds at least one of
// caps.
func RequireCapability(caps ...Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := SessionFromContext(c.Request().Context())
			if s == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
			}
			for _, want := range caps {
				if s.Capabilities.Has(want) {
					return next(c)
				}
			}
			names := make([]string, len(caps))
			for i, want := range caps {
				names[i] = string(want)
			}
			return echo.NewHTTPError(http.StatusForbidden, "required capability: "+strings.Join(names, " or "))
		}
	}
}

// RequirePatientAccess returns a 403 unless the caller may read records of
// patientID.
func RequirePatientAccess(c echo.Context, patientID uuid.UUID) error {
	s := SessionFromContext(c.Request().Context())
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	if !s.CanAccessPatient(patientID) {
		return echo.NewHTTPError(http.StatusForbidden, "access to this patient record is not permitted")
	}
	return nil
}

// SessionHandler returns the caller's session and capability set so the
// client can hide actions it may not perform.
func SessionHandler(c echo.Context) error {
	s := SessionFromContext(c.Request().Context())
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return c.JSON(http.StatusOK, s)
}
