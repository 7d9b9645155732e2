// Package apperr defines the error kinds services return and maps them to
// HTTP responses at the handler boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("record was changed by another session")
	ErrForbidden = errors.New("operation not permitted")

	// ErrConfirmationRequired is returned by destructive endpoints called
	// without ?confirm=true.
	ErrConfirmationRequired = errors.New("confirmation required")
)

// InternalMessage is the only text clients see for unexpected failures.
const InternalMessage = "unable to complete request"

// ValidationError carries a user-facing message about rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validation builds a ValidationError for field.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Required is shorthand for a missing required field.
func Required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

type conflictError struct{ msg string }

func (e *conflictError) Error() string        { return e.msg }
func (e *conflictError) Is(target error) bool { return target == ErrConflict }

// Conflict reports a state conflict with its own message. errors.Is matches
// it against ErrConflict.
func Conflict(format string, args ...interface{}) error {
	return &conflictError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// FromStore translates driver errors into the package's error kinds.
// Other errors are returned unchanged.
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return Conflict("a record with the same %s already exists", uniqueField(pgErr.ConstraintName))
		case "23503":
			return &ValidationError{Message: "referenced record does not exist"}
		case "23514":
			return &ValidationError{Message: "value violates constraint " + pgErr.ConstraintName}
		}
	}
	return err
}

// Status returns the HTTP status for err.
func Status(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case IsValidation(err), errors.Is(err, ErrConfirmationRequired):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// HTTP converts err into an *echo.HTTPError. Unexpected errors are logged
// with the request id and replaced by InternalMessage.
func HTTP(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	err = FromStore(err)
	code := Status(err)
	if code == http.StatusInternalServerError {
		logger := zerolog.Ctx(c.Request().Context())
		logger.Error().Err(err).
			Interface("request_id", c.Get("request_id")).
			Str("path", c.Path()).
			Msg("request failed")
		return echo.NewHTTPError(code, InternalMessage)
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return echo.NewHTTPError(code, err.Error())
}

// RequireConfirm rejects destructive requests that lack ?confirm=true.
func RequireConfirm(c echo.Context) error {
	if c.QueryParam("confirm") != "true" {
		return ErrConfirmationRequired
	}
	return nil
}

// uniqueField turns a constraint name such as patients_hospital_number_key
// into "hospital_number" when the table prefix is known.
func uniqueField(constraint string) string {
	name := strings.TrimSuffix(constraint, "_key")
	for _, table := range []string{"patients_", "users_", "staff_"} {
		if strings.HasPrefix(name, table) {
			return strings.TrimPrefix(name, table)
		}
	}
	if name == "" {
		return "key"
	}
	return name
}
