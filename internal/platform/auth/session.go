package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated caller. It is established at sign-in,
// travels in the request context, and ends when its token is revoked.
type Session struct {
	UserID        uuid.UUID    `json:"user_id"`
	Role          Role         `json:"role"`
	AccountNumber string       `json:"account_number"`
	PatientID     *uuid.UUID   `json:"patient_id,omitempty"`
	StaffID       *uuid.UUID   `json:"staff_id,omitempty"`
	Capabilities  Capabilities `json:"capabilities"`
	TokenID       string       `json:"-"`
	ExpiresAt     time.Time    `json:"expires_at"`
}

// NewSession derives capabilities from role.
func NewSession(userID uuid.UUID, role Role, accountNumber string) *Session {
	return &Session{
		UserID:        userID,
		Role:          role,
		AccountNumber: accountNumber,
		Capabilities:  CapabilitiesFor(role),
	}
}

// Actor returns the account number used to attribute writes.
func (s *Session) Actor() string {
	if s == nil {
		return ""
	}
	return s.AccountNumber
}

type contextKey string

const sessionKey contextKey = "session"

// WithSession binds s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the caller's session, or nil when unauthenticated.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// CanAccessPatient reports whether the session may read records belonging to
// patientID.
func (s *Session) CanAccessPatient(patientID uuid.UUID) bool {
	if s == nil {
		return false
	}
	if s.Capabilities.CanViewAllPatients {
		return true
	}
	return s.Capabilities.CanViewOwnRecordOnly && s.PatientID != nil && *s.PatientID == patientID
}
