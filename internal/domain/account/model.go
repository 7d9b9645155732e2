package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/auth"
)

// User maps to the users table. It binds an account number to one role and
// at most one patient or staff record.
type User struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Role          auth.Role  `db:"role" json:"role"`
	AccountNumber string     `db:"account_number" json:"account_number"`
	Login         string     `db:"login" json:"login"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	PatientID     *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	StaffID       *uuid.UUID `db:"staff_id" json:"staff_id,omitempty"`
	LastSignInAt  *time.Time `db:"last_sign_in_at" json:"last_sign_in_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// NewUser is the input of CreateUser.
type NewUser struct {
	AccountNumber string     `json:"account_number"`
	Role          string     `json:"role"`
	Password      string     `json:"password"`
	PatientID     *uuid.UUID `json:"patient_id"`
	StaffID       *uuid.UUID `json:"staff_id"`
}

// SignInResult is returned to the client after a successful sign-in.
type SignInResult struct {
	Token   string        `json:"token"`
	Session *auth.Session `json:"session"`
	User    *User         `json:"user"`
}

// Filter narrows the user list.
type Filter struct {
	Role   string
	Search string
}
