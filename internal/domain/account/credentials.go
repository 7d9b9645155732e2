package account

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/auth"
)

var ErrInvalidCredentials = errors.New("invalid account number or password")

const (
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
)

// LoginFor builds the sign-in address for an account number.
func LoginFor(accountNumber, domain string) string {
	return strings.ToLower(strings.TrimSpace(accountNumber)) + "@" + domain
}

// NormalizeAccountNumber trims and upper-cases n and checks its characters.
func NormalizeAccountNumber(n string) (string, error) {
	n = strings.ToUpper(strings.TrimSpace(n))
	if n == "" {
		return "", apperr.Required("account_number")
	}
	if len(n) > 32 {
		return "", apperr.Validation("account_number", "must be at most 32 characters")
	}
	for _, r := range n {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return "", apperr.Validation("account_number", "may contain only letters, digits, '-', '_' and '.'")
		}
	}
	return n, nil
}

func ValidatePassword(pw string) error {
	if len([]rune(pw)) < MinPasswordLength {
		return apperr.Validation("password", "must be at least %d characters", MinPasswordLength)
	}
	if len(pw) > maxPasswordBytes {
		return apperr.Validation("password", "must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

// CheckLink enforces the role-appropriate record link: patients link to a
// patient record, doctors and technologists to a staff record, and staff
// accounts optionally to a staff record.
func CheckLink(role auth.Role, patientID, staffID *uuid.UUID) error {
	if patientID != nil && staffID != nil {
		return apperr.Validation("patient_id", "an account links to a patient or a staff record, not both")
	}
	switch role {
	case auth.RolePatient:
		if patientID == nil {
			return apperr.Validation("patient_id", "is required for patient accounts")
		}
	case auth.RoleDoctor, auth.RoleMedTech, auth.RoleRadTech:
		if staffID == nil {
			return apperr.Validation("staff_id", "is required for %s accounts", role)
		}
	case auth.RoleStaff:
		if patientID != nil {
			return apperr.Validation("patient_id", "staff accounts cannot link to a patient")
		}
	default:
		return apperr.Validation("role", "unknown role %q", role)
	}
	return nil
}

type hasher struct {
	cost int
	// dummy is compared against when the account does not exist so both
	// paths cost one bcrypt comparison.
	dummy []byte
}

func newHasher(cost int) *hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("careconnect-unknown-account"), cost)
	return &hasher{cost: cost, dummy: dummy}
}

func (h *hasher) hash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *hasher) matches(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (h *hasher) burn(pw string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(pw))
}
