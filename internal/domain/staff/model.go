package staff

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the directory a staff member is listed in.
type Kind string

const (
	KindDoctor  Kind = "doctor"
	KindNurse   Kind = "nurse"
	KindMedTech Kind = "medtech"
	KindRadTech Kind = "radtech"
)

// Member maps to the staff table.
type Member struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Kind           Kind      `db:"kind" json:"kind"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Specialization string    `db:"specialization" json:"specialization"`
	LicenseNumber  string    `db:"license_number" json:"license_number"`
	ContactNumber  string    `db:"contact_number" json:"contact_number"`
	Email          string    `db:"email" json:"email"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func (m *Member) FullName() string {
	if m.Kind == KindDoctor {
		return "Dr. " + m.FirstName + " " + m.LastName
	}
	return m.FirstName + " " + m.LastName
}
