package staff

import (
	"net/mail"
	"strings"

	"github.com/careconnect/careconnect/internal/platform/apperr"
)

// ParseKind accepts the directory names used by the client, singular or
// plural.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "doctor", "doctors":
		return KindDoctor, true
	case "nurse", "nurses":
		return KindNurse, true
	case "medtech", "medtechs", "medical_technologist":
		return KindMedTech, true
	case "radtech", "radtechs", "radiologic_technologist":
		return KindRadTech, true
	}
	return "", false
}

// Validate normalises m before a write.
func (m *Member) Validate() error {
	kind, ok := ParseKind(string(m.Kind))
	if !ok {
		return apperr.Validation("kind", "must be doctor, nurse, medtech or radtech")
	}
	m.Kind = kind
	for _, f := range []*string{&m.FirstName, &m.LastName, &m.Specialization, &m.LicenseNumber, &m.ContactNumber, &m.Email} {
		*f = strings.TrimSpace(*f)
	}
	if m.FirstName == "" {
		return apperr.Required("first_name")
	}
	if m.LastName == "" {
		return apperr.Required("last_name")
	}
	if m.Kind != KindNurse && m.LicenseNumber == "" {
		return apperr.Validation("license_number", "is required for %s", m.Kind)
	}
	if m.Email != "" {
		addr, err := mail.ParseAddress(m.Email)
		if err != nil {
			return apperr.Validation("email", "is not a valid address")
		}
		m.Email = strings.ToLower(addr.Address)
	}
	return nil
}
