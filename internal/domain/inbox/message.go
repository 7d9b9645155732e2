package inbox

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
)

// Validate trims m and checks the fields a sender controls.
func (m *Message) Validate() error {
	m.Subject = strings.TrimSpace(m.Subject)
	m.Body = strings.TrimSpace(m.Body)
	if m.SenderID == uuid.Nil {
		return apperr.Required("sender_id")
	}
	if m.RecipientID == uuid.Nil {
		return apperr.Required("recipient_id")
	}
	if m.RecipientID == m.SenderID {
		return apperr.Validation("recipient_id", "cannot send a message to yourself")
	}
	if m.Subject == "" {
		return apperr.Required("subject")
	}
	if utf8.RuneCountInString(m.Subject) > maxSubject {
		return apperr.Validation("subject", "must be at most %d characters", maxSubject)
	}
	if m.Body == "" {
		return apperr.Required("body")
	}
	if utf8.RuneCountInString(m.Body) > maxBody {
		return apperr.Validation("body", "must be at most %d characters", maxBody)
	}
	if m.PatientID != nil && *m.PatientID == uuid.Nil {
		m.PatientID = nil
	}
	return nil
}

// Participant reports whether userID sent or received m.
func (m *Message) Participant(userID uuid.UUID) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

func (m *Message) Unread() bool { return m.ReadAt == nil }
