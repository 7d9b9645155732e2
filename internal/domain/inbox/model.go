package inbox

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two accounts, optionally about a
// patient.
type Message struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	SenderID    uuid.UUID  `db:"sender_id" json:"sender_id"`
	RecipientID uuid.UUID  `db:"recipient_id" json:"recipient_id"`
	PatientID   *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Subject     string     `db:"subject" json:"subject"`
	Body        string     `db:"body" json:"body"`
	ReadAt      *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Folder selects which side of the conversation a listing shows.
type Folder string

const (
	FolderInbox Folder = "inbox"
	FolderSent  Folder = "sent"
)

// Filter narrows a mailbox listing.
type Filter struct {
	Folder     Folder
	UnreadOnly bool
	PatientID  *uuid.UUID
}

const (
	maxSubject = 200
	maxBody    = 10000
)
