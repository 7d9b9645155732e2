package mar

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Dose is one scheduled administration slot of an order.
type Dose struct {
	ScheduledTime  string     `json:"scheduled_time"`
	Given          bool       `json:"given"`
	Nurse          string     `json:"nurse"`
	AdministeredAt *time.Time `json:"administered_at,omitempty"`
}

// Order maps to the mar_orders table. Doses are stored as a JSONB array.
type Order struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	MedicationName string     `db:"medication_name" json:"medication_name"`
	Dose           string     `db:"dose" json:"dose"`
	Route          string     `db:"route" json:"route"`
	Date           time.Time  `db:"order_date" json:"date"`
	RoomNo         *string    `db:"room_no" json:"room_no,omitempty"`
	NurseInitials  string     `db:"nurse_initials" json:"nurse_initials"`
	Doses          []Dose     `db:"doses" json:"doses"`
	IsCompleted    bool       `db:"is_completed" json:"is_completed"`
	Version        int        `db:"version" json:"version"`
	CreatedBy      *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// AdministeredTime is the legacy per-slot shape {time, given, nurse}.
type AdministeredTime struct {
	Time  string `json:"time"`
	Given bool   `json:"given"`
	Nurse string `json:"nurse"`
}

// ScheduledTimes returns the HH:MM schedule in slot order.
func (o *Order) ScheduledTimes() []string {
	out := make([]string, len(o.Doses))
	for i, d := range o.Doses {
		out[i] = d.ScheduledTime
	}
	return out
}

// AdministeredTimes returns the slot states in the legacy paired shape.
func (o *Order) AdministeredTimes() []AdministeredTime {
	out := make([]AdministeredTime, len(o.Doses))
	for i, d := range o.Doses {
		out[i] = AdministeredTime{Time: d.ScheduledTime, Given: d.Given, Nurse: d.Nurse}
	}
	return out
}

// MarshalJSON adds scheduled_times and administered_times derived from Doses
// so clients reading the paired arrays keep working.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		ScheduledTimes    []string           `json:"scheduled_times"`
		AdministeredTimes []AdministeredTime `json:"administered_times"`
		Status            string             `json:"status"`
	}{
		plain:             plain(o),
		ScheduledTimes:    o.ScheduledTimes(),
		AdministeredTimes: o.AdministeredTimes(),
		Status:            o.Status(),
	})
}

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Status is "completed" once every dose is given, otherwise "pending".
func (o *Order) Status() string {
	if o.IsCompleted {
		return StatusCompleted
	}
	return StatusPending
}
