package nursing

import (
	"time"

	"github.com/google/uuid"
)

const (
	IOTypeIntake = "intake"
	IOTypeOutput = "output"
)

// IORecord maps to the intake_output table.
type IORecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Type        string    `db:"io_type" json:"type"`
	RecordedAt  time.Time `db:"recorded_at" json:"recorded_at"`
	AmountML    float64   `db:"amount_ml" json:"amount"`
	Description string    `db:"description" json:"description"`
	Notes       string    `db:"notes" json:"notes"`
	RecordedBy  string    `db:"recorded_by" json:"recorded_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// IOSummary is derived from raw records on every read and never stored.
type IOSummary struct {
	PatientID   uuid.UUID  `json:"patient_id"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	TotalIntake float64    `json:"total_intake"`
	TotalOutput float64    `json:"total_output"`
	Balance     float64    `json:"balance"`
	Entries     int        `json:"entries"`
}

// Assessment types offered on the assessment screen.
var AssessmentTypes = []string{"general", "neuro", "cardio", "respiratory", "gi", "gu", "skin", "pain"}

// Assessment maps to the nursing_assessments table.
type Assessment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	AssessmentType string    `db:"assessment_type" json:"assessment_type"`
	Findings       string    `db:"findings" json:"findings"`
	AssessedBy     string    `db:"assessed_by" json:"assessed_by"`
	AssessedAt     time.Time `db:"assessed_at" json:"assessed_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// FDARNote maps to the fdar_notes table: Focus, Data, Action, Response.
type FDARNote struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Focus     string    `db:"focus" json:"focus"`
	Data      string    `db:"data" json:"data"`
	Action    string    `db:"action" json:"action"`
	Response  string    `db:"response" json:"response"`
	Nurse     string    `db:"nurse" json:"nurse"`
	NotedAt   time.Time `db:"noted_at" json:"noted_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
