package diagnostics

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Lab result flags.
const (
	FlagNormal   = "normal"
	FlagHigh     = "high"
	FlagLow      = "low"
	FlagCritical = "critical"
)

// LabResult maps to the lab_results table.
type LabResult struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	TestName       string     `db:"test_name" json:"test_name"`
	Result         string     `db:"result" json:"result"`
	ReferenceRange string     `db:"reference_range" json:"reference_range"`
	Unit           string     `db:"unit" json:"unit"`
	Flag           string     `db:"flag" json:"flag"`
	Status         string     `db:"status" json:"status"`
	PerformedBy    string     `db:"performed_by" json:"performed_by"`
	ResultDate     *time.Time `db:"result_date" json:"result_date,omitempty"`
	Notes          string     `db:"notes" json:"notes"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// ImagingResult maps to the imaging_results table. ImageKeys are object
// storage keys of the attached images.
type ImagingResult struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	StudyType   string     `db:"study_type" json:"study_type"`
	BodyPart    string     `db:"body_part" json:"body_part"`
	Findings    string     `db:"findings" json:"findings"`
	Impression  string     `db:"impression" json:"impression"`
	Status      string     `db:"status" json:"status"`
	PerformedBy string     `db:"performed_by" json:"performed_by"`
	StudyDate   *time.Time `db:"study_date" json:"study_date,omitempty"`
	ImageKeys   []string   `db:"image_keys" json:"image_keys"`
	Notes       string     `db:"notes" json:"notes"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
