package vitals

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot maps to the vital_signs table. Rows are never updated.
type Snapshot struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	BloodPressure    *string    `db:"blood_pressure" json:"blood_pressure,omitempty"`
	HeartRate        *int       `db:"heart_rate" json:"heart_rate,omitempty"`
	RespiratoryRate  *int       `db:"respiratory_rate" json:"respiratory_rate,omitempty"`
	Temperature      *float64   `db:"temperature" json:"temperature,omitempty"`
	OxygenSaturation *int       `db:"oxygen_saturation" json:"oxygen_saturation,omitempty"`
	PainScale        *int       `db:"pain_scale" json:"pain_scale,omitempty"`
	Notes            string     `db:"notes" json:"notes"`
	RecordedAt       time.Time  `db:"recorded_at" json:"recorded_at"`
	Version          int        `db:"version" json:"version"`
	RecordedBy       *uuid.UUID `db:"recorded_by" json:"recorded_by,omitempty"`
	SupersedesID     *uuid.UUID `db:"supersedes_id" json:"supersedes_id,omitempty"`
}

// Point is one sample of a trend series.
type Point struct {
	RecordedAt time.Time `json:"recorded_at"`
	Value      float64   `json:"value"`
}

// Trend is a single measure over time, oldest first. Sufficient is false
// when there are fewer than two points to draw.
type Trend struct {
	PatientID  uuid.UUID `json:"patient_id"`
	Measure    string    `json:"measure"`
	Points     []Point   `json:"points"`
	Sufficient bool      `json:"sufficient"`
}

// Measures accepted by the trend view.
const (
	MeasureSystolic         = "systolic"
	MeasureDiastolic        = "diastolic"
	MeasureHeartRate        = "heart_rate"
	MeasureRespiratoryRate  = "respiratory_rate"
	MeasureTemperature      = "temperature"
	MeasureOxygenSaturation = "oxygen_saturation"
	MeasurePainScale        = "pain_scale"
)

var measures = []string{
	MeasureSystolic, MeasureDiastolic, MeasureHeartRate, MeasureRespiratoryRate,
	MeasureTemperature, MeasureOxygenSaturation, MeasurePainScale,
}
