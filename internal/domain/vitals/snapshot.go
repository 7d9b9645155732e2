package vitals

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
)

// Reading carries the measurements of one observation. Nil fields were not
// taken.
type Reading struct {
	BloodPressure    *string
	HeartRate        *int
	RespiratoryRate  *int
	Temperature      *float64
	OxygenSaturation *int
	PainScale        *int
	Notes            string
}

func (r Reading) empty() bool {
	return r.BloodPressure == nil && r.HeartRate == nil && r.RespiratoryRate == nil &&
		r.Temperature == nil && r.OxygenSaturation == nil && r.PainScale == nil &&
		strings.TrimSpace(r.Notes) == ""
}

// Validate checks ranges and the blood pressure format.
func (r Reading) Validate() error {
	if r.empty() {
		return apperr.Validation("vitals", "at least one measurement or a note is required")
	}
	if r.BloodPressure != nil {
		if _, _, err := ParseBloodPressure(*r.BloodPressure); err != nil {
			return err
		}
	}
	if r.HeartRate != nil && (*r.HeartRate <= 0 || *r.HeartRate > 300) {
		return apperr.Validation("heart_rate", "must be between 1 and 300")
	}
	if r.RespiratoryRate != nil && (*r.RespiratoryRate <= 0 || *r.RespiratoryRate > 100) {
		return apperr.Validation("respiratory_rate", "must be between 1 and 100")
	}
	if r.Temperature != nil && (*r.Temperature < 25 || *r.Temperature > 45) {
		return apperr.Validation("temperature", "must be between 25 and 45 degrees Celsius")
	}
	if r.OxygenSaturation != nil && (*r.OxygenSaturation < 0 || *r.OxygenSaturation > 100) {
		return apperr.Validation("oxygen_saturation", "must be between 0 and 100")
	}
	if r.PainScale != nil && (*r.PainScale < 0 || *r.PainScale > 10) {
		return apperr.Validation("pain_scale", "must be between 0 and 10")
	}
	return nil
}

// ParseBloodPressure splits "systolic/diastolic".
func ParseBloodPressure(bp string) (systolic, diastolic int, err error) {
	parts := strings.Split(strings.TrimSpace(bp), "/")
	if len(parts) != 2 {
		return 0, 0, apperr.Validation("blood_pressure", "must be written as systolic/diastolic, e.g. 120/80")
	}
	systolic, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	diastolic, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || systolic <= 0 || diastolic <= 0 {
		return 0, 0, apperr.Validation("blood_pressure", "must be written as systolic/diastolic, e.g. 120/80")
	}
	return systolic, diastolic, nil
}

// NewSnapshot validates r and stamps it with at. Version is assigned by
// the repository on insert.
func NewSnapshot(patientID uuid.UUID, r Reading, at time.Time, recordedBy *uuid.UUID) (*Snapshot, error) {
	if patientID == uuid.Nil {
		return nil, apperr.Required("patient_id")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	var bp *string
	if r.BloodPressure != nil {
		s, d, _ := ParseBloodPressure(*r.BloodPressure)
		v := strconv.Itoa(s) + "/" + strconv.Itoa(d)
		bp = &v
	}
	return &Snapshot{
		PatientID:        patientID,
		BloodPressure:    bp,
		HeartRate:        r.HeartRate,
		RespiratoryRate:  r.RespiratoryRate,
		Temperature:      r.Temperature,
		OxygenSaturation: r.OxygenSaturation,
		PainScale:        r.PainScale,
		Notes:            strings.TrimSpace(r.Notes),
		RecordedAt:       at.UTC(),
		RecordedBy:       recordedBy,
	}, nil
}

// Revise returns the reading of s with the fields set in r applied on top.
// The result is recorded as a new snapshot; s is left as it was.
func (s *Snapshot) Revise(r Reading) Reading {
	out := Reading{
		BloodPressure:    s.BloodPressure,
		HeartRate:        s.HeartRate,
		RespiratoryRate:  s.RespiratoryRate,
		Temperature:      s.Temperature,
		OxygenSaturation: s.OxygenSaturation,
		PainScale:        s.PainScale,
		Notes:            s.Notes,
	}
	if r.BloodPressure != nil {
		out.BloodPressure = r.BloodPressure
	}
	if r.HeartRate != nil {
		out.HeartRate = r.HeartRate
	}
	if r.RespiratoryRate != nil {
		out.RespiratoryRate = r.RespiratoryRate
	}
	if r.Temperature != nil {
		out.Temperature = r.Temperature
	}
	if r.OxygenSaturation != nil {
		out.OxygenSaturation = r.OxygenSaturation
	}
	if r.PainScale != nil {
		out.PainScale = r.PainScale
	}
	if strings.TrimSpace(r.Notes) != "" {
		out.Notes = r.Notes
	}
	return out
}

// Value returns the numeric value of measure, or false when it was not taken.
func (s *Snapshot) Value(measure string) (float64, bool) {
	switch measure {
	case MeasureSystolic, MeasureDiastolic:
		if s.BloodPressure == nil {
			return 0, false
		}
		sys, dia, err := ParseBloodPressure(*s.BloodPressure)
		if err != nil {
			return 0, false
		}
		if measure == MeasureSystolic {
			return float64(sys), true
		}
		return float64(dia), true
	case MeasureHeartRate:
		return intValue(s.HeartRate)
	case MeasureRespiratoryRate:
		return intValue(s.RespiratoryRate)
	case MeasureOxygenSaturation:
		return intValue(s.OxygenSaturation)
	case MeasurePainScale:
		return intValue(s.PainScale)
	case MeasureTemperature:
		if s.Temperature == nil {
			return 0, false
		}
		return *s.Temperature, true
	}
	return 0, false
}

func intValue(v *int) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return float64(*v), true
}

// Latest returns the snapshot with the greatest RecordedAt, or nil.
func Latest(snaps []*Snapshot) *Snapshot {
	var latest *Snapshot
	for _, s := range snaps {
		if latest == nil || s.RecordedAt.After(latest.RecordedAt) {
			latest = s
		}
	}
	return latest
}

// BuildTrend extracts measure from snaps in ascending RecordedAt order,
// skipping snapshots where it was not taken.
func BuildTrend(patientID uuid.UUID, measure string, snaps []*Snapshot) (*Trend, error) {
	if !validMeasure(measure) {
		return nil, apperr.Validation("measure", "must be one of %s", strings.Join(measures, ", "))
	}
	sorted := make([]*Snapshot, len(snaps))
	copy(sorted, snaps)
	sortAscending(sorted)

	t := &Trend{PatientID: patientID, Measure: measure, Points: []Point{}}
	for _, s := range sorted {
		if v, ok := s.Value(measure); ok {
			t.Points = append(t.Points, Point{RecordedAt: s.RecordedAt, Value: v})
		}
	}
	t.Sufficient = len(t.Points) >= 2
	return t, nil
}

func validMeasure(m string) bool {
	for _, x := range measures {
		if x == m {
			return true
		}
	}
	return false
}

func sortAscending(snaps []*Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].RecordedAt.Before(snaps[j].RecordedAt)
	})
}
