package diagnostics

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
)

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

func checkStatus(status *string) error {
	*status = strings.ToLower(strings.TrimSpace(*status))
	if *status == "" {
		*status = StatusPending
	}
	if *status != StatusPending && *status != StatusCompleted {
		return apperr.Validation("status", "must be pending or completed")
	}
	return nil
}

// Validate normalises l. A completed result needs a value and gets a
// result date of now when none was given.
func (l *LabResult) Validate(now time.Time) error {
	if l.PatientID == uuid.Nil {
		return apperr.Required("patient_id")
	}
	trim(&l.TestName, &l.Result, &l.ReferenceRange, &l.Unit, &l.PerformedBy, &l.Notes)
	if l.TestName == "" {
		return apperr.Required("test_name")
	}
	l.Flag = strings.ToLower(strings.TrimSpace(l.Flag))
	switch l.Flag {
	case "", FlagNormal, FlagHigh, FlagLow, FlagCritical:
	default:
		return apperr.Validation("flag", "must be normal, high, low or critical")
	}
	if err := checkStatus(&l.Status); err != nil {
		return err
	}
	if l.Status == StatusCompleted {
		if l.Result == "" {
			return apperr.Validation("result", "is required to complete a lab result")
		}
		if l.ResultDate == nil {
			t := now.UTC()
			l.ResultDate = &t
		}
	}
	return nil
}

// Validate normalises r. A completed study needs findings or an impression.
func (r *ImagingResult) Validate(now time.Time) error {
	if r.PatientID == uuid.Nil {
		return apperr.Required("patient_id")
	}
	trim(&r.StudyType, &r.BodyPart, &r.Findings, &r.Impression, &r.PerformedBy, &r.Notes)
	if r.StudyType == "" {
		return apperr.Required("study_type")
	}
	if err := checkStatus(&r.Status); err != nil {
		return err
	}
	if r.Status == StatusCompleted {
		if r.Findings == "" && r.Impression == "" {
			return apperr.Validation("findings", "findings or impression is required to complete a study")
		}
		if r.StudyDate == nil {
			t := now.UTC()
			r.StudyDate = &t
		}
	}
	if r.ImageKeys == nil {
		r.ImageKeys = []string{}
	}
	return nil
}
