package nursing

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
)

// Validate checks r and fills RecordedAt with now when unset.
func (r *IORecord) Validate(now time.Time) error {
	if r.PatientID == uuid.Nil {
		return apperr.Required("patient_id")
	}
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if r.Type != IOTypeIntake && r.Type != IOTypeOutput {
		return apperr.Validation("type", "must be intake or output")
	}
	if r.AmountML <= 0 {
		return apperr.Validation("amount", "must be greater than zero")
	}
	r.Description = strings.TrimSpace(r.Description)
	if r.Description == "" {
		return apperr.Required("description")
	}
	r.Notes = strings.TrimSpace(r.Notes)
	if r.RecordedAt.IsZero() {
		r.RecordedAt = now
	}
	r.RecordedAt = r.RecordedAt.UTC()
	return nil
}

// Summarize totals records by type. The balance is intake minus output.
func Summarize(patientID uuid.UUID, records []*IORecord) *IOSummary {
	s := &IOSummary{PatientID: patientID}
	for _, r := range records {
		switch r.Type {
		case IOTypeIntake:
			s.TotalIntake += r.AmountML
		case IOTypeOutput:
			s.TotalOutput += r.AmountML
		default:
			continue
		}
		s.Entries++
	}
	s.Balance = s.TotalIntake - s.TotalOutput
	return s
}

func validAssessmentType(t string) bool {
	for _, x := range AssessmentTypes {
		if x == t {
			return true
		}
	}
	return false
}

func (a *Assessment) Validate(now time.Time) error {
	if a.PatientID == uuid.Nil {
		return apperr.Required("patient_id")
	}
	a.AssessmentType = strings.ToLower(strings.TrimSpace(a.AssessmentType))
	if !validAssessmentType(a.AssessmentType) {
		return apperr.Validation("assessment_type", "must be one of %s", strings.Join(AssessmentTypes, ", "))
	}
	a.Findings = strings.TrimSpace(a.Findings)
	if a.Findings == "" {
		return apperr.Required("findings")
	}
	if a.AssessedAt.IsZero() {
		a.AssessedAt = now
	}
	a.AssessedAt = a.AssessedAt.UTC()
	return nil
}

// Validate requires a focus and at least one of data, action or response.
func (n *FDARNote) Validate(now time.Time) error {
	if n.PatientID == uuid.Nil {
		return apperr.Required("patient_id")
	}
	for _, f := range []*string{&n.Focus, &n.Data, &n.Action, &n.Response, &n.Nurse} {
		*f = strings.TrimSpace(*f)
	}
	if n.Focus == "" {
		return apperr.Required("focus")
	}
	if n.Data == "" && n.Action == "" && n.Response == "" {
		return apperr.Validation("fdar", "data, action or response must be filled in")
	}
	if n.Nurse == "" {
		return apperr.Required("nurse")
	}
	if n.NotedAt.IsZero() {
		n.NotedAt = now
	}
	n.NotedAt = n.NotedAt.UTC()
	return nil
}
