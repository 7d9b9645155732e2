package patient

import (
	"strings"
	"time"

	"github.com/careconnect/careconnect/internal/platform/apperr"
)

var sexes = map[string]bool{"male": true, "female": true, "other": true}

// Normalize trims text fields, fills defaults and validates p before it is
// written. now bounds the birth date.
func (p *Patient) Normalize(now time.Time) error {
	for _, f := range []*string{
		&p.HospitalNumber, &p.PatientNumber, &p.FirstName, &p.MiddleName, &p.LastName,
		&p.CivilStatus, &p.Address, &p.ContactNumber, &p.Religion, &p.Nationality,
		&p.Occupation, &p.Department, &p.Location, &p.RoomNo, &p.Diagnosis, &p.ChiefComplaint,
	} {
		*f = strings.TrimSpace(*f)
	}
	p.Sex = strings.ToLower(strings.TrimSpace(p.Sex))

	switch {
	case p.HospitalNumber == "":
		return apperr.Required("hospital_number")
	case p.PatientNumber == "":
		return apperr.Required("patient_number")
	case p.FirstName == "":
		return apperr.Required("first_name")
	case p.LastName == "":
		return apperr.Required("last_name")
	}
	if p.Sex != "" && !sexes[p.Sex] {
		return apperr.Validation("sex", "must be male, female or other")
	}
	if p.BirthDate != nil && p.BirthDate.After(now) {
		return apperr.Validation("birth_date", "cannot be in the future")
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.Status != StatusActive && p.Status != StatusArchived {
		return apperr.Validation("status", "must be active or archived")
	}
	if p.AdmittedAt.IsZero() {
		p.AdmittedAt = now.UTC()
	}

	var err error
	if p.PastMedicalHistory, err = normalizeHistory("past_medical_history", p.PastMedicalHistory, PastMedicalConditions); err != nil {
		return err
	}
	if p.PersonalSocialHistory, err = normalizeHistory("personal_social_history", p.PersonalSocialHistory, PersonalSocialConditions); err != nil {
		return err
	}
	if p.FamilyHistory, err = normalizeHistory("family_history", p.FamilyHistory, FamilyConditions); err != nil {
		return err
	}

	p.Allergies = cleanList(p.Allergies)
	p.CurrentMedications = cleanList(p.CurrentMedications)
	p.ProblemList = cleanList(p.ProblemList)
	return nil
}

// normalizeHistory rejects unknown condition names and fills every known
// name so the stored block always has the full set.
func normalizeHistory(field string, h HistoryBlock, names []string) (HistoryBlock, error) {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	out := HistoryBlock{
		Conditions:      make(map[string]bool, len(names)),
		OtherConditions: strings.TrimSpace(h.OtherConditions),
	}
	for k, v := range h.Conditions {
		key := strings.ToLower(strings.TrimSpace(k))
		if !known[key] {
			return HistoryBlock{}, apperr.Validation(field, "unknown condition %q", k)
		}
		out.Conditions[key] = v
	}
	for _, n := range names {
		if _, ok := out.Conditions[n]; !ok {
			out.Conditions[n] = false
		}
	}
	return out, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}

// ValidStatus reports whether s is a patient status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusArchived
}
