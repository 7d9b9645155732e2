package patient

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Patient maps to the patients table.
type Patient struct {
	ID                    uuid.UUID    `db:"id" json:"id"`
	HospitalNumber        string       `db:"hospital_number" json:"hospital_number"`
	PatientNumber         string       `db:"patient_number" json:"patient_number"`
	FirstName             string       `db:"first_name" json:"first_name"`
	MiddleName            string       `db:"middle_name" json:"middle_name"`
	LastName              string       `db:"last_name" json:"last_name"`
	Sex                   string       `db:"sex" json:"sex"`
	BirthDate             *time.Time   `db:"birth_date" json:"birth_date,omitempty"`
	CivilStatus           string       `db:"civil_status" json:"civil_status"`
	Address               string       `db:"address" json:"address"`
	ContactNumber         string       `db:"contact_number" json:"contact_number"`
	Religion              string       `db:"religion" json:"religion"`
	Nationality           string       `db:"nationality" json:"nationality"`
	Occupation            string       `db:"occupation" json:"occupation"`
	Department            string       `db:"department" json:"department"`
	Location              string       `db:"location" json:"location"`
	RoomNo                string       `db:"room_no" json:"room_no"`
	Diagnosis             string       `db:"diagnosis" json:"diagnosis"`
	ChiefComplaint        string       `db:"chief_complaint" json:"chief_complaint"`
	AdmittedAt            time.Time    `db:"admitted_at" json:"admitted_at"`
	PastMedicalHistory    HistoryBlock `db:"past_medical_history" json:"past_medical_history"`
	PersonalSocialHistory HistoryBlock `db:"personal_social_history" json:"personal_social_history"`
	FamilyHistory         HistoryBlock `db:"family_history" json:"family_history"`
	Allergies             []string     `db:"allergies" json:"allergies"`
	CurrentMedications    []string     `db:"current_medications" json:"current_medications"`
	ProblemList           []string     `db:"problem_list" json:"problem_list"`
	Status                string       `db:"status" json:"status"`
	AttendingPhysicianID  *uuid.UUID   `db:"attending_physician_id" json:"attending_physician_id,omitempty"`
	CreatedAt             time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time    `db:"updated_at" json:"updated_at"`
}

// FullName is "Last, First Middle".
func (p *Patient) FullName() string {
	name := p.LastName + ", " + p.FirstName
	if p.MiddleName != "" {
		name += " " + p.MiddleName
	}
	return name
}

// Age in whole years at now, or -1 when the birth date is unknown.
func (p *Patient) Age(now time.Time) int {
	if p.BirthDate == nil {
		return -1
	}
	b := *p.BirthDate
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return age
}

// HistoryBlock is one history section: a fixed set of named yes/no
// conditions plus free text for anything not listed.
type HistoryBlock struct {
	Conditions      map[string]bool `json:"conditions"`
	OtherConditions string          `json:"other_conditions"`
}

// Condition names accepted in each history block.
var (
	PastMedicalConditions = []string{
		"hypertension", "diabetes", "asthma", "tuberculosis", "heart_disease",
		"kidney_disease", "cancer", "stroke", "previous_surgery", "previous_hospitalization",
	}
	PersonalSocialConditions = []string{
		"smoker", "alcohol_use", "illicit_drug_use", "sexually_active", "regular_exercise",
	}
	FamilyConditions = []string{
		"hypertension", "diabetes", "cancer", "heart_disease", "asthma", "stroke", "mental_illness",
	}
)

// Positive returns the conditions marked true, in the order of names.
func (h HistoryBlock) Positive(names []string) []string {
	var out []string
	for _, n := range names {
		if h.Conditions[n] {
			out = append(out, n)
		}
	}
	return out
}
