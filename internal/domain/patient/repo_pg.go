package patient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/db"
)

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

const patientCols = `id, hospital_number, patient_number, first_name, middle_name, last_name, sex, birth_date,
	civil_status, address, contact_number, religion, nationality, occupation,
	department, location, room_no, diagnosis, chief_complaint, admitted_at,
	past_medical_history, personal_social_history, family_history,
	allergies, current_medications, problem_list, status, attending_physician_id, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var pmh, psh, fh []byte
	err := row.Scan(&p.ID, &p.HospitalNumber, &p.PatientNumber, &p.FirstName, &p.MiddleName, &p.LastName, &p.Sex, &p.BirthDate,
		&p.CivilStatus, &p.Address, &p.ContactNumber, &p.Religion, &p.Nationality, &p.Occupation,
		&p.Department, &p.Location, &p.RoomNo, &p.Diagnosis, &p.ChiefComplaint, &p.AdmittedAt,
		&pmh, &psh, &fh,
		&p.Allergies, &p.CurrentMedications, &p.ProblemList, &p.Status, &p.AttendingPhysicianID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	for _, h := range []struct {
		raw  []byte
		dest *HistoryBlock
	}{{pmh, &p.PastMedicalHistory}, {psh, &p.PersonalSocialHistory}, {fh, &p.FamilyHistory}} {
		if len(h.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(h.raw, h.dest); err != nil {
			return nil, fmt.Errorf("decode history for patient %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

func encodeHistory(p *Patient) (pmh, psh, fh []byte, err error) {
	if pmh, err = json.Marshal(p.PastMedicalHistory); err != nil {
		return nil, nil, nil, err
	}
	if psh, err = json.Marshal(p.PersonalSocialHistory); err != nil {
		return nil, nil, nil, err
	}
	fh, err = json.Marshal(p.FamilyHistory)
	return pmh, psh, fh, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	pmh, psh, fh, err := encodeHistory(p)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	err = db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO patients (id, hospital_number, patient_number, first_name, middle_name, last_name, sex, birth_date,
			civil_status, address, contact_number, religion, nationality, occupation,
			department, location, room_no, diagnosis, chief_complaint, admitted_at,
			past_medical_history, personal_social_history, family_history,
			allergies, current_medications, problem_list, status, attending_physician_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28)
		RETURNING created_at, updated_at`,
		p.ID, p.HospitalNumber, p.PatientNumber, p.FirstName, p.MiddleName, p.LastName, p.Sex, p.BirthDate,
		p.CivilStatus, p.Address, p.ContactNumber, p.Religion, p.Nationality, p.Occupation,
		p.Department, p.Location, p.RoomNo, p.Diagnosis, p.ChiefComplaint, p.AdmittedAt,
		pmh, psh, fh,
		p.Allergies, p.CurrentMedications, p.ProblemList, p.Status, p.AttendingPhysicianID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return apperr.FromStore(err)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByNumber(ctx context.Context, number string) (*Patient, error) {
	return scanPatient(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE hospital_number = $1 OR patient_number = $1 LIMIT 1`, number))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	pmh, psh, fh, err := encodeHistory(p)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	err = db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE patients SET hospital_number=$2, patient_number=$3, first_name=$4, middle_name=$5, last_name=$6,
			sex=$7, birth_date=$8, civil_status=$9, address=$10, contact_number=$11, religion=$12,
			nationality=$13, occupation=$14, department=$15, location=$16, room_no=$17, diagnosis=$18,
			chief_complaint=$19, admitted_at=$20, past_medical_history=$21, personal_social_history=$22,
			family_history=$23, allergies=$24, current_medications=$25, problem_list=$26, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.HospitalNumber, p.PatientNumber, p.FirstName, p.MiddleName, p.LastName,
		p.Sex, p.BirthDate, p.CivilStatus, p.Address, p.ContactNumber, p.Religion,
		p.Nationality, p.Occupation, p.Department, p.Location, p.RoomNo, p.Diagnosis,
		p.ChiefComplaint, p.AdmittedAt, pmh, psh,
		fh, p.Allergies, p.CurrentMedications, p.ProblemList,
	).Scan(&p.UpdatedAt)
	return apperr.FromStore(err)
}

func (r *patientRepoPG) exec(ctx context.Context, sql string, args ...interface{}) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return apperr.FromStore(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.exec(ctx, `UPDATE patients SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *patientRepoPG) SetAttending(ctx context.Context, id uuid.UUID, physicianID *uuid.UUID) error {
	return r.exec(ctx, `UPDATE patients SET attending_physician_id = $2, updated_at = NOW() WHERE id = $1`, id, physicianID)
}

// Delete removes the patient. Child records go with it through ON DELETE CASCADE.
func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
}

func (r *patientRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	q := db.From("patients", patientCols).
		EqIf("status", f.Status).
		EqIf("department", f.Department).
		Search(f.Search, "first_name", "last_name", "hospital_number", "patient_number", "diagnosis")
	if f.AttendingPhysicianID != nil {
		q.Eq("attending_physician_id", *f.AttendingPhysicianID)
	}
	q.OrderBy("last_name, first_name")

	conn := db.Conn(ctx, r.pool)
	countSQL, countArgs := q.CountSQL()
	var total int
	if err := conn.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperr.FromStore(err)
	}

	dataSQL, dataArgs := q.PageSQL(limit, offset)
	rows, err := conn.Query(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, apperr.FromStore(err)
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
