package nursing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/db"
)

// -- Intake/Output --

type ioRepoPG struct{ pool *pgxpool.Pool }

func NewIORepoPG(pool *pgxpool.Pool) IORepository { return &ioRepoPG{pool: pool} }

const ioCols = `id, patient_id, io_type, recorded_at, amount_ml, description, notes, recorded_by, created_at`

func scanIO(row pgx.Row) (*IORecord, error) {
	var r IORecord
	err := row.Scan(&r.ID, &r.PatientID, &r.Type, &r.RecordedAt, &r.AmountML, &r.Description, &r.Notes, &r.RecordedBy, &r.CreatedAt)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return &r, nil
}

func (r *ioRepoPG) Create(ctx context.Context, rec *IORecord) error {
	rec.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO intake_output (id, patient_id, io_type, recorded_at, amount_ml, description, notes, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		rec.ID, rec.PatientID, rec.Type, rec.RecordedAt, rec.AmountML, rec.Description, rec.Notes, rec.RecordedBy,
	).Scan(&rec.CreatedAt)
	return apperr.FromStore(err)
}

func (r *ioRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*IORecord, error) {
	return scanIO(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+ioCols+` FROM intake_output WHERE id = $1`, id))
}

func ioQuery(patientID uuid.UUID, f IOFilter) *db.Select {
	q := db.From("intake_output", ioCols).Eq("patient_id", patientID).EqIf("io_type", f.Type)
	if !f.From.IsZero() {
		q.Where("recorded_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q.Where("recorded_at < ?", f.To)
	}
	return q
}

func (r *ioRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, f IOFilter, limit, offset int) ([]*IORecord, int, error) {
	return db.Page(ctx, r.pool, ioQuery(patientID, f).OrderBy("recorded_at DESC"), limit, offset, scanIO)
}

func (r *ioRepoPG) All(ctx context.Context, patientID uuid.UUID, f IOFilter) ([]*IORecord, error) {
	sql, args := ioQuery(patientID, f).OrderBy("recorded_at").SQL()
	return db.Collect(ctx, r.pool, sql, args, scanIO)
}

func (r *ioRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.DeleteByID(ctx, r.pool, "intake_output", id)
}

// -- Assessments --

type assessmentRepoPG struct{ pool *pgxpool.Pool }

func NewAssessmentRepoPG(pool *pgxpool.Pool) AssessmentRepository { return &assessmentRepoPG{pool: pool} }

const assessmentCols = `id, patient_id, assessment_type, findings, assessed_by, assessed_at, created_at`

func scanAssessment(row pgx.Row) (*Assessment, error) {
	var a Assessment
	if err := row.Scan(&a.ID, &a.PatientID, &a.AssessmentType, &a.Findings, &a.AssessedBy, &a.AssessedAt, &a.CreatedAt); err != nil {
		return nil, apperr.FromStore(err)
	}
	return &a, nil
}

func (r *assessmentRepoPG) Create(ctx context.Context, a *Assessment) error {
	a.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO nursing_assessments (id, patient_id, assessment_type, findings, assessed_by, assessed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		a.ID, a.PatientID, a.AssessmentType, a.Findings, a.AssessedBy, a.AssessedAt,
	).Scan(&a.CreatedAt)
	return apperr.FromStore(err)
}

func (r *assessmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return scanAssessment(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+assessmentCols+` FROM nursing_assessments WHERE id = $1`, id))
}

func (r *assessmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, assessmentType string, limit, offset int) ([]*Assessment, int, error) {
	q := db.From("nursing_assessments", assessmentCols).
		Eq("patient_id", patientID).
		EqIf("assessment_type", assessmentType).
		OrderBy("assessed_at DESC")
	return db.Page(ctx, r.pool, q, limit, offset, scanAssessment)
}

func (r *assessmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.DeleteByID(ctx, r.pool, "nursing_assessments", id)
}

// -- FDAR notes --

type fdarRepoPG struct{ pool *pgxpool.Pool }

func NewFDARRepoPG(pool *pgxpool.Pool) FDARRepository { return &fdarRepoPG{pool: pool} }

const fdarCols = `id, patient_id, focus, data, action, response, nurse, noted_at, created_at`

func scanFDAR(row pgx.Row) (*FDARNote, error) {
	var n FDARNote
	if err := row.Scan(&n.ID, &n.PatientID, &n.Focus, &n.Data, &n.Action, &n.Response, &n.Nurse, &n.NotedAt, &n.CreatedAt); err != nil {
		return nil, apperr.FromStore(err)
	}
	return &n, nil
}

func (r *fdarRepoPG) Create(ctx context.Context, n *FDARNote) error {
	n.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO fdar_notes (id, patient_id, focus, data, action, response, nurse, noted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		n.ID, n.PatientID, n.Focus, n.Data, n.Action, n.Response, n.Nurse, n.NotedAt,
	).Scan(&n.CreatedAt)
	return apperr.FromStore(err)
}

func (r *fdarRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*FDARNote, error) {
	return scanFDAR(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+fdarCols+` FROM fdar_notes WHERE id = $1`, id))
}

func (r *fdarRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*FDARNote, int, error) {
	q := db.From("fdar_notes", fdarCols).Eq("patient_id", patientID).OrderBy("noted_at DESC")
	return db.Page(ctx, r.pool, q, limit, offset, scanFDAR)
}

func (r *fdarRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.DeleteByID(ctx, r.pool, "fdar_notes", id)
}
