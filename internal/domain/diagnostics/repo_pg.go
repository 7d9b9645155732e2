package diagnostics

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/db"
)

// -- Lab results --

type labRepoPG struct{ pool *pgxpool.Pool }

func NewLabRepoPG(pool *pgxpool.Pool) LabRepository { return &labRepoPG{pool: pool} }

const labCols = `id, patient_id, test_name, result, reference_range, unit, flag, status,
	performed_by, result_date, notes, created_at, updated_at`

func scanLab(row pgx.Row) (*LabResult, error) {
	var l LabResult
	err := row.Scan(&l.ID, &l.PatientID, &l.TestName, &l.Result, &l.ReferenceRange, &l.Unit, &l.Flag, &l.Status,
		&l.PerformedBy, &l.ResultDate, &l.Notes, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return &l, nil
}

func (r *labRepoPG) Create(ctx context.Context, l *LabResult) error {
	l.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO lab_results (id, patient_id, test_name, result, reference_range, unit, flag, status,
			performed_by, result_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		l.ID, l.PatientID, l.TestName, l.Result, l.ReferenceRange, l.Unit, l.Flag, l.Status,
		l.PerformedBy, l.ResultDate, l.Notes,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	return apperr.FromStore(err)
}

func (r *labRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabResult, error) {
	return scanLab(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+labCols+` FROM lab_results WHERE id = $1`, id))
}

func (r *labRepoPG) Update(ctx context.Context, l *LabResult) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE lab_results SET test_name=$2, result=$3, reference_range=$4, unit=$5, flag=$6, status=$7,
			performed_by=$8, result_date=$9, notes=$10, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		l.ID, l.TestName, l.Result, l.ReferenceRange, l.Unit, l.Flag, l.Status,
		l.PerformedBy, l.ResultDate, l.Notes,
	).Scan(&l.UpdatedAt)
	return apperr.FromStore(err)
}

func (r *labRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.DeleteByID(ctx, r.pool, "lab_results", id)
}

func labQuery(f Filter) *db.Select {
	return db.From("lab_results", labCols).
		EqIf("status", f.Status).
		Search(f.Search, "test_name", "result", "notes")
}

func (r *labRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, f Filter, limit, offset int) ([]*LabResult, int, error) {
	q := labQuery(f).Eq("patient_id", patientID).OrderBy("created_at DESC")
	return db.Page(ctx, r.pool, q, limit, offset, scanLab)
}

func (r *labRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*LabResult, int, error) {
	return db.Page(ctx, r.pool, labQuery(f).OrderBy("status DESC, created_at DESC"), limit, offset, scanLab)
}

// -- Imaging results --

type imagingRepoPG struct{ pool *pgxpool.Pool }

func NewImagingRepoPG(pool *pgxpool.Pool) ImagingRepository { return &imagingRepoPG{pool: pool} }

const imagingCols = `id, patient_id, study_type, body_part, findings, impression, status,
	performed_by, study_date, image_keys, notes, created_at, updated_at`

func scanImaging(row pgx.Row) (*ImagingResult, error) {
	var r ImagingResult
	err := row.Scan(&r.ID, &r.PatientID, &r.StudyType, &r.BodyPart, &r.Findings, &r.Impression, &r.Status,
		&r.PerformedBy, &r.StudyDate, &r.ImageKeys, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return &r, nil
}

func (r *imagingRepoPG) Create(ctx context.Context, res *ImagingResult) error {
	res.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO imaging_results (id, patient_id, study_type, body_part, findings, impression, status,
			performed_by, study_date, image_keys, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		res.ID, res.PatientID, res.StudyType, res.BodyPart, res.Findings, res.Impression, res.Status,
		res.PerformedBy, res.StudyDate, res.ImageKeys, res.Notes,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	return apperr.FromStore(err)
}

func (r *imagingRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ImagingResult, error) {
	return scanImaging(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+imagingCols+` FROM imaging_results WHERE id = $1`, id))
}

func (r *imagingRepoPG) Update(ctx context.Context, res *ImagingResult) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE imaging_results SET study_type=$2, body_part=$3, findings=$4, impression=$5, status=$6,
			performed_by=$7, study_date=$8, image_keys=$9, notes=$10, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		res.ID, res.StudyType, res.BodyPart, res.Findings, res.Impression, res.Status,
		res.PerformedBy, res.StudyDate, res.ImageKeys, res.Notes,
	).Scan(&res.UpdatedAt)
	return apperr.FromStore(err)
}

func (r *imagingRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.DeleteByID(ctx, r.pool, "imaging_results", id)
}

func imagingQuery(f Filter) *db.Select {
	return db.From("imaging_results", imagingCols).
		EqIf("status", f.Status).
		Search(f.Search, "study_type", "body_part", "impression")
}

func (r *imagingRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, f Filter, limit, offset int) ([]*ImagingResult, int, error) {
	q := imagingQuery(f).Eq("patient_id", patientID).OrderBy("created_at DESC")
	return db.Page(ctx, r.pool, q, limit, offset, scanImaging)
}

func (r *imagingRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*ImagingResult, int, error) {
	return db.Page(ctx, r.pool, imagingQuery(f).OrderBy("status DESC, created_at DESC"), limit, offset, scanImaging)
}
