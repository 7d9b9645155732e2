package vitals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/db"
)

type snapshotRepoPG struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepoPG(pool *pgxpool.Pool) SnapshotRepository {
	return &snapshotRepoPG{pool: pool}
}

const snapshotCols = `id, patient_id, blood_pressure, heart_rate, respiratory_rate, temperature,
	oxygen_saturation, pain_scale, notes, recorded_at, version, recorded_by, supersedes_id`

func scanSnapshot(row pgx.Row) (*Snapshot, error) {
	var s Snapshot
	err := row.Scan(&s.ID, &s.PatientID, &s.BloodPressure, &s.HeartRate, &s.RespiratoryRate, &s.Temperature,
		&s.OxygenSaturation, &s.PainScale, &s.Notes, &s.RecordedAt, &s.Version, &s.RecordedBy, &s.SupersedesID)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return &s, nil
}

// Insert takes the next version from vital_sign_counters. The upsert locks
// the patient's counter row until commit, so concurrent inserts queue and a
// version is never reused after a delete.
func (r *snapshotRepoPG) Insert(ctx context.Context, s *Snapshot) error {
	s.ID = uuid.New()
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		conn := db.Conn(ctx, r.pool)
		err := conn.QueryRow(ctx, `
			INSERT INTO vital_sign_counters (patient_id, last_version) VALUES ($1, 1)
			ON CONFLICT (patient_id) DO UPDATE SET last_version = vital_sign_counters.last_version + 1
			RETURNING last_version`, s.PatientID).Scan(&s.Version)
		if err != nil {
			return apperr.FromStore(err)
		}
		_, err = conn.Exec(ctx, `
			INSERT INTO vital_signs (id, patient_id, blood_pressure, heart_rate, respiratory_rate, temperature,
				oxygen_saturation, pain_scale, notes, recorded_at, version, recorded_by, supersedes_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			s.ID, s.PatientID, s.BloodPressure, s.HeartRate, s.RespiratoryRate, s.Temperature,
			s.OxygenSaturation, s.PainScale, s.Notes, s.RecordedAt, s.Version, s.RecordedBy, s.SupersedesID,
		)
		return apperr.FromStore(err)
	})
}

func (r *snapshotRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	return scanSnapshot(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+snapshotCols+` FROM vital_signs WHERE id = $1`, id))
}

func (r *snapshotRepoPG) Latest(ctx context.Context, patientID uuid.UUID) (*Snapshot, error) {
	q, args := db.From("vital_signs", snapshotCols).
		Eq("patient_id", patientID).
		OrderBy("recorded_at DESC, version DESC").
		PageSQL(1, 0)
	return scanSnapshot(db.Conn(ctx, r.pool).QueryRow(ctx, q, args...))
}

func (r *snapshotRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Snapshot, int, error) {
	q := db.From("vital_signs", snapshotCols).Eq("patient_id", patientID).OrderBy("recorded_at DESC, version DESC")

	conn := db.Conn(ctx, r.pool)
	countSQL, countArgs := q.CountSQL()
	var total int
	if err := conn.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperr.FromStore(err)
	}
	dataSQL, dataArgs := q.PageSQL(limit, offset)
	items, err := r.query(ctx, dataSQL, dataArgs...)
	return items, total, err
}

func (r *snapshotRepoPG) Series(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*Snapshot, error) {
	q := db.From("vital_signs", snapshotCols).Eq("patient_id", patientID)
	if !since.IsZero() {
		q.Where("recorded_at >= ?", since)
	}
	sql, args := q.OrderBy("recorded_at ASC").SQL()
	return r.query(ctx, sql, args...)
}

func (r *snapshotRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Snapshot, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	defer rows.Close()
	var items []*Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *snapshotRepoPG) Count(ctx context.Context, patientID uuid.UUID) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM vital_signs WHERE patient_id = $1`, patientID).Scan(&n)
	return n, apperr.FromStore(err)
}

func (r *snapshotRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM vital_signs WHERE id = $1`, id)
	if err != nil {
		return apperr.FromStore(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
