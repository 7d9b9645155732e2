package mar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/db"
)

type orderRepoPG struct {
	pool *pgxpool.Pool
}

func NewOrderRepoPG(pool *pgxpool.Pool) OrderRepository {
	return &orderRepoPG{pool: pool}
}

const orderCols = `id, patient_id, medication_name, dose, route, order_date, room_no,
	nurse_initials, doses, is_completed, version, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var doses []byte
	err := row.Scan(&o.ID, &o.PatientID, &o.MedicationName, &o.Dose, &o.Route, &o.Date, &o.RoomNo,
		&o.NurseInitials, &doses, &o.IsCompleted, &o.Version, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	if err := json.Unmarshal(doses, &o.Doses); err != nil {
		return nil, fmt.Errorf("decode doses for order %s: %w", o.ID, err)
	}
	return &o, nil
}

func (r *orderRepoPG) Create(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	doses, err := json.Marshal(o.Doses)
	if err != nil {
		return fmt.Errorf("encode doses: %w", err)
	}
	err = db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO mar_orders (id, patient_id, medication_name, dose, route, order_date, room_no,
			nurse_initials, doses, is_completed, version, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11)
		RETURNING version, created_at, updated_at`,
		o.ID, o.PatientID, o.MedicationName, o.Dose, o.Route, o.Date, o.RoomNo,
		o.NurseInitials, doses, o.IsCompleted, o.CreatedBy,
	).Scan(&o.Version, &o.CreatedAt, &o.UpdatedAt)
	return apperr.FromStore(err)
}

func (r *orderRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return scanOrder(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+orderCols+` FROM mar_orders WHERE id = $1`, id))
}

func (r *orderRepoPG) Update(ctx context.Context, o *Order, expectedVersion int) error {
	doses, err := json.Marshal(o.Doses)
	if err != nil {
		return fmt.Errorf("encode doses: %w", err)
	}
	err = db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE mar_orders SET medication_name=$3, dose=$4, route=$5, order_date=$6, room_no=$7,
			nurse_initials=$8, doses=$9, is_completed=$10, version=version+1, updated_at=NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`,
		o.ID, expectedVersion, o.MedicationName, o.Dose, o.Route, o.Date, o.RoomNo,
		o.NurseInitials, doses, o.IsCompleted,
	).Scan(&o.Version, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.Conflict("medication order was changed by another session; reload and try again")
	}
	return apperr.FromStore(err)
}

func (r *orderRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM mar_orders WHERE id = $1`, id)
	if err != nil {
		return apperr.FromStore(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *orderRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, f OrderFilter, limit, offset int) ([]*Order, int, error) {
	q := db.From("mar_orders", orderCols).Eq("patient_id", patientID)
	switch f.Status {
	case StatusPending:
		q.Eq("is_completed", false)
	case StatusCompleted:
		q.Eq("is_completed", true)
	}
	q.OrderBy("is_completed, order_date DESC, medication_name")

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

	var items []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}
