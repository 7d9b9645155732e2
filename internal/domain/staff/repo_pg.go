package staff

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/db"
)

type memberRepoPG struct{ pool *pgxpool.Pool }

func NewMemberRepoPG(pool *pgxpool.Pool) MemberRepository { return &memberRepoPG{pool: pool} }

const memberCols = `id, kind, first_name, last_name, specialization, license_number, contact_number,
	email, active, created_at, updated_at`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.Kind, &m.FirstName, &m.LastName, &m.Specialization, &m.LicenseNumber, &m.ContactNumber,
		&m.Email, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return &m, nil
}

func (r *memberRepoPG) Create(ctx context.Context, m *Member) error {
	m.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO staff (id, kind, first_name, last_name, specialization, license_number, contact_number, email, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		m.ID, m.Kind, m.FirstName, m.LastName, m.Specialization, m.LicenseNumber, m.ContactNumber, m.Email, m.Active,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return apperr.FromStore(err)
}

func (r *memberRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	return scanMember(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+memberCols+` FROM staff WHERE id = $1`, id))
}

func (r *memberRepoPG) Update(ctx context.Context, m *Member) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE staff SET kind=$2, first_name=$3, last_name=$4, specialization=$5, license_number=$6,
			contact_number=$7, email=$8, active=$9, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		m.ID, m.Kind, m.FirstName, m.LastName, m.Specialization, m.LicenseNumber, m.ContactNumber, m.Email, m.Active,
	).Scan(&m.UpdatedAt)
	return apperr.FromStore(err)
}

func (r *memberRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.DeleteByID(ctx, r.pool, "staff", id)
}

func (r *memberRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Member, int, error) {
	q := db.From("staff", memberCols).
		EqIf("kind", string(f.Kind)).
		Search(f.Search, "first_name", "last_name", "specialization", "license_number")
	if f.ActiveOnly {
		q.Where("active")
	}
	return db.Page(ctx, r.pool, q.OrderBy("last_name, first_name"), limit, offset, scanMember)
}
