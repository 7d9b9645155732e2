package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/db"
)

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

const userCols = `id, role, account_number, login, password_hash, patient_id, staff_id, last_sign_in_at, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Role, &u.AccountNumber, &u.Login, &u.PasswordHash, &u.PatientID, &u.StaffID,
		&u.LastSignInAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return &u, nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (id, role, account_number, login, password_hash, patient_id, staff_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		u.ID, u.Role, u.AccountNumber, u.Login, u.PasswordHash, u.PatientID, u.StaffID,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return apperr.FromStore(err)
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetByLogin(ctx context.Context, login string) (*User, error) {
	return scanUser(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE login = $1`, login))
}

func (r *userRepoPG) exec(ctx context.Context, sql string, args ...interface{}) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return apperr.FromStore(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *userRepoPG) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
}

func (r *userRepoPG) TouchSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_sign_in_at = $2 WHERE id = $1`, id, at)
}

func (r *userRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.DeleteByID(ctx, r.pool, "users", id)
}

func (r *userRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*User, int, error) {
	q := db.From("users", userCols).EqIf("role", f.Role).Search(f.Search, "account_number", "login")
	return db.Page(ctx, r.pool, q.OrderBy("account_number"), limit, offset, scanUser)
}
