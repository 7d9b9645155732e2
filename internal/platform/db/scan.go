package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careconnect/careconnect/internal/platform/apperr"
)

// Collect runs sql and scans every row with scan.
func Collect[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args []interface{}, scan func(pgx.Row) (T, error)) ([]T, error) {
	rows, err := Conn(ctx, pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	defer rows.Close()
	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Page runs the count query of q and one page of its data query.
func Page[T any](ctx context.Context, pool *pgxpool.Pool, q *Select, limit, offset int, scan func(pgx.Row) (T, error)) ([]T, int, error) {
	countSQL, countArgs := q.CountSQL()
	var total int
	if err := Conn(ctx, pool).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperr.FromStore(err)
	}
	dataSQL, dataArgs := q.PageSQL(limit, offset)
	items, err := Collect(ctx, pool, dataSQL, dataArgs, scan)
	return items, total, err
}

// DeleteByID deletes one row of table. A missing row is apperr.ErrNotFound.
func DeleteByID(ctx context.Context, pool *pgxpool.Pool, table string, id uuid.UUID) error {
	tag, err := Conn(ctx, pool).Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return apperr.FromStore(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
