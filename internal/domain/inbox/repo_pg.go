package inbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/db"
)

type messageRepoPG struct{ pool *pgxpool.Pool }

func NewMessageRepoPG(pool *pgxpool.Pool) MessageRepository { return &messageRepoPG{pool: pool} }

const messageCols = `id, sender_id, recipient_id, patient_id, subject, body, read_at, created_at`

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	if err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.PatientID, &m.Subject, &m.Body, &m.ReadAt, &m.CreatedAt); err != nil {
		return nil, apperr.FromStore(err)
	}
	return &m, nil
}

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	m.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, recipient_id, patient_id, subject, body)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		m.ID, m.SenderID, m.RecipientID, m.PatientID, m.Subject, m.Body,
	).Scan(&m.CreatedAt)
	return apperr.FromStore(err)
}

func (r *messageRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Message, error) {
	return scanMessage(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+messageCols+` FROM messages WHERE id = $1`, id))
}

func (r *messageRepoPG) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (time.Time, error) {
	var readAt time.Time
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE messages SET read_at = COALESCE(read_at, $2)
		WHERE id = $1
		RETURNING read_at`, id, at,
	).Scan(&readAt)
	return readAt, apperr.FromStore(err)
}

func (r *messageRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.DeleteByID(ctx, r.pool, "messages", id)
}

func (r *messageRepoPG) List(ctx context.Context, userID uuid.UUID, f Filter, limit, offset int) ([]*Message, int, error) {
	q := db.From("messages", messageCols)
	if f.Folder == FolderSent {
		q.Eq("sender_id", userID)
	} else {
		q.Eq("recipient_id", userID)
	}
	if f.UnreadOnly {
		q.Where("read_at IS NULL")
	}
	if f.PatientID != nil {
		q.Eq("patient_id", *f.PatientID)
	}
	return db.Page(ctx, r.pool, q.OrderBy("created_at DESC"), limit, offset, scanMessage)
}

func (r *messageRepoPG) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND read_at IS NULL`, userID).Scan(&n)
	return n, apperr.FromStore(err)
}
