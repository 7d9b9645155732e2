package inbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	// MarkRead sets read_at when it is still empty and returns the stored
	// value either way.
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (time.Time, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, f Filter, limit, offset int) ([]*Message, int, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// Directory resolves message recipients.
type Directory interface {
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
}
