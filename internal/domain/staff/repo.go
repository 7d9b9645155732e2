package staff

import (
	"context"

	"github.com/google/uuid"
)

type Filter struct {
	Kind       Kind
	ActiveOnly bool
	Search     string
}

type MemberRepository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Member, int, error)
}
