package mar

import (
	"context"

	"github.com/google/uuid"
)

// OrderFilter narrows a patient's order list.
type OrderFilter struct {
	Status string
}

type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// Update persists o if the stored version still equals expectedVersion
	// and bumps o.Version. A stale version yields apperr.ErrConflict.
	Update(ctx context.Context, o *Order, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, f OrderFilter, limit, offset int) ([]*Order, int, error)
}
