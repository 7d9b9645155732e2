package diagnostics

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows result lists.
type Filter struct {
	Status string
	Search string
}

type LabRepository interface {
	Create(ctx context.Context, l *LabResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabResult, error)
	Update(ctx context.Context, l *LabResult) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, f Filter, limit, offset int) ([]*LabResult, int, error)
	// List returns results across patients for the laboratory work list.
	List(ctx context.Context, f Filter, limit, offset int) ([]*LabResult, int, error)
}

type ImagingRepository interface {
	Create(ctx context.Context, r *ImagingResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*ImagingResult, error)
	Update(ctx context.Context, r *ImagingResult) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, f Filter, limit, offset int) ([]*ImagingResult, int, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*ImagingResult, int, error)
}
