package nursing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IOFilter narrows intake/output lists. Zero times are open bounds.
type IOFilter struct {
	Type string
	From time.Time
	To   time.Time
}

type IORepository interface {
	Create(ctx context.Context, r *IORecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*IORecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, f IOFilter, limit, offset int) ([]*IORecord, int, error)
	// All returns every record matching f, for totals.
	All(ctx context.Context, patientID uuid.UUID, f IOFilter) ([]*IORecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AssessmentRepository interface {
	Create(ctx context.Context, a *Assessment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, assessmentType string, limit, offset int) ([]*Assessment, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type FDARRepository interface {
	Create(ctx context.Context, n *FDARNote) error
	GetByID(ctx context.Context, id uuid.UUID) (*FDARNote, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*FDARNote, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
