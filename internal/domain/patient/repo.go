package patient

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows the patient work list. An empty Status means all.
type ListFilter struct {
	Status               string
	Department           string
	Search               string
	AttendingPhysicianID *uuid.UUID
}

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	// GetByNumber looks a patient up by hospital number or patient number.
	GetByNumber(ctx context.Context, number string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	SetAttending(ctx context.Context, id uuid.UUID, physicianID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error)
}
