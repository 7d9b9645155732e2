package vitals

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SnapshotRepository interface {
	// Insert stores s and sets its ID and per-patient Version. Versions
	// only grow; a deleted snapshot's number is not reused.
	Insert(ctx context.Context, s *Snapshot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	// Latest returns the snapshot with the greatest recorded_at.
	Latest(ctx context.Context, patientID uuid.UUID) (*Snapshot, error)
	// ListByPatient returns newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Snapshot, int, error)
	// Series returns snapshots recorded at or after since, oldest first.
	Series(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*Snapshot, error)
	Count(ctx context.Context, patientID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
