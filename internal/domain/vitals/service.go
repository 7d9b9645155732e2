package vitals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

const table = "vital_signs"

type Service struct {
	snaps SnapshotRepository
	pub   realtime.Publisher
	now   func() time.Time
}

func NewService(snaps SnapshotRepository, pub realtime.Publisher) *Service {
	return &Service{snaps: snaps, pub: pub, now: time.Now}
}

func (s *Service) publish(ctx context.Context, op string, snap *Snapshot) {
	if s.pub == nil {
		return
	}
	_ = s.pub.Publish(ctx, realtime.Change{
		Table:     table,
		Op:        op,
		RecordID:  snap.ID.String(),
		PatientID: snap.PatientID.String(),
	})
}

// Record inserts a new snapshot stamped with the server clock.
func (s *Service) Record(ctx context.Context, patientID uuid.UUID, r Reading, recordedBy *uuid.UUID) (*Snapshot, error) {
	snap, err := NewSnapshot(patientID, r, s.now(), recordedBy)
	if err != nil {
		return nil, err
	}
	if err := s.snaps.Insert(ctx, snap); err != nil {
		return nil, fmt.Errorf("record vitals: %w", err)
	}
	s.publish(ctx, realtime.OpInsert, snap)
	return snap, nil
}

// Revise records a correction of an earlier snapshot as a new snapshot.
// The earlier snapshot is kept unchanged.
func (s *Service) Revise(ctx context.Context, id uuid.UUID, r Reading, recordedBy *uuid.UUID) (*Snapshot, error) {
	prev, err := s.snaps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := NewSnapshot(prev.PatientID, prev.Revise(r), s.now(), recordedBy)
	if err != nil {
		return nil, err
	}
	snap.SupersedesID = &prev.ID
	if err := s.snaps.Insert(ctx, snap); err != nil {
		return nil, fmt.Errorf("revise vitals: %w", err)
	}
	s.publish(ctx, realtime.OpInsert, snap)
	return snap, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	return s.snaps.GetByID(ctx, id)
}

// Latest returns the patient's current vitals. apperr.ErrNotFound means
// nothing has been recorded yet.
func (s *Service) Latest(ctx context.Context, patientID uuid.UUID) (*Snapshot, error) {
	return s.snaps.Latest(ctx, patientID)
}

func (s *Service) History(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Snapshot, int, error) {
	return s.snaps.ListByPatient(ctx, patientID, limit, offset)
}

// Trend returns one measure over time. Fewer than two points is reported
// through Trend.Sufficient, not as an error.
func (s *Service) Trend(ctx context.Context, patientID uuid.UUID, measure string, since time.Time) (*Trend, error) {
	if !validMeasure(measure) {
		return nil, apperr.Validation("measure", "unknown measure %q", measure)
	}
	snaps, err := s.snaps.Series(ctx, patientID, since)
	if err != nil {
		return nil, err
	}
	return BuildTrend(patientID, measure, snaps)
}

// Delete removes one snapshot. Other snapshots are not touched.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	snap, err := s.snaps.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.snaps.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.OpDelete, snap)
	return nil
}
