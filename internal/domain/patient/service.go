package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/domain/vitals"
	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/db"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

const table = "patients"

// VitalsRecorder records the admission snapshot.
type VitalsRecorder interface {
	Record(ctx context.Context, patientID uuid.UUID, r vitals.Reading, recordedBy *uuid.UUID) (*vitals.Snapshot, error)
}

// PhysicianDirectory answers whether a staff id may be an attending physician.
type PhysicianDirectory interface {
	IsActiveDoctor(ctx context.Context, staffID uuid.UUID) (bool, error)
}

type Service struct {
	patients   PatientRepository
	vitals     VitalsRecorder
	physicians PhysicianDirectory
	tx         db.TxRunner
	pub        realtime.Publisher
	now        func() time.Time
}

func NewService(patients PatientRepository, vitals VitalsRecorder, physicians PhysicianDirectory, tx db.TxRunner, pub realtime.Publisher) *Service {
	if tx == nil {
		tx = db.NoTx
	}
	return &Service{patients: patients, vitals: vitals, physicians: physicians, tx: tx, pub: pub, now: time.Now}
}

func (s *Service) publish(ctx context.Context, op string, id uuid.UUID) {
	if s.pub == nil {
		return
	}
	_ = s.pub.Publish(ctx, realtime.Change{Table: table, Op: op, RecordID: id.String(), PatientID: id.String()})
}

// Admission is the result of Admit.
type Admission struct {
	Patient       *Patient         `json:"patient"`
	InitialVitals *vitals.Snapshot `json:"initial_vitals,omitempty"`
}

// Admit creates the patient and, when initial is set, the first vitals
// snapshot in the same transaction.
func (s *Service) Admit(ctx context.Context, p *Patient, initial *vitals.Reading, by *uuid.UUID) (*Admission, error) {
	p.Status = StatusActive
	if err := p.Normalize(s.now()); err != nil {
		return nil, err
	}
	if initial != nil {
		if err := initial.Validate(); err != nil {
			return nil, err
		}
	}
	if p.AttendingPhysicianID != nil {
		if err := s.checkPhysician(ctx, *p.AttendingPhysicianID); err != nil {
			return nil, err
		}
	}

	out := &Admission{Patient: p}
	err := s.tx(ctx, func(ctx context.Context) error {
		if err := s.patients.Create(ctx, p); err != nil {
			return err
		}
		if initial == nil || s.vitals == nil {
			return nil
		}
		snap, err := s.vitals.Record(ctx, p.ID, *initial, by)
		if err != nil {
			return fmt.Errorf("record admission vitals: %w", err)
		}
		out.InitialVitals = snap
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.OpInsert, p.ID)
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// Exists reports whether id names a patient record.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.patients.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Lookup finds a patient by hospital or patient number.
func (s *Service) Lookup(ctx context.Context, number string) (*Patient, error) {
	if number == "" {
		return nil, apperr.Required("number")
	}
	return s.patients.GetByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, apperr.Validation("status", "must be active, archived or all")
	}
	return s.patients.List(ctx, f, limit, offset)
}

// Update replaces the chart fields of a patient. Status and attending
// physician have their own operations and are kept as stored.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in *Patient) (*Patient, error) {
	cur, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ID = cur.ID
	in.Status = cur.Status
	in.AttendingPhysicianID = cur.AttendingPhysicianID
	in.CreatedAt = cur.CreatedAt
	if in.AdmittedAt.IsZero() {
		in.AdmittedAt = cur.AdmittedAt
	}
	if err := in.Normalize(s.now()); err != nil {
		return nil, err
	}
	if err := s.patients.Update(ctx, in); err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.OpUpdate, id)
	return in, nil
}

// SetStatus moves a patient between active and archived. Archived patients
// keep all of their records.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Patient, error) {
	if !ValidStatus(status) {
		return nil, apperr.Validation("status", "must be active or archived")
	}
	if err := s.patients.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.OpUpdate, id)
	return s.patients.GetByID(ctx, id)
}

func (s *Service) checkPhysician(ctx context.Context, staffID uuid.UUID) error {
	if s.physicians == nil {
		return nil
	}
	ok, err := s.physicians.IsActiveDoctor(ctx, staffID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("attending_physician_id", "must reference an active doctor")
	}
	return nil
}

// AssignAttending sets the attending physician. A nil id clears it.
func (s *Service) AssignAttending(ctx context.Context, id uuid.UUID, physicianID *uuid.UUID) (*Patient, error) {
	if physicianID != nil {
		if err := s.checkPhysician(ctx, *physicianID); err != nil {
			return nil, err
		}
	}
	if err := s.patients.SetAttending(ctx, id, physicianID); err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.OpUpdate, id)
	return s.patients.GetByID(ctx, id)
}

// Delete removes the patient together with every record of the chart.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.patients.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.OpDelete, id)
	return nil
}
