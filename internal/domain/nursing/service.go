package nursing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

type Service struct {
	io          IORepository
	assessments AssessmentRepository
	fdar        FDARRepository
	pub         realtime.Publisher
	now         func() time.Time
}

func NewService(io IORepository, assessments AssessmentRepository, fdar FDARRepository, pub realtime.Publisher) *Service {
	return &Service{io: io, assessments: assessments, fdar: fdar, pub: pub, now: time.Now}
}

func (s *Service) publish(ctx context.Context, table, op string, id, patientID uuid.UUID) {
	if s.pub == nil {
		return
	}
	_ = s.pub.Publish(ctx, realtime.Change{Table: table, Op: op, RecordID: id.String(), PatientID: patientID.String()})
}

// -- Intake/Output --

func (s *Service) RecordIO(ctx context.Context, r *IORecord) error {
	if err := r.Validate(s.now()); err != nil {
		return err
	}
	if err := s.io.Create(ctx, r); err != nil {
		return fmt.Errorf("record intake/output: %w", err)
	}
	s.publish(ctx, "intake_output", realtime.OpInsert, r.ID, r.PatientID)
	return nil
}

func (s *Service) GetIO(ctx context.Context, id uuid.UUID) (*IORecord, error) {
	return s.io.GetByID(ctx, id)
}

func checkIOFilter(f IOFilter) error {
	if f.Type != "" && f.Type != IOTypeIntake && f.Type != IOTypeOutput {
		return apperr.Validation("type", "must be intake or output")
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.To.After(f.From) {
		return apperr.Validation("to", "must be after from")
	}
	return nil
}

func (s *Service) ListIO(ctx context.Context, patientID uuid.UUID, f IOFilter, limit, offset int) ([]*IORecord, int, error) {
	if err := checkIOFilter(f); err != nil {
		return nil, 0, err
	}
	return s.io.ListByPatient(ctx, patientID, f, limit, offset)
}

// IOSummary totals the records in the window of f. It is recomputed from
// the raw records on every call.
func (s *Service) IOSummary(ctx context.Context, patientID uuid.UUID, f IOFilter) (*IOSummary, error) {
	f.Type = ""
	if err := checkIOFilter(f); err != nil {
		return nil, err
	}
	records, err := s.io.All(ctx, patientID, f)
	if err != nil {
		return nil, err
	}
	sum := Summarize(patientID, records)
	if !f.From.IsZero() {
		sum.From = &f.From
	}
	if !f.To.IsZero() {
		sum.To = &f.To
	}
	return sum, nil
}

func (s *Service) DeleteIO(ctx context.Context, id uuid.UUID) error {
	r, err := s.io.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.io.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "intake_output", realtime.OpDelete, id, r.PatientID)
	return nil
}

// -- Assessments --

func (s *Service) CreateAssessment(ctx context.Context, a *Assessment) error {
	if err := a.Validate(s.now()); err != nil {
		return err
	}
	if err := s.assessments.Create(ctx, a); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	s.publish(ctx, "nursing_assessments", realtime.OpInsert, a.ID, a.PatientID)
	return nil
}

func (s *Service) GetAssessment(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return s.assessments.GetByID(ctx, id)
}

func (s *Service) ListAssessments(ctx context.Context, patientID uuid.UUID, assessmentType string, limit, offset int) ([]*Assessment, int, error) {
	if assessmentType != "" && !validAssessmentType(assessmentType) {
		return nil, 0, apperr.Validation("assessment_type", "unknown assessment type %q", assessmentType)
	}
	return s.assessments.ListByPatient(ctx, patientID, assessmentType, limit, offset)
}

func (s *Service) DeleteAssessment(ctx context.Context, id uuid.UUID) error {
	a, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.assessments.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "nursing_assessments", realtime.OpDelete, id, a.PatientID)
	return nil
}

// -- FDAR notes --

func (s *Service) CreateFDAR(ctx context.Context, n *FDARNote) error {
	if err := n.Validate(s.now()); err != nil {
		return err
	}
	if err := s.fdar.Create(ctx, n); err != nil {
		return fmt.Errorf("create fdar note: %w", err)
	}
	s.publish(ctx, "fdar_notes", realtime.OpInsert, n.ID, n.PatientID)
	return nil
}

func (s *Service) GetFDAR(ctx context.Context, id uuid.UUID) (*FDARNote, error) {
	return s.fdar.GetByID(ctx, id)
}

func (s *Service) ListFDAR(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*FDARNote, int, error) {
	return s.fdar.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) DeleteFDAR(ctx context.Context, id uuid.UUID) error {
	n, err := s.fdar.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.fdar.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "fdar_notes", realtime.OpDelete, id, n.PatientID)
	return nil
}
