package patient

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/domain/vitals"
	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/db"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

type mockPatientRepo struct {
	records map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{records: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	for _, existing := range m.records {
		if existing.HospitalNumber == p.HospitalNumber {
			return apperr.Conflict("a record with the same hospital_number already exists")
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	c := *p
	m.records[p.ID] = &c
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.records[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *mockPatientRepo) GetByNumber(_ context.Context, number string) (*Patient, error) {
	for _, p := range m.records {
		if p.HospitalNumber == number || p.PatientNumber == number {
			c := *p
			return &c, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.records[p.ID]; !ok {
		return apperr.ErrNotFound
	}
	c := *p
	m.records[p.ID] = &c
	return nil
}

func (m *mockPatientRepo) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	p, ok := m.records[id]
	if !ok {
		return apperr.ErrNotFound
	}
	p.Status = status
	return nil
}

func (m *mockPatientRepo) SetAttending(_ context.Context, id uuid.UUID, physicianID *uuid.UUID) error {
	p, ok := m.records[id]
	if !ok {
		return apperr.ErrNotFound
	}
	p.AttendingPhysicianID = physicianID
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.records {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.LastName), strings.ToLower(f.Search)) {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	return out, len(out), nil
}

type fakeVitals struct {
	recorded []uuid.UUID
	err      error
}

func (f *fakeVitals) Record(_ context.Context, patientID uuid.UUID, r vitals.Reading, by *uuid.UUID) (*vitals.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.recorded = append(f.recorded, patientID)
	return &vitals.Snapshot{ID: uuid.New(), PatientID: patientID, Version: len(f.recorded)}, nil
}

type fakeDirectory map[uuid.UUID]bool

func (d fakeDirectory) IsActiveDoctor(_ context.Context, id uuid.UUID) (bool, error) {
	return d[id], nil
}

func newTestService() (*Service, *mockPatientRepo, *fakeVitals, fakeDirectory) {
	repo := newMockPatientRepo()
	vs := &fakeVitals{}
	dir := fakeDirectory{}
	return NewService(repo, vs, dir, db.NoTx, &realtime.Recorder{}), repo, vs, dir
}

func TestAdmit_WithInitialVitals(t *testing.T) {
	svc, repo, vs, _ := newTestService()
	hr := 80
	out, err := svc.Admit(context.Background(), validPatient(), &vitals.Reading{HeartRate: &hr}, nil)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if out.InitialVitals == nil || out.InitialVitals.PatientID != out.Patient.ID {
		t.Fatalf("expected initial snapshot for the new patient, got %+v", out.InitialVitals)
	}
	if len(repo.records) != 1 || len(vs.recorded) != 1 {
		t.Errorf("expected one patient and one snapshot, got %d and %d", len(repo.records), len(vs.recorded))
	}
}

func TestAdmit_InvalidVitalsRejectedBeforeWrite(t *testing.T) {
	svc, repo, _, _ := newTestService()
	pain := 14
	_, err := svc.Admit(context.Background(), validPatient(), &vitals.Reading{PainScale: &pain}, nil)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.records) != 0 {
		t.Error("patient must not be created")
	}
}

func TestAdmit_VitalsFailurePropagates(t *testing.T) {
	svc, _, vs, _ := newTestService()
	vs.err = errors.New("store down")
	hr := 80
	if _, err := svc.Admit(context.Background(), validPatient(), &vitals.Reading{HeartRate: &hr}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestAdmit_DuplicateHospitalNumber(t *testing.T) {
	svc, _, _, _ := newTestService()
	if _, err := svc.Admit(context.Background(), validPatient(), nil, nil); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Admit(context.Background(), validPatient(), nil, nil)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdate_KeepsStatusAndAttending(t *testing.T) {
	svc, _, _, dir := newTestService()
	ctx := context.Background()
	doc := uuid.New()
	dir[doc] = true

	out, err := svc.Admit(ctx, validPatient(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	id := out.Patient.ID
	if _, err := svc.AssignAttending(ctx, id, &doc); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetStatus(ctx, id, StatusArchived); err != nil {
		t.Fatal(err)
	}

	in := validPatient()
	in.Diagnosis = "Community-acquired pneumonia"
	in.Status = StatusActive
	got, err := svc.Update(ctx, id, in)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusArchived || got.AttendingPhysicianID == nil || *got.AttendingPhysicianID != doc {
		t.Errorf("status and attending must be preserved: %+v", got)
	}
	if got.Diagnosis != "Community-acquired pneumonia" {
		t.Errorf("expected diagnosis updated, got %q", got.Diagnosis)
	}
}

func TestAssignAttending_RequiresDoctor(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	out, err := svc.Admit(ctx, validPatient(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	nurse := uuid.New()
	if _, err := svc.AssignAttending(ctx, out.Patient.ID, &nurse); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, err := svc.AssignAttending(ctx, out.Patient.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.AttendingPhysicianID != nil {
		t.Error("expected attending cleared")
	}
}

func TestList_StatusFilter(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	a, _ := svc.Admit(ctx, validPatient(), nil, nil)
	b := validPatient()
	b.HospitalNumber = "H2025002"
	if _, err := svc.Admit(ctx, b, nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetStatus(ctx, a.Patient.ID, StatusArchived); err != nil {
		t.Fatal(err)
	}

	active, total, err := svc.List(ctx, ListFilter{Status: StatusActive}, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || active[0].HospitalNumber != "H2025002" {
		t.Errorf("expected only the active patient, got %d", total)
	}
	if _, _, err := svc.List(ctx, ListFilter{Status: "gone"}, 20, 0); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Admit(ctx, validPatient(), nil, nil); err != nil {
		t.Fatal(err)
	}
	p, err := svc.Lookup(ctx, "P-0001")
	if err != nil || p.HospitalNumber != "H2025001" {
		t.Fatalf("Lookup = %+v, %v", p, err)
	}
	if _, err := svc.Lookup(ctx, "H9999999"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
