package mar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

type mockOrderRepo struct {
	records map[uuid.UUID]*Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{records: make(map[uuid.UUID]*Order)}
}

func clone(o *Order) *Order {
	c := *o
	c.Doses = append([]Dose(nil), o.Doses...)
	return &c
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	o.ID = uuid.New()
	o.Version = 1
	o.CreatedAt = time.Now()
	m.records[o.ID] = clone(o)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := m.records[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return clone(o), nil
}

func (m *mockOrderRepo) Update(_ context.Context, o *Order, expectedVersion int) error {
	cur, ok := m.records[o.ID]
	if !ok || cur.Version != expectedVersion {
		return apperr.Conflict("stale version")
	}
	o.Version = expectedVersion + 1
	m.records[o.ID] = clone(o)
	return nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockOrderRepo) ListByPatient(_ context.Context, patientID uuid.UUID, f OrderFilter, limit, offset int) ([]*Order, int, error) {
	var out []*Order
	for _, o := range m.records {
		if o.PatientID != patientID || (f.Status != "" && o.Status() != f.Status) {
			continue
		}
		out = append(out, clone(o))
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockOrderRepo, *realtime.Recorder) {
	repo := newMockOrderRepo()
	rec := &realtime.Recorder{}
	return NewService(repo, rec, NewMetrics(nil)), repo, rec
}

func createOrder(t *testing.T, svc *Service, times ...string) *Order {
	t.Helper()
	o, err := svc.CreateOrder(context.Background(), NewOrderInput{
		PatientID: uuid.New(), MedicationName: "Paracetamol", Dose: "500mg", Route: "PO", ScheduledTimes: times,
	}, nil)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return o
}

func TestService_CreatePublishesChange(t *testing.T) {
	svc, _, rec := newTestService()
	o := createOrder(t, svc, "08:00")

	change, ok := rec.Last()
	if !ok {
		t.Fatal("expected a published change")
	}
	if change.Table != "mar_orders" || change.Op != realtime.OpInsert || change.RecordID != o.ID.String() {
		t.Errorf("unexpected change %+v", change)
	}
	if change.PatientID != o.PatientID.String() {
		t.Error("expected change to carry the patient id")
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc, repo, _ := newTestService()
	_, err := svc.CreateOrder(context.Background(), NewOrderInput{PatientID: uuid.New(), Dose: "1", Route: "PO"}, nil)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.records) != 0 {
		t.Error("nothing should be stored on validation failure")
	}
}

func TestService_AdministerPersistsAndBumpsVersion(t *testing.T) {
	svc, repo, _ := newTestService()
	o := createOrder(t, svc, "08:00", "20:00")

	got, err := svc.Administer(context.Background(), o.ID, AdministerInput{Index: 0, Given: true, Nurse: "JD", Version: 1})
	if err != nil {
		t.Fatalf("Administer: %v", err)
	}
	if got.Version != 2 {
		t.Errorf("expected version 2, got %d", got.Version)
	}
	stored := repo.records[o.ID]
	if !stored.Doses[0].Given || stored.Doses[0].Nurse != "JD" || stored.Doses[0].AdministeredAt == nil {
		t.Errorf("dose not persisted: %+v", stored.Doses[0])
	}
}

func TestService_AdministerStaleVersion(t *testing.T) {
	svc, repo, _ := newTestService()
	o := createOrder(t, svc, "08:00", "20:00")

	if _, err := svc.Administer(context.Background(), o.ID, AdministerInput{Index: 0, Given: true, Nurse: "JD", Version: 1}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Administer(context.Background(), o.ID, AdministerInput{Index: 1, Given: true, Nurse: "AB", Version: 1})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict for stale version, got %v", err)
	}
	if repo.records[o.ID].Doses[1].Given {
		t.Error("stale write must not be applied")
	}
}

func TestService_AdministerBlankInitialsLeavesStoreUnchanged(t *testing.T) {
	svc, repo, rec := newTestService()
	o := createOrder(t, svc, "08:00")
	published := len(rec.Changes)

	_, err := svc.Administer(context.Background(), o.ID, AdministerInput{Index: 0, Given: true})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.records[o.ID].Doses[0].Given || repo.records[o.ID].Version != 1 {
		t.Error("stored order must be unchanged")
	}
	if len(rec.Changes) != published {
		t.Error("no change should be published")
	}
}

func TestService_DeleteCompleted(t *testing.T) {
	svc, repo, _ := newTestService()
	o := createOrder(t, svc, "08:00")
	if _, err := svc.Administer(context.Background(), o.ID, AdministerInput{Index: 0, Given: true, Nurse: "JD"}); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteOrder(context.Background(), o.ID, false); !errors.Is(err, ErrOrderCompleted) {
		t.Fatalf("expected ErrOrderCompleted, got %v", err)
	}
	if err := svc.DeleteOrder(context.Background(), o.ID, true); err != nil {
		t.Fatalf("forced delete: %v", err)
	}
	if _, ok := repo.records[o.ID]; ok {
		t.Error("expected order removed")
	}
}

func TestService_DeleteNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.DeleteOrder(context.Background(), uuid.New(), false); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_ListStatusFilter(t *testing.T) {
	svc, _, _ := newTestService()
	if _, _, err := svc.ListOrders(context.Background(), uuid.New(), OrderFilter{Status: "bogus"}, 20, 0); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseIndex(t *testing.T) {
	if i, err := ParseIndex("2"); err != nil || i != 2 {
		t.Errorf("ParseIndex(2) = %d, %v", i, err)
	}
	if _, err := ParseIndex("x"); !apperr.IsValidation(err) {
		t.Error("expected validation error")
	}
}
