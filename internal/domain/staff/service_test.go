package staff

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

type mockMemberRepo struct {
	data map[uuid.UUID]*Member
}

func (m *mockMemberRepo) Create(_ context.Context, mem *Member) error {
	mem.ID = uuid.New()
	mem.CreatedAt = time.Now()
	cp := *mem
	m.data[mem.ID] = &cp
	return nil
}

func (m *mockMemberRepo) GetByID(_ context.Context, id uuid.UUID) (*Member, error) {
	mem, ok := m.data[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *mem
	return &cp, nil
}

func (m *mockMemberRepo) Update(_ context.Context, mem *Member) error {
	if _, ok := m.data[mem.ID]; !ok {
		return apperr.ErrNotFound
	}
	cp := *mem
	m.data[mem.ID] = &cp
	return nil
}

func (m *mockMemberRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.data[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.data, id)
	return nil
}

func (m *mockMemberRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Member, int, error) {
	var out []*Member
	for _, mem := range m.data {
		if f.Kind != "" && mem.Kind != f.Kind {
			continue
		}
		if f.ActiveOnly && !mem.Active {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(mem.LastName), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, mem)
	}
	return out, len(out), nil
}

func newTestService() (*Service, *realtime.Recorder) {
	rec := &realtime.Recorder{}
	return NewService(&mockMemberRepo{data: make(map[uuid.UUID]*Member)}, rec), rec
}

func doctor() *Member {
	return &Member{Kind: "Doctors", FirstName: "Maria", LastName: "Santos", Specialization: "Internal Medicine", LicenseNumber: "PRC-0112233"}
}

func TestMember_Validate(t *testing.T) {
	tests := []struct {
		name    string
		member  Member
		wantErr bool
	}{
		{"doctor", *doctor(), false},
		{"nurse without license", Member{Kind: KindNurse, FirstName: "Ana", LastName: "Cruz"}, false},
		{"medtech without license", Member{Kind: KindMedTech, FirstName: "Ben", LastName: "Lim"}, true},
		{"unknown kind", Member{Kind: "janitor", FirstName: "A", LastName: "B"}, true},
		{"missing last name", Member{Kind: KindNurse, FirstName: "Ana"}, true},
		{"bad email", Member{Kind: KindNurse, FirstName: "Ana", LastName: "Cruz", Email: "not-an-email"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.member
			err := m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_Create(t *testing.T) {
	svc, rec := newTestService()
	m := doctor()
	m.Email = " M.Santos@Hospital.ORG "
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Kind != KindDoctor || !m.Active || m.Email != "m.santos@hospital.org" {
		t.Errorf("member not normalised: %+v", m)
	}
	if m.FullName() != "Dr. Maria Santos" {
		t.Errorf("unexpected full name %q", m.FullName())
	}
	if ch, ok := rec.Last(); !ok || ch.Table != table || ch.Op != realtime.OpInsert {
		t.Errorf("unexpected change %+v", ch)
	}
}

func TestService_Update_KeepsKind(t *testing.T) {
	svc, _ := newTestService()
	m := doctor()
	_ = svc.Create(context.Background(), m)

	out, err := svc.Update(context.Background(), m.ID, &Member{FirstName: "Maria", LastName: "Santos-Reyes", LicenseNumber: "PRC-0112233", Active: true})
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != KindDoctor || out.LastName != "Santos-Reyes" {
		t.Errorf("unexpected update %+v", out)
	}
	_, err = svc.Update(context.Background(), m.ID, &Member{Kind: KindNurse, FirstName: "Maria", LastName: "Santos"})
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error moving directories, got %v", err)
	}
}

func TestService_IsActiveDoctor(t *testing.T) {
	svc, _ := newTestService()
	d := doctor()
	_ = svc.Create(context.Background(), d)
	n := &Member{Kind: KindNurse, FirstName: "Ana", LastName: "Cruz"}
	_ = svc.Create(context.Background(), n)

	check := func(id uuid.UUID, want bool) {
		t.Helper()
		got, err := svc.IsActiveDoctor(context.Background(), id)
		if err != nil || got != want {
			t.Errorf("IsActiveDoctor(%s) = %v, %v; want %v", id, got, err, want)
		}
	}
	check(d.ID, true)
	check(n.ID, false)
	check(uuid.New(), false)

	if _, err := svc.SetActive(context.Background(), d.ID, false); err != nil {
		t.Fatal(err)
	}
	check(d.ID, false)
}

func TestService_List_ByKind(t *testing.T) {
	svc, _ := newTestService()
	_ = svc.Create(context.Background(), doctor())
	_ = svc.Create(context.Background(), &Member{Kind: KindNurse, FirstName: "Ana", LastName: "Cruz"})
	_ = svc.Create(context.Background(), &Member{Kind: KindRadTech, FirstName: "Leo", LastName: "Tan", LicenseNumber: "RT-9"})

	_, total, _ := svc.List(context.Background(), Filter{Kind: KindNurse}, 20, 0)
	if total != 1 {
		t.Errorf("expected 1 nurse, got %d", total)
	}
	_, total, _ = svc.List(context.Background(), Filter{}, 20, 0)
	if total != 3 {
		t.Errorf("expected 3 members, got %d", total)
	}
}

func TestService_Delete(t *testing.T) {
	svc, _ := newTestService()
	m := doctor()
	_ = svc.Create(context.Background(), m)
	if err := svc.Delete(context.Background(), m.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), m.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if ok, _ := svc.Exists(context.Background(), m.ID); ok {
		t.Error("expected member to be gone")
	}
}
