package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/auth"
)

type mockUserRepo struct {
	data map[uuid.UUID]*User
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.data {
		if existing.Login == u.Login {
			return apperr.Conflict("a record with the same account_number already exists")
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	cp := *u
	m.data[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.data[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByLogin(_ context.Context, login string) (*User, error) {
	for _, u := range m.data {
		if u.Login == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *mockUserRepo) SetPassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := m.data[id]
	if !ok {
		return apperr.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserRepo) TouchSignIn(_ context.Context, id uuid.UUID, at time.Time) error {
	u, ok := m.data[id]
	if !ok {
		return apperr.ErrNotFound
	}
	u.LastSignInAt = &at
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.data[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.data, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, f Filter, limit, offset int) ([]*User, int, error) {
	var out []*User
	for _, u := range m.data {
		if f.Role != "" && string(u.Role) != f.Role {
			continue
		}
		if f.Search != "" && !strings.Contains(u.Login, strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func always(ok bool) ExistsFunc {
	return func(context.Context, uuid.UUID) (bool, error) { return ok, nil }
}

type fixture struct {
	svc      *Service
	sessions *auth.MemoryStore
	tokens   *auth.TokenIssuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sessions := auth.NewMemoryStore(0)
	t.Cleanup(sessions.Close)
	tokens := auth.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	svc := NewService(&mockUserRepo{data: make(map[uuid.UUID]*User)}, tokens, sessions,
		Links{Patient: always(true), Staff: always(true)},
		Options{EmailDomain: "careconnect.local", BcryptCost: bcrypt.MinCost})
	return &fixture{svc: svc, sessions: sessions, tokens: tokens}
}

func (f *fixture) createStaff(t *testing.T, number, password string) *User {
	t.Helper()
	u, err := f.svc.CreateUser(context.Background(), NewUser{AccountNumber: number, Role: "staff", Password: password})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestService_CreateUser(t *testing.T) {
	f := newFixture(t)
	u := f.createStaff(t, "jd", "correct-horse")
	if u.AccountNumber != "JD" || u.Login != "jd@careconnect.local" || u.Role != auth.RoleStaff {
		t.Errorf("unexpected user %+v", u)
	}
	if u.PasswordHash == "correct-horse" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct-horse")) != nil {
		t.Error("expected a bcrypt hash of the password")
	}

	_, err := f.svc.CreateUser(context.Background(), NewUser{AccountNumber: "JD", Role: "staff", Password: "another-one"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected conflict for duplicate account, got %v", err)
	}
}

func TestService_CreateUser_Validation(t *testing.T) {
	f := newFixture(t)
	pid := uuid.New()
	tests := []struct {
		name string
		in   NewUser
	}{
		{"unknown role", NewUser{AccountNumber: "X1", Role: "admin", Password: "12345678"}},
		{"short password", NewUser{AccountNumber: "X1", Role: "staff", Password: "1234"}},
		{"patient without link", NewUser{AccountNumber: "P1", Role: "patient", Password: "12345678"}},
		{"doctor with patient link", NewUser{AccountNumber: "D1", Role: "doctor", Password: "12345678", PatientID: &pid}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.CreateUser(context.Background(), tt.in); !apperr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_CreateUser_UnknownLinkedRecord(t *testing.T) {
	f := newFixture(t)
	f.svc.links.Patient = always(false)
	pid := uuid.New()
	_, err := f.svc.CreateUser(context.Background(), NewUser{AccountNumber: "P1", Role: "patient", Password: "12345678", PatientID: &pid})
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestService_SignIn(t *testing.T) {
	f := newFixture(t)
	u := f.createStaff(t, "JD", "correct-horse")

	res, err := f.svc.SignIn(context.Background(), "jd", "correct-horse")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if res.Session.UserID != u.ID || !res.Session.Capabilities.CanManageUsers {
		t.Errorf("unexpected session %+v", res.Session)
	}
	parsed, err := f.tokens.Parse(res.Token)
	if err != nil || parsed.TokenID != res.Session.TokenID {
		t.Fatalf("token does not round-trip: %v", err)
	}
	if ok, _ := f.sessions.Active(context.Background(), res.Session.TokenID); !ok {
		t.Error("expected session to be stored")
	}
	if res.User.LastSignInAt == nil {
		t.Error("expected last sign-in time")
	}

	if err := f.svc.SignOut(context.Background(), res.Session); err != nil {
		t.Fatal(err)
	}
	if ok, _ := f.sessions.Active(context.Background(), res.Session.TokenID); ok {
		t.Error("expected session to be revoked")
	}
}

func TestService_SignIn_Rejected(t *testing.T) {
	f := newFixture(t)
	f.createStaff(t, "JD", "correct-horse")

	if _, err := f.svc.SignIn(context.Background(), "JD", "wrong-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials, got %v", err)
	}
	if _, err := f.svc.SignIn(context.Background(), "NOBODY", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials for unknown account, got %v", err)
	}
	if f.sessions.Count() != 0 {
		t.Error("expected no sessions")
	}
}

func TestService_UpdatePassword(t *testing.T) {
	f := newFixture(t)
	f.createStaff(t, "JD", "correct-horse")
	res, _ := f.svc.SignIn(context.Background(), "JD", "correct-horse")

	if err := f.svc.UpdatePassword(context.Background(), res.Session, "wrong", "battery-staple"); !apperr.IsValidation(err) {
		t.Errorf("expected validation error for wrong current password, got %v", err)
	}
	if err := f.svc.UpdatePassword(context.Background(), res.Session, "correct-horse", "short"); !apperr.IsValidation(err) {
		t.Errorf("expected validation error for short password, got %v", err)
	}
	if err := f.svc.UpdatePassword(context.Background(), res.Session, "correct-horse", "battery-staple"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.SignIn(context.Background(), "JD", "battery-staple"); err != nil {
		t.Errorf("expected new password to work: %v", err)
	}
}

func TestService_ResetPassword_RevokesSessions(t *testing.T) {
	f := newFixture(t)
	u := f.createStaff(t, "N1", "first-password")
	res, _ := f.svc.SignIn(context.Background(), "N1", "first-password")

	if err := f.svc.ResetPassword(context.Background(), u.ID, "second-password"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := f.sessions.Active(context.Background(), res.Session.TokenID); ok {
		t.Error("expected existing session to be revoked")
	}
	if _, err := f.svc.SignIn(context.Background(), "N1", "first-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("expected old password to be rejected")
	}
}

func TestService_DeleteUser(t *testing.T) {
	f := newFixture(t)
	admin := f.createStaff(t, "ADMIN", "admin-password")
	other := f.createStaff(t, "N1", "nurse-password")
	actor := auth.NewSession(admin.ID, auth.RoleStaff, "ADMIN")

	if err := f.svc.DeleteUser(context.Background(), actor, admin.ID); !apperr.IsValidation(err) {
		t.Errorf("expected self-delete to be rejected, got %v", err)
	}
	if err := f.svc.DeleteUser(context.Background(), actor, other.ID); err != nil {
		t.Fatal(err)
	}
	if ok, _ := f.svc.UserExists(context.Background(), other.ID); ok {
		t.Error("expected account to be gone")
	}
}
