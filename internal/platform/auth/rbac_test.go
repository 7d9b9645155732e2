package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func contextWithRole(role Role) (echo.Context, *httptest.ResponseRecorder, *Session) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	s := NewSession(uuid.New(), role, "ACC1")
	req = req.WithContext(WithSession(req.Context(), s))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec, s
}

func TestRequireCapability_Allowed(t *testing.T) {
	c, rec, _ := contextWithRole(RoleStaff)
	if err := RequireCapability(ManageUsers)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireCapability_PatientForbidden(t *testing.T) {
	for _, want := range []Capability{ManageStaff, ManageUsers, ManageClinicalOrders, ManageLabs, ManageImaging} {
		c, _, _ := contextWithRole(RolePatient)
		err := RequireCapability(want)(okHandler)(c)
		httpErr, ok := err.(*echo.HTTPError)
		if !ok || httpErr.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403 for patient, got %v", want, err)
		}
	}
}

func TestRequireCapability_AnyOf(t *testing.T) {
	c, _, _ := contextWithRole(RolePatient)
	if err := RequireCapability(ViewAllPatients, ViewOwnRecord)(okHandler)(c); err != nil {
		t.Fatalf("expected patient to pass view-own gate, got %v", err)
	}
}

func TestRequireCapability_NoSession(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	err := RequireCapability(Message)(okHandler)(c)
	if httpErr, ok := err.(*echo.HTTPError); !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestRequirePatientAccess(t *testing.T) {
	c, _, s := contextWithRole(RolePatient)
	own := uuid.New()
	s.PatientID = &own

	if err := RequirePatientAccess(c, own); err != nil {
		t.Errorf("patient should read own record: %v", err)
	}
	if err := RequirePatientAccess(c, uuid.New()); err == nil {
		t.Error("patient must not read another patient's record")
	}

	c, _, _ = contextWithRole(RoleDoctor)
	if err := RequirePatientAccess(c, uuid.New()); err != nil {
		t.Errorf("doctor should read any record: %v", err)
	}
}

func TestSessionHandler(t *testing.T) {
	c, rec, _ := contextWithRole(RolePatient)
	if err := SessionHandler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
