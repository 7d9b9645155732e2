package staff

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect/internal/platform/auth"
)

func newTestServer(role auth.Role) (*echo.Echo, *Service) {
	svc, _ := newTestService()
	e := echo.New()
	api := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := auth.NewSession(uuid.New(), role, "S-0001")
			c.SetRequest(c.Request().WithContext(auth.WithSession(c.Request().Context(), s)))
			return next(c)
		}
	})
	NewHandler(svc).RegisterRoutes(api)
	return e, svc
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateAndList(t *testing.T) {
	e, _ := newTestServer(auth.RoleStaff)
	rec := do(e, http.MethodPost, "/api/v1/staff", `{"kind":"doctor","first_name":"Jose","last_name":"Rizal","license_number":"PRC-1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(e, http.MethodGet, "/api/v1/staff?kind=doctors", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("unexpected list %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodGet, "/api/v1/staff?kind=janitors", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown kind, got %d", rec.Code)
	}
}

func TestHandler_DoctorCannotManageStaff(t *testing.T) {
	e, _ := newTestServer(auth.RoleDoctor)
	rec := do(e, http.MethodPost, "/api/v1/staff", `{"kind":"nurse","first_name":"A","last_name":"B"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/v1/staff", ""); rec.Code != http.StatusOK {
		t.Errorf("expected doctors to read the directory, got %d", rec.Code)
	}
}

func TestHandler_PatientCannotBrowseStaff(t *testing.T) {
	e, _ := newTestServer(auth.RolePatient)
	if rec := do(e, http.MethodGet, "/api/v1/staff", ""); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestHandler_SetActiveAndDelete(t *testing.T) {
	e, svc := newTestServer(auth.RoleStaff)
	m := &Member{Kind: KindNurse, FirstName: "Ana", LastName: "Cruz"}
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	path := "/api/v1/staff/" + m.ID.String()
	if rec := do(e, http.MethodPut, path+"/active", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without active, got %d", rec.Code)
	}
	rec := do(e, http.MethodPut, path+"/active", `{"active":false}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"active":false`) {
		t.Errorf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodDelete, path, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without confirm, got %d", rec.Code)
	}
	if rec := do(e, http.MethodDelete, path+"?confirm=true", ""); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
