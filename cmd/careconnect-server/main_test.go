package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/careconnect/careconnect/internal/config"
	"github.com/careconnect/careconnect/internal/platform/auth"
	"github.com/careconnect/careconnect/internal/platform/blobstore"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

func testDeps(t *testing.T) deps {
	t.Helper()
	sessions := auth.NewMemoryStore(0)
	t.Cleanup(sessions.Close)
	return deps{
		cfg: &config.Config{
			Env:                "development",
			AccountEmailDomain: "careconnect.local",
			SessionTTL:         time.Hour,
			CORSOrigins:        []string{"http://localhost:5173"},
		},
		logger:   zerolog.Nop(),
		tokens:   auth.NewTokenIssuer([]byte("test-signing-key-0123456789abcdef"), time.Hour),
		sessions: sessions,
		blobs:    blobstore.NewMemoryStore(),
		pub:      &realtime.Recorder{},
		hub:      realtime.NewHub(zerolog.Nop()),
		registry: prometheus.NewRegistry(),
	}
}

func newTestServer(t *testing.T) (*echo.Echo, deps) {
	d := testDeps(t)
	return newServer(d, newServices(d)), d
}

func bearerFor(t *testing.T, d deps, role auth.Role) string {
	t.Helper()
	s := auth.NewSession(uuid.New(), role, "ACCT-1")
	token, err := d.tokens.Issue(s)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func TestHealth(t *testing.T) {
	e, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRoutesRegistered(t *testing.T) {
	e, _ := newTestServer(t)
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/auth/sign-in",
		"GET /api/v1/session",
		"GET /api/v1/patients",
		"POST /api/v1/patients",
		"GET /api/v1/staff",
		"GET /api/v1/messages",
		"POST /api/v1/reports/patients/:id",
		"POST /api/v1/imaging/:id/images",
		"GET /ws",
		"GET /metrics",
	} {
		if !have[want] {
			t.Errorf("route %q not registered", want)
		}
	}
}

func TestAPIRequiresSession(t *testing.T) {
	e, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/staff", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAPIRejectsRevokedToken(t *testing.T) {
	e, d := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff", nil)
	// issued but never stored, so the session store does not know it
	req.Header.Set(echo.HeaderAuthorization, bearerFor(t, d, auth.RoleStaff))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPatientCannotListStaff(t *testing.T) {
	e, d := newTestServer(t)
	s := auth.NewSession(uuid.New(), auth.RolePatient, "P-1")
	token, err := d.tokens.Issue(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.sessions.Put(context.Background(), s.TokenID, s.UserID.String(), s.ExpiresAt); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMigrationsDir(t *testing.T) {
	cfg := &config.Config{MigrationsDir: "./migrations"}
	if got := migrationsDir("", cfg); got != "./migrations" {
		t.Errorf("got %q", got)
	}
	if got := migrationsDir("/srv/sql", cfg); got != "/srv/sql" {
		t.Errorf("got %q", got)
	}
}

func TestOptionalUUID(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("staff-id", "", "")

	id, err := optionalUUID(cmd, "staff-id")
	if err != nil || id != nil {
		t.Fatalf("expected nil id for empty flag, got %v, %v", id, err)
	}

	want := uuid.New()
	_ = cmd.Flags().Set("staff-id", want.String())
	id, err = optionalUUID(cmd, "staff-id")
	if err != nil || id == nil || *id != want {
		t.Fatalf("expected %s, got %v, %v", want, id, err)
	}

	_ = cmd.Flags().Set("staff-id", "not-a-uuid")
	if _, err := optionalUUID(cmd, "staff-id"); err == nil {
		t.Fatal("expected parse error")
	}
}
