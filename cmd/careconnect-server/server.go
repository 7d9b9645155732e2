package main

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/careconnect/careconnect/internal/config"
	"github.com/careconnect/careconnect/internal/domain/account"
	"github.com/careconnect/careconnect/internal/domain/diagnostics"
	"github.com/careconnect/careconnect/internal/domain/inbox"
	"github.com/careconnect/careconnect/internal/domain/mar"
	"github.com/careconnect/careconnect/internal/domain/nursing"
	"github.com/careconnect/careconnect/internal/domain/patient"
	"github.com/careconnect/careconnect/internal/domain/report"
	"github.com/careconnect/careconnect/internal/domain/staff"
	"github.com/careconnect/careconnect/internal/domain/vitals"
	"github.com/careconnect/careconnect/internal/platform/auth"
	"github.com/careconnect/careconnect/internal/platform/blobstore"
	"github.com/careconnect/careconnect/internal/platform/db"
	"github.com/careconnect/careconnect/internal/platform/middleware"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

const version = "1.0.0"

// deps are the process-wide resources opened by runServer.
type deps struct {
	cfg      *config.Config
	logger   zerolog.Logger
	pool     *pgxpool.Pool
	tokens   *auth.TokenIssuer
	sessions auth.SessionStore
	blobs    blobstore.Store
	pub      realtime.Publisher
	hub      *realtime.Hub
	registry *prometheus.Registry
}

type services struct {
	staff       *staff.Service
	patients    *patient.Service
	vitals      *vitals.Service
	mar         *mar.Service
	nursing     *nursing.Service
	diagnostics *diagnostics.Service
	accounts    *account.Service
	inbox       *inbox.Service
	reports     *report.Builder
}

func newServices(d deps) *services {
	s := &services{}
	s.staff = staff.NewService(staff.NewMemberRepoPG(d.pool), d.pub)
	s.vitals = vitals.NewService(vitals.NewSnapshotRepoPG(d.pool), d.pub)
	s.patients = patient.NewService(patient.NewPatientRepoPG(d.pool), s.vitals, s.staff, db.Runner(d.pool), d.pub)
	s.mar = mar.NewService(mar.NewOrderRepoPG(d.pool), d.pub, mar.NewMetrics(d.registry))
	s.nursing = nursing.NewService(nursing.NewIORepoPG(d.pool), nursing.NewAssessmentRepoPG(d.pool), nursing.NewFDARRepoPG(d.pool), d.pub)
	s.diagnostics = diagnostics.NewService(diagnostics.NewLabRepoPG(d.pool), diagnostics.NewImagingRepoPG(d.pool), d.blobs, d.pub)
	s.accounts = account.NewService(account.NewUserRepoPG(d.pool), d.tokens, d.sessions,
		account.Links{Patient: s.patients.Exists, Staff: s.staff.Exists},
		account.Options{EmailDomain: d.cfg.AccountEmailDomain})
	s.inbox = inbox.NewService(inbox.NewMessageRepoPG(d.pool), s.accounts, d.pub)
	s.reports = report.NewBuilder(report.Sources{
		Patients:    s.patients,
		Staff:       s.staff,
		Vitals:      s.vitals,
		MAR:         s.mar,
		Nursing:     s.nursing,
		Diagnostics: s.diagnostics,
	})
	return s
}

// newServer wires middleware and every route onto a fresh echo instance.
func newServer(d deps, svc *services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	httpMetrics := middleware.NewHTTPMetrics(d.registry)

	e.Use(middleware.Recovery(d.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(d.logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(httpMetrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if d.pool != nil {
		e.GET("/health/db", db.HealthHandler(d.pool, d.pool))
	}
	e.GET("/metrics", middleware.MetricsHandler(d.registry))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: d.cfg.RateLimitRPS,
		BurstSize:         d.cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	authMW := auth.Middleware(d.tokens, d.sessions)

	public := e.Group("/api/v1", middleware.RateLimit(rateLimitCfg))
	api := e.Group("/api/v1",
		middleware.RateLimit(rateLimitCfg),
		authMW,
		middleware.RequestTimeout(d.cfg.RequestTimeout),
		middleware.Audit(d.logger),
	)

	account.NewHandler(svc.accounts).RegisterRoutes(public, api)
	staff.NewHandler(svc.staff).RegisterRoutes(api)
	patient.NewHandler(svc.patients).RegisterRoutes(api)
	vitals.NewHandler(svc.vitals).RegisterRoutes(api)
	mar.NewHandler(svc.mar).RegisterRoutes(api)
	nursing.NewHandler(svc.nursing).RegisterRoutes(api)
	diagnostics.NewHandler(svc.diagnostics).RegisterRoutes(api)
	inbox.NewHandler(svc.inbox).RegisterRoutes(api)
	report.NewHandler(svc.reports).RegisterRoutes(api)

	if d.hub != nil {
		realtime.NewHandler(d.hub, d.cfg.CORSOrigins).RegisterRoutes(e, authMW)
	}
	return e
}
