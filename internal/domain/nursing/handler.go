package nursing

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/auth"
	"github.com/careconnect/careconnect/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := auth.RequireCapability(auth.ViewAllPatients, auth.ViewOwnRecord)
	chart := auth.RequireCapability(auth.RecordVitals)

	api.GET("/patients/:patient_id/intake-output", h.ListIO, read)
	api.POST("/patients/:patient_id/intake-output", h.RecordIO, chart)
	api.GET("/patients/:patient_id/intake-output/summary", h.IOSummary, read)
	api.GET("/intake-output/:id", h.GetIO, read)
	api.DELETE("/intake-output/:id", h.DeleteIO, chart)

	api.GET("/patients/:patient_id/assessments", h.ListAssessments, read)
	api.POST("/patients/:patient_id/assessments", h.CreateAssessment, chart)
	api.GET("/assessments/:id", h.GetAssessment, read)
	api.DELETE("/assessments/:id", h.DeleteAssessment, chart)

	api.GET("/patients/:patient_id/fdar-notes", h.ListFDAR, read)
	api.POST("/patients/:patient_id/fdar-notes", h.CreateFDAR, chart)
	api.GET("/fdar-notes/:id", h.GetFDAR, read)
	api.DELETE("/fdar-notes/:id", h.DeleteFDAR, chart)
}

func patientParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	if err := auth.RequirePatientAccess(c, id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func idParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func actor(c echo.Context) string {
	return auth.SessionFromContext(c.Request().Context()).Actor()
}

// ioFilter reads type plus either date (one calendar day, UTC) or from/to.
func ioFilter(c echo.Context) (IOFilter, error) {
	f := IOFilter{Type: c.QueryParam("type")}
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, apperr.Validation("date", "must be YYYY-MM-DD")
		}
		f.From, f.To = d, d.AddDate(0, 0, 1)
		return f, nil
	}
	for _, p := range []struct {
		name string
		dest *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		if raw := c.QueryParam(p.name); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return f, apperr.Validation(p.name, "must be an RFC 3339 timestamp")
			}
			*p.dest = t
		}
	}
	return f, nil
}

// -- Intake/Output --

func (h *Handler) RecordIO(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	var r IORecord
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r.PatientID = patientID
	if r.RecordedBy == "" {
		r.RecordedBy = actor(c)
	}
	if err := h.svc.RecordIO(c.Request().Context(), &r); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListIO(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	f, err := ioFilter(c)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListIO(c.Request().Context(), patientID, f, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}

func (h *Handler) IOSummary(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	f, err := ioFilter(c)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	sum, err := h.svc.IOSummary(c.Request().Context(), patientID, f)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) GetIO(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	r, err := h.svc.GetIO(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	if err := auth.RequirePatientAccess(c, r.PatientID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteIO(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteIO(c.Request().Context(), id); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Assessments --

func (h *Handler) CreateAssessment(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	var a Assessment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a.PatientID = patientID
	if a.AssessedBy == "" {
		a.AssessedBy = actor(c)
	}
	if err := h.svc.CreateAssessment(c.Request().Context(), &a); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAssessments(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAssessments(c.Request().Context(), patientID, c.QueryParam("assessment_type"), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}

func (h *Handler) GetAssessment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAssessment(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	if err := auth.RequirePatientAccess(c, a.PatientID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAssessment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAssessment(c.Request().Context(), id); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- FDAR notes --

func (h *Handler) CreateFDAR(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	var n FDARNote
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	n.PatientID = patientID
	if n.Nurse == "" {
		n.Nurse = actor(c)
	}
	if err := h.svc.CreateFDAR(c.Request().Context(), &n); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) ListFDAR(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListFDAR(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}

func (h *Handler) GetFDAR(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	n, err := h.svc.GetFDAR(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	if err := auth.RequirePatientAccess(c, n.PatientID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteFDAR(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteFDAR(c.Request().Context(), id); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
