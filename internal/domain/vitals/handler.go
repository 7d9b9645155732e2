package vitals

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
	write := auth.RequireCapability(auth.RecordVitals)

	api.GET("/patients/:patient_id/vitals", h.History, read)
	api.POST("/patients/:patient_id/vitals", h.Record, write)
	api.GET("/patients/:patient_id/vitals/latest", h.Latest, read)
	api.GET("/patients/:patient_id/vitals/trend", h.Trend, read)
	api.GET("/vitals/:id", h.Get, read)
	api.POST("/vitals/:id/revisions", h.Revise, write)
	api.DELETE("/vitals/:id", h.Delete, write)
}

// ReadingRequest is the JSON body for recording vitals. Patient admission
// reuses it for the initial snapshot.
type ReadingRequest struct {
	BloodPressure    *string  `json:"blood_pressure"`
	HeartRate        *int     `json:"heart_rate"`
	RespiratoryRate  *int     `json:"respiratory_rate"`
	Temperature      *float64 `json:"temperature"`
	OxygenSaturation *int     `json:"oxygen_saturation"`
	PainScale        *int     `json:"pain_scale"`
	Notes            string   `json:"notes"`
}

func (r ReadingRequest) Reading() Reading {
	return Reading{
		BloodPressure:    r.BloodPressure,
		HeartRate:        r.HeartRate,
		RespiratoryRate:  r.RespiratoryRate,
		Temperature:      r.Temperature,
		OxygenSaturation: r.OxygenSaturation,
		PainScale:        r.PainScale,
		Notes:            r.Notes,
	}
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

func recordedBy(c echo.Context) *uuid.UUID {
	if s := auth.SessionFromContext(c.Request().Context()); s != nil {
		return &s.UserID
	}
	return nil
}

func (h *Handler) History(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.History(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}

func (h *Handler) Record(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	var req ReadingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	snap, err := h.svc.Record(c.Request().Context(), patientID, req.Reading(), recordedBy(c))
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, snap)
}

func (h *Handler) Latest(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	snap, err := h.svc.Latest(c.Request().Context(), patientID)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *Handler) Trend(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	var since time.Time
	if raw := c.QueryParam("since"); raw != "" {
		if since, err = time.Parse(time.RFC3339, raw); err != nil {
			if since, err = time.Parse("2006-01-02", raw); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "since must be RFC 3339 or YYYY-MM-DD")
			}
		}
	}
	trend, err := h.svc.Trend(c.Request().Context(), patientID, c.QueryParam("measure"), since)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, trend)
}

func (h *Handler) load(c echo.Context) (*Snapshot, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	snap, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return nil, apperr.HTTP(c, err)
	}
	if err := auth.RequirePatientAccess(c, snap.PatientID); err != nil {
		return nil, err
	}
	return snap, nil
}

func (h *Handler) Get(c echo.Context) error {
	snap, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *Handler) Revise(c echo.Context) error {
	prev, err := h.load(c)
	if err != nil {
		return err
	}
	var req ReadingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	snap, err := h.svc.Revise(c.Request().Context(), prev.ID, req.Reading(), recordedBy(c))
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, snap)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := apperr.RequireConfirm(c); err != nil {
		return apperr.HTTP(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
