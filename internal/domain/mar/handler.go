package mar

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
	order := auth.RequireCapability(auth.ManageClinicalOrders)
	give := auth.RequireCapability(auth.AdministerMedication)

	api.GET("/patients/:patient_id/mar-orders", h.ListOrders, read)
	api.POST("/patients/:patient_id/mar-orders", h.CreateOrder, order)
	api.GET("/mar-orders/:id", h.GetOrder, read)
	api.PATCH("/mar-orders/:id", h.EditOrder, order)
	api.PUT("/mar-orders/:id/doses/:index", h.Administer, give)
	api.DELETE("/mar-orders/:id", h.DeleteOrder, auth.RequireCapability(auth.ManageClinicalOrders, auth.AdministerMedication))
}

type createOrderRequest struct {
	MedicationName string   `json:"medication_name"`
	Dose           string   `json:"dose"`
	Route          string   `json:"route"`
	Date           string   `json:"date"`
	RoomNo         *string  `json:"room_no"`
	ScheduledTimes []string `json:"scheduled_times"`
	NurseInitials  string   `json:"nurse_initials"`
}

type editOrderRequest struct {
	MedicationName *string  `json:"medication_name"`
	Dose           *string  `json:"dose"`
	Route          *string  `json:"route"`
	Date           *string  `json:"date"`
	RoomNo         *string  `json:"room_no"`
	NurseInitials  *string  `json:"nurse_initials"`
	ScheduledTimes []string `json:"scheduled_times"`
	Version        int      `json:"version"`
}

type administerRequest struct {
	Given   bool   `json:"given"`
	Nurse   string `json:"nurse"`
	Version int    `json:"version"`
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperr.Validation("date", "must be YYYY-MM-DD")
	}
	return t, nil
}

func (h *Handler) ListOrders(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	if err := auth.RequirePatientAccess(c, patientID); err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListOrders(c.Request().Context(), patientID, OrderFilter{Status: c.QueryParam("status")}, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}

func (h *Handler) CreateOrder(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return apperr.HTTP(c, err)
	}

	var createdBy *uuid.UUID
	if s := auth.SessionFromContext(c.Request().Context()); s != nil {
		createdBy = &s.UserID
	}
	o, err := h.svc.CreateOrder(c.Request().Context(), NewOrderInput{
		PatientID:      patientID,
		MedicationName: req.MedicationName,
		Dose:           req.Dose,
		Route:          req.Route,
		Date:           date,
		RoomNo:         req.RoomNo,
		ScheduledTimes: req.ScheduledTimes,
		NurseInitials:  req.NurseInitials,
	}, createdBy)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// loadOrder fetches the order named by :id and checks the caller may see it.
func (h *Handler) loadOrder(c echo.Context) (*Order, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := h.svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return nil, apperr.HTTP(c, err)
	}
	if err := auth.RequirePatientAccess(c, o.PatientID); err != nil {
		return nil, err
	}
	return o, nil
}

func (h *Handler) GetOrder(c echo.Context) error {
	o, err := h.loadOrder(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) EditOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req editOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := Patch{
		MedicationName: req.MedicationName,
		Dose:           req.Dose,
		Route:          req.Route,
		RoomNo:         req.RoomNo,
		NurseInitials:  req.NurseInitials,
		ScheduledTimes: req.ScheduledTimes,
	}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			return apperr.HTTP(c, err)
		}
		p.Date = &d
	}
	o, err := h.svc.EditOrder(c.Request().Context(), id, p, req.Version)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) Administer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	index, err := ParseIndex(c.Param("index"))
	if err != nil {
		return apperr.HTTP(c, err)
	}
	var req administerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	o, err := h.svc.Administer(c.Request().Context(), id, AdministerInput{
		Index:   index,
		Given:   req.Given,
		Nurse:   req.Nurse,
		Version: req.Version,
	})
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// DeleteOrder requires ?confirm=true. Completed orders also need ?force=true,
// which only clinical order managers may use.
func (h *Handler) DeleteOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := apperr.RequireConfirm(c); err != nil {
		return apperr.HTTP(c, err)
	}
	force := c.QueryParam("force") == "true"
	if force {
		s := auth.SessionFromContext(c.Request().Context())
		if s == nil || !s.Capabilities.CanManageClinicalOrders {
			return echo.NewHTTPError(http.StatusForbidden, "required capability: manage_clinical_orders")
		}
	}
	if err := h.svc.DeleteOrder(c.Request().Context(), id, force); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
