package staff

import (
	"net/http"
	"strconv"

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
	read := auth.RequireCapability(auth.ViewAllPatients, auth.ManageStaff)
	manage := auth.RequireCapability(auth.ManageStaff)

	api.GET("/staff", h.List, read)
	api.GET("/staff/:id", h.Get, read)
	api.POST("/staff", h.Create, manage)
	api.PUT("/staff/:id", h.Update, manage)
	api.PUT("/staff/:id/active", h.SetActive, manage)
	api.DELETE("/staff/:id", h.Delete, manage)
}

func idParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) Create(c echo.Context) error {
	var m Member
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Create(c.Request().Context(), &m); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var m Member
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	out, err := h.svc.Update(c.Request().Context(), id, &m)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) SetActive(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "active is required")
	}
	m, err := h.svc.SetActive(c.Request().Context(), id, *req.Active)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := apperr.RequireConfirm(c); err != nil {
		return apperr.HTTP(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List serves the Doctors, Nurses and Technologists screens through ?kind=.
func (h *Handler) List(c echo.Context) error {
	f := Filter{Search: c.QueryParam("q")}
	if raw := c.QueryParam("kind"); raw != "" {
		kind, ok := ParseKind(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "kind must be doctor, nurse, medtech or radtech")
		}
		f.Kind = kind
	}
	f.ActiveOnly, _ = strconv.ParseBool(c.QueryParam("active"))
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}
