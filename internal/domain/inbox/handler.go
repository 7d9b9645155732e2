package inbox

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
	g := api.Group("/messages", auth.RequireCapability(auth.Message))
	g.GET("", h.List)
	g.POST("", h.Send)
	g.GET("/unread-count", h.UnreadCount)
	g.GET("/:id", h.Get)
	g.POST("/:id/read", h.MarkRead)
	g.DELETE("/:id", h.Delete)
}

func caller(c echo.Context) (*auth.Session, error) {
	s := auth.SessionFromContext(c.Request().Context())
	if s == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return s, nil
}

func idParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

type sendRequest struct {
	RecipientID uuid.UUID  `json:"recipient_id"`
	PatientID   *uuid.UUID `json:"patient_id"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
}

func (h *Handler) Send(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return err
	}
	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PatientID != nil {
		if err := auth.RequirePatientAccess(c, *req.PatientID); err != nil {
			return err
		}
	}
	m := &Message{
		SenderID:    s.UserID,
		RecipientID: req.RecipientID,
		PatientID:   req.PatientID,
		Subject:     req.Subject,
		Body:        req.Body,
	}
	if err := h.svc.Send(c.Request().Context(), m); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) List(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return err
	}
	f := Filter{Folder: Folder(c.QueryParam("folder"))}
	f.UnreadOnly, _ = strconv.ParseBool(c.QueryParam("unread"))
	if raw := c.QueryParam("patient_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = &pid
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), s.UserID, f, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}

func (h *Handler) UnreadCount(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return err
	}
	n, err := h.svc.UnreadCount(c.Request().Context(), s.UserID)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"unread": n})
}

func (h *Handler) Get(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	m, err := h.svc.Get(c.Request().Context(), id, s.UserID)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) MarkRead(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	m, err := h.svc.MarkRead(c.Request().Context(), id, s.UserID)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id, s.UserID); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
