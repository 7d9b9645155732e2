package account

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

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

// RegisterRoutes mounts sign-in on public and the rest on the authenticated
// api group.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/auth/sign-in", h.SignIn)

	api.POST("/auth/sign-out", h.SignOut)
	api.GET("/session", auth.SessionHandler)
	api.GET("/account", h.Me)
	api.PUT("/account/password", h.UpdatePassword)

	users := api.Group("/users", auth.RequireCapability(auth.ManageUsers))
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id/password", h.ResetPassword)
	users.DELETE("/:id", h.DeleteUser)
}

func session(c echo.Context) *auth.Session {
	return auth.SessionFromContext(c.Request().Context())
}

func idParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

type signInRequest struct {
	AccountNumber string `json:"account_number"`
	Password      string `json:"password"`
}

func (h *Handler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.AccountNumber == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account_number and password are required")
	}
	res, err := h.svc.SignIn(c.Request().Context(), req.AccountNumber, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		zerolog.Ctx(c.Request().Context()).Info().
			Str("account_number", req.AccountNumber).
			Str("remote_ip", c.RealIP()).
			Msg("sign-in rejected")
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) SignOut(c echo.Context) error {
	if err := h.svc.SignOut(c.Request().Context(), session(c)); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Me(c echo.Context) error {
	u, err := h.svc.CurrentUser(c.Request().Context(), session(c))
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) UpdatePassword(c echo.Context) error {
	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.UpdatePassword(c.Request().Context(), session(c), req.CurrentPassword, req.NewPassword); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Manage users --

func (h *Handler) CreateUser(c echo.Context) error {
	var in NewUser
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.CreateUser(c.Request().Context(), in)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{Role: c.QueryParam("role"), Search: c.QueryParam("q")}
	items, total, err := h.svc.ListUsers(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}

func (h *Handler) ResetPassword(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.ResetPassword(c.Request().Context(), id, req.Password); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := apperr.RequireConfirm(c); err != nil {
		return apperr.HTTP(c, err)
	}
	if err := h.svc.DeleteUser(c.Request().Context(), session(c), id); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
