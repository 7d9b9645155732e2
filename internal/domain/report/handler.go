package report

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/auth"
)

type Handler struct {
	builder *Builder
}

func NewHandler(builder *Builder) *Handler {
	return &Handler{builder: builder}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	canPrint := auth.RequireCapability(auth.PrintReports)
	api.POST("/reports/patients/:id", h.PatientChart, canPrint)
	api.GET("/reports/patients/:id", h.PatientChart, canPrint)
}

type chartRequest struct {
	Sections []string `json:"sections"`
}

// PatientChart renders the selected sections as one HTML document. Sections
// come from the JSON body or a comma-separated ?sections= query.
func (h *Handler) PatientChart(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := auth.RequirePatientAccess(c, id); err != nil {
		return err
	}

	var req chartRequest
	if c.Request().Method == http.MethodPost && c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
	}
	if raw := c.QueryParam("sections"); raw != "" && len(req.Sections) == 0 {
		req.Sections = strings.Split(raw, ",")
	}
	sel, err := ParseSections(req.Sections)
	if err != nil {
		return apperr.HTTP(c, err)
	}

	ctx := c.Request().Context()
	doc, err := h.builder.Build(ctx, id, sel, auth.SessionFromContext(ctx).Actor())
	if err != nil {
		return apperr.HTTP(c, err)
	}
	var buf bytes.Buffer
	if err := Render(&buf, doc); err != nil {
		return apperr.HTTP(c, err)
	}
	c.Response().Header().Set("Content-Disposition", `inline; filename="chart-`+doc.Patient.HospitalNumber+`.html"`)
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
