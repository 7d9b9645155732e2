package diagnostics

import (
	"io"
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
	read := auth.RequireCapability(auth.ViewAllPatients, auth.ViewOwnRecord)
	staff := auth.RequireCapability(auth.ViewAllPatients)
	labs := auth.RequireCapability(auth.ManageLabs)
	imaging := auth.RequireCapability(auth.ManageImaging)

	api.GET("/labs", h.ListLabs, staff)
	api.GET("/patients/:patient_id/labs", h.ListPatientLabs, read)
	api.POST("/patients/:patient_id/labs", h.CreateLab, labs)
	api.GET("/labs/:id", h.GetLab, read)
	api.PUT("/labs/:id", h.UpdateLab, labs)
	api.DELETE("/labs/:id", h.DeleteLab, labs)

	api.GET("/imaging", h.ListImaging, staff)
	api.GET("/patients/:patient_id/imaging", h.ListPatientImaging, read)
	api.POST("/patients/:patient_id/imaging", h.CreateImaging, imaging)
	api.GET("/imaging/:id", h.GetImaging, read)
	api.PUT("/imaging/:id", h.UpdateImaging, imaging)
	api.DELETE("/imaging/:id", h.DeleteImaging, imaging)
	api.POST("/imaging/:id/images", h.AttachImage, imaging)
	api.GET("/imaging/:id/images/:index", h.GetImage, read)
	api.DELETE("/imaging/:id/images/:index", h.RemoveImage, imaging)
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

func filterFrom(c echo.Context) Filter {
	return Filter{Status: c.QueryParam("status"), Search: c.QueryParam("q")}
}

func actor(c echo.Context) string {
	return auth.SessionFromContext(c.Request().Context()).Actor()
}

// -- Lab results --

func (h *Handler) CreateLab(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	var l LabResult
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	l.PatientID = patientID
	if l.PerformedBy == "" {
		l.PerformedBy = actor(c)
	}
	if err := h.svc.CreateLab(c.Request().Context(), &l); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) GetLab(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	l, err := h.svc.GetLab(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	if err := auth.RequirePatientAccess(c, l.PatientID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) UpdateLab(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var l LabResult
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if l.PerformedBy == "" {
		l.PerformedBy = actor(c)
	}
	out, err := h.svc.UpdateLab(c.Request().Context(), id, &l)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteLab(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := apperr.RequireConfirm(c); err != nil {
		return apperr.HTTP(c, err)
	}
	if err := h.svc.DeleteLab(c.Request().Context(), id); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListPatientLabs(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatientLabs(c.Request().Context(), patientID, filterFrom(c), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}

func (h *Handler) ListLabs(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListLabs(c.Request().Context(), filterFrom(c), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}

// -- Imaging results --

func (h *Handler) CreateImaging(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	var r ImagingResult
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r.PatientID = patientID
	if r.PerformedBy == "" {
		r.PerformedBy = actor(c)
	}
	if err := h.svc.CreateImaging(c.Request().Context(), &r); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetImaging(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	r, err := h.svc.GetImaging(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	if err := auth.RequirePatientAccess(c, r.PatientID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) UpdateImaging(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var r ImagingResult
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if r.PerformedBy == "" {
		r.PerformedBy = actor(c)
	}
	out, err := h.svc.UpdateImaging(c.Request().Context(), id, &r)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteImaging(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := apperr.RequireConfirm(c); err != nil {
		return apperr.HTTP(c, err)
	}
	if err := h.svc.DeleteImaging(c.Request().Context(), id); err != nil {
		return apperr.HTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListPatientImaging(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatientImaging(c.Request().Context(), patientID, filterFrom(c), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}

func (h *Handler) ListImaging(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListImaging(c.Request().Context(), filterFrom(c), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}

// AttachImage accepts a multipart upload in the "file" field.
func (h *Handler) AttachImage(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read upload")
	}
	defer f.Close()

	r, obj, err := h.svc.AttachImage(c.Request().Context(), id, fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"imaging": r,
		"image":   obj,
	})
}

// imageKey resolves the :index path segment against the study's keys.
func (h *Handler) imageKey(c echo.Context) (uuid.UUID, string, error) {
	id, err := idParam(c)
	if err != nil {
		return uuid.Nil, "", err
	}
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusBadRequest, "invalid image index")
	}
	r, err := h.svc.GetImaging(c.Request().Context(), id)
	if err != nil {
		return uuid.Nil, "", apperr.HTTP(c, err)
	}
	if err := auth.RequirePatientAccess(c, r.PatientID); err != nil {
		return uuid.Nil, "", err
	}
	if idx >= len(r.ImageKeys) {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusNotFound, "image not found")
	}
	return id, r.ImageKeys[idx], nil
}

func (h *Handler) GetImage(c echo.Context) error {
	id, key, err := h.imageKey(c)
	if err != nil {
		return err
	}
	rc, obj, _, err := h.svc.OpenImage(c.Request().Context(), id, key)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	defer rc.Close()
	c.Response().Header().Set("Content-Disposition", "inline; filename=\""+obj.FileName+"\"")
	c.Response().Header().Set(echo.HeaderContentType, obj.ContentType)
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response(), rc)
	return err
}

func (h *Handler) RemoveImage(c echo.Context) error {
	id, key, err := h.imageKey(c)
	if err != nil {
		return err
	}
	if err := apperr.RequireConfirm(c); err != nil {
		return apperr.HTTP(c, err)
	}
	r, err := h.svc.RemoveImage(c.Request().Context(), id, key)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, r)
}
