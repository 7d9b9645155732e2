package patient

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect/internal/domain/vitals"
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
	all := auth.RequireCapability(auth.ViewAllPatients)
	read := auth.RequireCapability(auth.ViewAllPatients, auth.ViewOwnRecord)
	chart := auth.RequireCapability(auth.ManageClinicalOrders)

	api.GET("/patients", h.List, all)
	api.POST("/patients", h.Admit, chart)
	api.GET("/patients/lookup", h.Lookup, all)
	api.GET("/patients/me", h.Me, auth.RequireCapability(auth.ViewOwnRecord))
	api.GET("/patients/:id", h.Get, read)
	api.PUT("/patients/:id", h.Update, chart)
	api.PUT("/patients/:id/status", h.SetStatus, chart)
	api.PUT("/patients/:id/attending", h.AssignAttending, auth.RequireCapability(auth.ManageStaff, auth.ManageClinicalOrders))
	api.DELETE("/patients/:id", h.Delete, auth.RequireCapability(auth.ManageStaff))
}

type historyRequest struct {
	Conditions      map[string]bool `json:"conditions"`
	OtherConditions string          `json:"other_conditions"`
}

func (r historyRequest) block() HistoryBlock {
	return HistoryBlock{Conditions: r.Conditions, OtherConditions: r.OtherConditions}
}

type patientRequest struct {
	HospitalNumber        string                 `json:"hospital_number"`
	PatientNumber         string                 `json:"patient_number"`
	FirstName             string                 `json:"first_name"`
	MiddleName            string                 `json:"middle_name"`
	LastName              string                 `json:"last_name"`
	Sex                   string                 `json:"sex"`
	BirthDate             string                 `json:"birth_date"`
	CivilStatus           string                 `json:"civil_status"`
	Address               string                 `json:"address"`
	ContactNumber         string                 `json:"contact_number"`
	Religion              string                 `json:"religion"`
	Nationality           string                 `json:"nationality"`
	Occupation            string                 `json:"occupation"`
	Department            string                 `json:"department"`
	Location              string                 `json:"location"`
	RoomNo                string                 `json:"room_no"`
	Diagnosis             string                 `json:"diagnosis"`
	ChiefComplaint        string                 `json:"chief_complaint"`
	AdmittedAt            *time.Time             `json:"admitted_at"`
	PastMedicalHistory    historyRequest         `json:"past_medical_history"`
	PersonalSocialHistory historyRequest         `json:"personal_social_history"`
	FamilyHistory         historyRequest         `json:"family_history"`
	Allergies             []string               `json:"allergies"`
	CurrentMedications    []string               `json:"current_medications"`
	ProblemList           []string               `json:"problem_list"`
	AttendingPhysicianID  *uuid.UUID             `json:"attending_physician_id"`
	InitialVitals         *vitals.ReadingRequest `json:"initial_vitals"`
}

func (r *patientRequest) patient() (*Patient, error) {
	p := &Patient{
		HospitalNumber:        r.HospitalNumber,
		PatientNumber:         r.PatientNumber,
		FirstName:             r.FirstName,
		MiddleName:            r.MiddleName,
		LastName:              r.LastName,
		Sex:                   r.Sex,
		CivilStatus:           r.CivilStatus,
		Address:               r.Address,
		ContactNumber:         r.ContactNumber,
		Religion:              r.Religion,
		Nationality:           r.Nationality,
		Occupation:            r.Occupation,
		Department:            r.Department,
		Location:              r.Location,
		RoomNo:                r.RoomNo,
		Diagnosis:             r.Diagnosis,
		ChiefComplaint:        r.ChiefComplaint,
		PastMedicalHistory:    r.PastMedicalHistory.block(),
		PersonalSocialHistory: r.PersonalSocialHistory.block(),
		FamilyHistory:         r.FamilyHistory.block(),
		Allergies:             r.Allergies,
		CurrentMedications:    r.CurrentMedications,
		ProblemList:           r.ProblemList,
		AttendingPhysicianID:  r.AttendingPhysicianID,
	}
	if r.AdmittedAt != nil {
		p.AdmittedAt = *r.AdmittedAt
	}
	if r.BirthDate != "" {
		d, err := time.Parse("2006-01-02", r.BirthDate)
		if err != nil {
			return nil, apperr.Validation("birth_date", "must be YYYY-MM-DD")
		}
		p.BirthDate = &d
	}
	return p, nil
}

func idParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) List(c echo.Context) error {
	f := ListFilter{
		Status:     c.QueryParam("status"),
		Department: c.QueryParam("department"),
		Search:     c.QueryParam("q"),
	}
	switch f.Status {
	case "":
		f.Status = StatusActive
	case "all":
		f.Status = ""
	}
	if raw := c.QueryParam("attending_physician_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid attending_physician_id")
		}
		f.AttendingPhysicianID = &id
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg))
}

func (h *Handler) Admit(c echo.Context) error {
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := req.patient()
	if err != nil {
		return apperr.HTTP(c, err)
	}
	var initial *vitals.Reading
	if req.InitialVitals != nil {
		r := req.InitialVitals.Reading()
		initial = &r
	}
	var by *uuid.UUID
	if s := auth.SessionFromContext(c.Request().Context()); s != nil {
		by = &s.UserID
	}
	out, err := h.svc.Admit(c.Request().Context(), p, initial, by)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) Lookup(c echo.Context) error {
	p, err := h.svc.Lookup(c.Request().Context(), c.QueryParam("number"))
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Me returns the chart linked to a patient account.
func (h *Handler) Me(c echo.Context) error {
	s := auth.SessionFromContext(c.Request().Context())
	if s == nil || s.PatientID == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no patient record is linked to this account")
	}
	p, err := h.svc.Get(c.Request().Context(), *s.PatientID)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := auth.RequirePatientAccess(c, id); err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := req.patient()
	if err != nil {
		return apperr.HTTP(c, err)
	}
	out, err := h.svc.Update(c.Request().Context(), id, p)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.SetStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// AssignAttending handles the decking screen. A null physician_id clears
// the assignment.
func (h *Handler) AssignAttending(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req struct {
		PhysicianID *uuid.UUID `json:"physician_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.AssignAttending(c.Request().Context(), id, req.PhysicianID)
	if err != nil {
		return apperr.HTTP(c, err)
	}
	return c.JSON(http.StatusOK, p)
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
