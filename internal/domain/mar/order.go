package mar

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
)

// DefaultSchedule is used when an order is created without times (QID).
var DefaultSchedule = []string{"08:00", "12:00", "16:00", "20:00"}

var (
	ErrOrderCompleted = apperr.Conflict("medication order is completed and can no longer be changed")
	ErrScheduleLocked = apperr.Conflict("schedule cannot change after a dose has been given")
)

var timeOfDay = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// NewOrderInput carries the fields needed to create an order.
type NewOrderInput struct {
	PatientID      uuid.UUID
	MedicationName string
	Dose           string
	Route          string
	Date           time.Time
	RoomNo         *string
	ScheduledTimes []string
	NurseInitials  string
}

// NewOrder validates in and builds a pending order with one untouched dose
// per scheduled time.
func NewOrder(in NewOrderInput) (*Order, error) {
	if in.PatientID == uuid.Nil {
		return nil, apperr.Required("patient_id")
	}
	name, dose, route := strings.TrimSpace(in.MedicationName), strings.TrimSpace(in.Dose), strings.TrimSpace(in.Route)
	if name == "" {
		return nil, apperr.Required("medication_name")
	}
	if dose == "" {
		return nil, apperr.Required("dose")
	}
	if route == "" {
		return nil, apperr.Required("route")
	}

	times := in.ScheduledTimes
	if len(times) == 0 {
		times = DefaultSchedule
	}
	doses, err := buildDoses(times)
	if err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	return &Order{
		PatientID:      in.PatientID,
		MedicationName: name,
		Dose:           dose,
		Route:          route,
		Date:           dateOnly(date),
		RoomNo:         in.RoomNo,
		NurseInitials:  strings.TrimSpace(in.NurseInitials),
		Doses:          doses,
		Version:        1,
	}, nil
}

func buildDoses(times []string) ([]Dose, error) {
	doses := make([]Dose, len(times))
	for i, t := range times {
		t = strings.TrimSpace(t)
		if !timeOfDay.MatchString(t) {
			return nil, apperr.Validation("scheduled_times", "%q is not a valid HH:MM time", t)
		}
		doses[i] = Dose{ScheduledTime: t}
	}
	return doses, nil
}

// refresh recomputes IsCompleted. An order without doses is never complete.
func (o *Order) refresh() {
	if len(o.Doses) == 0 {
		o.IsCompleted = false
		return
	}
	for _, d := range o.Doses {
		if !d.Given {
			o.IsCompleted = false
			return
		}
	}
	o.IsCompleted = true
}

// GivenCount returns how many doses have been given.
func (o *Order) GivenCount() int {
	n := 0
	for _, d := range o.Doses {
		if d.Given {
			n++
		}
	}
	return n
}

// Administer records (given=true) or clears (given=false) the dose at index
// i. Giving a dose requires the nurse's initials. Nothing changes when an
// error is returned.
func (o *Order) Administer(i int, given bool, initials string, at time.Time) error {
	if o.IsCompleted {
		return ErrOrderCompleted
	}
	if i < 0 || i >= len(o.Doses) {
		return apperr.Validation("dose_index", "must be between 0 and %d", len(o.Doses)-1)
	}
	initials = strings.TrimSpace(initials)
	if given && initials == "" {
		return apperr.Validation("nurse", "initials are required to record a given dose")
	}

	d := &o.Doses[i]
	if given {
		at = at.UTC()
		d.Given = true
		d.Nurse = initials
		d.AdministeredAt = &at
	} else {
		d.Given = false
		d.Nurse = ""
		d.AdministeredAt = nil
	}
	o.refresh()
	return nil
}

// Patch lists the editable fields; nil means unchanged.
type Patch struct {
	MedicationName *string
	Dose           *string
	Route          *string
	Date           *time.Time
	RoomNo         *string
	NurseInitials  *string
	ScheduledTimes []string
}

// Edit applies p while the order is pending. A new schedule replaces the
// doses, which is only allowed before any dose has been given.
func (o *Order) Edit(p Patch) error {
	if o.IsCompleted {
		return ErrOrderCompleted
	}

	next := *o
	if p.MedicationName != nil {
		if next.MedicationName = strings.TrimSpace(*p.MedicationName); next.MedicationName == "" {
			return apperr.Required("medication_name")
		}
	}
	if p.Dose != nil {
		if next.Dose = strings.TrimSpace(*p.Dose); next.Dose == "" {
			return apperr.Required("dose")
		}
	}
	if p.Route != nil {
		if next.Route = strings.TrimSpace(*p.Route); next.Route == "" {
			return apperr.Required("route")
		}
	}
	if p.Date != nil {
		next.Date = dateOnly(*p.Date)
	}
	if p.RoomNo != nil {
		room := strings.TrimSpace(*p.RoomNo)
		next.RoomNo = &room
	}
	if p.NurseInitials != nil {
		next.NurseInitials = strings.TrimSpace(*p.NurseInitials)
	}
	if p.ScheduledTimes != nil && !sameSchedule(o.ScheduledTimes(), p.ScheduledTimes) {
		if len(p.ScheduledTimes) == 0 {
			return apperr.Validation("scheduled_times", "at least one time is required")
		}
		if o.GivenCount() > 0 {
			return ErrScheduleLocked
		}
		doses, err := buildDoses(p.ScheduledTimes)
		if err != nil {
			return err
		}
		next.Doses = doses
	}

	*o = next
	o.refresh()
	return nil
}

func sameSchedule(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != strings.TrimSpace(b[i]) {
			return false
		}
	}
	return true
}

// CheckDelete rejects deleting a completed order unless force is set.
func (o *Order) CheckDelete(force bool) error {
	if o.IsCompleted && !force {
		return ErrOrderCompleted
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
