package mar

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careconnect/careconnect/internal/platform/apperr"
)

func newTestOrder(t *testing.T, times ...string) *Order {
	t.Helper()
	o, err := NewOrder(NewOrderInput{
		PatientID:      uuid.New(),
		MedicationName: "Paracetamol",
		Dose:           "500mg",
		Route:          "PO",
		ScheduledTimes: times,
	})
	require.NoError(t, err)
	return o
}

func TestNewOrder_DefaultSchedule(t *testing.T) {
	o := newTestOrder(t)
	assert.Equal(t, []string{"08:00", "12:00", "16:00", "20:00"}, o.ScheduledTimes())
	for _, d := range o.Doses {
		assert.False(t, d.Given)
		assert.Empty(t, d.Nurse)
	}
	assert.False(t, o.IsCompleted)
	assert.Equal(t, 1, o.Version)
}

func TestNewOrder_Validation(t *testing.T) {
	base := NewOrderInput{PatientID: uuid.New(), MedicationName: "Amoxicillin", Dose: "500mg", Route: "PO"}

	tests := []struct {
		name   string
		mutate func(in *NewOrderInput)
	}{
		{"missing patient", func(in *NewOrderInput) { in.PatientID = uuid.Nil }},
		{"blank medication", func(in *NewOrderInput) { in.MedicationName = "  " }},
		{"blank dose", func(in *NewOrderInput) { in.Dose = "" }},
		{"blank route", func(in *NewOrderInput) { in.Route = "" }},
		{"bad time", func(in *NewOrderInput) { in.ScheduledTimes = []string{"8am"} }},
		{"hour out of range", func(in *NewOrderInput) { in.ScheduledTimes = []string{"24:00"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := NewOrder(in)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestAdminister_CompletionInvariant(t *testing.T) {
	o := newTestOrder(t, "08:00", "14:00", "20:00")
	now := time.Date(2025, 3, 1, 8, 5, 0, 0, time.UTC)

	require.NoError(t, o.Administer(0, true, "JD", now))
	require.NoError(t, o.Administer(1, true, "JD", now))
	assert.False(t, o.IsCompleted, "two of three doses given")

	require.NoError(t, o.Administer(2, true, "JD", now))
	assert.True(t, o.IsCompleted, "all doses given")
	assert.Equal(t, StatusCompleted, o.Status())
	assert.Equal(t, 3, o.GivenCount())
}

func TestAdminister_RequiresInitials(t *testing.T) {
	o := newTestOrder(t, "08:00", "20:00")
	before := *o
	before.Doses = append([]Dose(nil), o.Doses...)

	err := o.Administer(0, true, "   ", time.Now())
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, before.Doses, o.Doses, "order must be unchanged")
	assert.Equal(t, before.IsCompleted, o.IsCompleted)
}

func TestAdminister_IndexOutOfRange(t *testing.T) {
	o := newTestOrder(t, "08:00")
	assert.True(t, apperr.IsValidation(o.Administer(1, true, "JD", time.Now())))
	assert.True(t, apperr.IsValidation(o.Administer(-1, true, "JD", time.Now())))
}

func TestAdminister_UngiveClearsNurse(t *testing.T) {
	o := newTestOrder(t, "08:00", "20:00")
	require.NoError(t, o.Administer(0, true, "JD", time.Now()))
	require.NoError(t, o.Administer(0, false, "", time.Now()))

	assert.False(t, o.Doses[0].Given)
	assert.Empty(t, o.Doses[0].Nurse)
	assert.Nil(t, o.Doses[0].AdministeredAt)
}

func TestAdminister_OnlyTouchesIndex(t *testing.T) {
	o := newTestOrder(t, "08:00", "12:00", "16:00")
	require.NoError(t, o.Administer(1, true, "AB", time.Now()))

	assert.False(t, o.Doses[0].Given)
	assert.True(t, o.Doses[1].Given)
	assert.Equal(t, "AB", o.Doses[1].Nurse)
	assert.False(t, o.Doses[2].Given)
}

func TestCompletedOrderIsTerminal(t *testing.T) {
	o := newTestOrder(t, "08:00")
	require.NoError(t, o.Administer(0, true, "JD", time.Now()))
	require.True(t, o.IsCompleted)

	err := o.Administer(0, false, "", time.Now())
	assert.True(t, errors.Is(err, ErrOrderCompleted))
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	dose := "1g"
	assert.True(t, errors.Is(o.Edit(Patch{Dose: &dose}), ErrOrderCompleted))
	assert.Equal(t, "500mg", o.Dose)

	assert.True(t, errors.Is(o.CheckDelete(false), ErrOrderCompleted))
	assert.NoError(t, o.CheckDelete(true))
}

func TestEdit_ScheduleBeforeAnyDose(t *testing.T) {
	o := newTestOrder(t, "08:00", "20:00")
	require.NoError(t, o.Edit(Patch{ScheduledTimes: []string{"06:00", "14:00", "22:00"}}))
	assert.Equal(t, []string{"06:00", "14:00", "22:00"}, o.ScheduledTimes())
	assert.Len(t, o.Doses, 3)
}

func TestEdit_ScheduleLockedAfterDose(t *testing.T) {
	o := newTestOrder(t, "08:00", "20:00")
	require.NoError(t, o.Administer(0, true, "JD", time.Now()))

	err := o.Edit(Patch{ScheduledTimes: []string{"09:00", "21:00"}})
	assert.True(t, errors.Is(err, ErrScheduleLocked))
	assert.Equal(t, []string{"08:00", "20:00"}, o.ScheduledTimes())
	assert.True(t, o.Doses[0].Given, "recorded dose must survive")

	// resubmitting the same schedule alongside other edits is fine
	route := "IV"
	require.NoError(t, o.Edit(Patch{Route: &route, ScheduledTimes: []string{"08:00", "20:00"}}))
	assert.Equal(t, "IV", o.Route)
	assert.True(t, o.Doses[0].Given)
}

func TestEdit_RejectsBlankFieldsAtomically(t *testing.T) {
	o := newTestOrder(t, "08:00")
	name, blank := "Ibuprofen", " "
	err := o.Edit(Patch{MedicationName: &name, Route: &blank})
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "Paracetamol", o.MedicationName, "no partial edit")
}

func TestOrderJSON_ExposesPairedArrays(t *testing.T) {
	o := newTestOrder(t, "08:00", "14:00")
	require.NoError(t, o.Administer(0, true, "JD", time.Now()))

	raw, err := json.Marshal(o)
	require.NoError(t, err)

	var got struct {
		ScheduledTimes    []string           `json:"scheduled_times"`
		AdministeredTimes []AdministeredTime `json:"administered_times"`
		Doses             []Dose             `json:"doses"`
		Status            string             `json:"status"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, []string{"08:00", "14:00"}, got.ScheduledTimes)
	assert.Equal(t, AdministeredTime{Time: "08:00", Given: true, Nurse: "JD"}, got.AdministeredTimes[0])
	assert.Equal(t, AdministeredTime{Time: "14:00"}, got.AdministeredTimes[1])
	assert.Len(t, got.Doses, 2)
	assert.Equal(t, StatusPending, got.Status)
}
