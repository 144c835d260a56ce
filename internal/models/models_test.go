package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func TestParseTimeSlot(t *testing.T) {
	start, end, err := ParseTimeSlot("9:00-09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:00", start)
	assert.Equal(t, "09:30", end)

	for _, bad := range []string{"", "09:00", "09:30-09:00", "9am-10am", "09:00-10:00-11:00"} {
		_, _, err := ParseTimeSlot(bad)
		assert.Error(t, err, bad)
	}
}

func TestAvailabilitySlot_StartsAt(t *testing.T) {
	day, err := ParseDay("2030-03-15", ist)
	require.NoError(t, err)
	slot := AvailabilitySlot{Date: day.UTC(), StartTime: "10:30", EndTime: "11:00"}

	got := slot.StartsAt(ist)
	assert.Equal(t, time.Date(2030, 3, 15, 10, 30, 0, 0, ist).Unix(), got.Unix())
	assert.Equal(t, "2030-03-15", slot.DateString(ist))
	assert.Equal(t, "10:30-11:00", slot.Label())
}

func TestFutureSlots(t *testing.T) {
	now := time.Date(2030, 3, 15, 10, 0, 0, 0, ist)
	today := StartOfDay(now, ist)
	tomorrow := today.AddDate(0, 0, 1)

	slots := []AvailabilitySlot{
		{Date: tomorrow, StartTime: "09:00", EndTime: "09:30"},
		{Date: today, StartTime: "09:00", EndTime: "09:30"},
		{Date: today, StartTime: "10:30", EndTime: "11:00"},
	}
	got := FutureSlots(slots, now, ist)
	require.Len(t, got, 2)
	assert.True(t, got[0].Same(slots[2]))
	assert.True(t, got[1].Same(slots[0]))
}

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusCompleted.CanTransitionTo(StatusCompleted))

	assert.False(t, StatusCancelled.CanTransitionTo(StatusConfirmed))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusConfirmed.CanTransitionTo(StatusPending))
	assert.False(t, AppointmentStatus("unknown").Valid())
}

func TestAppointment_Slot(t *testing.T) {
	day := time.Date(2030, 1, 2, 0, 0, 0, 0, ist)
	a := &Appointment{Date: day, TimeSlot: "09:30-10:00"}
	slot, err := a.Slot()
	require.NoError(t, err)
	assert.Equal(t, "09:30", slot.StartTime)
	assert.Equal(t, time.Date(2030, 1, 2, 9, 30, 0, 0, ist), a.StartsAt(ist))

	a.TimeSlot = "garbage"
	assert.Equal(t, day, a.StartsAt(ist))
}

func TestNewInvoiceNumber(t *testing.T) {
	now := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	a, b := NewInvoiceNumber(now), NewInvoiceNumber(now)
	assert.True(t, strings.HasPrefix(a, "INV-20300506-"))
	assert.Len(t, a, len("INV-20300506-")+6)
	assert.NotEqual(t, a, b)
}

func TestRole_DashboardPath(t *testing.T) {
	assert.Equal(t, "/doctor/dashboard", RoleDoctor.DashboardPath())
	assert.Equal(t, "/patient/dashboard", RolePatient.DashboardPath())
	assert.Equal(t, "/auth/login", Role("").DashboardPath())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleDoctor.Valid())
	assert.True(t, RolePatient.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}
