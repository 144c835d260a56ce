package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-day format used in forms and query strings.
	DateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// AvailabilitySlot is a bookable window a doctor publishes. Date is the
// clinic-local midnight of the day; start and end are HH:MM wall-clock times.
type AvailabilitySlot struct {
	Day       string    `bson:"day,omitempty" json:"day,omitempty"`
	Date      time.Time `bson:"date" json:"date"`
	StartTime string    `bson:"startTime" json:"startTime"`
	EndTime   string    `bson:"endTime" json:"endTime"`
}

// Label renders the slot in the HH:MM-HH:MM form used by booking forms.
func (s AvailabilitySlot) Label() string {
	return s.StartTime + "-" + s.EndTime
}

// DateString renders the slot's day in loc.
func (s AvailabilitySlot) DateString(loc *time.Location) string {
	return s.Date.In(loc).Format(DateLayout)
}

// StartsAt returns the instant the slot begins.
func (s AvailabilitySlot) StartsAt(loc *time.Location) time.Time {
	return atClock(s.Date, s.StartTime, loc)
}

// Same reports whether both slots describe the same window.
func (s AvailabilitySlot) Same(o AvailabilitySlot) bool {
	return s.Date.Equal(o.Date) && s.StartTime == o.StartTime && s.EndTime == o.EndTime
}

// ParseTimeSlot splits and normalizes "HH:MM-HH:MM". The end must be after the start.
func ParseTimeSlot(v string) (start, end string, err error) {
	parts := strings.Split(strings.TrimSpace(v), "-")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("time slot %q must look like HH:MM-HH:MM", v)
	}
	st, err := time.Parse(clockLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return "", "", fmt.Errorf("invalid start time %q", parts[0])
	}
	et, err := time.Parse(clockLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return "", "", fmt.Errorf("invalid end time %q", parts[1])
	}
	if !et.After(st) {
		return "", "", fmt.Errorf("time slot %q ends before it starts", v)
	}
	return st.Format(clockLayout), et.Format(clockLayout), nil
}

// ParseDay parses a YYYY-MM-DD day as midnight in loc.
func ParseDay(v string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(v), loc)
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FutureSlots returns the slots that start after now, ordered by start.
func FutureSlots(slots []AvailabilitySlot, now time.Time, loc *time.Location) []AvailabilitySlot {
	out := make([]AvailabilitySlot, 0, len(slots))
	for _, s := range slots {
		if s.StartsAt(loc).After(now) {
			out = append(out, s)
		}
	}
	SortSlots(out, loc)
	return out
}

// SortSlots orders slots by day and then start time.
func SortSlots(slots []AvailabilitySlot, loc *time.Location) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartsAt(loc).Before(slots[j].StartsAt(loc))
	})
}

func atClock(day time.Time, clock string, loc *time.Location) time.Time {
	d := day.In(loc)
	c, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc)
}
