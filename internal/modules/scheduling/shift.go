// README: Shift gate; a driver needs a working, time-compatible shift on the booking's date.
package scheduling

import (
	"strings"
	"time"

	"fleetdispatch/internal/types"
)

// ShiftHours is a start-end clock range in minutes after midnight.
// End before start means the shift runs past midnight.
type ShiftHours struct {
	Start int
	End   int
}

func (h ShiftHours) Overnight() bool {
	return h.Start >= h.End
}

func (h ShiftHours) Contains(clock int) bool {
	if !h.Overnight() {
		return clock >= h.Start && clock <= h.End
	}
	return clock >= h.Start || clock <= h.End
}

// ParseShiftHours reads "HH:MM-HH:MM". The end may be "24:00" for a shift
// that runs to midnight. declared is false when no range is set at all; ok is
// false when a range is set but cannot be read.
func ParseShiftHours(hours *string) (h ShiftHours, declared, ok bool) {
	if hours == nil || !strings.Contains(*hours, "-") {
		return ShiftHours{}, false, true
	}
	startStr, endStr, _ := strings.Cut(*hours, "-")
	start, okStart := ClockMinutes(startStr)
	end, okEnd := rangeEndMinutes(endStr)
	if !okStart || !okEnd {
		return ShiftHours{}, true, false
	}
	return ShiftHours{Start: start, End: end}, true, true
}

const endOfDay = 24 * 60

func rangeEndMinutes(s string) (int, bool) {
	switch strings.TrimSpace(s) {
	case "24:00", "24:00:00":
		return endOfDay, true
	}
	return ClockMinutes(s)
}

// ShiftFor finds the driver's shift on the calendar date of date.
func (e *Engine) ShiftFor(driverID types.ID, date string, shifts []Shift) (Shift, bool) {
	day := CalendarDate(date)
	for _, s := range shifts {
		if s.DriverID == driverID && CalendarDate(s.Date) == day {
			return s, true
		}
	}
	return Shift{}, false
}

// ShiftAllows reports whether shift lets its driver take a pickup at pickupTime.
// Off-day sentinels and unreadable hour ranges are rejected.
func (e *Engine) ShiftAllows(shift Shift, pickupTime string) bool {
	if !shift.Working() {
		return false
	}
	h, declared, ok := ParseShiftHours(shift.Hours)
	if !ok {
		return false
	}
	if !declared {
		return true
	}
	clock, ok := ClockMinutes(pickupTime)
	if !ok {
		return false
	}
	return h.Contains(clock)
}

// shiftStart returns when the shift covering b began. A pickup in the
// after-midnight tail of an overnight shift belongs to the previous day's start.
func (e *Engine) shiftStart(shift Shift, b Booking) (time.Time, bool) {
	h, declared, ok := ParseShiftHours(shift.Hours)
	if !declared || !ok {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(dateLayout, CalendarDate(b.PickupDate), e.policy.Location)
	if err != nil {
		return time.Time{}, false
	}
	if clock, ok := ClockMinutes(b.PickupTime); ok && h.Overnight() && clock < h.Start && clock <= h.End {
		day = day.AddDate(0, 0, -1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h.Start/60, h.Start%60, 0, 0, e.policy.Location), true
}
