// README: Lenient pickup date/time parsing and the "driver free again" calculation.
package scheduling

import (
	"strconv"
	"strings"
	"time"
)

var defaultLocation = time.UTC

const dateLayout = "2006-01-02"

// CalendarDate strips a trailing time component ("2025-03-01T00:00:00Z",
// "2025-03-01 00:00:00") and returns the YYYY-MM-DD part.
func CalendarDate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	return s
}

// ClockMinutes parses "HH:MM" (seconds tolerated) into minutes after midnight.
func ClockMinutes(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// At combines a calendar date and a local clock time into an instant.
func (e *Engine) At(date, clock string) (time.Time, bool) {
	d, err := time.ParseInLocation(dateLayout, CalendarDate(date), e.policy.Location)
	if err != nil {
		return time.Time{}, false
	}
	mins, ok := ClockMinutes(clock)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), mins/60, mins%60, 0, 0, e.policy.Location), true
}

func (e *Engine) PickupAt(b Booking) (time.Time, bool) {
	return e.At(b.PickupDate, b.PickupTime)
}

// AvailableAt returns when the driver serving b is free again:
// pickup + dwell at origin + travel to destination + safety buffer.
func (e *Engine) AvailableAt(b Booking) (time.Time, bool) {
	start, ok := e.PickupAt(b)
	if !ok {
		return time.Time{}, false
	}
	total := e.WaitTime(b.Origin) + e.EstimateTravelTime(b.Origin, b.Destination) + e.policy.SafetyBufferMinutes
	return start.Add(minutes(total)), true
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
