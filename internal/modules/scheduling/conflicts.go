// README: Retroactive audit of an assigned schedule; late arrivals within tolerance warn, beyond it they block.
package scheduling

import (
	"fmt"
	"math"
	"sort"
	"time"

	"fleetdispatch/internal/types"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityConflict Severity = "conflict"
)

const fallbackDriverName = "Driver"

// Finding describes one late hand-over between two consecutive bookings of a driver.
type Finding struct {
	Severity         Severity  `json:"severity"`
	DriverID         types.ID  `json:"driver_id"`
	DriverName       string    `json:"driver_name"`
	PreviousID       types.ID  `json:"previous_booking_id"`
	BookingID        types.ID  `json:"booking_id"`
	Origin           string    `json:"origin"`
	PickupTime       string    `json:"pickup_time"`
	ArrivalAt        time.Time `json:"arrival_at"`
	DelayMinutes     int       `json:"delay_minutes"`
	ToleranceMinutes int       `json:"tolerance_minutes"`
	Message          string    `json:"message"`
}

type ConflictReport struct {
	Messages    []string   `json:"messages"`
	ConflictIDs []types.ID `json:"conflict_ids"`
	Findings    []Finding  `json:"findings"`
}

// HasBlocking reports whether any booking must be released.
func (r ConflictReport) HasBlocking() bool {
	return len(r.ConflictIDs) > 0
}

// DetectScheduleConflicts walks every driver's active bookings in pickup order
// and checks each hand-over to the next booking. For blocking overlaps the later
// booking is the one reported for release.
func (e *Engine) DetectScheduleConflicts(bookings []Booking) ConflictReport {
	report := ConflictReport{Messages: []string{}, ConflictIDs: []types.ID{}, Findings: []Finding{}}
	flagged := make(map[types.ID]bool)

	for _, schedule := range e.schedulesByDriver(bookings) {
		name := schedule[0].booking.DriverName
		if name == "" {
			name = fallbackDriverName
		}
		for i := 0; i+1 < len(schedule); i++ {
			cur, next := schedule[i], schedule[i+1]
			curEnd, _ := e.AvailableAt(cur.booking)
			arrival := curEnd.Add(minutes(e.EstimateTravelTime(cur.booking.Destination, next.booking.Origin)))
			late := arrival.Sub(next.start)
			if late <= 0 {
				continue
			}

			f := Finding{
				DriverID:         *cur.booking.DriverID,
				DriverName:       name,
				PreviousID:       cur.booking.ID,
				BookingID:        next.booking.ID,
				Origin:           next.booking.Origin,
				PickupTime:       next.booking.PickupTime,
				ArrivalAt:        arrival,
				DelayMinutes:     int(math.Round(late.Minutes())),
				ToleranceMinutes: e.Tolerance(next.booking.Origin),
			}
			if f.DelayMinutes <= f.ToleranceMinutes {
				f.Severity = SeverityWarning
				f.Message = fmt.Sprintf("WARNING %s: will arrive %d min late at %s (tolerance %d min). Original pickup: %s",
					name, f.DelayMinutes, f.Origin, f.ToleranceMinutes, f.PickupTime)
			} else {
				f.Severity = SeverityConflict
				f.Message = fmt.Sprintf("CONFLICT %s: overlap. Will arrive at %s at %s (%d min late).",
					name, arrival.Format("15:04"), f.Origin, f.DelayMinutes)
				if !flagged[f.BookingID] {
					flagged[f.BookingID] = true
					report.ConflictIDs = append(report.ConflictIDs, f.BookingID)
				}
			}
			report.Messages = append(report.Messages, f.Message)
			report.Findings = append(report.Findings, f)
		}
	}
	return report
}

type timedBooking struct {
	booking Booking
	start   time.Time
}

// schedulesByDriver groups assigned active bookings per driver, drivers in order
// of first appearance, each schedule sorted by pickup instant. Bookings whose
// pickup cannot be read are left out.
func (e *Engine) schedulesByDriver(bookings []Booking) [][]timedBooking {
	index := make(map[types.ID]int)
	var groups [][]timedBooking
	for _, b := range bookings {
		if b.DriverID == nil || *b.DriverID == "" || !b.Status.Active() {
			continue
		}
		start, ok := e.PickupAt(b)
		if !ok {
			continue
		}
		i, seen := index[*b.DriverID]
		if !seen {
			i = len(groups)
			index[*b.DriverID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], timedBooking{booking: b, start: start})
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].start.Before(g[j].start) })
	}
	return groups
}
