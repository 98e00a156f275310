// README: Driver ranking; closest eligible driver first, lighter day load on ties.
package scheduling

import (
	"sort"

	"fleetdispatch/internal/types"
)

// Candidate is an eligible driver together with the figures it was ranked by.
type Candidate struct {
	Driver            Driver `json:"driver"`
	RepositionMinutes int    `json:"reposition_minutes"`
	DayLoad           int    `json:"day_load"`
}

// RankDrivers returns every dispatchable driver able to serve b, best first.
func (e *Engine) RankDrivers(b Booking, drivers []Driver, bookings []Booking, vehicles []Vehicle, shifts []Shift) []Candidate {
	var out []Candidate
	for _, d := range drivers {
		if !d.Status.Dispatchable() {
			continue
		}
		var shiftRef *Shift
		if s, ok := e.ShiftFor(d.ID, b.PickupDate, shifts); ok {
			shiftRef = &s
		}
		v := e.VehicleFor(d, shiftRef, vehicles)
		if !e.IsDriverAvailable(d, v, b, bookings, shifts) {
			continue
		}
		out = append(out, Candidate{
			Driver:            d,
			RepositionMinutes: e.RepositionTime(d.ID, b, bookings),
			DayLoad:           e.DayLoad(d.ID, b, bookings),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RepositionMinutes != out[j].RepositionMinutes {
			return out[i].RepositionMinutes < out[j].RepositionMinutes
		}
		return out[i].DayLoad < out[j].DayLoad
	})
	return out
}

// SuggestDriver returns the best driver for b, or nil when nobody qualifies.
func (e *Engine) SuggestDriver(b Booking, drivers []Driver, bookings []Booking, vehicles []Vehicle, shifts []Shift) *Driver {
	ranked := e.RankDrivers(b, drivers, bookings, vehicles, shifts)
	if len(ranked) == 0 {
		return nil
	}
	d := ranked[0].Driver
	return &d
}

// RepositionTime is the travel from where the driver will be just before b
// (the destination of their previous booking that day, or the home base) to b's origin.
func (e *Engine) RepositionTime(driverID types.ID, b Booking, bookings []Booking) int {
	from := e.policy.HomeBase
	if target, ok := e.PickupAt(b); ok {
		var prevStart int64
		found := false
		for _, other := range e.driverDay(driverID, b.PickupDate, b.ID, bookings) {
			s, ok := e.PickupAt(other)
			if !ok || !s.Before(target) {
				continue
			}
			if !found || s.Unix() >= prevStart {
				prevStart = s.Unix()
				from = other.Destination
				found = true
			}
		}
	}
	return e.EstimateTravelTime(from, b.Origin)
}

// DayLoad counts the bookings already assigned to the driver on b's date.
// Completed services are work done that day and count; cancelled ones do not.
func (e *Engine) DayLoad(driverID types.ID, b Booking, bookings []Booking) int {
	day := CalendarDate(b.PickupDate)
	n := 0
	for _, other := range bookings {
		if other.ID == b.ID || !other.AssignedTo(driverID) || other.Status == StatusCancelled {
			continue
		}
		if CalendarDate(other.PickupDate) == day {
			n++
		}
	}
	return n
}
