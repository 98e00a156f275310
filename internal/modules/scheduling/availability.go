// README: Vehicle compatibility and the per-driver same-day availability check.
package scheduling

import (
	"time"

	"fleetdispatch/internal/types"
)

// Compatible checks vehicle capacity and category against the booking.
// A nil vehicle passes unless the policy requires one.
func (e *Engine) Compatible(v *Vehicle, b Booking) bool {
	if v == nil {
		return !e.policy.RequireVehicle
	}
	if v.Capacity < b.Pax() {
		return false
	}
	if class := b.Class(); class != ClassStandard && v.Category != class {
		return false
	}
	return true
}

// VehicleFor resolves the vehicle a driver works with: the shift's vehicle
// first, then the driver's legacy plate.
func (e *Engine) VehicleFor(d Driver, shift *Shift, vehicles []Vehicle) *Vehicle {
	if shift != nil && shift.VehicleID != nil {
		for i := range vehicles {
			if vehicles[i].ID == *shift.VehicleID {
				return &vehicles[i]
			}
		}
	}
	if d.Plate != nil && *d.Plate != "" {
		for i := range vehicles {
			if vehicles[i].Plate == *d.Plate {
				return &vehicles[i]
			}
		}
	}
	return nil
}

// IsDriverAvailable reports whether d can serve b given the rest of the
// driver's active bookings that day. The booking under evaluation is ignored
// when found in bookings, so a booking can be re-checked in place.
func (e *Engine) IsDriverAvailable(d Driver, v *Vehicle, b Booking, bookings []Booking, shifts []Shift) bool {
	shift, ok := e.ShiftFor(d.ID, b.PickupDate, shifts)
	if !ok {
		return false
	}
	if !e.ShiftAllows(shift, b.PickupTime) {
		return false
	}
	if !e.Compatible(v, b) {
		return false
	}

	start, ok := e.PickupAt(b)
	if !ok {
		return false
	}
	end, _ := e.AvailableAt(b)

	first := true
	for _, other := range e.driverDay(d.ID, b.PickupDate, b.ID, bookings) {
		oStart, ok := e.PickupAt(other)
		if !ok {
			continue
		}
		oEnd, _ := e.AvailableAt(other)

		if !start.Before(oStart) && e.lateFor(oEnd, other.Destination, b.Origin, start) {
			return false
		}
		if !oStart.Before(start) && e.lateFor(end, b.Destination, other.Origin, oStart) {
			return false
		}
		if !oStart.After(start) {
			first = false
		}
	}

	if first {
		if shiftStart, ok := e.shiftStart(shift, b); ok {
			earliest := shiftStart.Add(minutes(e.EstimateTravelTime(e.policy.HomeBase, b.Origin)))
			if start.Before(earliest) {
				return false
			}
		}
	}
	return true
}

// lateFor reports whether a driver free at freeAt in from reaches pickup in to
// later than the pickup's tolerance allows.
func (e *Engine) lateFor(freeAt time.Time, from, to string, pickup time.Time) bool {
	arrival := freeAt.Add(minutes(e.EstimateTravelTime(from, to)))
	return arrival.After(pickup.Add(minutes(e.Tolerance(to))))
}

// driverDay returns the driver's active bookings on the calendar date of date,
// excluding the booking with id exclude.
func (e *Engine) driverDay(driverID types.ID, date string, exclude types.ID, bookings []Booking) []Booking {
	day := CalendarDate(date)
	var out []Booking
	for _, b := range bookings {
		if !b.AssignedTo(driverID) || !b.Status.Active() || b.ID == exclude {
			continue
		}
		if CalendarDate(b.PickupDate) != day {
			continue
		}
		out = append(out, b)
	}
	return out
}
