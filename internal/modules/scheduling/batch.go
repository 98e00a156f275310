// README: Sequential auto-assignment as a fold; each step sees every assignment made before it.
package scheduling

import (
	"sort"

	"fleetdispatch/internal/types"
)

type Assignment struct {
	BookingID         types.ID `json:"booking_id"`
	DriverID          types.ID `json:"driver_id"`
	DriverName        string   `json:"driver_name"`
	RepositionMinutes int      `json:"reposition_minutes"`
	DayLoad           int      `json:"day_load"`
}

type StepResult struct {
	Snapshot Snapshot
	// Assignment is nil when no driver qualifies.
	Assignment *Assignment
}

// Step suggests a driver for b against s and returns s with the decision folded in.
// s itself is left untouched.
func (e *Engine) Step(s Snapshot, b Booking) StepResult {
	b.DriverID = nil
	b.DriverName = ""
	ranked := e.RankDrivers(b, s.Drivers, s.Bookings, s.Vehicles, s.Shifts)
	if len(ranked) == 0 {
		return StepResult{Snapshot: s}
	}
	best := ranked[0]
	a := Assignment{
		BookingID:         b.ID,
		DriverID:          best.Driver.ID,
		DriverName:        best.Driver.Name,
		RepositionMinutes: best.RepositionMinutes,
		DayLoad:           best.DayLoad,
	}
	return StepResult{Snapshot: s.Assign(b, a), Assignment: &a}
}

type Plan struct {
	Assignments []Assignment `json:"assignments"`
	Unassigned  []types.ID   `json:"unassigned"`
	Snapshot    Snapshot     `json:"-"`
}

// Plan folds Step over queue without persisting anything.
func (e *Engine) Plan(s Snapshot, queue []types.ID) Plan {
	p := Plan{Assignments: []Assignment{}, Unassigned: []types.ID{}}
	for _, id := range queue {
		b, ok := s.Booking(id)
		if !ok || !b.Status.Active() {
			continue
		}
		res := e.Step(s, b)
		s = res.Snapshot
		if res.Assignment == nil {
			p.Unassigned = append(p.Unassigned, id)
			continue
		}
		p.Assignments = append(p.Assignments, *res.Assignment)
	}
	p.Snapshot = s
	return p
}

// AutoAssignQueue lists the bookings an auto-assign pass should place: active
// unassigned bookings plus the released ids, without duplicates, in pickup order.
func (e *Engine) AutoAssignQueue(s Snapshot, released []types.ID) []types.ID {
	wanted := make(map[types.ID]bool, len(released))
	for _, id := range released {
		wanted[id] = true
	}
	var queue []Booking
	for _, b := range s.Bookings {
		if !b.Status.Active() {
			continue
		}
		if b.DriverID == nil || *b.DriverID == "" || wanted[b.ID] {
			queue = append(queue, b)
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		ti, oki := e.PickupAt(queue[i])
		tj, okj := e.PickupAt(queue[j])
		if oki != okj {
			return oki
		}
		return oki && ti.Before(tj)
	})
	ids := make([]types.ID, 0, len(queue))
	seen := make(map[types.ID]bool, len(queue))
	for _, b := range queue {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		ids = append(ids, b.ID)
	}
	return ids
}

func (s Snapshot) Booking(id types.ID) (Booking, bool) {
	for _, b := range s.Bookings {
		if b.ID == id {
			return b, true
		}
	}
	return Booking{}, false
}

// Assign returns a copy of s in which b is assigned per a and reset to Pending.
func (s Snapshot) Assign(b Booking, a Assignment) Snapshot {
	b.DriverID = types.IDPtr(a.DriverID)
	b.DriverName = a.DriverName
	b.Status = StatusPending

	out := s
	out.Bookings = make([]Booking, 0, len(s.Bookings)+1)
	replaced := false
	for _, existing := range s.Bookings {
		if existing.ID == b.ID {
			out.Bookings = append(out.Bookings, b)
			replaced = true
			continue
		}
		out.Bookings = append(out.Bookings, existing)
	}
	if !replaced {
		out.Bookings = append(out.Bookings, b)
	}
	return out
}

// Release returns a copy of s with the given bookings unassigned and back to Pending.
func (s Snapshot) Release(ids []types.ID) Snapshot {
	drop := make(map[types.ID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := s
	out.Bookings = make([]Booking, len(s.Bookings))
	for i, b := range s.Bookings {
		if drop[b.ID] {
			b.DriverID = nil
			b.DriverName = ""
			b.Status = StatusPending
		}
		out.Bookings[i] = b
	}
	return out
}
