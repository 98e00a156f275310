// README: Driver ranking tests (status filter, proximity, load balancing).
package scheduling

import (
	"testing"

	"fleetdispatch/internal/types"
)

func rankerEngine() *Engine {
	return NewEngine(testPolicy(map[[2]string]int{
		{"Base", "Pickup"}: 10,
		{"Near", "Pickup"}: 5,
	}))
}

func laterLoad(driverID types.ID, pickups ...string) []Booking {
	var out []Booking
	for _, p := range pickups {
		out = append(out, assigned(booking(types.ID(string(driverID)+"-"+p), p, "Drop", "Drop"), driverID))
	}
	return out
}

func TestSuggestDriver_LoadBreaksTies(t *testing.T) {
	e := rankerEngine()
	target := booking("target", "08:00", "Pickup", "Drop")
	drivers := []Driver{driver("busy"), driver("light")}
	shifts := []Shift{workShift("busy", "06:00-22:00"), workShift("light", "06:00-22:00")}
	bookings := append(laterLoad("busy", "12:00", "14:00", "16:00"), laterLoad("light", "12:00")...)

	ranked := e.RankDrivers(target, drivers, bookings, nil, shifts)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(ranked))
	}
	for _, c := range ranked {
		if c.RepositionMinutes != 10 {
			t.Errorf("%s reposition = %d, want 10", c.Driver.ID, c.RepositionMinutes)
		}
	}

	got := e.SuggestDriver(target, drivers, bookings, nil, shifts)
	if got == nil || got.ID != "light" {
		t.Fatalf("suggested %v, want light", got)
	}
	if ranked[0].DayLoad != 1 || ranked[1].DayLoad != 3 {
		t.Errorf("loads = %d, %d; want 1, 3", ranked[0].DayLoad, ranked[1].DayLoad)
	}
}

func TestSuggestDriver_ProximityBeatsLoad(t *testing.T) {
	e := rankerEngine()
	target := booking("target", "08:00", "Pickup", "Drop")
	drivers := []Driver{driver("fresh"), driver("nearby")}
	shifts := []Shift{workShift("fresh", "06:00-22:00"), workShift("nearby", "06:00-22:00")}
	// nearby is free at 07:30 in Near, 5 minutes from the pickup.
	bookings := []Booking{assigned(booking("early", "06:30", "Base", "Near"), "nearby")}

	ranked := e.RankDrivers(target, drivers, bookings, nil, shifts)
	if len(ranked) != 2 || ranked[0].Driver.ID != "nearby" {
		t.Fatalf("ranking = %+v, want nearby first", ranked)
	}
	if ranked[0].RepositionMinutes != 5 || ranked[1].RepositionMinutes != 10 {
		t.Errorf("reposition = %d, %d; want 5, 10", ranked[0].RepositionMinutes, ranked[1].RepositionMinutes)
	}
}

func TestSuggestDriver_SkipsOffDriversAndIncompatibleVehicles(t *testing.T) {
	e := rankerEngine()
	target := booking("target", "08:00", "Pickup", "Drop")
	target.PaxCount = 6

	off := driver("off")
	off.Status = DriverOff
	small := driver("small")
	van := driver("van")
	van.Plate = strPtr("VAN-1")
	paused := driver("paused")
	paused.Status = DriverPaused
	paused.Plate = strPtr("VAN-2")

	vehicles := []Vehicle{
		{ID: "v-small", Plate: "CAR-1", Capacity: 4, Category: ClassStandard},
		{ID: "v-van", Plate: "VAN-1", Capacity: 8, Category: ClassVan},
		{ID: "v-van2", Plate: "VAN-2", Capacity: 8, Category: ClassVan},
	}
	smallShift := workShift("small", "06:00-22:00")
	smallShift.VehicleID = types.IDPtr("v-small")
	shifts := []Shift{workShift("off", "06:00-22:00"), smallShift, workShift("van", "06:00-22:00"), workShift("paused", "06:00-22:00")}

	ranked := e.RankDrivers(target, []Driver{off, small, van, paused}, nil, vehicles, shifts)
	if len(ranked) != 2 || ranked[0].Driver.ID != "van" || ranked[1].Driver.ID != "paused" {
		t.Fatalf("ranking = %+v, want van then paused", ranked)
	}
}

func TestSuggestDriver_NoCandidate(t *testing.T) {
	e := rankerEngine()
	target := booking("target", "08:00", "Pickup", "Drop")
	if got := e.SuggestDriver(target, []Driver{driver("d1")}, nil, nil, nil); got != nil {
		t.Fatalf("expected nil without shifts, got %+v", got)
	}
	if got := e.SuggestDriver(target, nil, nil, nil, nil); got != nil {
		t.Fatalf("expected nil for empty roster, got %+v", got)
	}
}

func TestRepositionTime_UsesLatestEarlierBooking(t *testing.T) {
	e := rankerEngine()
	target := booking("target", "12:00", "Pickup", "Drop")
	bookings := []Booking{
		assigned(booking("a", "07:00", "Base", "Far"), "d1"),
		assigned(booking("b", "09:00", "Base", "Near"), "d1"),
		assigned(booking("c", "13:00", "Base", "Elsewhere"), "d1"),
	}
	if got := e.RepositionTime("d1", target, bookings); got != 5 {
		t.Fatalf("reposition = %d, want 5 (from Near)", got)
	}
	if got := e.RepositionTime("d2", target, bookings); got != 10 {
		t.Fatalf("reposition without earlier service = %d, want 10 (from Base)", got)
	}
}

func TestDayLoad_SkipsCancelledAndOtherDays(t *testing.T) {
	e := rankerEngine()
	target := booking("target", "12:00", "Pickup", "Drop")
	cancelled := assigned(booking("x", "07:00", "A", "B"), "d1")
	cancelled.Status = StatusCancelled
	completed := assigned(booking("w", "06:00", "A", "B"), "d1")
	completed.Status = StatusCompleted
	otherDay := assigned(booking("y", "07:00", "A", "B"), "d1")
	otherDay.PickupDate = "2025-06-02T00:00:00Z"
	sameDayISO := assigned(booking("z", "07:00", "A", "B"), "d1")
	sameDayISO.PickupDate = testDay + "T00:00:00Z"

	got := e.DayLoad("d1", target, []Booking{cancelled, completed, otherDay, sameDayISO, assigned(target, "d1")})
	if got != 2 {
		t.Fatalf("day load = %d, want 2 (completed and same-day ISO)", got)
	}
}
