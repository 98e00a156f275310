// README: Availability checker tests (shift gate, compatibility, same-day overlap, first service).
package scheduling

import (
	"testing"

	"fleetdispatch/internal/types"
)

func TestIsDriverAvailable_NoShiftFailsClosed(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	b := booking("new", "10:00", "Benidorm", "Altea")
	other := workShift("d2", "")
	if e.IsDriverAvailable(driver("d1"), nil, b, nil, []Shift{other}) {
		t.Fatal("driver without a shift on the booking date must be unavailable")
	}
}

func TestIsDriverAvailable_OffDay(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	b := booking("new", "10:00", "Benidorm", "Altea")
	for _, typ := range []string{ShiftTypeLibre, ShiftTypeOff} {
		s := Shift{DriverID: "d1", Date: testDay, Type: typ}
		if e.IsDriverAvailable(driver("d1"), nil, b, nil, []Shift{s}) {
			t.Errorf("shift type %s must make the driver unavailable", typ)
		}
	}
}

func TestIsDriverAvailable_ShiftHours(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	shifts := []Shift{workShift("d1", "14:00-22:00")}
	if e.IsDriverAvailable(driver("d1"), nil, booking("new", "10:00", "Benidorm", "Altea"), nil, shifts) {
		t.Fatal("pickup outside shift hours must be rejected")
	}
	if !e.IsDriverAvailable(driver("d1"), nil, booking("new", "15:00", "Benidorm", "Altea"), nil, shifts) {
		t.Fatal("pickup inside shift hours should be accepted")
	}
}

func TestCompatible(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	van := &Vehicle{ID: "v1", Plate: "1234ABC", Capacity: 8, Category: ClassVan}
	sedan := &Vehicle{ID: "v2", Plate: "5678DEF", Capacity: 4, Category: ClassStandard}

	b := booking("b1", "10:00", "Benidorm", "Altea")
	b.PaxCount = 6
	if e.Compatible(sedan, b) {
		t.Error("capacity 4 must not carry 6 passengers")
	}
	if !e.Compatible(van, b) {
		t.Error("van should carry 6 standard passengers")
	}

	b.PaxCount = 2
	b.VehicleClass = ClassPremium
	if e.Compatible(van, b) {
		t.Error("premium booking must not go to a van")
	}

	b.VehicleClass = ""
	if !e.Compatible(van, b) {
		t.Error("empty class reads as Standard and accepts any category")
	}

	if !e.Compatible(nil, b) {
		t.Error("unresolved vehicle skips the checks by default")
	}
	p := DefaultPolicy()
	p.RequireVehicle = true
	if NewEngine(p).Compatible(nil, b) {
		t.Error("unresolved vehicle must fail when the policy requires a vehicle")
	}
}

func TestIsDriverAvailable_CapacityGate(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	b := booking("new", "10:00", "Benidorm", "Altea")
	b.PaxCount = 5
	v := &Vehicle{ID: "v1", Capacity: 4, Category: ClassStandard}
	if e.IsDriverAvailable(driver("d1"), v, b, nil, []Shift{workShift("d1", "")}) {
		t.Fatal("vehicle capacity below pax count must reject the driver")
	}
}

// B1 frees the driver at 11:30 in Benidorm; reaching B2 costs the intra-city or
// curated reposition time and must land within B2's tolerance.
func TestIsDriverAvailable_ToleranceBoundary(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	shifts := []Shift{workShift("d1", "06:00-22:00")}
	b1 := assigned(booking("b1", "10:00", AirportALC, "Benidorm"), "d1")

	cases := []struct {
		name string
		b2   Booking
		want bool
	}{
		{"arrival 11:45 within 11:55", booking("b2", "11:40", "Benidorm", "Altea"), true},
		{"reposition 20, arrival 11:50 within 11:55", booking("b2", "11:40", "Altea", "Benidorm"), true},
		{"arrival exactly at tolerance edge", booking("b2", "11:30", "Benidorm", "Altea"), true},
		{"one minute past the edge", booking("b2", "11:29", "Benidorm", "Altea"), false},
	}
	for _, tc := range cases {
		got := e.IsDriverAvailable(driver("d1"), nil, tc.b2, []Booking{b1}, shifts)
		if got != tc.want {
			t.Errorf("%s: available = %v, want %v", tc.name, got, tc.want)
		}
	}

	far := assigned(booking("b1", "10:00", AirportALC, "Valencia"), "d1")
	if e.IsDriverAvailable(driver("d1"), nil, booking("b2", "11:40", "Benidorm", "Altea"), []Booking{far}, shifts) {
		t.Fatal("moving B1's destination to Valencia must make B2 unreachable")
	}
}

func TestIsDriverAvailable_AirportTolerance(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	shifts := []Shift{workShift("d1", "06:00-22:00")}
	// Free at 08:15 in Benidorm, 40 min to the airport: arrival 08:55.
	b1 := assigned(booking("b1", "08:00", "Benidorm", "Benidorm"), "d1")
	if !e.IsDriverAvailable(driver("d1"), nil, booking("b2", "08:30", AirportALC, "Altea"), []Booking{b1}, shifts) {
		t.Fatal("25 min late at the airport is inside the 30 min tolerance")
	}
	if e.IsDriverAvailable(driver("d1"), nil, booking("b2", "08:24", AirportALC, "Altea"), []Booking{b1}, shifts) {
		t.Fatal("31 min late at the airport exceeds the tolerance")
	}
}

func TestIsDriverAvailable_LaterBookingChecked(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	shifts := []Shift{workShift("d1", "06:00-22:00")}
	// New booking frees the driver at 08:40 at the airport.
	newB := booking("new", "08:00", "Benidorm", AirportALC)

	fine := assigned(booking("e1", "09:00", AirportALC, "Benidorm"), "d1")
	if !e.IsDriverAvailable(driver("d1"), nil, newB, []Booking{fine}, shifts) {
		t.Fatal("airport to airport hand-over at 09:00 should fit")
	}
	tight := assigned(booking("e1", "08:05", "Altea", "Benidorm"), "d1")
	if e.IsDriverAvailable(driver("d1"), nil, newB, []Booking{tight}, shifts) {
		t.Fatal("existing 08:05 booking in Altea cannot be reached after the new transfer")
	}
}

func TestIsDriverAvailable_IgnoresSelfInactiveAndOtherDrivers(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	shifts := []Shift{workShift("d1", "06:00-22:00")}
	newB := assigned(booking("new", "10:00", "Benidorm", "Altea"), "d1")

	cancelled := assigned(booking("c1", "10:00", "Altea", "Calpe"), "d1")
	cancelled.Status = StatusCancelled
	completed := assigned(booking("c2", "10:05", "Altea", "Calpe"), "d1")
	completed.Status = StatusCompleted
	otherDriver := assigned(booking("o1", "10:00", "Altea", "Calpe"), "d2")
	otherDay := assigned(booking("o2", "10:00", "Altea", "Calpe"), "d1")
	otherDay.PickupDate = "2025-06-02"

	all := []Booking{newB, cancelled, completed, otherDriver, otherDay}
	if !e.IsDriverAvailable(driver("d1"), nil, newB, all, shifts) {
		t.Fatal("only active same-day bookings of the same driver, excluding itself, may block")
	}
}

func TestIsDriverAvailable_FirstServiceFromBase(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	shifts := []Shift{workShift("d1", "08:00-20:00")}

	// Benidorm base to the airport takes 40 min, so 08:40 is the earliest pickup.
	if e.IsDriverAvailable(driver("d1"), nil, booking("new", "08:20", AirportALC, "Altea"), nil, shifts) {
		t.Fatal("first service cannot start before shift start plus travel from base")
	}
	if !e.IsDriverAvailable(driver("d1"), nil, booking("new", "08:40", AirportALC, "Altea"), nil, shifts) {
		t.Fatal("first service exactly at shift start plus travel from base should pass")
	}

	// Not the first service: an earlier booking exists, so the base rule does not apply.
	earlier := assigned(booking("e1", "07:00", AirportALC, AirportALC), "d1")
	earlierShift := []Shift{workShift("d1", "07:00-20:00")}
	if !e.IsDriverAvailable(driver("d1"), nil, booking("new", "08:20", AirportALC, "Altea"), []Booking{earlier}, earlierShift) {
		t.Fatal("base rule applies only to the first service of the day")
	}

	noHours := []Shift{workShift("d1", "")}
	if !e.IsDriverAvailable(driver("d1"), nil, booking("new", "00:10", AirportALC, "Altea"), nil, noHours) {
		t.Fatal("shift without hours skips the base rule")
	}
}

func TestIsDriverAvailable_OvernightTail(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	shifts := []Shift{workShift("d1", "22:00-06:00")}
	// 02:00 belongs to the shift that began 22:00 the previous evening.
	if !e.IsDriverAvailable(driver("d1"), nil, booking("new", "02:00", "Benidorm", "Altea"), nil, shifts) {
		t.Fatal("pickup in the overnight tail should be reachable from base")
	}
	if e.IsDriverAvailable(driver("d1"), nil, booking("new", "22:05", "Benidorm", "Altea"), nil, shifts) {
		t.Fatal("22:05 is before 22:00 + 15 min from base")
	}
}

func TestIsDriverAvailable_ShiftEndingAtMidnight(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	shifts := []Shift{workShift("d1", "00:00-24:00")}
	if !e.IsDriverAvailable(driver("d1"), nil, booking("new", "15:00", "Benidorm", "Altea"), nil, shifts) {
		t.Fatal("a 00:00-24:00 shift covers an afternoon pickup")
	}
}

func TestIsDriverAvailable_MalformedPickup(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	b := booking("new", "10:00", "Benidorm", "Altea")
	b.PickupDate = "tomorrow"
	shifts := []Shift{{DriverID: "d1", Date: "tomorrow", Type: "M1"}}
	if e.IsDriverAvailable(driver("d1"), nil, b, nil, shifts) {
		t.Fatal("unreadable pickup must not be placed")
	}
}

func TestVehicleFor(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	vehicles := []Vehicle{
		{ID: "v1", Plate: "1111AAA", Capacity: 4},
		{ID: "v2", Plate: "2222BBB", Capacity: 8},
	}
	d := driver("d1")
	d.Plate = strPtr("1111AAA")

	if v := e.VehicleFor(d, nil, vehicles); v == nil || v.ID != "v1" {
		t.Fatalf("plate fallback = %+v, want v1", v)
	}
	s := workShift("d1", "")
	s.VehicleID = types.IDPtr("v2")
	if v := e.VehicleFor(d, &s, vehicles); v == nil || v.ID != "v2" {
		t.Fatalf("shift vehicle = %+v, want v2", v)
	}
	if v := e.VehicleFor(driver("d9"), nil, vehicles); v != nil {
		t.Fatalf("driver without plate resolved %+v", v)
	}
}
