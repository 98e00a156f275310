package scheduling

import "fleetdispatch/internal/types"

const testDay = "2025-06-01"

func strPtr(s string) *string { return &s }

func booking(id types.ID, pickup, origin, destination string) Booking {
	return Booking{
		ID:          id,
		PickupDate:  testDay,
		PickupTime:  pickup,
		Origin:      origin,
		Destination: destination,
		PaxCount:    1,
		Status:      StatusConfirmed,
	}
}

func assigned(b Booking, driverID types.ID) Booking {
	b.DriverID = types.IDPtr(driverID)
	return b
}

func driver(id types.ID) Driver {
	return Driver{ID: id, Name: "Driver " + string(id), Status: DriverWorking}
}

func workShift(driverID types.ID, hours string) Shift {
	s := Shift{DriverID: driverID, Date: testDay, Type: "M1"}
	if hours != "" {
		s.Hours = strPtr(hours)
	}
	return s
}

func testPolicy(routes map[[2]string]int) Policy {
	p := DefaultPolicy()
	p.HomeBase = "Base"
	p.Routes = RouteTable{}
	for pair, m := range routes {
		p.Routes.Set(pair[0], pair[1], m)
	}
	return p
}
