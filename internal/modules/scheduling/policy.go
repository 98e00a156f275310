// README: Dispatch policy (dwell times, tolerances, home base, route table) injected into the engine.
package scheduling

import (
	"sort"
	"strings"
	"time"
)

// Policy holds every tunable the engine consults. All durations are whole minutes.
type Policy struct {
	AirportWaitMinutes int
	StationWaitMinutes int
	CityWaitMinutes    int

	SameLocationMinutes  int
	DefaultTravelMinutes int
	SafetyBufferMinutes  int

	CityToleranceMinutes    int
	AirportToleranceMinutes int

	// HomeBase is where a driver starts the day.
	HomeBase string

	AirportKeywords []string
	StationKeywords []string

	Routes RouteTable

	// Location is the local clock pickup dates and times are read in.
	Location *time.Location

	// RequireVehicle rejects drivers whose vehicle cannot be resolved instead of
	// skipping the capacity and category checks.
	RequireVehicle bool
}

func DefaultPolicy() Policy {
	return Policy{
		AirportWaitMinutes:      50,
		StationWaitMinutes:      15,
		CityWaitMinutes:         0,
		SameLocationMinutes:     15,
		DefaultTravelMinutes:    60,
		SafetyBufferMinutes:     0,
		CityToleranceMinutes:    15,
		AirportToleranceMinutes: 30,
		HomeBase:                "Benidorm",
		AirportKeywords:         []string{"aeropuerto", "alc"},
		StationKeywords:         []string{"estación", "renfe", "ave"},
		Routes:                  DefaultRoutes(),
		Location:                time.UTC,
	}
}

// RouteKey is an unordered pair of normalised location names.
type RouteKey struct {
	A, B string
}

func NewRouteKey(origin, destination string) RouteKey {
	pair := []string{normalizeLocation(origin), normalizeLocation(destination)}
	sort.Strings(pair)
	return RouteKey{A: pair[0], B: pair[1]}
}

// RouteTable maps unordered location pairs to travel minutes, so lookups are
// symmetric regardless of the direction an entry was stored in.
type RouteTable map[RouteKey]int

func (t RouteTable) Set(origin, destination string, minutes int) {
	t[NewRouteKey(origin, destination)] = minutes
}

func (t RouteTable) Lookup(origin, destination string) (int, bool) {
	m, ok := t[NewRouteKey(origin, destination)]
	return m, ok
}

// Clone returns a copy that can be extended without affecting engines built on t.
func (t RouteTable) Clone() RouteTable {
	out := make(RouteTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

const AirportALC = "ALICANTE AEROPUERTO (ALC)"

// DefaultRoutes returns the curated table of frequent transfers around Alicante.
func DefaultRoutes() RouteTable {
	t := RouteTable{}
	for _, r := range []struct {
		a, b string
		min  int
	}{
		{AirportALC, "Benidorm", 40},
		{AirportALC, "Albir", 45},
		{AirportALC, "Altea", 50},
		{AirportALC, "Calpe", 55},
		{AirportALC, "Benissa", 65},
		{AirportALC, "Moraira", 70},
		{AirportALC, "Javea", 75},
		{AirportALC, "Denia", 70},
		{AirportALC, "Villajoyosa", 35},
		{AirportALC, "El Campello", 20},
		{AirportALC, "Alicante", 15},
		{AirportALC, "Alicante Centro", 15},
		{AirportALC, "Elche", 20},
		{AirportALC, "Santa Pola", 15},
		{AirportALC, "Torrevieja", 45},
		{AirportALC, "Murcia", 55},
		{AirportALC, "Valencia", 115},
		{AirportALC, "Gandía", 85},
		{"Benidorm", "Altea", 20},
		{"Benidorm", "Calpe", 30},
		{"Benidorm", "Valencia", 90},
		{"Benidorm", "Alicante", 35},
	} {
		t.Set(r.a, r.b, r.min)
	}
	return t
}

func normalizeLocation(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
