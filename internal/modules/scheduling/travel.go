// README: Travel-time estimation and dwell-time policy between named locations.
package scheduling

import "strings"

// Engine evaluates driver eligibility and schedules under one Policy.
// It performs no I/O and never mutates its inputs.
type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	if policy.Routes == nil {
		policy.Routes = RouteTable{}
	}
	if policy.Location == nil {
		policy.Location = defaultLocation
	}
	return &Engine{policy: policy}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// EstimateTravelTime returns the driving minutes between two named locations.
func (e *Engine) EstimateTravelTime(origin, destination string) int {
	o := normalizeLocation(origin)
	d := normalizeLocation(destination)

	// Terminal to terminal or parking moves.
	if e.IsAirport(o) && e.IsAirport(d) {
		return 0
	}
	if o == d {
		return e.policy.SameLocationMinutes
	}
	if m, ok := e.policy.Routes.Lookup(o, d); ok {
		return m
	}
	return e.policy.DefaultTravelMinutes
}

// WaitTime returns the mandatory dwell after pickup at location.
func (e *Engine) WaitTime(location string) int {
	switch {
	case e.IsAirport(location):
		return e.policy.AirportWaitMinutes
	case e.IsStation(location):
		return e.policy.StationWaitMinutes
	default:
		return e.policy.CityWaitMinutes
	}
}

func (e *Engine) IsAirport(location string) bool {
	return containsAny(location, e.policy.AirportKeywords)
}

func (e *Engine) IsStation(location string) bool {
	return containsAny(location, e.policy.StationKeywords)
}

// Tolerance returns how late a driver may arrive at a pickup in location.
func (e *Engine) Tolerance(location string) int {
	if e.IsAirport(location) {
		return e.policy.AirportToleranceMinutes
	}
	return e.policy.CityToleranceMinutes
}

func containsAny(location string, keywords []string) bool {
	loc := strings.ToLower(location)
	for _, k := range keywords {
		if k != "" && strings.Contains(loc, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
