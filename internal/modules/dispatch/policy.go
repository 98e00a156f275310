// README: Builds the engine policy from configuration.
package dispatch

import (
	"fmt"
	"time"

	"fleetdispatch/internal/config"
	"fleetdispatch/internal/modules/scheduling"
)

func PolicyFromConfig(cfg config.PolicyConfig) (scheduling.Policy, error) {
	p := scheduling.DefaultPolicy()
	p.AirportWaitMinutes = cfg.AirportWaitMin
	p.StationWaitMinutes = cfg.StationWaitMin
	p.CityWaitMinutes = cfg.CityWaitMin
	p.SameLocationMinutes = cfg.SameLocationMin
	p.DefaultTravelMinutes = cfg.DefaultTravelMin
	p.SafetyBufferMinutes = cfg.SafetyBufferMin
	p.CityToleranceMinutes = cfg.CityToleranceMin
	p.AirportToleranceMinutes = cfg.AirportToleranceMin
	p.RequireVehicle = cfg.RequireVehicle
	if cfg.HomeBase != "" {
		p.HomeBase = cfg.HomeBase
	}
	if len(cfg.AirportKeywords) > 0 {
		p.AirportKeywords = cfg.AirportKeywords
	}
	if len(cfg.StationKeywords) > 0 {
		p.StationKeywords = cfg.StationKeywords
	}
	if cfg.TimeZone != "" {
		loc, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return scheduling.Policy{}, fmt.Errorf("load time zone %q: %w", cfg.TimeZone, err)
		}
		p.Location = loc
	}
	return p, nil
}
