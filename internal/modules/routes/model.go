// README: Route override model and validation.
package routes

import (
	"errors"
	"strings"
)

var ErrInvalidRoute = errors.New("invalid route")

// Entry is one travel-time record between two named locations, in either direction.
type Entry struct {
	Origin      string `json:"origin" yaml:"origin"`
	Destination string `json:"destination" yaml:"destination"`
	Minutes     int    `json:"minutes" yaml:"minutes"`
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.Origin) == "" || strings.TrimSpace(e.Destination) == "" {
		return ErrInvalidRoute
	}
	if strings.Contains(e.Origin, fieldSep) || strings.Contains(e.Destination, fieldSep) {
		return ErrInvalidRoute
	}
	if e.Minutes < 0 || e.Minutes > 24*60 {
		return ErrInvalidRoute
	}
	return nil
}
