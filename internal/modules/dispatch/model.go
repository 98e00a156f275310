// README: Dispatch commands, results and errors.
package dispatch

import (
	"errors"

	"fleetdispatch/internal/modules/scheduling"
	"fleetdispatch/internal/types"
)

var (
	ErrBadRequest        = errors.New("bad request")
	ErrDriverNotFound    = errors.New("driver not found")
	ErrBusy              = errors.New("another dispatch run holds this date")
	ErrNeedsConfirmation = errors.New("assignment needs confirmation")
)

type AssignCommand struct {
	BookingID types.ID
	DriverID  types.ID
	// Force commits the assignment even when it produces warnings or conflicts.
	Force bool
}

type AssignResult struct {
	BookingID types.ID             `json:"booking_id"`
	DriverID  types.ID             `json:"driver_id"`
	Available bool                 `json:"available"`
	Committed bool                 `json:"committed"`
	Messages  []string             `json:"messages"`
	Findings  []scheduling.Finding `json:"findings"`
}

type AvailabilityResult struct {
	BookingID         types.ID `json:"booking_id"`
	DriverID          types.ID `json:"driver_id"`
	Available         bool     `json:"available"`
	RepositionMinutes int      `json:"reposition_minutes"`
	DayLoad           int      `json:"day_load"`
}

type Suggestion struct {
	BookingID  types.ID               `json:"booking_id"`
	Driver     *scheduling.Driver     `json:"driver"`
	Candidates []scheduling.Candidate `json:"candidates"`
}

type AutoAssignCommand struct {
	Date             string
	ReleaseConflicts bool
}

type AutoAssignResult struct {
	RunID       string                    `json:"run_id"`
	Date        string                    `json:"date"`
	Released    []types.ID                `json:"released"`
	Assignments []scheduling.Assignment   `json:"assignments"`
	Unassigned  []types.ID                `json:"unassigned"`
	Report      scheduling.ConflictReport `json:"report"`
}

type BulkUnassignResult struct {
	Date       string     `json:"date"`
	Unassigned []types.ID `json:"unassigned"`
	Skipped    []types.ID `json:"skipped"`
}
