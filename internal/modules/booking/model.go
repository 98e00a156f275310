// README: Stored booking records, day views and assignment audit events.
package booking

import (
	"errors"
	"time"

	"fleetdispatch/internal/modules/scheduling"
	"fleetdispatch/internal/types"
)

var (
	ErrNotFound     = errors.New("booking not found")
	ErrConflict     = errors.New("booking changed concurrently")
	ErrInvalidState = errors.New("booking cannot be reassigned in its current status")
)

// Record is a booking as stored, with the version used for optimistic updates.
type Record struct {
	scheduling.Booking
	StatusVersion int `json:"status_version"`
}

// Day is everything the engine needs to plan one calendar date.
type Day struct {
	Date     string
	Snapshot scheduling.Snapshot
	Versions map[types.ID]int
}

func (d Day) Record(id types.ID) (Record, bool) {
	b, ok := d.Snapshot.Booking(id)
	if !ok {
		return Record{}, false
	}
	return Record{Booking: b, StatusVersion: d.Versions[id]}, true
}

const (
	SourceManual     = "manual"
	SourceAutoAssign = "auto_assign"
	SourceRelease    = "conflict_release"
	SourceBulk       = "bulk_unassign"
)

type Event struct {
	BookingID  types.ID
	FromDriver *types.ID
	ToDriver   *types.ID
	FromStatus scheduling.Status
	ToStatus   scheduling.Status
	Source     string
	RunID      string
	CreatedAt  time.Time
}

// DriverChange describes a driver assignment (ToDriver set) or release (ToDriver nil).
type DriverChange struct {
	Current    Record
	ToDriver   *types.ID
	DriverName string
	Source     string
	RunID      string
}
