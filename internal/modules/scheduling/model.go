// README: Booking, driver, vehicle and shift snapshots consumed by the scheduling engine.
package scheduling

import "fleetdispatch/internal/types"

type Status string

const (
	StatusPending    Status = "Pending"
	StatusConfirmed  Status = "Confirmed"
	StatusEnRoute    Status = "En Route"
	StatusAtOrigin   Status = "At Origin"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// Active reports whether a booking in this status takes part in scheduling.
func (s Status) Active() bool {
	return s != StatusCompleted && s != StatusCancelled
}

// AllowedTransitions represents the booking lifecycle as code.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusEnRoute, StatusPending, StatusCancelled},
	StatusEnRoute:    {StatusAtOrigin, StatusCancelled},
	StatusAtOrigin:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	if from == to && from.Active() {
		return true
	}
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

type VehicleClass string

const (
	ClassStandard VehicleClass = "Standard"
	ClassPremium  VehicleClass = "Premium"
	ClassVan      VehicleClass = "Van"
	ClassMinibus  VehicleClass = "Minibus"
)

type DriverStatus string

const (
	DriverWorking DriverStatus = "Working"
	DriverPaused  DriverStatus = "Paused"
	DriverOff     DriverStatus = "Off"
)

// Dispatchable reports whether the driver's live flag allows new work.
func (s DriverStatus) Dispatchable() bool {
	return s == DriverWorking || s == DriverPaused
}

type Booking struct {
	ID           types.ID     `json:"id"`
	PickupDate   string       `json:"pickup_date"`
	PickupTime   string       `json:"pickup_time"`
	Origin       string       `json:"origin"`
	Destination  string       `json:"destination"`
	PaxCount     int          `json:"pax_count"`
	VehicleClass VehicleClass `json:"vehicle_class"`
	Status       Status       `json:"status"`
	DriverID     *types.ID    `json:"driver_id,omitempty"`
	DriverName   string       `json:"assigned_driver_name,omitempty"`
}

// Pax returns the passenger count, reading missing values as one passenger.
func (b Booking) Pax() int {
	if b.PaxCount <= 0 {
		return 1
	}
	return b.PaxCount
}

// Class returns the required vehicle class, defaulting to Standard.
func (b Booking) Class() VehicleClass {
	if b.VehicleClass == "" {
		return ClassStandard
	}
	return b.VehicleClass
}

// AssignedTo reports whether the booking is assigned to driverID.
func (b Booking) AssignedTo(driverID types.ID) bool {
	return b.DriverID != nil && *b.DriverID == driverID
}

type Driver struct {
	ID     types.ID     `json:"id"`
	Name   string       `json:"name"`
	Status DriverStatus `json:"current_status"`
	Plate  *string      `json:"plate,omitempty"`
}

type Vehicle struct {
	ID       types.ID     `json:"id"`
	Plate    string       `json:"plate"`
	Capacity int          `json:"capacity"`
	Category VehicleClass `json:"category"`
}

const (
	ShiftTypeLibre = "Libre"
	ShiftTypeOff   = "OFF"
)

type Shift struct {
	DriverID  types.ID  `json:"driver_id"`
	Date      string    `json:"date"`
	Type      string    `json:"type"`
	Hours     *string   `json:"hours,omitempty"`
	VehicleID *types.ID `json:"vehicle_id,omitempty"`
}

// Working reports whether the shift type is a work code rather than an off-day sentinel.
func (s Shift) Working() bool {
	return s.Type != ShiftTypeLibre && s.Type != ShiftTypeOff
}

// Snapshot is the immutable roster and booking view a decision is taken against.
type Snapshot struct {
	Drivers  []Driver  `json:"drivers"`
	Vehicles []Vehicle `json:"vehicles"`
	Shifts   []Shift   `json:"shifts"`
	Bookings []Booking `json:"bookings"`
}
