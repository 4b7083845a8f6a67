package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusReserved  TripStatus = "reserved"
	TripStatusActive    TripStatus = "active"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// Terminal reports whether no further transition is permitted out of the status.
func (s TripStatus) Terminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// Open reports whether the status counts against the one-active-trip rule,
// i.e. the trip is Reserved or Active.
func (s TripStatus) Open() bool {
	return s == TripStatusReserved || s == TripStatusActive
}

// Trip represents a single rental session from reservation to completion or
// cancellation. Optional timestamps use the zero value when not yet set:
// StartedAt is set on activation, EndedAt on completion, CancelledAt on
// cancellation. Status and its timestamp always change together.
type Trip struct {
	ID          string
	RiderID     string
	VehicleID   string
	Status      TripStatus
	StartedAt   time.Time
	EndedAt     time.Time
	CancelledAt time.Time
	CreatedAt   time.Time
}
