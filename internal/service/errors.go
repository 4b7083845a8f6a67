package service

import (
	"errors"
	"fmt"

	"carshare/internal/domain"
)

var (
	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidVehicleID is returned when vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrRiderHasActiveTrip is returned when the rider already has a trip in a
	// non-terminal status.
	ErrRiderHasActiveTrip = errors.New("rider already has an active trip")

	// ErrVehicleInUse is returned when the vehicle is already held by a trip
	// in a non-terminal status.
	ErrVehicleInUse = errors.New("vehicle is already in use")
)

// InvalidTransitionError is returned when a trip is asked to move to a status
// its state machine does not permit from the current one. It is a client
// error; retrying without changing the trip first will fail again.
type InvalidTransitionError struct {
	From domain.TripStatus
	To   domain.TripStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid trip status transition: from %s to %s", e.From, e.To)
}

// SettlementError wraps a failure that happened after the point of no return
// of EndTrip: the trip is already Completed, only the settlement steps failed.
// Re-invoking EndTrip on the same trip replays settlement without touching the
// trip status again.
type SettlementError struct {
	TripID string
	Err    error
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement failed for trip %s: %v", e.TripID, e.Err)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}
