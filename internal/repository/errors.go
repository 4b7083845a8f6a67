package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist, or when
	// a transition matched no row in the expected status.
	ErrNotFound = errors.New("entity not found")

	// ErrRiderActiveTrip is returned by CreateIfNoActive when the rider
	// already has a trip in a non-terminal status.
	ErrRiderActiveTrip = errors.New("rider already has an active trip")

	// ErrVehicleActiveTrip is returned by CreateIfNoActive when the vehicle
	// is already held by a trip in a non-terminal status.
	ErrVehicleActiveTrip = errors.New("vehicle already has an active trip")
)
