package repository

import (
	"context"
	"time"

	"carshare/internal/domain"
)

// TripRepository defines the persistence operations for trips.
//
// The storage layer owns the two hard guarantees of the trip store: the
// one-active-trip rule is enforced inside CreateIfNoActive as a single atomic
// unit, and Transition performs the status check and the status/timestamp
// write in one statement.
type TripRepository interface {
	// CreateIfNoActive persists a new trip unless the rider or the vehicle
	// already has a trip in a non-terminal status. The existence check and the
	// insert are atomic; concurrent reservations for the same rider or vehicle
	// cannot both succeed. Returns ErrRiderActiveTrip or ErrVehicleActiveTrip
	// on conflict.
	CreateIfNoActive(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID. Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetAll retrieves all trips, newest first.
	GetAll(ctx context.Context) ([]*domain.Trip, error)

	// GetByRiderID retrieves all trips of a rider, newest first.
	GetByRiderID(ctx context.Context, riderID string) ([]*domain.Trip, error)

	// Transition atomically moves a trip from one of the given statuses to the
	// target status, stamping the timestamp column that belongs to the target
	// (started_at, ended_at or cancelled_at) with at. It returns the updated
	// trip, or ErrNotFound when no row matched the id and one of the from
	// statuses; the caller disambiguates a missing trip from an invalid
	// transition with a follow-up read.
	Transition(ctx context.Context, id string, from []domain.TripStatus, to domain.TripStatus, at time.Time) (*domain.Trip, error)

	// GetReservedBefore retrieves trips still in Reserved status that were
	// created before the cutoff. Used by the reservation-expiry job.
	GetReservedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error)
}
