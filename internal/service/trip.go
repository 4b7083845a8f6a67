package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// TripService owns the trip state machine:
//
//	reserved → active → completed
//	reserved|active → cancelled
//
// No transition is permitted out of completed or cancelled. Status and the
// timestamp belonging to it always change together, in one storage statement.
type TripService struct {
	tripRepo repository.TripRepository
}

// NewTripService creates a new TripService.
func NewTripService(tripRepo repository.TripRepository) *TripService {
	return &TripService{tripRepo: tripRepo}
}

// Reserve creates a new trip in Reserved status. It fails with
// ErrRiderHasActiveTrip or ErrVehicleInUse when the rider or the vehicle
// already has a non-terminal trip; that check and the insert are one atomic
// unit in the repository, so concurrent reservations cannot both pass.
func (s *TripService) Reserve(ctx context.Context, riderID, vehicleID string) (*domain.Trip, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}

	trip := &domain.Trip{
		ID:        uuid.New().String(),
		RiderID:   riderID,
		VehicleID: vehicleID,
		Status:    domain.TripStatusReserved,
		CreatedAt: time.Now(),
	}

	if err := s.tripRepo.CreateIfNoActive(ctx, trip); err != nil {
		switch {
		case errors.Is(err, repository.ErrRiderActiveTrip):
			return nil, ErrRiderHasActiveTrip
		case errors.Is(err, repository.ErrVehicleActiveTrip):
			return nil, ErrVehicleInUse
		}
		return nil, err
	}

	return trip, nil
}

// Activate moves a Reserved trip to Active and stamps started-at.
func (s *TripService) Activate(ctx context.Context, tripID string) (*domain.Trip, error) {
	return s.transition(ctx, tripID, domain.TripStatusActive, domain.TripStatusReserved)
}

// Complete moves an Active trip to Completed and stamps ended-at.
func (s *TripService) Complete(ctx context.Context, tripID string) (*domain.Trip, error) {
	return s.transition(ctx, tripID, domain.TripStatusCompleted, domain.TripStatusActive)
}

// Cancel moves a Reserved or Active trip to Cancelled and stamps cancelled-at.
func (s *TripService) Cancel(ctx context.Context, tripID string) (*domain.Trip, error) {
	return s.transition(ctx, tripID, domain.TripStatusCancelled, domain.TripStatusReserved, domain.TripStatusActive)
}

// CancelReservation cancels a trip only while it is still Reserved. Unlike
// Cancel it never touches an Active trip, so a caller holding a stale Reserved
// snapshot cannot cancel a ride that started in the meantime.
func (s *TripService) CancelReservation(ctx context.Context, tripID string) (*domain.Trip, error) {
	return s.transition(ctx, tripID, domain.TripStatusCancelled, domain.TripStatusReserved)
}

// transition performs one state-machine edge. The repository applies the
// status check and the write atomically; when nothing matched, a follow-up
// read tells a missing trip apart from an invalid transition. That read is
// not atomic with the update, so InvalidTransitionError.From may carry a
// status newer than the one that rejected the write.
func (s *TripService) transition(ctx context.Context, tripID string, to domain.TripStatus, from ...domain.TripStatus) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.Transition(ctx, tripID, from, to, time.Now())
	if err == nil {
		return trip, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	current, getErr := s.tripRepo.GetByID(ctx, tripID)
	if getErr != nil {
		return nil, getErr
	}

	return nil, &InvalidTransitionError{From: current.Status, To: to}
}

// Get retrieves a trip by ID.
func (s *TripService) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.tripRepo.GetByID(ctx, tripID)
}

// ListByRider retrieves all trips of a rider.
func (s *TripService) ListByRider(ctx context.Context, riderID string) ([]*domain.Trip, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}
	return s.tripRepo.GetByRiderID(ctx, riderID)
}

// ListAll retrieves all trips.
func (s *TripService) ListAll(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.GetAll(ctx)
}

// ListExpiredReservations retrieves trips still Reserved after sitting
// unactivated for longer than ttl.
func (s *TripService) ListExpiredReservations(ctx context.Context, ttl time.Duration) ([]*domain.Trip, error) {
	return s.tripRepo.GetReservedBefore(ctx, time.Now().Add(-ttl))
}
