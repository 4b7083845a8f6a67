package jobs

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"carshare/internal/domain"
	"carshare/internal/service"
)

// ReservationStore is the trip-store surface the expiry job needs.
// CancelReservation must refuse trips that are no longer Reserved.
type ReservationStore interface {
	ListExpiredReservations(ctx context.Context, ttl time.Duration) ([]*domain.Trip, error)
	CancelReservation(ctx context.Context, tripID string) (*domain.Trip, error)
}

var _ ReservationStore = (*service.TripService)(nil)

// ReservationExpiryJob cancels trips that sat in Reserved longer than the TTL
// without being activated, freeing the vehicle for other riders. Cancellation
// goes through the trip store, so the state machine still rules: a trip
// activated between the listing and the sweep is left alone.
type ReservationExpiryJob struct {
	trips ReservationStore
	ttl   time.Duration
	cron  *cron.Cron
}

// NewReservationExpiryJob creates the expiry job. A zero TTL disables it.
func NewReservationExpiryJob(trips ReservationStore, ttl time.Duration) *ReservationExpiryJob {
	return &ReservationExpiryJob{
		trips: trips,
		ttl:   ttl,
		cron:  cron.New(),
	}
}

// Start schedules the sweep to run every minute.
func (j *ReservationExpiryJob) Start() error {
	if j.ttl <= 0 {
		return nil
	}

	if _, err := j.cron.AddFunc("@every 1m", j.run); err != nil {
		return err
	}

	j.cron.Start()
	log.Printf("reservation expiry job started (ttl=%s)", j.ttl)
	return nil
}

// Stop stops the scheduled sweeps.
func (j *ReservationExpiryJob) Stop() {
	j.cron.Stop()
}

// sweepTimeout bounds a single scheduled sweep; a hung storage round-trip
// must not stall the schedule.
const sweepTimeout = 30 * time.Second

func (j *ReservationExpiryJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	j.Sweep(ctx)
}

// Sweep cancels every reservation older than the TTL. It returns the number
// of trips cancelled.
func (j *ReservationExpiryJob) Sweep(ctx context.Context) int {
	expired, err := j.trips.ListExpiredReservations(ctx, j.ttl)
	if err != nil {
		log.Printf("reservation expiry: listing failed: %v", err)
		return 0
	}

	cancelled := 0
	for _, trip := range expired {
		if _, err := j.trips.CancelReservation(ctx, trip.ID); err != nil {
			// Lost races are expected: the rider activated or cancelled the
			// trip after it was listed.
			var invalid *service.InvalidTransitionError
			if !errors.As(err, &invalid) {
				log.Printf("reservation expiry: cancel %s failed: %v", trip.ID, err)
			}
			continue
		}
		cancelled++
	}

	if cancelled > 0 {
		log.Printf("reservation expiry: cancelled %d stale reservations", cancelled)
	}
	return cancelled
}
