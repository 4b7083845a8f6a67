package service

import (
	"time"

	"carshare/internal/domain"
)

// BillableMinutes returns the number of minutes a trip is billed for: the
// elapsed time between started-at and ended-at, floored to whole minutes and
// clamped to a minimum of one minute. When either timestamp is missing the
// elapsed time falls back to now minus created-at.
func BillableMinutes(trip *domain.Trip, now time.Time) int64 {
	var elapsed time.Duration
	if !trip.StartedAt.IsZero() && !trip.EndedAt.IsZero() {
		elapsed = trip.EndedAt.Sub(trip.StartedAt)
	} else {
		elapsed = now.Sub(trip.CreatedAt)
	}

	minutes := int64(elapsed / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// Fare computes the amount charged for a trip. Pure: same inputs always yield
// the same amount, and there are no failure modes.
func Fare(pricePerMinute float64, minutes int64, basePrice float64) float64 {
	return pricePerMinute*float64(minutes) + basePrice
}
