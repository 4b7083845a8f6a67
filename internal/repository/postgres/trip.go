package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

const tripColumns = "id, rider_id, vehicle_id, status, started_at, ended_at, cancelled_at, created_at"

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

// CreateIfNoActive persists a new trip unless the rider or vehicle already has
// an open trip. The one-active-trip rule is enforced by the partial unique
// indexes on (rider_id) and (vehicle_id) WHERE status IN ('reserved','active'),
// so two concurrent reservations cannot both commit; the losing insert fails
// with a unique violation and is mapped to the matching conflict error.
func (r *TripRepository) CreateIfNoActive(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (id, rider_id, vehicle_id, status, started_at, ended_at, cancelled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.RiderID,
		trip.VehicleID,
		trip.Status,
		nullTime(trip.StartedAt),
		nullTime(trip.EndedAt),
		nullTime(trip.CancelledAt),
		trip.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "trips_one_open_per_rider":
				return repository.ErrRiderActiveTrip
			case "trips_one_open_per_vehicle":
				return repository.ErrVehicleActiveTrip
			}
		}
		return err
	}

	return nil
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetAll retrieves all trips, newest first.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrips(rows)
}

// GetByRiderID retrieves all trips of a rider, newest first.
func (r *TripRepository) GetByRiderID(ctx context.Context, riderID string) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE rider_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, riderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrips(rows)
}

// Transition atomically moves a trip into the target status, stamping the
// timestamp column owned by that status. The status check and the write are a
// single UPDATE, so no lock is held across a round-trip.
func (r *TripRepository) Transition(ctx context.Context, id string, from []domain.TripStatus, to domain.TripStatus, at time.Time) (*domain.Trip, error) {
	var column string
	switch to {
	case domain.TripStatusActive:
		column = "started_at"
	case domain.TripStatusCompleted:
		column = "ended_at"
	case domain.TripStatusCancelled:
		column = "cancelled_at"
	default:
		return nil, errors.New("postgres: no transition into status " + string(to))
	}

	query := `
		UPDATE trips SET status = $2, ` + column + ` = $3
		WHERE id = $1 AND status = ANY($4)
		RETURNING ` + tripColumns

	fromStrs := make(pq.StringArray, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id, to, at, fromStrs))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetReservedBefore retrieves trips still reserved that were created before the cutoff.
func (r *TripRepository) GetReservedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE status = $1 AND created_at < $2`

	rows, err := r.q.QueryContext(ctx, query, domain.TripStatusReserved, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrips(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var startedAt, endedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&trip.ID,
		&trip.RiderID,
		&trip.VehicleID,
		&trip.Status,
		&startedAt,
		&endedAt,
		&cancelledAt,
		&trip.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if startedAt.Valid {
		trip.StartedAt = startedAt.Time
	}
	if endedAt.Valid {
		trip.EndedAt = endedAt.Time
	}
	if cancelledAt.Valid {
		trip.CancelledAt = cancelledAt.Time
	}

	return &trip, nil
}

func scanTrips(rows *sql.Rows) ([]*domain.Trip, error) {
	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
