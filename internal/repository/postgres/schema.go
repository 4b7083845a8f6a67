package postgres

import (
	"context"
	"database/sql"
)

// schema holds the trips table plus the partial unique indexes that back the
// one-active-trip rule. The indexes make "check rider/vehicle has no open
// trip" and "insert new trip" a single atomic unit inside the insert itself.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS trips (
		id           UUID PRIMARY KEY,
		rider_id     UUID NOT NULL,
		vehicle_id   UUID NOT NULL,
		status       TEXT NOT NULL,
		started_at   TIMESTAMPTZ,
		ended_at     TIMESTAMPTZ,
		cancelled_at TIMESTAMPTZ,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS trips_one_open_per_rider
		ON trips (rider_id) WHERE status IN ('reserved', 'active')`,
	`CREATE UNIQUE INDEX IF NOT EXISTS trips_one_open_per_vehicle
		ON trips (vehicle_id) WHERE status IN ('reserved', 'active')`,
	`CREATE INDEX IF NOT EXISTS trips_rider_created_idx
		ON trips (rider_id, created_at DESC)`,
}

// EnsureSchema creates the trips table and its indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
