package tests

import (
	"context"
	"fmt"
	"sync"
	"time"

	"carshare/internal/client"
	"carshare/internal/domain"
	"carshare/internal/repository"
)

// MockTripRepository is an in-memory repository.TripRepository. A single
// mutex spans the check and the insert in CreateIfNoActive, mirroring the
// atomicity the partial unique indexes give the postgres implementation.
type MockTripRepository struct {
	mu    sync.Mutex
	trips map[string]*domain.Trip
}

// NewMockTripRepository creates an empty mock repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{trips: make(map[string]*domain.Trip)}
}

func (r *MockTripRepository) CreateIfNoActive(ctx context.Context, trip *domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.trips {
		if t.RiderID == trip.RiderID && t.Status.Open() {
			return repository.ErrRiderActiveTrip
		}
		if t.VehicleID == trip.VehicleID && t.Status.Open() {
			return repository.ErrVehicleActiveTrip
		}
	}

	copied := *trip
	r.trips[trip.ID] = &copied
	return nil
}

func (r *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *MockTripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var trips []*domain.Trip
	for _, t := range r.trips {
		copied := *t
		trips = append(trips, &copied)
	}
	return trips, nil
}

func (r *MockTripRepository) GetByRiderID(ctx context.Context, riderID string) ([]*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var trips []*domain.Trip
	for _, t := range r.trips {
		if t.RiderID == riderID {
			copied := *t
			trips = append(trips, &copied)
		}
	}
	return trips, nil
}

func (r *MockTripRepository) Transition(ctx context.Context, id string, from []domain.TripStatus, to domain.TripStatus, at time.Time) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	matched := false
	for _, s := range from {
		if t.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return nil, repository.ErrNotFound
	}

	t.Status = to
	switch to {
	case domain.TripStatusActive:
		t.StartedAt = at
	case domain.TripStatusCompleted:
		t.EndedAt = at
	case domain.TripStatusCancelled:
		t.CancelledAt = at
	}

	copied := *t
	return &copied, nil
}

func (r *MockTripRepository) GetReservedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var trips []*domain.Trip
	for _, t := range r.trips {
		if t.Status == domain.TripStatusReserved && t.CreatedAt.Before(cutoff) {
			copied := *t
			trips = append(trips, &copied)
		}
	}
	return trips, nil
}

// SetTimestamps overrides a stored trip's timestamps, for tests that need a
// precise trip duration.
func (r *MockTripRepository) SetTimestamps(id string, startedAt, endedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.trips[id]; ok {
		t.StartedAt = startedAt
		t.EndedAt = endedAt
	}
}

// SetCreatedAt backdates a stored trip's creation time, for tests exercising
// reservation expiry.
func (r *MockTripRepository) SetCreatedAt(id string, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.trips[id]; ok {
		t.CreatedAt = createdAt
	}
}

var _ repository.TripRepository = (*MockTripRepository)(nil)

// FakeVehicleClient is an in-memory client.VehicleClient.
type FakeVehicleClient struct {
	Vehicles map[string]client.Vehicle
	Tariffs  map[string]client.Tariff
	Err      error // when set, every call fails with it
}

func (c *FakeVehicleClient) GetVehicle(ctx context.Context, vehicleID string) (*client.Vehicle, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	v, ok := c.Vehicles[vehicleID]
	if !ok {
		return nil, &client.NotFoundError{Resource: "vehicle " + vehicleID}
	}
	return &v, nil
}

func (c *FakeVehicleClient) GetTariff(ctx context.Context, tariffID string) (*client.Tariff, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	t, ok := c.Tariffs[tariffID]
	if !ok {
		return nil, &client.NotFoundError{Resource: "tariff " + tariffID}
	}
	return &t, nil
}

func (c *FakeVehicleClient) GetAllVehicles(ctx context.Context) ([]client.Vehicle, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	var vehicles []client.Vehicle
	for _, v := range c.Vehicles {
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

var _ client.VehicleClient = (*FakeVehicleClient)(nil)

// FakeBillingClient is an in-memory client.BillingClient with billing's
// one-payment-per-trip duplicate guard and optional failure injection.
type FakeBillingClient struct {
	mu       sync.Mutex
	payments map[string]*client.Payment // keyed by trip id
	FailNext error                      // consumed by the next CreatePayment
	nextID   int
}

func NewFakeBillingClient() *FakeBillingClient {
	return &FakeBillingClient{payments: make(map[string]*client.Payment)}
}

func (c *FakeBillingClient) CreatePayment(ctx context.Context, tripID, riderID string, amount float64) (*client.Payment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailNext != nil {
		err := c.FailNext
		c.FailNext = nil
		return nil, err
	}

	if _, ok := c.payments[tripID]; ok {
		return nil, client.ErrPaymentAlreadyProcessed
	}

	c.nextID++
	payment := &client.Payment{
		ID:      fmt.Sprintf("payment-%d", c.nextID),
		TripID:  tripID,
		RiderID: riderID,
		Amount:  amount,
		Status:  "pending",
		QRToken: fmt.Sprintf("qr-%d", c.nextID),
	}
	c.payments[tripID] = payment
	return payment, nil
}

func (c *FakeBillingClient) GetPayment(ctx context.Context, paymentID string) (*client.Payment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.payments {
		if p.ID == paymentID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, &client.NotFoundError{Resource: "payment " + paymentID}
}

// PaymentForTrip returns the payment created for a trip, or nil.
func (c *FakeBillingClient) PaymentForTrip(tripID string) *client.Payment {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.payments[tripID]
	if !ok {
		return nil
	}
	copied := *p
	return &copied
}

var _ client.BillingClient = (*FakeBillingClient)(nil)

// FakeTelematicsClient is an in-memory client.TelematicsClient.
type FakeTelematicsClient struct {
	Snapshots []client.SensorData
	Commands  []string
}

func (c *FakeTelematicsClient) SendCommand(ctx context.Context, vehicleID, commandType string) (string, error) {
	c.Commands = append(c.Commands, vehicleID+":"+commandType)
	return fmt.Sprintf("command-%d", len(c.Commands)), nil
}

func (c *FakeTelematicsClient) GetAllSensorData(ctx context.Context) ([]client.SensorData, error) {
	return c.Snapshots, nil
}

var _ client.TelematicsClient = (*FakeTelematicsClient)(nil)
