package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"carshare/internal/client"
	"carshare/internal/domain"
	"carshare/internal/service"
)

// ──────────────────────────────────────────────
// END-TRIP SETTLEMENT SAGA
// ──────────────────────────────────────────────

type dispatcherFixture struct {
	dispatcher *service.DispatcherService
	trips      *service.TripService
	tripRepo   *MockTripRepository
	vehicles   *FakeVehicleClient
	billing    *FakeBillingClient
	telematics *FakeTelematicsClient
}

func newDispatcherFixture() *dispatcherFixture {
	tripRepo := NewMockTripRepository()
	trips := service.NewTripService(tripRepo)
	vehicles := &FakeVehicleClient{
		Vehicles: map[string]client.Vehicle{
			"vehicle-x": {
				ID:           "vehicle-x",
				Model:        "Model 3",
				LicensePlate: "A123BC",
				State:        "available",
				TariffID:     "tariff-t",
				BasePrice:    3.0,
			},
		},
		Tariffs: map[string]client.Tariff{
			"tariff-t": {ID: "tariff-t", PricePerMinute: 2.0},
		},
	}
	billing := NewFakeBillingClient()
	telematics := &FakeTelematicsClient{}

	return &dispatcherFixture{
		dispatcher: service.NewDispatcherService(trips, vehicles, billing, telematics),
		trips:      trips,
		tripRepo:   tripRepo,
		vehicles:   vehicles,
		billing:    billing,
		telematics: telematics,
	}
}

// startActiveTrip reserves and activates a trip for rider A on vehicle X.
func (f *dispatcherFixture) startActiveTrip(t *testing.T) *domain.Trip {
	t.Helper()
	ctx := context.Background()

	trip, err := f.dispatcher.StartTrip(ctx, "rider-a", "vehicle-x")
	if err != nil {
		t.Fatalf("start trip: %v", err)
	}
	if _, err := f.dispatcher.ActivateTrip(ctx, trip.ID); err != nil {
		t.Fatalf("activate trip: %v", err)
	}
	return trip
}

func TestEndTrip_SettlesWithFareFromObservedTariff(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	ctx := context.Background()
	trip := f.startActiveTrip(t)

	// EndTrip stamps ended-at itself; complete through the store first and
	// pin both timestamps, so EndTrip takes the settlement-replay path with
	// a known 7m30s duration. That floors to 7 billable minutes:
	// 2.0*7 + 3.0 = 17.0.
	if _, err := f.trips.Complete(ctx, trip.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	started := time.Now().Add(-8 * time.Minute)
	f.tripRepo.SetTimestamps(trip.ID, started, started.Add(7*time.Minute+30*time.Second))

	settlement, err := f.dispatcher.EndTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("end trip: %v", err)
	}

	if settlement.TripID != trip.ID {
		t.Errorf("expected trip id %s, got %s", trip.ID, settlement.TripID)
	}
	if settlement.PaymentID == "" || settlement.PaymentToken == "" {
		t.Errorf("expected payment id and token, got %q/%q", settlement.PaymentID, settlement.PaymentToken)
	}

	payment := f.billing.PaymentForTrip(trip.ID)
	if payment == nil {
		t.Fatal("expected a payment to be created")
	}
	if payment.Amount != 17.0 {
		t.Errorf("expected amount 17.0, got %v", payment.Amount)
	}
	if payment.RiderID != "rider-a" {
		t.Errorf("expected rider-a on payment, got %s", payment.RiderID)
	}
}

func TestEndTrip_ClosesTripBeforeSettlement(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	ctx := context.Background()
	trip := f.startActiveTrip(t)

	// Billing fails: the trip must still be Completed afterwards. The point
	// of no return is step 1, deliberately.
	f.billing.FailNext = &client.ServiceUnavailableError{Service: "billing", Err: errors.New("connection refused")}

	_, err := f.dispatcher.EndTrip(ctx, trip.ID)
	var settlementErr *service.SettlementError
	if !errors.As(err, &settlementErr) {
		t.Fatalf("expected SettlementError, got %v", err)
	}

	current, _ := f.trips.Get(ctx, trip.ID)
	if current.Status != domain.TripStatusCompleted {
		t.Errorf("expected trip to stay %s, got %s", domain.TripStatusCompleted, current.Status)
	}
	if f.billing.PaymentForTrip(trip.ID) != nil {
		t.Error("expected no payment after billing failure")
	}
}

func TestEndTrip_RetryAfterSettlementFailure_Settles(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	ctx := context.Background()
	trip := f.startActiveTrip(t)

	f.billing.FailNext = &client.ServiceUnavailableError{Service: "billing", Err: errors.New("timeout")}
	if _, err := f.dispatcher.EndTrip(ctx, trip.ID); err == nil {
		t.Fatal("expected first end to fail")
	}

	before, _ := f.trips.Get(ctx, trip.ID)

	settlement, err := f.dispatcher.EndTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if settlement.PaymentID == "" {
		t.Error("expected payment on retry")
	}

	// The retry must not touch the trip again: same status, same ended-at.
	after, _ := f.trips.Get(ctx, trip.ID)
	if after.Status != domain.TripStatusCompleted {
		t.Errorf("expected status %s, got %s", domain.TripStatusCompleted, after.Status)
	}
	if !after.EndedAt.Equal(before.EndedAt) {
		t.Error("retry must not overwrite ended-at")
	}
}

func TestEndTrip_SecondSettlement_SurfacesPaymentAlreadyProcessed(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	ctx := context.Background()
	trip := f.startActiveTrip(t)

	if _, err := f.dispatcher.EndTrip(ctx, trip.ID); err != nil {
		t.Fatalf("end trip: %v", err)
	}

	_, err := f.dispatcher.EndTrip(ctx, trip.ID)
	if !errors.Is(err, client.ErrPaymentAlreadyProcessed) {
		t.Errorf("expected ErrPaymentAlreadyProcessed, got %v", err)
	}

	// Distinct from a settlement failure: the charge exists exactly once.
	var settlementErr *service.SettlementError
	if errors.As(err, &settlementErr) {
		t.Error("duplicate payment must not be reported as settlement failure")
	}
}

func TestEndTrip_VehicleGone_IsSettlementFailure(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	ctx := context.Background()
	trip := f.startActiveTrip(t)

	delete(f.vehicles.Vehicles, "vehicle-x")

	_, err := f.dispatcher.EndTrip(ctx, trip.ID)
	var settlementErr *service.SettlementError
	if !errors.As(err, &settlementErr) {
		t.Fatalf("expected SettlementError, got %v", err)
	}

	// The wrapped cause stays inspectable.
	var notFound *client.NotFoundError
	if !errors.As(err, &notFound) {
		t.Error("expected wrapped NotFoundError cause")
	}
}

func TestEndTrip_OnReservedTrip_Fails(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	ctx := context.Background()

	trip, err := f.dispatcher.StartTrip(ctx, "rider-a", "vehicle-x")
	if err != nil {
		t.Fatalf("start trip: %v", err)
	}

	_, err = f.dispatcher.EndTrip(ctx, trip.ID)
	var invalid *service.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if invalid.From != domain.TripStatusReserved {
		t.Errorf("expected from=%s, got %s", domain.TripStatusReserved, invalid.From)
	}
	if f.billing.PaymentForTrip(trip.ID) != nil {
		t.Error("no settlement may run for a trip that was never active")
	}
}

func TestEndTrip_OnCancelledTrip_Fails(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	ctx := context.Background()
	trip := f.startActiveTrip(t)

	if _, err := f.dispatcher.CancelTrip(ctx, trip.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := f.dispatcher.EndTrip(ctx, trip.ID)
	var invalid *service.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if invalid.From != domain.TripStatusCancelled {
		t.Errorf("expected from=%s, got %s", domain.TripStatusCancelled, invalid.From)
	}
}

func TestGetVehicleData_MatchesTelemetryByLicensePlate(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.telematics.Snapshots = []client.SensorData{
		{LicensePlate: "Z999ZZ", FuelLevel: 10},
		{LicensePlate: "A123BC", FuelLevel: 64, DoorStatus: "locked"},
	}

	data, err := f.dispatcher.GetVehicleData(context.Background(), "vehicle-x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if data.PricePerMinute != 2.0 {
		t.Errorf("expected price per minute 2.0, got %v", data.PricePerMinute)
	}
	if data.Telematics == nil || data.Telematics.FuelLevel != 64 {
		t.Errorf("expected the A123BC snapshot, got %+v", data.Telematics)
	}
}
