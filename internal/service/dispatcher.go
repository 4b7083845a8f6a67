package service

import (
	"context"
	"errors"
	"time"

	"carshare/internal/client"
	"carshare/internal/domain"
)

// TripStore is the trip-store surface the dispatcher depends on. TripService
// is the production implementation; tests substitute in-memory fakes.
type TripStore interface {
	Reserve(ctx context.Context, riderID, vehicleID string) (*domain.Trip, error)
	Activate(ctx context.Context, tripID string) (*domain.Trip, error)
	Complete(ctx context.Context, tripID string) (*domain.Trip, error)
	Cancel(ctx context.Context, tripID string) (*domain.Trip, error)
	Get(ctx context.Context, tripID string) (*domain.Trip, error)
	ListByRider(ctx context.Context, riderID string) ([]*domain.Trip, error)
	ListAll(ctx context.Context) ([]*domain.Trip, error)
}

var _ TripStore = (*TripService)(nil)

// DispatcherService sequences the cross-service trip flows. There is no
// shared transaction with the collaborating services; EndTrip is an explicit
// step sequence whose point of no return is the trip reaching Completed.
type DispatcherService struct {
	trips      TripStore
	vehicles   client.VehicleClient
	billing    client.BillingClient
	telematics client.TelematicsClient
}

// NewDispatcherService creates a new DispatcherService.
func NewDispatcherService(trips TripStore, vehicles client.VehicleClient, billing client.BillingClient, telematics client.TelematicsClient) *DispatcherService {
	return &DispatcherService{
		trips:      trips,
		vehicles:   vehicles,
		billing:    billing,
		telematics: telematics,
	}
}

// StartTrip reserves a trip for the rider on the vehicle. No cross-service
// calls; the trip store's atomic reserve does all the checking.
func (d *DispatcherService) StartTrip(ctx context.Context, riderID, vehicleID string) (*domain.Trip, error) {
	return d.trips.Reserve(ctx, riderID, vehicleID)
}

// ActivateTrip activates a reserved trip.
func (d *DispatcherService) ActivateTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	return d.trips.Activate(ctx, tripID)
}

// CancelTrip cancels a reserved or active trip. No settlement is performed.
func (d *DispatcherService) CancelTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	return d.trips.Cancel(ctx, tripID)
}

// EndTrip closes a trip and settles it:
//
//  1. complete the trip (point of no return)
//  2. read the trip back for its timestamps and vehicle
//  3. fetch the vehicle, then its tariff
//  4. compute the fare
//  5. create the payment
//
// The trip is marked Completed before any settlement work, so a crash mid-way
// leaves it closed but unpaid rather than open and unpayable. A failure in
// steps 2-5 comes back as SettlementError while the trip stays Completed;
// calling EndTrip again on a Completed trip skips step 1 and replays the rest.
// (Step 5 is safe to replay: billing's duplicate guard turns a second create
// into ErrPaymentAlreadyProcessed, which is surfaced as-is.)
func (d *DispatcherService) EndTrip(ctx context.Context, tripID string) (*domain.Settlement, error) {
	trip, err := d.trips.Complete(ctx, tripID)
	if err != nil {
		var invalid *InvalidTransitionError
		if errors.As(err, &invalid) && invalid.From == domain.TripStatusCompleted {
			// Settlement retry: the trip was closed by an earlier attempt.
			trip, err = d.trips.Get(ctx, tripID)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	return d.settle(ctx, trip)
}

func (d *DispatcherService) settle(ctx context.Context, trip *domain.Trip) (*domain.Settlement, error) {
	vehicle, err := d.vehicles.GetVehicle(ctx, trip.VehicleID)
	if err != nil {
		return nil, &SettlementError{TripID: trip.ID, Err: err}
	}

	// Tariff lookup needs the vehicle's tariff id, so the two reads are
	// strictly sequential. Rates are read at settlement time, not trip start.
	tariff, err := d.vehicles.GetTariff(ctx, vehicle.TariffID)
	if err != nil {
		return nil, &SettlementError{TripID: trip.ID, Err: err}
	}

	minutes := BillableMinutes(trip, time.Now())
	amount := Fare(tariff.PricePerMinute, minutes, vehicle.BasePrice)

	payment, err := d.billing.CreatePayment(ctx, trip.ID, trip.RiderID, amount)
	if err != nil {
		if errors.Is(err, client.ErrPaymentAlreadyProcessed) {
			return nil, err
		}
		return nil, &SettlementError{TripID: trip.ID, Err: err}
	}

	return &domain.Settlement{
		TripID:       trip.ID,
		PaymentID:    payment.ID,
		PaymentToken: payment.QRToken,
	}, nil
}

// GetTrip retrieves a trip by ID.
func (d *DispatcherService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	return d.trips.Get(ctx, tripID)
}

// ListRiderTrips retrieves all trips of a rider.
func (d *DispatcherService) ListRiderTrips(ctx context.Context, riderID string) ([]*domain.Trip, error) {
	return d.trips.ListByRider(ctx, riderID)
}

// ListTrips retrieves all trips.
func (d *DispatcherService) ListTrips(ctx context.Context) ([]*domain.Trip, error) {
	return d.trips.ListAll(ctx)
}

// ListVehicles retrieves all vehicles from the vehicle service.
func (d *DispatcherService) ListVehicles(ctx context.Context) ([]client.Vehicle, error) {
	return d.vehicles.GetAllVehicles(ctx)
}

// SendVehicleCommand dispatches a telematics command to a vehicle.
func (d *DispatcherService) SendVehicleCommand(ctx context.Context, vehicleID, commandType string) (string, error) {
	if vehicleID == "" {
		return "", ErrInvalidVehicleID
	}
	return d.telematics.SendCommand(ctx, vehicleID, commandType)
}

// VehicleData combines a vehicle with its tariff rate and, when available, its
// latest telemetry snapshot.
type VehicleData struct {
	Vehicle        client.Vehicle
	PricePerMinute float64
	Telematics     *client.SensorData
}

// GetVehicleData fetches a vehicle, its tariff, and the telemetry snapshot
// matching the vehicle's license plate. Telematics has no per-vehicle query
// yet, so the full listing is filtered here.
func (d *DispatcherService) GetVehicleData(ctx context.Context, vehicleID string) (*VehicleData, error) {
	vehicle, err := d.vehicles.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	tariff, err := d.vehicles.GetTariff(ctx, vehicle.TariffID)
	if err != nil {
		return nil, err
	}

	data := &VehicleData{
		Vehicle:        *vehicle,
		PricePerMinute: tariff.PricePerMinute,
	}

	snapshots, err := d.telematics.GetAllSensorData(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snapshots {
		if snapshots[i].LicensePlate == vehicle.LicensePlate {
			data.Telematics = &snapshots[i]
			break
		}
	}

	return data, nil
}
