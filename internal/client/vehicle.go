package client

import (
	"context"
	"time"
)

// Vehicle is the vehicle snapshot served by the vehicle-management service.
type Vehicle struct {
	ID           string  `json:"id"`
	Model        string  `json:"model"`
	LicensePlate string  `json:"license_plate"`
	State        string  `json:"state"`
	TariffID     string  `json:"tariff_id"`
	BasePrice    float64 `json:"base_price"`
}

// Tariff is the billing rate attached to a vehicle, fetched fresh on every
// settlement; it may change between trip start and trip end.
type Tariff struct {
	ID                string  `json:"id"`
	PricePerMinute    float64 `json:"price_per_minute"`
	MinimalRating     float64 `json:"minimal_rating"`
	MinimalExperience int     `json:"minimal_experience"`
}

// VehicleClient is the read-only facade over the vehicle-management service.
type VehicleClient interface {
	GetVehicle(ctx context.Context, vehicleID string) (*Vehicle, error)
	GetTariff(ctx context.Context, tariffID string) (*Tariff, error)
	GetAllVehicles(ctx context.Context) ([]Vehicle, error)
}

// HTTPVehicleClient is the HTTP implementation of VehicleClient.
type HTTPVehicleClient struct {
	api api
}

// NewVehicleClient creates a vehicle client against the given base URL. Every
// call is bounded by the given timeout.
func NewVehicleClient(baseURL string, timeout time.Duration) *HTTPVehicleClient {
	return &HTTPVehicleClient{api: newAPI("vehicles", baseURL, timeout)}
}

// GetVehicle fetches a single vehicle by ID.
func (c *HTTPVehicleClient) GetVehicle(ctx context.Context, vehicleID string) (*Vehicle, error) {
	var vehicle Vehicle
	if err := c.api.getJSON(ctx, "/vehicles/"+vehicleID, "vehicle "+vehicleID, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// GetTariff fetches a tariff by ID.
func (c *HTTPVehicleClient) GetTariff(ctx context.Context, tariffID string) (*Tariff, error) {
	var tariff Tariff
	if err := c.api.getJSON(ctx, "/tariffs/"+tariffID, "tariff "+tariffID, &tariff); err != nil {
		return nil, err
	}
	return &tariff, nil
}

// GetAllVehicles fetches all vehicles.
func (c *HTTPVehicleClient) GetAllVehicles(ctx context.Context) ([]Vehicle, error) {
	var vehicles []Vehicle
	if err := c.api.getJSON(ctx, "/vehicles", "vehicles", &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

var _ VehicleClient = (*HTTPVehicleClient)(nil)
