package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// SensorData is one telemetry snapshot reported by a vehicle.
type SensorData struct {
	VIN          string    `json:"vin"`
	LicensePlate string    `json:"license_plate"`
	FuelLevel    float64   `json:"fuel_level"`
	Location     Location  `json:"location"`
	DoorStatus   string    `json:"door_status"`
	Speed        float64   `json:"speed"`
	Temperature  float64   `json:"temperature"`
	Timestamp    time.Time `json:"timestamp"`
}

// Location is a GPS coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TelematicsClient is the facade over the telematics service: vehicle commands
// out, sensor snapshots in. The service has no per-vehicle sensor query yet,
// only the full listing.
type TelematicsClient interface {
	SendCommand(ctx context.Context, vehicleID, commandType string) (string, error)
	GetAllSensorData(ctx context.Context) ([]SensorData, error)
}

// HTTPTelematicsClient is the HTTP implementation of TelematicsClient.
type HTTPTelematicsClient struct {
	api api
}

// NewTelematicsClient creates a telematics client against the given base URL.
func NewTelematicsClient(baseURL string, timeout time.Duration) *HTTPTelematicsClient {
	return &HTTPTelematicsClient{api: newAPI("telematics", baseURL, timeout)}
}

type sendCommandRequest struct {
	VehicleID   string `json:"vehicle_id"`
	CommandType string `json:"command_type"`
}

type sendCommandResponse struct {
	CommandID string `json:"command_id"`
}

// SendCommand dispatches a command (lock, unlock, ...) to a vehicle and
// returns the command ID assigned by telematics.
func (c *HTTPTelematicsClient) SendCommand(ctx context.Context, vehicleID, commandType string) (string, error) {
	body := sendCommandRequest{VehicleID: vehicleID, CommandType: commandType}

	status, data, err := c.api.do(ctx, http.MethodPost, "/commands", body)
	if err != nil {
		return "", err
	}

	switch {
	case status >= 200 && status < 300:
		var created sendCommandResponse
		if err := json.Unmarshal(data, &created); err != nil {
			return "", &ServiceError{Service: "telematics", Status: status, Detail: "malformed response: " + err.Error()}
		}
		return created.CommandID, nil
	case status == http.StatusNotFound:
		return "", &NotFoundError{Resource: "vehicle " + vehicleID}
	default:
		return "", &ServiceError{Service: "telematics", Status: status, Detail: string(data)}
	}
}

// GetAllSensorData fetches every known telemetry snapshot.
func (c *HTTPTelematicsClient) GetAllSensorData(ctx context.Context) ([]SensorData, error) {
	var data []SensorData
	if err := c.api.getJSON(ctx, "/sensors", "sensor data", &data); err != nil {
		return nil, err
	}
	return data, nil
}

var _ TelematicsClient = (*HTTPTelematicsClient)(nil)
