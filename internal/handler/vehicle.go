package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carshare/internal/client"
	"carshare/internal/service"
)

// VehicleHandler handles HTTP requests for vehicle data and commands.
type VehicleHandler struct {
	dispatcher *service.DispatcherService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(dispatcher *service.DispatcherService) *VehicleHandler {
	return &VehicleHandler{dispatcher: dispatcher}
}

// VehicleResponse is the HTTP representation of a vehicle.
type VehicleResponse struct {
	ID           string  `json:"id"`
	Model        string  `json:"model"`
	LicensePlate string  `json:"license_plate"`
	State        string  `json:"state"`
	TariffID     string  `json:"tariff_id"`
	BasePrice    float64 `json:"base_price"`
}

// TelematicsResponse is the telemetry part of a vehicle-data response.
type TelematicsResponse struct {
	FuelLevel   float64 `json:"fuel_level"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DoorStatus  string  `json:"door_status"`
	Speed       float64 `json:"speed"`
	Temperature float64 `json:"temperature"`
	Timestamp   string  `json:"timestamp"`
}

// VehicleDataResponse is the response of GET /vehicles/:id/data.
type VehicleDataResponse struct {
	Vehicle        VehicleResponse     `json:"vehicle"`
	PricePerMinute float64             `json:"price_per_minute"`
	Telematics     *TelematicsResponse `json:"telematics,omitempty"`
}

func newVehicleResponse(v client.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:           v.ID,
		Model:        v.Model,
		LicensePlate: v.LicensePlate,
		State:        v.State,
		TariffID:     v.TariffID,
		BasePrice:    v.BasePrice,
	}
}

// GetAll handles GET /vehicles
func (h *VehicleHandler) GetAll(c *gin.Context) {
	vehicles, err := h.dispatcher.ListVehicles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		response = append(response, newVehicleResponse(v))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetData handles GET /vehicles/:id/data
func (h *VehicleHandler) GetData(c *gin.Context) {
	data, err := h.dispatcher.GetVehicleData(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := VehicleDataResponse{
		Vehicle:        newVehicleResponse(data.Vehicle),
		PricePerMinute: data.PricePerMinute,
	}
	if data.Telematics != nil {
		response.Telematics = &TelematicsResponse{
			FuelLevel:   data.Telematics.FuelLevel,
			Latitude:    data.Telematics.Location.Latitude,
			Longitude:   data.Telematics.Location.Longitude,
			DoorStatus:  data.Telematics.DoorStatus,
			Speed:       data.Telematics.Speed,
			Temperature: data.Telematics.Temperature,
			Timestamp:   data.Telematics.Timestamp.Format(time.RFC3339),
		}
	}

	respondJSON(c, http.StatusOK, response)
}

// SendCommandRequest is the body of POST /vehicles/:id/commands.
type SendCommandRequest struct {
	CommandType string `json:"command_type"`
}

// SendCommandResponse is the response of POST /vehicles/:id/commands.
type SendCommandResponse struct {
	CommandID string `json:"command_id"`
}

// SendCommand handles POST /vehicles/:id/commands
func (h *VehicleHandler) SendCommand(c *gin.Context) {
	var req SendCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CommandType == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	commandID, err := h.dispatcher.SendVehicleCommand(c.Request.Context(), c.Param("id"), req.CommandType)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusAccepted, SendCommandResponse{CommandID: commandID})
}
