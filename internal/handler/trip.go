package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carshare/internal/domain"
	"carshare/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	dispatcher *service.DispatcherService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(dispatcher *service.DispatcherService) *TripHandler {
	return &TripHandler{dispatcher: dispatcher}
}

// StartTripRequest is the body of POST /trips.
type StartTripRequest struct {
	RiderID   string `json:"rider_id"`
	VehicleID string `json:"vehicle_id"`
}

// StartTripResponse is the response of POST /trips.
type StartTripResponse struct {
	TripID string `json:"trip_id"`
}

// EndTripResponse is the response of PUT /trips/:id/end.
type EndTripResponse struct {
	TripID       string `json:"trip_id"`
	PaymentID    string `json:"payment_id"`
	PaymentToken string `json:"payment_token"`
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	TripID      string `json:"trip_id"`
	RiderID     string `json:"rider_id"`
	VehicleID   string `json:"vehicle_id"`
	Status      string `json:"status"`
	StartedAt   string `json:"started_at,omitempty"`
	EndedAt     string `json:"ended_at,omitempty"`
	CancelledAt string `json:"cancelled_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func newTripResponse(trip *domain.Trip) TripResponse {
	resp := TripResponse{
		TripID:    trip.ID,
		RiderID:   trip.RiderID,
		VehicleID: trip.VehicleID,
		Status:    string(trip.Status),
		CreatedAt: trip.CreatedAt.Format(time.RFC3339),
	}
	if !trip.StartedAt.IsZero() {
		resp.StartedAt = trip.StartedAt.Format(time.RFC3339)
	}
	if !trip.EndedAt.IsZero() {
		resp.EndedAt = trip.EndedAt.Format(time.RFC3339)
	}
	if !trip.CancelledAt.IsZero() {
		resp.CancelledAt = trip.CancelledAt.Format(time.RFC3339)
	}
	return resp
}

// StartTrip handles POST /trips
func (h *TripHandler) StartTrip(c *gin.Context) {
	var req StartTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.dispatcher.StartTrip(c.Request.Context(), req.RiderID, req.VehicleID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, StartTripResponse{TripID: trip.ID})
}

// ActivateTrip handles PUT /trips/:id/activate
func (h *TripHandler) ActivateTrip(c *gin.Context) {
	trip, err := h.dispatcher.ActivateTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// EndTrip handles PUT /trips/:id/end
func (h *TripHandler) EndTrip(c *gin.Context) {
	settlement, err := h.dispatcher.EndTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, EndTripResponse{
		TripID:       settlement.TripID,
		PaymentID:    settlement.PaymentID,
		PaymentToken: settlement.PaymentToken,
	})
}

// CancelTrip handles PUT /trips/:id/cancel
func (h *TripHandler) CancelTrip(c *gin.Context) {
	trip, err := h.dispatcher.CancelTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// GetTrip handles GET /trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.dispatcher.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// GetRiderTrips handles GET /users/:id/trips
func (h *TripHandler) GetRiderTrips(c *gin.Context) {
	trips, err := h.dispatcher.ListRiderTrips(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, newTripResponse(trip))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetAll handles GET /trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.dispatcher.ListTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, newTripResponse(trip))
	}
	respondJSON(c, http.StatusOK, response)
}
