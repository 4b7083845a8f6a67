package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/client"
	"carshare/internal/repository"
	"carshare/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Internal failures are reported opaquely; storage detail never leaves the
// boundary.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		c.JSON(code, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps the error taxonomy to HTTP status codes. The
// split matters to clients: 502 means retrying is safe, 409 and 400 mean it
// is not.
func mapErrorToHTTPStatus(err error) int {
	var (
		settlement  *service.SettlementError
		invalid     *service.InvalidTransitionError
		notFound    *client.NotFoundError
		svcErr      *client.ServiceError
		unavailable *client.ServiceUnavailableError
	)

	switch {
	// The trip is already Completed; only settlement failed. Checked first so
	// a wrapped collaborator 404 is not mistaken for a missing trip.
	case errors.As(err, &settlement):
		return http.StatusBadGateway

	// Duplicate-guard outcome from billing, not a failure to retry.
	case errors.Is(err, client.ErrPaymentAlreadyProcessed):
		return http.StatusConflict

	// Not found.
	case errors.Is(err, repository.ErrNotFound),
		errors.As(err, &notFound):
		return http.StatusNotFound

	// State machine violations.
	case errors.As(err, &invalid):
		return http.StatusBadRequest

	// Validation errors.
	case errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidTripID):
		return http.StatusBadRequest

	// Active-trip uniqueness violations.
	case errors.Is(err, service.ErrRiderHasActiveTrip),
		errors.Is(err, service.ErrVehicleInUse):
		return http.StatusConflict

	// Collaborator failures outside a settlement.
	case errors.As(err, &svcErr),
		errors.As(err, &unavailable):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
