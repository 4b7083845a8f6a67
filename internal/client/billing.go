package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Payment is the payment record served by the billing service.
type Payment struct {
	ID      string  `json:"id"`
	TripID  string  `json:"trip_id"`
	RiderID string  `json:"rider_id"`
	Amount  float64 `json:"amount"`
	Status  string  `json:"status"`
	QRToken string  `json:"qr_token"`
}

// BillingClient is the facade over the billing service.
//
// CreatePayment is at-least-once from the caller's perspective: billing itself
// enforces one payment per trip, so a duplicate call returns
// ErrPaymentAlreadyProcessed instead of creating a second charge.
type BillingClient interface {
	CreatePayment(ctx context.Context, tripID, riderID string, amount float64) (*Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// HTTPBillingClient is the HTTP implementation of BillingClient.
type HTTPBillingClient struct {
	api api
}

// NewBillingClient creates a billing client against the given base URL.
func NewBillingClient(baseURL string, timeout time.Duration) *HTTPBillingClient {
	return &HTTPBillingClient{api: newAPI("billing", baseURL, timeout)}
}

type createPaymentRequest struct {
	TripID  string  `json:"trip_id"`
	RiderID string  `json:"rider_id"`
	Amount  float64 `json:"amount"`
}

type createPaymentResponse struct {
	PaymentID string `json:"payment_id"`
}

// CreatePayment asks billing to create a payment for the trip, then reads the
// created record back so the caller also gets the presentation token.
func (c *HTTPBillingClient) CreatePayment(ctx context.Context, tripID, riderID string, amount float64) (*Payment, error) {
	body := createPaymentRequest{TripID: tripID, RiderID: riderID, Amount: amount}

	status, data, err := c.api.do(ctx, http.MethodPost, "/payments", body)
	if err != nil {
		return nil, err
	}

	switch {
	case status >= 200 && status < 300:
		// fall through to the read-back below
	case status == http.StatusConflict:
		return nil, ErrPaymentAlreadyProcessed
	default:
		return nil, &ServiceError{Service: "billing", Status: status, Detail: string(data)}
	}

	var created createPaymentResponse
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, &ServiceError{Service: "billing", Status: status, Detail: "malformed response: " + err.Error()}
	}

	return c.GetPayment(ctx, created.PaymentID)
}

// GetPayment fetches a payment by ID.
func (c *HTTPBillingClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var payment Payment
	if err := c.api.getJSON(ctx, "/payments/"+paymentID, "payment "+paymentID, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

var _ BillingClient = (*HTTPBillingClient)(nil)
