package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingClient_CreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/payments":
			var req struct {
				TripID  string  `json:"trip_id"`
				RiderID string  `json:"rider_id"`
				Amount  float64 `json:"amount"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "trip-1", req.TripID)
			assert.Equal(t, "rider-a", req.RiderID)
			assert.Equal(t, 17.0, req.Amount)

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"payment_id": "payment-9"}`))

		case r.Method == http.MethodGet && r.URL.Path == "/payments/payment-9":
			w.Write([]byte(`{
				"id": "payment-9",
				"trip_id": "trip-1",
				"rider_id": "rider-a",
				"amount": 17.0,
				"status": "pending",
				"qr_token": "qr-9"
			}`))

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	c := NewBillingClient(srv.URL, time.Second)
	payment, err := c.CreatePayment(context.Background(), "trip-1", "rider-a", 17.0)

	require.NoError(t, err)
	assert.Equal(t, "payment-9", payment.ID)
	assert.Equal(t, "qr-9", payment.QRToken)
	assert.Equal(t, 17.0, payment.Amount)
}

func TestBillingClient_CreatePayment_Duplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := NewBillingClient(srv.URL, time.Second)
	_, err := c.CreatePayment(context.Background(), "trip-1", "rider-a", 17.0)

	require.ErrorIs(t, err, ErrPaymentAlreadyProcessed)
}

func TestBillingClient_CreatePayment_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of funds routing", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewBillingClient(srv.URL, time.Second)
	_, err := c.CreatePayment(context.Background(), "trip-1", "rider-a", 17.0)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadGateway, svcErr.Status)
	assert.Equal(t, "billing", svcErr.Service)
}

func TestBillingClient_CreatePayment_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewBillingClient(srv.URL, time.Second)
	_, err := c.CreatePayment(context.Background(), "trip-1", "rider-a", 17.0)

	var unavailable *ServiceUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "billing", unavailable.Service)
}

func TestBillingClient_GetPayment_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewBillingClient(srv.URL, time.Second)
	_, err := c.GetPayment(context.Background(), "missing")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}
