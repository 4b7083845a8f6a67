package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicleClient_GetVehicle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/vehicles/vehicle-x", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "vehicle-x",
			"model": "Model 3",
			"license_plate": "A123BC",
			"state": "available",
			"tariff_id": "tariff-t",
			"base_price": 3.5
		}`))
	}))
	defer srv.Close()

	c := NewVehicleClient(srv.URL, time.Second)
	vehicle, err := c.GetVehicle(context.Background(), "vehicle-x")

	require.NoError(t, err)
	assert.Equal(t, "vehicle-x", vehicle.ID)
	assert.Equal(t, "A123BC", vehicle.LicensePlate)
	assert.Equal(t, "tariff-t", vehicle.TariffID)
	assert.Equal(t, 3.5, vehicle.BasePrice)
}

func TestVehicleClient_GetVehicle_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewVehicleClient(srv.URL, time.Second)
	_, err := c.GetVehicle(context.Background(), "nope")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Resource, "nope")
}

func TestVehicleClient_GetTariff_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewVehicleClient(srv.URL, time.Second)
	_, err := c.GetTariff(context.Background(), "tariff-t")

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusInternalServerError, svcErr.Status)
	assert.Equal(t, "vehicles", svcErr.Service)
}

func TestVehicleClient_Unreachable(t *testing.T) {
	// Closed server: the connection is refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewVehicleClient(srv.URL, time.Second)
	_, err := c.GetVehicle(context.Background(), "vehicle-x")

	var unavailable *ServiceUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "vehicles", unavailable.Service)
	assert.Error(t, errors.Unwrap(unavailable))
}

func TestVehicleClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewVehicleClient(srv.URL, 50*time.Millisecond)
	_, err := c.GetVehicle(context.Background(), "vehicle-x")

	var unavailable *ServiceUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestVehicleClient_GetAllVehicles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vehicles", r.URL.Path)
		w.Write([]byte(`[{"id": "v1"}, {"id": "v2"}]`))
	}))
	defer srv.Close()

	c := NewVehicleClient(srv.URL, time.Second)
	vehicles, err := c.GetAllVehicles(context.Background())

	require.NoError(t, err)
	require.Len(t, vehicles, 2)
	assert.Equal(t, "v1", vehicles[0].ID)
}

func TestVehicleClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewVehicleClient(srv.URL, time.Second)
	_, err := c.GetVehicle(context.Background(), "vehicle-x")

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Contains(t, svcErr.Detail, "malformed response")
}
