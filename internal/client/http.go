package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// api is the shared HTTP plumbing of the collaborator clients: one base URL,
// one bounded-timeout http.Client, and uniform mapping of transport failures
// to ServiceUnavailableError.
type api struct {
	service string
	baseURL string
	hc      *http.Client
}

func newAPI(service, baseURL string, timeout time.Duration) api {
	return api{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// do performs a request and returns the status code and raw body. A transport
// error (refused connection, timeout, cancelled context) comes back as
// ServiceUnavailableError; status handling is left to the caller.
func (a *api) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.hc.Do(req)
	if err != nil {
		return 0, nil, &ServiceUnavailableError{Service: a.service, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &ServiceUnavailableError{Service: a.service, Err: err}
	}

	return resp.StatusCode, data, nil
}

// getJSON performs a GET and decodes a 2xx response into out. A 404 is mapped
// to NotFoundError for the named resource, any other non-2xx to ServiceError.
func (a *api) getJSON(ctx context.Context, path, resource string, out any) error {
	status, data, err := a.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	switch {
	case status >= 200 && status < 300:
		if err := json.Unmarshal(data, out); err != nil {
			return &ServiceError{Service: a.service, Status: status, Detail: "malformed response: " + err.Error()}
		}
		return nil
	case status == http.StatusNotFound:
		return &NotFoundError{Resource: resource}
	default:
		return &ServiceError{Service: a.service, Status: status, Detail: string(data)}
	}
}
