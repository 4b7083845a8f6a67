package client

import (
	"errors"
	"fmt"
)

// ErrPaymentAlreadyProcessed is returned by CreatePayment when the billing
// service reports that a payment for the trip already exists. It is a
// duplicate-guard outcome, not a hard failure: the charge exists exactly once.
var ErrPaymentAlreadyProcessed = errors.New("payment already processed for trip")

// NotFoundError is returned when a collaborator answers 404 for a resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.Resource
}

// ServiceError is returned when a collaborator answers with an unexpected
// non-2xx status.
type ServiceError struct {
	Service string
	Status  int
	Detail  string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service error: status %d: %s", e.Service, e.Status, e.Detail)
}

// ServiceUnavailableError is returned when a collaborator cannot be reached at
// all: connection failure, timeout, or cancelled context. Callers may retry.
type ServiceUnavailableError struct {
	Service string
	Err     error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("%s service unavailable: %v", e.Service, e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}
