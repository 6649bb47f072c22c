package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for a sync attempt. The fetch client classifies every
// failure into one of these; the transport layer maps them to status
// codes. None of them are retried internally.
var (
	// ErrInvalidAccessURL means the opaque access URL could not be parsed
	// into an endpoint plus credentials.
	ErrInvalidAccessURL = errors.New("invalid access url")

	// ErrAuthExpired means the aggregator rejected the credentials or the
	// claim is gone; the user must reconnect.
	ErrAuthExpired = errors.New("aggregator credentials expired")

	// ErrFetchTimeout means the upstream read exceeded the hard wait bound
	// and was aborted. No partial payload is ever processed.
	ErrFetchTimeout = errors.New("aggregator request timed out")

	// ErrMalformedPayload means the upstream body was not the expected
	// account-set shape.
	ErrMalformedPayload = errors.New("malformed aggregator payload")

	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// ServerError is a non-auth upstream failure status.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("aggregator returned status %d", e.Status)
}

// NetworkError is a transport-level failure reaching the aggregator.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("aggregator unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
