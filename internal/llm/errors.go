package llm

import (
	"errors"
	"fmt"
)

// ErrRemoteUnavailable matches every failure of the remote model.
var ErrRemoteUnavailable = errors.New("remote model unavailable")

// ErrNotConfigured is returned by NewClient when the endpoint or credential is missing.
var ErrNotConfigured = errors.New("remote model not configured")

// Reason says why a remote call produced no verdict.
type Reason string

const (
	ReasonTimeout     Reason = "timeout"
	ReasonTransport   Reason = "transport"
	ReasonBadStatus   Reason = "bad_status"
	ReasonMalformed   Reason = "malformed_response"
	ReasonRateLimited Reason = "rate_limited"
	ReasonCircuitOpen Reason = "circuit_open"
)

// UnavailableError is the failure branch of a remote judgement.
type UnavailableError struct {
	Reason Reason
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("remote model unavailable: %s", e.Reason)
	}
	return fmt.Sprintf("remote model unavailable: %s: %v", e.Reason, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

func unavailable(reason Reason, err error) *UnavailableError {
	return &UnavailableError{Reason: reason, Err: err}
}
