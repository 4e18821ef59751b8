package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput covers caller mistakes (missing form id, missing data).
	// Adapters map it to 400 with the specific validation message key.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized covers both missing/bad agent tokens and upstream 401s.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("resource not found")
	// ErrUnavailable signals the upstream could not be reached at all
	// (connection refused or deadline exceeded). Maps to 503.
	ErrUnavailable = errors.New("service unavailable")
	// ErrQuotaExceeded is returned by the submission-quota gate. Maps to 429.
	ErrQuotaExceeded = errors.New("submission quota exceeded")
	// ErrInsufficientBalance is returned by the balance gate when the agency
	// float account is below the configured minimum.
	ErrInsufficientBalance = errors.New("insufficient account balance")
)

// GatewayErrorKind classifies an outbound call failure. The pipeline decides
// policy (abort vs proceed) purely from the kind, never from the raw message.
type GatewayErrorKind string

const (
	GatewayAuthFailed  GatewayErrorKind = "AUTH_FAILED"
	GatewayNotFound    GatewayErrorKind = "NOT_FOUND"
	GatewayBadRequest  GatewayErrorKind = "BAD_REQUEST"
	GatewayUnavailable GatewayErrorKind = "UNAVAILABLE"
	GatewayUnknown     GatewayErrorKind = "UNKNOWN"
)

// GatewayError is the classified failure of one outbound HTTP call.
type GatewayError struct {
	Kind    GatewayErrorKind
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s (http %d): %s", e.Kind, e.Status, e.Message)
}

// Unwrap lets errors.Is treat gateway failures as the matching sentinel so
// adapters keep a single error-to-status mapping.
func (e *GatewayError) Unwrap() error {
	switch e.Kind {
	case GatewayAuthFailed:
		return ErrUnauthorized
	case GatewayNotFound:
		return ErrNotFound
	case GatewayBadRequest:
		return ErrInvalidInput
	case GatewayUnavailable:
		return ErrUnavailable
	default:
		return nil
	}
}

// AsGatewayError extracts a GatewayError from an error chain, if present.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
