package booking

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports malformed or unresolvable input, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// ConflictError reports that the requested slot was lost to a concurrent
// booking; the client should re-query availability and retry.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// InvalidTransitionError reports an illegal booking status change.
type InvalidTransitionError struct {
	From, To string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking cannot be transitioned from %s to %s", e.From, e.To)
}

// InvalidStateError reports an operation applied to a booking whose current
// state does not allow it (e.g. refunding an unpaid booking).
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

// AuthorizationError reports that the actor lacks rights over the booking or
// its service.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// PaymentProviderError reports an upstream payment-provider failure. It is
// retryable from the client's point of view.
type PaymentProviderError struct {
	Message string
	Err     error
}

func (e *PaymentProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PaymentProviderError) Unwrap() error { return e.Err }
