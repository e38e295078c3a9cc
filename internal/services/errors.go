// Package services defines the business logic for payment orders and
// appointment bookings. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidAmount is returned when an order or booking amount is missing,
	// zero, or negative. Amounts are minor currency units and must be > 0.
	ErrInvalidAmount = errors.New("amount must be a positive integer")

	// ErrSlotTaken indicates the requested (date, time) slot is already held
	// by another appointment. Retrying without new input cannot succeed.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrUpstream indicates the payment gateway was unreachable or rejected
	// the call. The operation is not retried internally; callers may re-invoke.
	ErrUpstream = errors.New("payment gateway error")

	// ErrPaymentUnverified is returned by the hardened booking path when the
	// presented payment id does not correspond to a captured or authorized
	// payment at the gateway.
	ErrPaymentUnverified = errors.New("payment not verified")
)

// ValidationError reports which required fields of a request were missing or
// malformed. Handlers surface the field list so clients can correct the
// request.
type ValidationError struct {
	// Fields holds the offending field names in request order.
	Fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// AsValidation unwraps err into a *ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
