// Package services - PaymentService
//
// This file implements the PaymentService, the order-issuing and
// payment-verification side of the booking workflow. It validates order
// amounts, generates per-call receipt tokens, delegates order creation and
// payment lookup to the gateway client, and checks completion signatures
// against the shared secret.
//
// Service-level errors (ErrInvalidAmount, ErrUpstream) and ValidationError
// are returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Praneeth-Narayan/DrDeepthi/internal/domain"
	"github.com/Praneeth-Narayan/DrDeepthi/internal/payments"
)

// PaymentService implements the use-cases around payment orders: creating an
// order with the gateway, verifying a completed payment's signature, and
// fetching payment details.
type PaymentService struct {
	// Gateway is the payment-provider client. Injected so tests can use a stub.
	Gateway payments.Gateway

	// Secret is the shared HMAC key used to verify completion signatures.
	// It must never be logged or included in responses.
	Secret string

	// DefaultCurrency is applied when CreateOrder is called without one.
	DefaultCurrency string

	// now is the clock used for receipt generation; overridable in tests.
	now func() time.Time
}

// NewPaymentService constructs a PaymentService bound to the given gateway.
func NewPaymentService(gw payments.Gateway, secret, defaultCurrency string) *PaymentService {
	return &PaymentService{
		Gateway:         gw,
		Secret:          secret,
		DefaultCurrency: defaultCurrency,
		now:             time.Now,
	}
}

// CreateOrder registers a payment order with the gateway.
//
// Semantics:
//   - amount must be > 0 (minor currency units); otherwise ErrInvalidAmount.
//   - An empty currency falls back to the configured default.
//   - Each call gets a fresh receipt token derived from the nanosecond clock,
//     so unrelated requests never collide on gateway-side receipt dedupe.
//   - Gateway failures are wrapped in ErrUpstream and not retried; the caller
//     may re-invoke, which produces a new receipt.
func (s *PaymentService) CreateOrder(ctx context.Context, amount int64, currency string) (*domain.PaymentOrder, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		currency = s.DefaultCurrency
	}

	receipt := "receipt_" + strconv.FormatInt(s.clock().UnixNano(), 10)

	order, err := s.Gateway.CreateOrder(ctx, amount, currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return order, nil
}

// Verify checks a payment-completion claim against the shared secret.
//
// A missing orderID, paymentID, or signature is a ValidationError: the claim
// is structurally broken and was never checked. A structurally complete claim
// whose signature does not match yields (false, nil): "not verified" is a
// result, not an error.
func (s *PaymentService) Verify(orderID, paymentID, signature string) (bool, error) {
	var missing []string
	if orderID == "" {
		missing = append(missing, "order_id")
	}
	if paymentID == "" {
		missing = append(missing, "payment_id")
	}
	if signature == "" {
		missing = append(missing, "signature")
	}
	if len(missing) > 0 {
		return false, &ValidationError{Fields: missing}
	}

	return payments.VerifySignature(orderID, paymentID, signature, s.Secret), nil
}

// FetchPayment returns the raw gateway record for paymentID.
func (s *PaymentService) FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error) {
	if paymentID == "" {
		return nil, &ValidationError{Fields: []string{"payment_id"}}
	}
	body, err := s.Gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return body, nil
}

// CheckCaptured confirms that paymentID exists at the gateway with a
// captured or authorized status. Used by the hardened booking path to refuse
// bookings against unknown or failed payments.
func (s *PaymentService) CheckCaptured(ctx context.Context, paymentID string) error {
	body, err := s.Gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	status, _ := body["status"].(string)
	switch status {
	case "captured", "authorized":
		return nil
	}
	return ErrPaymentUnverified
}

// clock returns the injected clock, defaulting to time.Now for zero-value
// construction.
func (s *PaymentService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
