// Package payments integrates the Razorpay payment gateway.
//
// This file wraps the official razorpay-go SDK behind the narrow Gateway
// interface consumed by the service layer, so tests can substitute a stub and
// no other package depends on the SDK's map-based API directly.
package payments

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/Praneeth-Narayan/DrDeepthi/internal/domain"
)

// Gateway abstracts the payment-provider operations the booking core needs.
//
// Implementations must be safe for concurrent use. Calls are single-shot:
// gateway failures are returned to the caller without internal retries (the
// caller may re-invoke with a fresh receipt).
type Gateway interface {
	// CreateOrder registers a new order with the gateway and returns the
	// gateway-assigned identifier. Funds are auto-captured on payment; no
	// second capture step is required.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*domain.PaymentOrder, error)

	// FetchPayment retrieves the raw gateway record for a payment id.
	FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error)
}

// RazorpayGateway implements Gateway on top of the razorpay-go client.
type RazorpayGateway struct {
	client *razorpay.Client
}

var _ Gateway = (*RazorpayGateway)(nil)

// NewRazorpayGateway constructs a gateway client from API credentials.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder issues one outbound order-creation call. payment_capture=1
// instructs Razorpay to capture authorized funds automatically.
//
// The SDK is not context-aware; ctx is honored up front so an already
// cancelled request does not spend an outbound call.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*domain.PaymentOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("razorpay order create: response missing order id")
	}
	return &domain.PaymentOrder{
		OrderID:  id,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}

// FetchPayment is a passthrough to the gateway's payment lookup.
func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay payment fetch: %w", err)
	}
	return body, nil
}
