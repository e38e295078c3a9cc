// Payment HTTP handlers.
//
// This file exposes REST endpoints for the payment half of the booking flow:
//   - POST /create-order    (register an order with the gateway)
//   - POST /verify-payment  (check a completion signature)
//   - GET  /payment/:id     (passthrough to the gateway payment record)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Praneeth-Narayan/DrDeepthi/internal/domain"
	"github.com/Praneeth-Narayan/DrDeepthi/internal/services"
)

// PaymentService defines the payment operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PaymentService interface {
	// CreateOrder registers a gateway order for the given amount.
	CreateOrder(ctx context.Context, amount int64, currency string) (*domain.PaymentOrder, error)
	// Verify checks a payment-completion signature against the shared secret.
	Verify(orderID, paymentID, signature string) (bool, error)
	// FetchPayment returns the raw gateway record for a payment id.
	FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error)
}

//
// DTOs
//

// CreateOrderRequest is the JSON payload for creating a payment order.
type CreateOrderRequest struct {
	// Amount is the consultation fee in minor currency units (paise).
	Amount int64 `json:"amount" binding:"required" example:"50000"`
	// Currency optionally overrides the configured default (ISO 4217).
	Currency string `json:"currency" example:"INR"`
}

// VerifyPaymentRequest carries the completion claim a client receives from
// the Razorpay checkout. Field names follow the checkout callback payload.
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" example:"order_NxACg4EAXigTmq"`
	PaymentID string `json:"razorpay_payment_id" example:"pay_NxACqcHhRWHlSP"`
	Signature string `json:"razorpay_signature" example:"44422d618d76e6e8..."`
}

// VerifyPaymentResponse reports the authenticity check result.
type VerifyPaymentResponse struct {
	Verified bool `json:"verified"`
}

//
// Handlers
//

// CreateOrder godoc
// @ID          createOrder
// @Summary     Create a payment order
// @Description Registers an order with the payment gateway and returns its id, amount, currency, and receipt token.
// @Tags        Payments
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateOrderRequest  true  "Order payload"
// @Success     201  {object}  domain.PaymentOrder
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid amount"
// @Failure     502  {object}  handlers.ErrorResponse  "Gateway failure"
// @Router      /create-order [post]
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	order, err := h.paySvc.CreateOrder(c.Request.Context(), req.Amount, strings.TrimSpace(req.Currency))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, services.ErrInvalidAmount.Error())
		case errors.Is(err, services.ErrUpstream):
			fail(c, http.StatusBadGateway, ErrCodeUpstream, "failed to create order")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to create order")
		}
		return
	}
	ok(c, http.StatusCreated, order)
}

// VerifyPayment godoc
// @ID          verifyPayment
// @Summary     Verify a payment signature
// @Description Recomputes the gateway's HMAC signature for (order, payment) and reports whether the claim is authentic. A mismatch is a normal result, not an error.
// @Tags        Payments
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.VerifyPaymentRequest  true  "Completion claim"
// @Success     200  {object}  handlers.VerifyPaymentResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields"
// @Router      /verify-payment [post]
func (h *Handlers) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	verified, err := h.paySvc.Verify(req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		if ve, isVal := services.AsValidation(err); isVal {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, ve.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "verification failed")
		return
	}
	ok(c, http.StatusOK, VerifyPaymentResponse{Verified: verified})
}

// GetPayment godoc
// @ID          getPayment
// @Summary     Fetch payment details
// @Description Passthrough to the gateway's payment record for a payment id.
// @Tags        Payments
// @Produce     json
// @Param       id  path  string  true  "Payment ID"  example(pay_NxACqcHhRWHlSP)
// @Success     200  {object}  map[string]interface{}
// @Failure     400  {object}  handlers.ErrorResponse  "Missing payment id"
// @Failure     502  {object}  handlers.ErrorResponse  "Gateway failure"
// @Router      /payment/{id} [get]
func (h *Handlers) GetPayment(c *gin.Context) {
	paymentID := strings.TrimSpace(c.Param("id"))

	body, err := h.paySvc.FetchPayment(c.Request.Context(), paymentID)
	if err != nil {
		switch {
		case isValidation(err):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "payment id required")
		case errors.Is(err, services.ErrUpstream):
			fail(c, http.StatusBadGateway, ErrCodeUpstream, "failed to fetch payment details")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to fetch payment details")
		}
		return
	}
	ok(c, http.StatusOK, body)
}

// isValidation reports whether err carries service-level field validation.
func isValidation(err error) bool {
	_, isVal := services.AsValidation(err)
	return isVal
}
