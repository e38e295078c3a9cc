package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Praneeth-Narayan/DrDeepthi/internal/domain"
	"github.com/Praneeth-Narayan/DrDeepthi/internal/services"
)

func TestCreateOrder_InvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(stubBookingSvc{}, stubPaySvc{createOrder: func(context.Context, int64, string) (*domain.PaymentOrder, error) {
		t.Fatalf("service must not be called on a bad body")
		return nil, nil
	}}, nil, 0)

	r := gin.New()
	r.POST("/create-order", h.CreateOrder)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/create-order", bytes.NewBufferString(`{"amount":"fifty"}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCreateOrder_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(stubBookingSvc{}, stubPaySvc{createOrder: func(_ context.Context, amount int64, currency string) (*domain.PaymentOrder, error) {
		if amount != 50000 {
			t.Fatalf("amount = %d, want 50000", amount)
		}
		if currency != "USD" {
			t.Fatalf("currency = %q, want USD", currency)
		}
		return &domain.PaymentOrder{OrderID: "order_1", Amount: amount, Currency: currency, Receipt: "receipt_1"}, nil
	}}, nil, 0)

	r := gin.New()
	r.POST("/create-order", h.CreateOrder)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/create-order", bytes.NewBufferString(`{"amount":50000,"currency":" USD "}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201. body=%s", w.Code, w.Body.String())
	}
	var got domain.PaymentOrder
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json: %v", err)
	}
	if got.OrderID != "order_1" || got.Receipt != "receipt_1" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestCreateOrder_ErrorMappings(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid amount", services.ErrInvalidAmount, http.StatusBadRequest},
		{"gateway down", fmt.Errorf("%w: connect refused", services.ErrUpstream), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			h := New(stubBookingSvc{}, stubPaySvc{createOrder: func(context.Context, int64, string) (*domain.PaymentOrder, error) {
				return nil, tc.err
			}}, nil, 0)

			r := gin.New()
			r.POST("/create-order", h.CreateOrder)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/create-order", bytes.NewBufferString(`{"amount":50000}`))
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d. body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestVerifyPayment_Results(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, verified := range []bool{true, false} {
		verified := verified
		t.Run(fmt.Sprintf("verified=%v", verified), func(t *testing.T) {
			h := New(stubBookingSvc{}, stubPaySvc{verify: func(orderID, paymentID, signature string) (bool, error) {
				if orderID != "order_1" || paymentID != "pay_1" || signature != "sig" {
					t.Fatalf("claim not passed through: %q %q %q", orderID, paymentID, signature)
				}
				return verified, nil
			}}, nil, 0)

			r := gin.New()
			r.POST("/verify-payment", h.VerifyPayment)

			body := `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/verify-payment", bytes.NewBufferString(body))
			r.ServeHTTP(w, req)

			// Both outcomes are 200: "not verified" is a result, not an error.
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200. body=%s", w.Code, w.Body.String())
			}
			var got VerifyPaymentResponse
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("json: %v", err)
			}
			if got.Verified != verified {
				t.Fatalf("verified = %v, want %v", got.Verified, verified)
			}
		})
	}
}

func TestVerifyPayment_MissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(stubBookingSvc{}, stubPaySvc{verify: func(string, string, string) (bool, error) {
		return false, &services.ValidationError{Fields: []string{"signature"}}
	}}, nil, 0)

	r := gin.New()
	r.POST("/verify-payment", h.VerifyPayment)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verify-payment", bytes.NewBufferString(`{"razorpay_order_id":"order_1"}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != ErrCodeBadRequest || er.Message == "" {
		t.Fatalf("unexpected envelope: %+v", er)
	}
}

func TestGetPayment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(stubBookingSvc{}, stubPaySvc{fetch: func(_ context.Context, paymentID string) (map[string]interface{}, error) {
		if paymentID != "pay_1" {
			t.Fatalf("paymentID = %q", paymentID)
		}
		return map[string]interface{}{"id": "pay_1", "status": "captured"}, nil
	}}, nil, 0)

	r := gin.New()
	r.GET("/payment/:id", h.GetPayment)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payment/pay_1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body=%s", w.Code, w.Body.String())
	}
	var got map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json: %v", err)
	}
	if got["status"] != "captured" {
		t.Fatalf("unexpected body: %v", got)
	}
}

func TestGetPayment_UpstreamFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(stubBookingSvc{}, stubPaySvc{fetch: func(context.Context, string) (map[string]interface{}, error) {
		return nil, fmt.Errorf("%w: 503 from gateway", services.ErrUpstream)
	}}, nil, 0)

	r := gin.New()
	r.GET("/payment/:id", h.GetPayment)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payment/pay_1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502. body=%s", w.Code, w.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != ErrCodeUpstream {
		t.Fatalf("code = %q, want %q", er.Code, ErrCodeUpstream)
	}
}
