// Booking HTTP handlers.
//
// This file exposes REST endpoints for appointment resources:
//   - POST /appointments  (book a slot; supports Idempotency-Key replays)
//   - GET  /appointments  (list, with weak ETag support)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Praneeth-Narayan/DrDeepthi/internal/domain"
	"github.com/Praneeth-Narayan/DrDeepthi/internal/http/middleware"
	"github.com/Praneeth-Narayan/DrDeepthi/internal/repo"
	"github.com/Praneeth-Narayan/DrDeepthi/internal/services"
)

// BookingService defines the appointment operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type BookingService interface {
	// Book validates the request and atomically reserves its slot.
	Book(ctx context.Context, req services.BookingRequest) (*domain.Appointment, error)
	// List returns all appointments ordered by slot.
	List(ctx context.Context) ([]domain.Appointment, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for bookings and payments. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic; the GORM handle is used only for conditional-response stats
// and idempotency records.
type Handlers struct {
	bookingSvc BookingService
	paySvc     PaymentService
	db         *gorm.DB
	idemTTL    time.Duration // zero disables replay recording
}

// New constructs and returns a Handlers instance bound to the given services.
// idemTTL bounds how long a recorded booking replay stays servable; zero
// disables replay recording.
func New(bookingSvc BookingService, paySvc PaymentService, db *gorm.DB, idemTTL time.Duration) *Handlers {
	return &Handlers{bookingSvc: bookingSvc, paySvc: paySvc, db: db, idemTTL: idemTTL}
}

//
// DTOs
//

// BookAppointmentRequest is the JSON payload for booking an appointment.
// Field names match the original web client's payload.
type BookAppointmentRequest struct {
	Name            string `json:"name" example:"A. Sharma"`
	Email           string `json:"email" example:"a.sharma@example.com"`
	Phone           string `json:"phone" example:"+919876543210"`
	Reason          string `json:"reason" example:"follow-up consultation"`
	AppointmentDate string `json:"appointmentDate" example:"2024-06-01"`
	AppointmentTime string `json:"appointmentTime" example:"14:30"`
	PaymentID       string `json:"paymentId" example:"pay_NxACqcHhRWHlSP"`
	Amount          int64  `json:"amount" example:"50000"`
}

//
// Handlers
//

// BookAppointment godoc
// @ID          bookAppointment
// @Summary     Book an appointment slot
// @Description Atomically reserves the (date, time) slot and persists the appointment. Exactly one of any set of concurrent requests for a slot succeeds.
// @Tags        Appointments
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Safe-retry key for this booking"
// @Param       body  body  handlers.BookAppointmentRequest  true  "Booking payload"
// @Success     201  {object}  domain.Appointment
// @Success     200  {object}  domain.Appointment  "Idempotent replay of a prior booking"
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or invalid fields"
// @Failure     409  {object}  handlers.ErrorResponse  "Slot already booked"
// @Failure     500  {object}  handlers.ErrorResponse  "Persistence failure"
// @Router      /appointments [post]
func (h *Handlers) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()

	// Serve a recorded replay before attempting a second reservation.
	idemKey, hasKey := middleware.GetIdempotencyKey(c)
	slotKey := h.slotKeyFor(req)
	if hasKey && h.idemTTL > 0 && slotKey != "" {
		if appt, found := h.replay(ctx, c.ClientIP(), slotKey, idemKey); found {
			ok(c, http.StatusOK, appt)
			return
		}
	}

	appt, err := h.bookingSvc.Book(ctx, services.BookingRequest{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Reason:    req.Reason,
		Date:      req.AppointmentDate,
		Time:      req.AppointmentTime,
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
	})
	if err != nil {
		switch {
		case isValidation(err):
			middleware.ObserveBooking("invalid")
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrPaymentUnverified):
			middleware.ObserveBooking("invalid")
			fail(c, http.StatusBadRequest, ErrCodePaymentUnverified, "payment could not be verified")
		case errors.Is(err, services.ErrSlotTaken):
			middleware.ObserveBooking("conflict")
			fail(c, http.StatusConflict, ErrCodeSlotTaken, "this time slot is already booked")
		case errors.Is(err, services.ErrUpstream):
			middleware.ObserveBooking("error")
			fail(c, http.StatusBadGateway, ErrCodeUpstream, "payment gateway unavailable")
		default:
			middleware.ObserveBooking("error")
			fail(c, http.StatusInternalServerError, ErrCodeBookingFailed, "error booking appointment")
		}
		return
	}
	middleware.ObserveBooking("booked")

	// Best effort: record the outcome so a retried POST can be replayed.
	if hasKey && h.idemTTL > 0 && slotKey != "" {
		if _, err := repo.CreateIdempotency(ctx, h.db, c.ClientIP(), slotKey, idemKey, appt.ID, http.StatusCreated, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("record idempotency")
		}
	}

	ok(c, http.StatusCreated, appt)
}

// ListAppointments godoc
// @ID          listAppointments
// @Summary     List appointments
// @Description Returns every appointment ordered by slot. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Appointments
// @Produce     json
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {array}   domain.Appointment
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /appointments [get]
func (h *Handlers) ListAppointments(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if h.db != nil {
		count, maxTS, err := repo.AppointmentsStats(ctx, h.db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"appointments:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.bookingSvc.List(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "error fetching appointments")
		return
	}
	if items == nil {
		items = []domain.Appointment{}
	}
	ok(c, http.StatusOK, items)
}

// replay returns the previously booked appointment for an idempotency tuple,
// if one was recorded and has not expired.
func (h *Handlers) replay(ctx context.Context, clientID, slotKey, key string) (*domain.Appointment, bool) {
	rec, err := repo.GetIdempotency(ctx, h.db, clientID, slotKey, key, time.Now().UTC())
	if err != nil || rec == nil {
		return nil, false
	}
	appt, err := repo.GetAppointment(ctx, h.db, rec.AppointmentID)
	if err != nil {
		return nil, false
	}
	return appt, true
}

// slotKeyFor derives the canonical slot key from the raw request, or "" when
// the date does not parse (validation will reject the request downstream).
func (h *Handlers) slotKeyFor(req BookAppointmentRequest) string {
	date, err := services.ParseDate(req.AppointmentDate)
	if err != nil {
		return ""
	}
	return services.SlotKey(date, req.AppointmentTime)
}
