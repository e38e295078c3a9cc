// Package services - BookingService
//
// This file implements the BookingService, which orchestrates appointment
// creation: it validates the request, normalizes the appointment date to a
// pure calendar date, optionally re-checks the presented payment against the
// gateway, and then claims the slot with a single unique-constrained insert.
//
// There is deliberately no find-then-insert availability check. The insert
// either reserves the slot and persists the appointment in one atomic
// statement, or fails with a uniqueness violation that the repository
// translates into a conflict. Under concurrency, exactly one of any set of
// competing requests for a slot succeeds.
package services

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Praneeth-Narayan/DrDeepthi/internal/domain"
	"github.com/Praneeth-Narayan/DrDeepthi/internal/repo"
)

// AppointmentRepo defines the repository contract required by BookingService.
// Implementations are responsible for persistence of appointment records.
type AppointmentRepo interface {
	// CreateAppointment atomically reserves the slot and inserts the record.
	// Returns repo.ErrSlotTaken when the slot is already held.
	CreateAppointment(ctx context.Context, db *gorm.DB, appt *domain.Appointment) error

	// ListAppointments returns all appointments ordered by slot.
	ListAppointments(ctx context.Context, db *gorm.DB) ([]domain.Appointment, error)
}

// PaymentChecker re-validates a presented payment id against the gateway.
// See BookingService.Payments.
type PaymentChecker interface {
	CheckCaptured(ctx context.Context, paymentID string) error
}

// BookingRequest carries the client-supplied booking fields. Date is accepted
// as RFC 3339 or "2006-01-02"; the time-of-day portion, if any, is discarded
// during normalization.
type BookingRequest struct {
	Name      string
	Email     string
	Phone     string
	Reason    string
	Date      string
	Time      string
	PaymentID string
	Amount    int64
}

// BookingService provides appointment booking and listing. It enforces the
// request contract and delegates slot atomicity to the repository's
// unique-constrained insert.
type BookingService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the appointment repository used by this service.
	Repo AppointmentRepo

	// SlotTimes optionally restricts time tokens to a fixed vocabulary.
	// Empty means any well-formed HH:MM token is bookable.
	SlotTimes []string

	// Payments, when non-nil, makes Book re-check the presented payment id
	// with the gateway before reserving. Nil preserves the two-step client
	// flow in which verification happens in a separate VerifyPayment call.
	Payments PaymentChecker
}

// NewBookingService constructs a BookingService with the given dependencies.
func NewBookingService(db *gorm.DB, r AppointmentRepo) *BookingService {
	return &BookingService{DB: db, Repo: r}
}

// slotTimeRE matches 24-hour HH:MM time tokens.
var slotTimeRE = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Book validates req, reserves its slot, and persists the appointment.
//
// Errors:
//   - *ValidationError naming every missing/invalid field. No reservation is
//     attempted and nothing is written in this case.
//   - ErrPaymentUnverified (or a wrapped ErrUpstream) from the optional
//     payment re-check.
//   - ErrSlotTaken when another appointment already holds the slot. The
//     existing record is left untouched.
//   - The underlying DB error for unexpected persistence failures, which
//     handlers surface distinctly from a conflict.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*domain.Appointment, error) {
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(req.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(req.Date) == "" {
		missing = append(missing, "appointment_date")
	}
	if strings.TrimSpace(req.Time) == "" {
		missing = append(missing, "appointment_time")
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		missing = append(missing, "payment_id")
	}
	if req.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"appointment_date"}}
	}
	if !s.validSlotTime(req.Time) {
		return nil, &ValidationError{Fields: []string{"appointment_time"}}
	}

	if s.Payments != nil {
		if err := s.Payments.CheckCaptured(ctx, req.PaymentID); err != nil {
			return nil, err
		}
	}

	appt := &domain.Appointment{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		Reason:          strings.TrimSpace(req.Reason),
		AppointmentDate: date,
		AppointmentTime: req.Time,
		PaymentID:       req.PaymentID,
		Amount:          req.Amount,
	}
	if err := s.Repo.CreateAppointment(ctx, s.DB, appt); err != nil {
		if errors.Is(err, repo.ErrSlotTaken) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return appt, nil
}

// List returns every appointment record, ordered by slot.
func (s *BookingService) List(ctx context.Context) ([]domain.Appointment, error) {
	return s.Repo.ListAppointments(ctx, s.DB)
}

// validSlotTime checks the HH:MM shape and, when a vocabulary is configured,
// membership in it.
func (s *BookingService) validSlotTime(t string) bool {
	if !slotTimeRE.MatchString(t) {
		return false
	}
	if len(s.SlotTimes) == 0 {
		return true
	}
	return slices.Contains(s.SlotTimes, t)
}

// ParseDate parses a client-supplied date as RFC 3339 or "2006-01-02" and
// normalizes it with NormalizeDate. Two inputs differing only in time-of-day
// parse to the same slot key.
func ParseDate(s string) (time.Time, error) {
	var t time.Time
	var err error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err = time.Parse(layout, s); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}

// NormalizeDate truncates t to midnight UTC, keeping only the calendar date.
// The date component is the reservation key, not a timestamp.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SlotKey renders the canonical string form of a slot, used for idempotency
// scoping and log fields.
func SlotKey(date time.Time, timeToken string) string {
	return date.UTC().Format("2006-01-02") + "T" + timeToken
}
