// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Appointment
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - CreateAppointment returns ErrSlotTaken when the (appointment_date,
//     appointment_time) unique index rejects the insert. That translation is
//     the slot ledger: the insert either claims the slot exclusively or fails,
//     with no check-then-act window for a concurrent writer to slip through.
//   - When an appointment is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On other DB errors (connectivity, schema), the raw gorm error is
//     propagated so callers can surface it as a persistence failure.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Praneeth-Narayan/DrDeepthi/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrSlotTaken is returned when an insert loses the race for a slot: some
// other appointment already holds the same (date, time) key.
var ErrSlotTaken = errors.New("slot already booked")

// CreateAppointment atomically reserves appt's slot and persists the record.
//
// The appointment ID is a randomly generated UUID and CreatedAt is set to UTC
// at persistence time. appt.AppointmentDate must already be normalized to
// midnight UTC; the repository does not re-normalize.
//
// Exactly one of any set of concurrent calls for the same slot succeeds; the
// rest receive ErrSlotTaken. Because the reservation and the appointment row
// are the same insert, a failure leaves no orphaned reservation behind.
func CreateAppointment(ctx context.Context, db *gorm.DB, appt *domain.Appointment) error {
	appt.ID = uuid.NewString()
	appt.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(appt).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

// ListAppointments returns all appointments ordered by slot (date, then time
// token). It returns an empty slice when no rows exist.
func ListAppointments(ctx context.Context, db *gorm.DB) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := db.WithContext(ctx).
		Order("appointment_date ASC, appointment_time ASC").
		Find(&out).Error
	return out, err
}

// GetAppointment fetches an appointment by ID, or ErrNotFound.
func GetAppointment(ctx context.Context, db *gorm.DB, id string) (*domain.Appointment, error) {
	var a domain.Appointment
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAppointmentBySlot fetches the appointment occupying the given slot, or
// ErrNotFound if the slot is free. date must be normalized to midnight UTC.
func GetAppointmentBySlot(ctx context.Context, db *gorm.DB, date time.Time, timeToken string) (*domain.Appointment, error) {
	var a domain.Appointment
	err := db.WithContext(ctx).
		Where("appointment_date = ? AND appointment_time = ?", date, timeToken).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CountAppointments returns the total number of appointment rows.
func CountAppointments(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Count(&total).Error
	return total, err
}

// isUniqueViolation detects unique-constraint violations across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite: "UNIQUE constraint failed: appointments.appointment_date..."
	// Postgres: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "constraint failed: unique") ||
		strings.Contains(msg, "duplicate key")
}
