// Package domain defines the persistence models for appointments and
// idempotency records. These types are mapped with GORM and form the core
// data layer of the booking application.
package domain

import "time"

// Appointment represents a confirmed consultation booking tied to a completed
// payment. An appointment occupies exactly one slot: the combination of
// AppointmentDate (normalized to midnight UTC) and AppointmentTime (a slot
// token such as "14:30").
//
// The composite unique index ux_appointment_slot is the system's core
// correctness guarantee: two rows can never share the same slot, no matter how
// many requests race for it. The row is immutable after creation; there is no
// cancellation flow.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name / Email / Phone: requester contact details, all required.
//   - Reason: optional free-text reason for the visit.
//   - AppointmentDate: calendar date of the slot, stored at midnight UTC.
//     Callers must normalize before insert (see services.NormalizeDate).
//   - AppointmentTime: time-of-day token, validated against HH:MM.
//   - PaymentID: Razorpay payment identifier presented by the client.
//   - Amount: consultation fee in minor currency units (paise), > 0.
//   - CreatedAt: set at persistence time, immutable afterwards.
type Appointment struct {
	ID              string    `json:"id"               gorm:"type:char(36);primaryKey"`
	Name            string    `json:"name"             gorm:"type:varchar(255);not null"`
	Email           string    `json:"email"            gorm:"type:varchar(255);not null"`
	Phone           string    `json:"phone"            gorm:"type:varchar(32);not null"`
	Reason          string    `json:"reason,omitempty" gorm:"type:text"`
	AppointmentDate time.Time `json:"appointment_date" gorm:"not null;uniqueIndex:ux_appointment_slot,priority:1"`
	AppointmentTime string    `json:"appointment_time" gorm:"type:varchar(8);not null;uniqueIndex:ux_appointment_slot,priority:2"`
	PaymentID       string    `json:"payment_id"       gorm:"type:varchar(64);not null"`
	Amount          int64     `json:"amount"           gorm:"not null;check:amount > 0"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName returns the database table name for Appointment.
func (Appointment) TableName() string { return "appointments" }

// PaymentOrder is the transient handshake artifact returned by the Order
// Issuer. It mirrors the gateway-side order the client pays against and is
// never persisted locally.
type PaymentOrder struct {
	// OrderID is the gateway-assigned order identifier (e.g. "order_Nx...").
	OrderID string `json:"order_id"`
	// Amount is the order amount in minor currency units.
	Amount int64 `json:"amount"`
	// Currency is the ISO code the order was created in.
	Currency string `json:"currency"`
	// Receipt is the unique receipt token generated per CreateOrder call.
	Receipt string `json:"receipt"`
}
