// Package domain defines the core persistence models for the application.
package domain

import "time"

// Idempotency records the outcome of a previously processed booking request,
// keyed by (client id, slot, key). It enables safe retries for
// POST /appointments: a retried request carrying the same Idempotency-Key can
// be recognized and served without attempting a second reservation.
type Idempotency struct {
	ID            string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	ClientID      string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_slot_key,priority:1"`
	SlotKey       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_slot_key,priority:2"`
	Key           string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_slot_key,priority:3"`
	AppointmentID string    `gorm:"type:TEXT NOT NULL"`
	Status        int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt     time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt     time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
