package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Praneeth-Narayan/DrDeepthi/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique in-memory DB per test so schema never leaks across tests.
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse day %q: %v", s, err)
	}
	return d.UTC()
}

func sampleAppointment(date, tok string) *domain.Appointment {
	d, _ := time.Parse("2006-01-02", date)
	return &domain.Appointment{
		Name:            "A. Sharma",
		Email:           "a.sharma@example.com",
		Phone:           "+919876543210",
		Reason:          "follow-up",
		AppointmentDate: d.UTC(),
		AppointmentTime: tok,
		PaymentID:       "pay_1",
		Amount:          50000,
	}
}

func TestCreateAppointment_AssignsIDAndTimestamp(t *testing.T) {
	db := newTestDB(t, &domain.Appointment{})
	start := time.Now().UTC()

	appt := sampleAppointment("2024-06-01", "14:30")
	if err := CreateAppointment(context.Background(), db, appt); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if appt.ID == "" {
		t.Fatalf("ID not assigned")
	}
	if appt.CreatedAt.Before(start.Add(-time.Minute)) {
		t.Fatalf("CreatedAt not set reasonably: %v", appt.CreatedAt)
	}

	var got domain.Appointment
	if err := db.First(&got, "id = ?", appt.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AppointmentTime != "14:30" || got.Amount != 50000 {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestCreateAppointment_DuplicateSlot(t *testing.T) {
	db := newTestDB(t, &domain.Appointment{})
	ctx := context.Background()

	if err := CreateAppointment(ctx, db, sampleAppointment("2024-06-01", "14:30")); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	dup := sampleAppointment("2024-06-01", "14:30")
	dup.Email = "other@example.com"
	if err := CreateAppointment(ctx, db, dup); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// Adjacent slots stay bookable.
	if err := CreateAppointment(ctx, db, sampleAppointment("2024-06-01", "15:00")); err != nil {
		t.Fatalf("same date different time: %v", err)
	}
	if err := CreateAppointment(ctx, db, sampleAppointment("2024-06-02", "14:30")); err != nil {
		t.Fatalf("same time different date: %v", err)
	}
}

func TestCreateAppointment_ErrorWithoutTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	err := CreateAppointment(context.Background(), db, sampleAppointment("2024-06-01", "14:30"))
	if err == nil || errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected raw DB error when table is missing, got %v", err)
	}
}

func TestListAppointments_OrderAndEmpty(t *testing.T) {
	db := newTestDB(t, &domain.Appointment{})
	ctx := context.Background()

	got, err := ListAppointments(ctx, db)
	if err != nil {
		t.Fatalf("ListAppointments empty: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %d", len(got))
	}

	for _, s := range []struct{ d, tok string }{
		{"2024-06-02", "09:00"},
		{"2024-06-01", "15:00"},
		{"2024-06-01", "09:30"},
	} {
		if err := CreateAppointment(ctx, db, sampleAppointment(s.d, s.tok)); err != nil {
			t.Fatalf("seed %s %s: %v", s.d, s.tok, err)
		}
	}

	got, err = ListAppointments(ctx, db)
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	want := []string{"09:30", "15:00", "09:00"}
	for i, w := range want {
		if got[i].AppointmentTime != w {
			t.Fatalf("position %d: got %s, want %s", i, got[i].AppointmentTime, w)
		}
	}
}

func TestGetAppointment(t *testing.T) {
	db := newTestDB(t, &domain.Appointment{})
	ctx := context.Background()

	appt := sampleAppointment("2024-06-01", "14:30")
	if err := CreateAppointment(ctx, db, appt); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := GetAppointment(ctx, db, appt.ID)
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if got.ID != appt.ID {
		t.Fatalf("got %q, want %q", got.ID, appt.ID)
	}

	if _, err := GetAppointment(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAppointmentBySlot(t *testing.T) {
	db := newTestDB(t, &domain.Appointment{})
	ctx := context.Background()

	appt := sampleAppointment("2024-06-01", "14:30")
	if err := CreateAppointment(ctx, db, appt); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := GetAppointmentBySlot(ctx, db, day(t, "2024-06-01"), "14:30")
	if err != nil {
		t.Fatalf("GetAppointmentBySlot: %v", err)
	}
	if got.ID != appt.ID {
		t.Fatalf("got %q, want %q", got.ID, appt.ID)
	}

	if _, err := GetAppointmentBySlot(ctx, db, day(t, "2024-06-01"), "15:00"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("free slot: expected ErrNotFound, got %v", err)
	}
}

func TestCountAppointments(t *testing.T) {
	db := newTestDB(t, &domain.Appointment{})
	ctx := context.Background()

	n, err := CountAppointments(ctx, db)
	if err != nil || n != 0 {
		t.Fatalf("empty count: n=%d err=%v", n, err)
	}

	if err := CreateAppointment(ctx, db, sampleAppointment("2024-06-01", "14:30")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	n, err = CountAppointments(ctx, db)
	if err != nil || n != 1 {
		t.Fatalf("count: n=%d err=%v", n, err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm sentinel", gorm.ErrDuplicatedKey, true},
		{"sqlite message", errors.New("UNIQUE constraint failed: appointments.appointment_date, appointments.appointment_time"), true},
		{"postgres message", errors.New(`duplicate key value violates unique constraint "ux_appointment_slot"`), true},
		{"other error", errors.New("database is locked"), false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := isUniqueViolation(tc.err); got != tc.want {
				t.Fatalf("isUniqueViolation(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
