package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
)

func bookingRow(id int64, status string) *sqlmock.Rows {
	base := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "reference", "schedule_id", "passenger_id", "fare_cents",
		"status", "payment_ref", "refund_cents", "booked_at", "cancelled_at", "updated_at",
	}).AddRow(id, "abcd1234abcd1234", 5, 7, 2400, status, "", 0, base, nil, base)
}

func TestBookingRepoCreateWritesSeats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	b := &model.Booking{
		Reference:   "abcd1234abcd1234",
		ScheduleID:  5,
		PassengerID: 7,
		Seats:       []int{1, 2},
		FareCents:   2400,
		Status:      model.BookingPendingPayment,
		BookedAt:    time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("INSERT INTO booking_seats").
		WithArgs(int64(21), 1, int64(21), 2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("SELECT booked_at, updated_at FROM bookings").
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"booked_at", "updated_at"}).
			AddRow(b.BookedAt, b.BookedAt))
	mock.ExpectCommit()

	repo := NewBookingRepo(db)
	if err := repo.Create(context.Background(), b); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.ID != 21 {
		t.Fatalf("generated id not assigned, got %d", b.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingRepoGetByReference(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE reference = ?").
		WithArgs("abcd1234abcd1234").
		WillReturnRows(bookingRow(21, "PENDING_PAYMENT"))
	mock.ExpectQuery("SELECT seat_no FROM booking_seats").
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_no"}).AddRow(1).AddRow(2))

	repo := NewBookingRepo(db)
	b, err := repo.GetByReference(context.Background(), "abcd1234abcd1234")
	if err != nil {
		t.Fatalf("GetByReference failed: %v", err)
	}
	if b.ID != 21 || len(b.Seats) != 2 {
		t.Fatalf("booking wrong: %+v", b)
	}
	if b.CancelledAt != nil {
		t.Fatalf("CancelledAt should be nil for NULL column")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingRepoGetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = ?").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewBookingRepo(db)
	if _, err := repo.Get(context.Background(), 404); !model.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestBookingRepoCountActiveBySchedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE schedule_id = \? AND status IN \('PENDING_PAYMENT', 'CONFIRMED'\)`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	repo := NewBookingRepo(db)
	n, err := repo.CountActiveBySchedule(context.Background(), 5)
	if err != nil {
		t.Fatalf("CountActiveBySchedule failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingRepoUpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM bookings WHERE id = ?").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := NewBookingRepo(db)
	b := &model.Booking{ID: 404, Status: model.BookingCancelled}
	if err := repo.Update(context.Background(), b); !model.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
