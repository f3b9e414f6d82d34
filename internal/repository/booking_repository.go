// This file defines persistence for bookings.  A booking row holds
// lifecycle state and money amounts; the seat numbers it occupies live
// in booking_seats.  Both tables are written inside one transaction on
// create so a booking can never exist without its seats.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
)

// BookingRepo manages persistence for bookings.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `id, reference, schedule_id, passenger_id, fare_cents, status, payment_ref, refund_cents, booked_at, cancelled_at, updated_at`

// Create inserts a booking and its seat rows transactionally, writing
// the generated ID and DB timestamps back onto the struct.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO bookings (reference, schedule_id, passenger_id, fare_cents, status, payment_ref, refund_cents, booked_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.Reference, b.ScheduleID, b.PassengerID, b.FareCents, b.Status, b.PaymentRef, b.RefundCents, b.BookedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id

	if len(b.Seats) > 0 {
		var sb strings.Builder
		sb.WriteString(`INSERT INTO booking_seats (booking_id, seat_no) VALUES `)
		args := make([]any, 0, len(b.Seats)*2)
		for i, seat := range b.Seats {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?)")
			args = append(args, b.ID, seat)
		}
		if _, err = tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return err
		}
	}

	const sel = `SELECT booked_at, updated_at FROM bookings WHERE id = ?`
	if err = tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.BookedAt, &b.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// Get retrieves a booking by ID, including its seat numbers.  It
// returns model.NotFoundError when no row matches.
func (r *BookingRepo) Get(ctx context.Context, id int64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return r.fetch(ctx, q, id)
}

// GetByReference retrieves a booking by its shareable reference code.
func (r *BookingRepo) GetByReference(ctx context.Context, ref string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = ?`
	return r.fetch(ctx, q, ref)
}

func (r *BookingRepo) fetch(ctx context.Context, q string, arg any) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		return nil, notFound(err, "booking")
	}
	b.Seats, err = r.seatNumbers(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Update rewrites the mutable fields of a booking row.  Seat rows are
// immutable after creation, so only the bookings table is touched.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	const q = `UPDATE bookings
	           SET status = ?, payment_ref = ?, refund_cents = ?, cancelled_at = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, b.Status, b.PaymentRef, b.RefundCents, nullableTime(b.CancelledAt), b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, b.ID).Scan(&one); err != nil {
			return notFound(err, "booking")
		}
	}
	return nil
}

// ListBySchedule returns all bookings on the schedule ordered by
// booking time ascending.
func (r *BookingRepo) ListBySchedule(ctx context.Context, scheduleID int64) ([]*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE schedule_id = ? ORDER BY booked_at ASC`
	return r.queryBookings(ctx, q, scheduleID)
}

// ListByPassenger returns all bookings made by the passenger ordered
// by booking time descending, newest first.
func (r *BookingRepo) ListByPassenger(ctx context.Context, passengerID int64) ([]*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE passenger_id = ? ORDER BY booked_at DESC`
	return r.queryBookings(ctx, q, passengerID)
}

// CountActiveBySchedule counts bookings on the schedule that are still
// in a non-terminal status.
func (r *BookingRepo) CountActiveBySchedule(ctx context.Context, scheduleID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings WHERE schedule_id = ? AND status IN ('PENDING_PAYMENT', 'CONFIRMED')`
	var n int
	if err := r.db.QueryRowContext(ctx, q, scheduleID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *BookingRepo) queryBookings(ctx context.Context, q string, args ...any) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, b := range result {
		if b.Seats, err = r.seatNumbers(ctx, b.ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// seatNumbers returns the seat numbers for a booking, ascending.
func (r *BookingRepo) seatNumbers(ctx context.Context, bookingID int64) ([]int, error) {
	const q = `SELECT seat_no FROM booking_seats WHERE booking_id = ? ORDER BY seat_no ASC`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		seats = append(seats, n)
	}
	return seats, rows.Err()
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var (
		b         model.Booking
		cancelled sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.Reference, &b.ScheduleID, &b.PassengerID,
		&b.FareCents, &b.Status, &b.PaymentRef, &b.RefundCents,
		&b.BookedAt, &cancelled, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if cancelled.Valid {
		t := cancelled.Time
		b.CancelledAt = &t
	}
	return &b, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
