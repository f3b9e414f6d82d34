package model

import "time"

// BookingStatus is the lifecycle state of a booking.
// CANCELLED and COMPLETED are terminal.
type BookingStatus string

const (
	BookingPendingPayment BookingStatus = "PENDING_PAYMENT"
	BookingConfirmed      BookingStatus = "CONFIRMED"
	BookingCancelled      BookingStatus = "CANCELLED"
	BookingCompleted      BookingStatus = "COMPLETED"
)

// Terminal reports whether the status permits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// Booking records a passenger's reservation of one or more seats on a
// schedule.  Reference is an opaque, externally shareable code; the
// numeric ID stays internal.  RefundCents is zero until a cancellation
// computes a refund.
type Booking struct {
	ID          int64         // bookings.id
	Reference   string        // bookings.reference (shareable code)
	ScheduleID  int64         // bookings.schedule_id
	PassengerID int64         // bookings.passenger_id
	Seats       []int         // booked seat numbers, ascending
	FareCents   int64         // bookings.fare_cents (total for all seats)
	Status      BookingStatus // bookings.status
	PaymentRef  string        // bookings.payment_ref (set on confirmation)
	RefundCents int64         // bookings.refund_cents (set on cancellation)
	BookedAt    time.Time     // bookings.booked_at
	CancelledAt *time.Time    // bookings.cancelled_at (nil unless cancelled)
	UpdatedAt   time.Time     // bookings.updated_at
}

// Active reports whether the booking still occupies its seats.
func (b *Booking) Active() bool {
	return !b.Status.Terminal()
}

// Clone returns a deep copy of the booking.
func (b *Booking) Clone() *Booking {
	out := *b
	out.Seats = append([]int(nil), b.Seats...)
	if b.CancelledAt != nil {
		t := *b.CancelledAt
		out.CancelledAt = &t
	}
	return &out
}
