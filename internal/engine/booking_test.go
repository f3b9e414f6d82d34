package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
)

// seed creates the standard test schedule: bus 1 (capacity 40) on
// route 1 (fare 1200 cents per seat), departing 2026-03-10 08:00 UTC.
func seed(t *testing.T, env *testEnv) *model.Schedule {
	t.Helper()
	departs, arrives := at(8, 10)
	s, err := env.registry.CreateSchedule(context.Background(), CreateScheduleInput{
		RouteID: 1, BusID: 1, DriverID: 1, DepartsAt: departs, ArrivesAt: arrives,
	})
	if err != nil {
		t.Fatalf("seed schedule failed: %v", err)
	}
	return s
}

func TestCreateBookingReservesSeatsAndComputesFare(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	s := seed(t, env)

	b, err := env.manager.CreateBooking(ctx, CreateBookingInput{
		ScheduleID: s.ID, PassengerID: 7, Seats: []int{2, 1},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if b.Status != model.BookingPendingPayment {
		t.Fatalf("status = %s, want PENDING_PAYMENT", b.Status)
	}
	if b.FareCents != 2400 {
		t.Fatalf("fare = %d, want 2400", b.FareCents)
	}
	if len(b.Seats) != 2 || b.Seats[0] != 1 || b.Seats[1] != 2 {
		t.Fatalf("seats not normalized ascending: %v", b.Seats)
	}
	if len(b.Reference) != 16 {
		t.Fatalf("reference %q, want 16 hex chars", b.Reference)
	}

	got, err := env.registry.Schedule(ctx, s.ID)
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if got.AvailableSeats != 38 {
		t.Fatalf("available = %d, want 38", got.AvailableSeats)
	}
	if got.Seats.AvailableCount() != got.AvailableSeats {
		t.Fatalf("counter %d out of lockstep with inventory %d", got.AvailableSeats, got.Seats.AvailableCount())
	}
}

func TestCreateBookingAtomicOnPartialConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	s := seed(t, env)

	if _, err := env.manager.CreateBooking(ctx, CreateBookingInput{
		ScheduleID: s.ID, PassengerID: 7, Seats: []int{4},
	}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	// {3,4,5} must fail wholesale because 4 is taken.
	_, err := env.manager.CreateBooking(ctx, CreateBookingInput{
		ScheduleID: s.ID, PassengerID: 8, Seats: []int{3, 4, 5},
	})
	if !model.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	got, _ := env.registry.Schedule(ctx, s.ID)
	if got.AvailableSeats != 39 {
		t.Fatalf("failed booking changed availability: %d, want 39", got.AvailableSeats)
	}
	for _, seat := range []int{3, 5} {
		free, _ := got.Seats.IsAvailable(seat)
		if !free {
			t.Fatalf("seat %d held by a failed booking", seat)
		}
	}
}

func TestCreateBookingValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	s := seed(t, env)

	if _, err := env.manager.CreateBooking(ctx, CreateBookingInput{
		ScheduleID: s.ID, PassengerID: 7, Seats: nil,
	}); !model.IsValidation(err) {
		t.Fatalf("expected ValidationError for empty seats, got %v", err)
	}
	if _, err := env.manager.CreateBooking(ctx, CreateBookingInput{
		ScheduleID: s.ID, PassengerID: 7, Seats: []int{41},
	}); !model.IsValidation(err) {
		t.Fatalf("expected ValidationError for out-of-range seat, got %v", err)
	}
	if _, err := env.manager.CreateBooking(ctx, CreateBookingInput{
		ScheduleID: 999, PassengerID: 7, Seats: []int{1},
	}); !model.IsNotFound(err) {
		t.Fatalf("expected NotFoundError for unknown schedule, got %v", err)
	}
}

func TestCreateBookingOnTerminalSchedule(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	s := seed(t, env)

	cancelled := model.ScheduleCancelled
	if _, err := env.registry.UpdateSchedule(ctx, s.ID, UpdateScheduleInput{Status: &cancelled}); err != nil {
		t.Fatalf("cancel schedule failed: %v", err)
	}

	// A terminal schedule is not bookable; it reads as absent.
	if _, err := env.manager.CreateBooking(ctx, CreateBookingInput{
		ScheduleID: s.ID, PassengerID: 7, Seats: []int{1},
	}); !model.IsNotFound(err) {
		t.Fatalf("expected NotFoundError booking cancelled schedule, got %v", err)
	}
}

func TestConcurrentBookingSameSeat(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	s := seed(t, env)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.manager.CreateBooking(ctx, CreateBookingInput{
				ScheduleID: s.ID, PassengerID: int64(10 + i), Seats: []int{7},
			})
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case model.IsConflict(err):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("want exactly one winner for seat 7, got ok=%d conflict=%d", ok, conflict)
	}

	got, _ := env.registry.Schedule(ctx, s.ID)
	if got.AvailableSeats != 39 {
		t.Fatalf("available = %d, want 39", got.AvailableSeats)
	}
}

func TestConfirmPayment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	s := seed(t, env)

	b, err := env.manager.CreateBooking(ctx, CreateBookingInput{
		ScheduleID: s.ID, PassengerID: 7, Seats: []int{1},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	// Failed payment leaves the booking pending and its seats held.
	same, err := env.manager.ConfirmPayment(ctx, b.ID, PaymentResult{Success: false, Reference: "pay-x"})
	if err != nil {
		t.Fatalf("failed payment returned error: %v", err)
	}
	if same.Status != model.BookingPendingPayment || same.PaymentRef != "" {
		t.Fatalf("failed payment mutated booking: %+v", same)
	}

	confirmed, err := env.manager.ConfirmPayment(ctx, b.ID, PaymentResult{Success: true, Reference: "pay-1"})
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if confirmed.Status != model.BookingConfirmed || confirmed.PaymentRef != "pay-1" {
		t.Fatalf("confirmation not recorded: %+v", confirmed)
	}

	// Confirming twice is an illegal transition.
	if _, err := env.manager.ConfirmPayment(ctx, b.ID, PaymentResult{Success: true, Reference: "pay-2"}); !model.IsState(err) {
		t.Fatalf("expected StateError on double confirmation, got %v", err)
	}
}

func TestCancelConfirmedBookingRefunds(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	s := seed(t, env)

	b, err := env.manager.CreateBooking(ctx, CreateBookingInput{
		ScheduleID: s.ID, PassengerID: 7, Seats: []int{1, 2},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if _, err := env.manager.ConfirmPayment(ctx, b.ID, PaymentResult{Success: true, Reference: "pay-1"}); err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}

	// 25 hours before the 08:00 departure: 90% of 2400 = 2160.
	env.clock = s.DepartsAt.Add(-25 * time.Hour)
	cancelled, err := env.manager.CancelBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("CancelBooking failed: %v", err)
	}
	if cancelled.Status != model.BookingCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}
	if cancelled.RefundCents != 2160 {
		t.Fatalf("refund = %d, want 2160", cancelled.RefundCents)
	}
	if cancelled.CancelledAt == nil {
		t.Fatalf("CancelledAt not set")
	}

	got, _ := env.registry.Schedule(ctx, s.ID)
	if got.AvailableSeats != 40 {
		t.Fatalf("seats not released: available = %d, want 40", got.AvailableSeats)
	}

	// A second cancel is rejected and cannot double-refund.
	if _, err := env.manager.CancelBooking(ctx, b.ID); !model.IsState(err) {
		t.Fatalf("expected StateError on repeat cancel, got %v", err)
	}
}

func TestCancelRefundTiers(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	s := seed(t, env)

	cases := []struct {
		name   string
		before time.Duration
		want   int64
	}{
		{"partial window", 18 * time.Hour, 600},
		{"no refund window", 2 * time.Hour, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := env.manager.CreateBooking(ctx, CreateBookingInput{
				ScheduleID: s.ID, PassengerID: 7, Seats: []int{10},
			})
			if err != nil {
				t.Fatalf("CreateBooking failed: %v", err)
			}
			if _, err := env.manager.ConfirmPayment(ctx, b.ID, PaymentResult{Success: true, Reference: "pay"}); err != nil {
				t.Fatalf("ConfirmPayment failed: %v", err)
			}
			env.clock = s.DepartsAt.Add(-tc.before)
			cancelled, err := env.manager.CancelBooking(ctx, b.ID)
			if err != nil {
				t.Fatalf("CancelBooking failed: %v", err)
			}
			if cancelled.RefundCents != tc.want {
				t.Fatalf("refund = %d, want %d", cancelled.RefundCents, tc.want)
			}
		})
	}
}

func TestCancelPendingBookingNoRefund(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	s := seed(t, env)

	b, err := env.manager.CreateBooking(ctx, CreateBookingInput{
		ScheduleID: s.ID, PassengerID: 7, Seats: []int{1},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	// Plenty of notice, but the booking was never paid.
	env.clock = s.DepartsAt.Add(-48 * time.Hour)
	cancelled, err := env.manager.CancelBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("CancelBooking failed: %v", err)
	}
	if cancelled.RefundCents != 0 {
		t.Fatalf("pending cancellation refunded %d, want 0", cancelled.RefundCents)
	}

	got, _ := env.registry.Schedule(ctx, s.ID)
	if got.AvailableSeats != 40 {
		t.Fatalf("seats not released: available = %d, want 40", got.AvailableSeats)
	}
}

func TestBookingLookups(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	s := seed(t, env)

	b, err := env.manager.CreateBooking(ctx, CreateBookingInput{
		ScheduleID: s.ID, PassengerID: 7, Seats: []int{1},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	byRef, err := env.manager.BookingByReference(ctx, b.Reference)
	if err != nil {
		t.Fatalf("BookingByReference failed: %v", err)
	}
	if byRef.ID != b.ID {
		t.Fatalf("reference resolved to booking %d, want %d", byRef.ID, b.ID)
	}

	list, err := env.manager.BookingsByPassenger(ctx, 7)
	if err != nil {
		t.Fatalf("BookingsByPassenger failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("passenger listing wrong: %v", list)
	}
}
