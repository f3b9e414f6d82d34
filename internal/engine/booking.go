package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/event"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/inventory"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/refund"
)

// BookingManager orchestrates booking creation, payment confirmation
// and cancellation.  Each operation locks the target schedule first
// and the booking second, so the multi-step sequence of inventory and
// booking writes appears atomic to concurrent callers.  The manager
// never talks to a payment gateway; it only reacts to the
// PaymentResult handed in by the caller.
type BookingManager struct {
	schedules ScheduleStore
	bookings  BookingStore
	fleet     FleetDirectory
	policy    refund.Policy
	locks     *keyedMutex
	events    *event.Bus
	log       *zap.Logger
	now       func() time.Time
}

// New wires a ScheduleRegistry and a BookingManager over shared
// storage and a shared lock table.  Sharing the lock table is what
// makes registry and manager mutations on the same schedule mutually
// exclusive.
func New(schedules ScheduleStore, bookings BookingStore, fleet FleetDirectory, policy refund.Policy, events *event.Bus, log *zap.Logger) (*ScheduleRegistry, *BookingManager) {
	locks := newKeyedMutex()
	registry := &ScheduleRegistry{
		schedules: schedules,
		bookings:  bookings,
		fleet:     fleet,
		locks:     locks,
		events:    events,
		log:       log,
		now:       time.Now,
	}
	manager := &BookingManager{
		schedules: schedules,
		bookings:  bookings,
		fleet:     fleet,
		policy:    policy,
		locks:     locks,
		events:    events,
		log:       log,
		now:       time.Now,
	}
	return registry, manager
}

// PaymentResult is the outcome reported by the external payment
// collaborator for a booking's fare.
type PaymentResult struct {
	Success   bool
	Reference string
}

// CreateBookingInput carries a seat selection for one schedule.
// FareOverrideCents, when non-nil, replaces the computed
// route-fare-times-seats total.
type CreateBookingInput struct {
	ScheduleID        int64
	PassengerID       int64
	Seats             []int
	FareOverrideCents *int64
}

// CreateBooking reserves the requested seats as a group and records a
// PENDING_PAYMENT booking with a fresh reference code.  The whole
// request is rejected if any single seat is unavailable.
func (m *BookingManager) CreateBooking(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	if in.ScheduleID <= 0 {
		return nil, model.ValidationError{Field: "schedule_id", Msg: "required"}
	}
	if in.PassengerID <= 0 {
		return nil, model.ValidationError{Field: "passenger_id", Msg: "required"}
	}
	seats := dedupeSeats(in.Seats)
	if len(seats) == 0 {
		return nil, model.ValidationError{Field: "seats", Msg: "at least one seat is required"}
	}
	if in.FareOverrideCents != nil && *in.FareOverrideCents <= 0 {
		return nil, model.ValidationError{Field: "fare_override_cents", Msg: "must be positive"}
	}

	unlock := m.locks.Lock(scheduleKey(in.ScheduleID))
	defer unlock()

	sched, err := m.schedules.Get(ctx, in.ScheduleID)
	if err != nil {
		return nil, err
	}
	if sched.Status.Terminal() {
		return nil, model.NotFoundError{Resource: "schedule"}
	}

	var fare int64
	if in.FareOverrideCents != nil {
		fare = *in.FareOverrideCents
	} else {
		route, err := m.fleet.Route(ctx, sched.RouteID)
		if err != nil {
			return nil, err
		}
		fare = route.FareCents * int64(len(seats))
	}
	if fare <= 0 {
		return nil, model.ValidationError{Field: "fare", Msg: "must be positive"}
	}

	if err := sched.Seats.Reserve(seats); err != nil {
		var invalid *inventory.InvalidSeatError
		if errors.As(err, &invalid) {
			return nil, model.ValidationError{Field: "seats", Msg: invalid.Error(), Err: err}
		}
		var taken *inventory.UnavailableSeatsError
		if errors.As(err, &taken) {
			return nil, model.ConflictError{Resource: "seats", Msg: taken.Error(), Err: err}
		}
		return nil, err
	}
	sched.AvailableSeats -= len(seats)
	if err := m.checkInventory(sched); err != nil {
		return nil, err
	}
	if err := m.schedules.Update(ctx, sched); err != nil {
		return nil, err
	}

	ref, err := newReference()
	if err != nil {
		return nil, model.InternalError{Msg: "generate booking reference", Err: err}
	}
	b := &model.Booking{
		Reference:   ref,
		ScheduleID:  in.ScheduleID,
		PassengerID: in.PassengerID,
		Seats:       seats,
		FareCents:   fare,
		Status:      model.BookingPendingPayment,
		BookedAt:    m.now().UTC(),
	}
	if err := m.bookings.Create(ctx, b); err != nil {
		// Put the seats back so a storage failure cannot leak inventory.
		m.revertReservation(ctx, in.ScheduleID, seats)
		return nil, err
	}

	m.log.Info("booking created",
		zap.Int64("booking_id", b.ID),
		zap.String("reference", b.Reference),
		zap.Int64("schedule_id", b.ScheduleID),
		zap.Int64("passenger_id", b.PassengerID),
		zap.Ints("seats", b.Seats),
		zap.Int64("fare_cents", b.FareCents),
	)
	ev := event.New(event.TypeBookingCreated)
	ev.ScheduleID = b.ScheduleID
	ev.BookingID = b.ID
	ev.Reference = b.Reference
	ev.PassengerID = b.PassengerID
	ev.Seats = b.Seats
	ev.AmountCents = b.FareCents
	m.events.Publish(ev)
	return b, nil
}

// ConfirmPayment moves a PENDING_PAYMENT booking to CONFIRMED when
// the payment succeeded.  A failed payment leaves the booking and its
// seats untouched so the caller can retry; releasing stale holds is a
// separate expiry concern.
func (m *BookingManager) ConfirmPayment(ctx context.Context, bookingID int64, result PaymentResult) (*model.Booking, error) {
	unlock, b, err := m.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if b.Status != model.BookingPendingPayment {
		return nil, model.StateError{Resource: "booking", State: string(b.Status)}
	}
	if !result.Success {
		m.log.Warn("payment failed, booking stays pending",
			zap.Int64("booking_id", b.ID),
			zap.String("payment_ref", result.Reference),
		)
		return b, nil
	}

	b.Status = model.BookingConfirmed
	b.PaymentRef = result.Reference
	if err := m.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	m.log.Info("booking confirmed",
		zap.Int64("booking_id", b.ID),
		zap.String("reference", b.Reference),
		zap.String("payment_ref", b.PaymentRef),
	)
	ev := event.New(event.TypeBookingConfirmed)
	ev.ScheduleID = b.ScheduleID
	ev.BookingID = b.ID
	ev.Reference = b.Reference
	ev.PassengerID = b.PassengerID
	ev.Seats = b.Seats
	ev.AmountCents = b.FareCents
	m.events.Publish(ev)
	return b, nil
}

// CancelBooking cancels a non-terminal booking, releases its seats
// and, for CONFIRMED bookings, computes the refund from the time left
// until departure.  A second cancellation of the same booking is
// rejected with a StateError, never a double refund.
func (m *BookingManager) CancelBooking(ctx context.Context, bookingID int64) (*model.Booking, error) {
	unlock, b, err := m.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if b.Status.Terminal() {
		return nil, model.StateError{Resource: "booking", State: string(b.Status)}
	}
	sched, err := m.schedules.Get(ctx, b.ScheduleID)
	if err != nil {
		return nil, model.InternalError{Msg: "booking references missing schedule", Err: err}
	}

	released := 0
	for _, seat := range b.Seats {
		free, err := sched.Seats.IsAvailable(seat)
		if err != nil {
			return nil, model.InternalError{Msg: "booking references invalid seat", Err: err}
		}
		if !free {
			released++
		}
	}
	if err := sched.Seats.Release(b.Seats); err != nil {
		return nil, model.InternalError{Msg: "release seats", Err: err}
	}
	sched.AvailableSeats += released
	if err := m.checkInventory(sched); err != nil {
		return nil, err
	}
	if err := m.schedules.Update(ctx, sched); err != nil {
		return nil, err
	}

	wasConfirmed := b.Status == model.BookingConfirmed
	now := m.now().UTC()
	b.Status = model.BookingCancelled
	b.CancelledAt = &now
	if wasConfirmed {
		b.RefundCents = m.policy.Amount(b.FareCents, sched.DepartsAt, now)
	}
	if err := m.bookings.Update(ctx, b); err != nil {
		m.revertRelease(ctx, b.ScheduleID, b.Seats)
		return nil, err
	}

	m.log.Info("booking cancelled",
		zap.Int64("booking_id", b.ID),
		zap.String("reference", b.Reference),
		zap.Bool("was_confirmed", wasConfirmed),
		zap.Int64("refund_cents", b.RefundCents),
	)
	ev := event.New(event.TypeBookingCancelled)
	ev.ScheduleID = b.ScheduleID
	ev.BookingID = b.ID
	ev.Reference = b.Reference
	ev.PassengerID = b.PassengerID
	ev.Seats = b.Seats
	ev.AmountCents = b.FareCents
	m.events.Publish(ev)
	if wasConfirmed {
		rev := event.New(event.TypeRefundIssued)
		rev.ScheduleID = b.ScheduleID
		rev.BookingID = b.ID
		rev.Reference = b.Reference
		rev.PassengerID = b.PassengerID
		rev.AmountCents = b.RefundCents
		m.events.Publish(rev)
	}
	return b, nil
}

// Booking returns one booking by id.
func (m *BookingManager) Booking(ctx context.Context, id int64) (*model.Booking, error) {
	return m.bookings.Get(ctx, id)
}

// BookingByReference resolves a booking from its shareable code.
func (m *BookingManager) BookingByReference(ctx context.Context, ref string) (*model.Booking, error) {
	return m.bookings.GetByReference(ctx, ref)
}

// BookingsByPassenger lists a passenger's bookings.
func (m *BookingManager) BookingsByPassenger(ctx context.Context, passengerID int64) ([]*model.Booking, error) {
	return m.bookings.ListByPassenger(ctx, passengerID)
}

// lockBooking acquires the schedule lock and then the booking lock,
// in that order, and returns the freshly loaded booking.  The
// schedule id is discovered with an unlocked pre-read; it never
// changes for an existing booking, so the locked re-read is
// authoritative.
func (m *BookingManager) lockBooking(ctx context.Context, bookingID int64) (func(), *model.Booking, error) {
	pre, err := m.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	unlockSched := m.locks.Lock(scheduleKey(pre.ScheduleID))
	unlockBooking := m.locks.Lock(bookingKey(bookingID))
	unlock := func() {
		unlockBooking()
		unlockSched()
	}
	b, err := m.bookings.Get(ctx, bookingID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return unlock, b, nil
}

// checkInventory verifies the cached available-seats counter against
// the seat map.  A mismatch is a programming bug: it is logged as
// fatal-class and surfaced, never silently repaired by trusting one
// side.
func (m *BookingManager) checkInventory(s *model.Schedule) error {
	if got := s.Seats.AvailableCount(); got != s.AvailableSeats {
		m.log.DPanic("seat counter out of sync with inventory",
			zap.Int64("schedule_id", s.ID),
			zap.Int("counter", s.AvailableSeats),
			zap.Int("inventory", got),
		)
		return model.InternalError{Msg: "seat counter out of sync with inventory"}
	}
	return nil
}

// revertReservation undoes a seat reservation after a downstream
// write failed.  Best effort: the schedule lock is still held, so the
// only way this can fail is a storage fault, which is logged.
func (m *BookingManager) revertReservation(ctx context.Context, scheduleID int64, seats []int) {
	sched, err := m.schedules.Get(ctx, scheduleID)
	if err == nil {
		if err = sched.Seats.Release(seats); err == nil {
			sched.AvailableSeats += len(seats)
			err = m.schedules.Update(ctx, sched)
		}
	}
	if err != nil {
		m.log.Error("failed to revert seat reservation",
			zap.Int64("schedule_id", scheduleID),
			zap.Ints("seats", seats),
			zap.Error(err),
		)
	}
}

// revertRelease re-reserves seats after a cancellation failed to
// persist, restoring the pre-cancel inventory.
func (m *BookingManager) revertRelease(ctx context.Context, scheduleID int64, seats []int) {
	sched, err := m.schedules.Get(ctx, scheduleID)
	if err == nil {
		if err = sched.Seats.Reserve(seats); err == nil {
			sched.AvailableSeats -= len(seats)
			err = m.schedules.Update(ctx, sched)
		}
	}
	if err != nil {
		m.log.Error("failed to revert seat release",
			zap.Int64("schedule_id", scheduleID),
			zap.Ints("seats", seats),
			zap.Error(err),
		)
	}
}

func dedupeSeats(seats []int) []int {
	seen := make(map[int]struct{}, len(seats))
	out := make([]int, 0, len(seats))
	for _, s := range seats {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Ints(out)
	return out
}

// newReference generates an opaque booking code from random bytes.
func newReference() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
