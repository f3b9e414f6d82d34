package model

import (
	"time"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/inventory"
)

// ScheduleStatus is the lifecycle state of a trip schedule.
// CANCELLED and COMPLETED are terminal; transitions never leave a
// terminal state.
type ScheduleStatus string

const (
	ScheduleScheduled ScheduleStatus = "SCHEDULED"
	ScheduleDelayed   ScheduleStatus = "DELAYED"
	ScheduleCancelled ScheduleStatus = "CANCELLED"
	ScheduleCompleted ScheduleStatus = "COMPLETED"
)

// Terminal reports whether the status permits no further transitions.
func (s ScheduleStatus) Terminal() bool {
	return s == ScheduleCancelled || s == ScheduleCompleted
}

// CanTransition reports whether moving from s to next is a legal,
// monotonic status change.  Staying in place is always allowed.
func (s ScheduleStatus) CanTransition(next ScheduleStatus) bool {
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	switch next {
	case ScheduleScheduled:
		// DELAYED may recover to SCHEDULED; nothing else moves backwards.
		return s == ScheduleDelayed
	case ScheduleDelayed, ScheduleCancelled, ScheduleCompleted:
		return true
	default:
		return false
	}
}

// Schedule assigns a bus and a driver to a route for one time-boxed
// trip.  It owns the trip's seat inventory; AvailableSeats is a cached
// counter kept in lockstep with the inventory by every mutating
// operation, and a mismatch between the two is treated as a
// programming error rather than silently repaired.
type Schedule struct {
	ID             int64              // schedules.id
	RouteID        int64              // schedules.route_id
	BusID          int64              // schedules.bus_id
	DriverID       int64              // schedules.driver_id
	DepartsAt      time.Time          // schedules.departs_at (UTC)
	ArrivesAt      time.Time          // schedules.arrives_at (UTC, strictly after DepartsAt)
	Status         ScheduleStatus     // schedules.status
	Capacity       int                // schedules.capacity (copied from the bus at assignment)
	AvailableSeats int                // schedules.available_seats (cached counter)
	Seats          *inventory.SeatMap // owned seat inventory
	CreatedAt      time.Time          // schedules.created_at
	UpdatedAt      time.Time          // schedules.updated_at
}

// Overlaps reports whether the schedule's [DepartsAt, ArrivesAt)
// interval shares any instant with [start, end).  Both intervals are
// half-open, so a trip ending exactly when another starts does not
// overlap it.
func (s *Schedule) Overlaps(start, end time.Time) bool {
	return s.DepartsAt.Before(end) && start.Before(s.ArrivesAt)
}

// Clone returns a deep copy, including the seat inventory.
func (s *Schedule) Clone() *Schedule {
	out := *s
	if s.Seats != nil {
		out.Seats = s.Seats.Clone()
	}
	return &out
}
