// Package event defines the domain events emitted after booking and
// schedule state commits, and the synchronous subscriber registry that
// fans them out.  Subscribers observe committed state only: a failing
// subscriber is logged and skipped, never allowed to undo the mutation
// that produced the event.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type discriminates the event payloads carried by Event.
type Type string

const (
	TypeScheduleCreated   Type = "schedule.created"
	TypeScheduleUpdated   Type = "schedule.updated"
	TypeScheduleCancelled Type = "schedule.cancelled"
	TypeBookingCreated    Type = "booking.created"
	TypeBookingConfirmed  Type = "booking.confirmed"
	TypeBookingCancelled  Type = "booking.cancelled"
	TypeRefundIssued      Type = "refund.issued"
)

// Event is a flat record of one committed state change.  Fields that
// do not apply to a given Type are left zero.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	ScheduleID int64 `json:"schedule_id,omitempty"`
	BookingID  int64 `json:"booking_id,omitempty"`

	Reference   string `json:"reference,omitempty"`    // booking reference code
	PassengerID int64  `json:"passenger_id,omitempty"`
	Seats       []int  `json:"seats,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"` // fare or refund, per Type
}

// New builds an event with a fresh id and UTC timestamp.
func New(t Type) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
	}
}
