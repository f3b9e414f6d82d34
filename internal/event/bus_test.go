package event

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var order []string
	bus.Subscribe(func(Event) error {
		order = append(order, "first")
		return nil
	})
	bus.Subscribe(func(Event) error {
		order = append(order, "second")
		return nil
	})

	bus.Publish(New(TypeBookingCreated))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("delivery order wrong: %v", order)
	}
}

func TestPublishSurvivesFailingSubscriber(t *testing.T) {
	bus := NewBus(zap.NewNop())

	delivered := 0
	bus.Subscribe(func(Event) error { return errors.New("boom") })
	bus.Subscribe(func(Event) error { panic("worse") })
	bus.Subscribe(func(Event) error {
		delivered++
		return nil
	})

	bus.Publish(New(TypeBookingCancelled))

	if delivered != 1 {
		t.Fatalf("later subscriber not reached after failures, delivered=%d", delivered)
	}
}

func TestNewAssignsIdentityAndTimestamp(t *testing.T) {
	ev := New(TypeRefundIssued)
	if ev.ID == "" {
		t.Fatalf("event id empty")
	}
	if ev.Type != TypeRefundIssued {
		t.Fatalf("type = %s", ev.Type)
	}
	if ev.OccurredAt.IsZero() {
		t.Fatalf("timestamp not set")
	}
	if New(TypeRefundIssued).ID == ev.ID {
		t.Fatalf("ids must be unique")
	}
}
