// Package queue bridges the in-process event bus and RabbitMQ.  The
// publisher forwards every domain event to a durable queue; the
// consumer in consumer.go drains that queue into an audit log.
package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/event"
)

// eventQueueName is the durable queue all domain events are routed to.
const eventQueueName = "booking.events"

// Publisher forwards domain events to RabbitMQ.  It dials per publish,
// which keeps it free of connection state to babysit; at booking-flow
// volumes the handshake cost is irrelevant.  Failures are logged and
// swallowed so a broker outage never fails a booking.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher constructs a Publisher for the given broker URL.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// HandleEvent implements the event bus subscriber contract.  The
// returned error is always nil; transport problems are logged here.
func (p *Publisher) HandleEvent(ev event.Event) error {
	if err := p.publish(context.Background(), ev); err != nil {
		p.log.Warn("event publish failed",
			zap.String("event_id", ev.ID),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, ev event.Event) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(eventQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(ev.Type),
		Body:         body,
	}

	return ch.PublishWithContext(ctx,
		"",             // default exchange
		eventQueueName, // routing key = queue name
		false,          // mandatory
		false,          // immediate
		pub,
	)
}
