package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/event"
)

// StartEventConsumer connects to RabbitMQ, declares the durable
// booking.events queue and starts consuming.  Each message is appended
// to logs/booking.log in a single-line, human-friendly format.  The
// function runs a reconnect loop with exponential backoff and never
// returns; processing errors are logged and the offending message is
// rejected without requeue so the loop cannot get stuck on a poison
// message.
func StartEventConsumer(url string, log *zap.Logger) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("event consumer dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, log); err != nil {
			log.Warn("event consume loop ended", zap.Error(err))
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, log *zap.Logger) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", zap.Error(err))
	}

	if _, err = ch.QueueDeclare(eventQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(eventQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Warn("handle message failed", zap.Error(err))
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var ev event.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "booking.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// formatLine renders one event as a single audit log line.
func formatLine(ev event.Event) string {
	seats := "[]"
	if len(ev.Seats) > 0 {
		parts := make([]string, len(ev.Seats))
		for i, s := range ev.Seats {
			parts[i] = fmt.Sprintf("%d", s)
		}
		seats = fmt.Sprintf("[%s]", strings.Join(parts, ","))
	}
	return fmt.Sprintf("[%s] %s | schedule_id=%d | booking_id=%d | reference=%s | passenger_id=%d | amount=%d cents | seats=%s\n",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type,
		ev.ScheduleID, ev.BookingID, ev.Reference, ev.PassengerID, ev.AmountCents, seats)
}
