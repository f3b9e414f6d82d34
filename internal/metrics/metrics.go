package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/event"
)

// Collector owns a private registry with the booking-flow metrics.
// It subscribes to the domain event bus, so instrumentation never
// leaks into the engine itself.
type Collector struct {
	reg *prometheus.Registry

	SchedulesCreated   prometheus.Counter
	SchedulesCancelled prometheus.Counter

	BookingsCreated   prometheus.Counter
	BookingsConfirmed prometheus.Counter
	BookingsCancelled prometheus.Counter

	SeatsReserved prometheus.Counter
	RefundCents   prometheus.Counter
}

// NewCollector builds and registers all metrics on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		SchedulesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_schedules_created_total",
			Help: "Total trip schedules created.",
		}),
		SchedulesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_schedules_cancelled_total",
			Help: "Total trip schedules cancelled or deleted.",
		}),
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_bookings_created_total",
			Help: "Total bookings created.",
		}),
		BookingsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_bookings_confirmed_total",
			Help: "Total bookings confirmed by payment.",
		}),
		BookingsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_bookings_cancelled_total",
			Help: "Total bookings cancelled.",
		}),
		SeatsReserved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_seats_reserved_total",
			Help: "Total seats reserved across all bookings.",
		}),
		RefundCents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_refund_cents_total",
			Help: "Total refund amount issued, in cents.",
		}),
	}

	reg.MustRegister(
		c.SchedulesCreated, c.SchedulesCancelled,
		c.BookingsCreated, c.BookingsConfirmed, c.BookingsCancelled,
		c.SeatsReserved, c.RefundCents,
	)

	return c
}

// HandleEvent implements the event bus subscriber contract.
func (c *Collector) HandleEvent(ev event.Event) error {
	switch ev.Type {
	case event.TypeScheduleCreated:
		c.SchedulesCreated.Inc()
	case event.TypeScheduleCancelled:
		c.SchedulesCancelled.Inc()
	case event.TypeBookingCreated:
		c.BookingsCreated.Inc()
		c.SeatsReserved.Add(float64(len(ev.Seats)))
	case event.TypeBookingConfirmed:
		c.BookingsConfirmed.Inc()
	case event.TypeBookingCancelled:
		c.BookingsCancelled.Inc()
	case event.TypeRefundIssued:
		c.RefundCents.Add(float64(ev.AmountCents))
	}
	return nil
}

// Handler exposes the private registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
