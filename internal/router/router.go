package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/handler"
)

// Register wires every endpoint onto the provided Echo instance.  The
// metrics handler is optional; pass nil to skip exposing /metrics.
func Register(e *echo.Echo, schedules *handler.ScheduleHandler, bookings *handler.BookingHandler, metrics http.Handler) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	v1 := e.Group("/v1")

	// Schedule registry.
	v1.POST("/schedules", schedules.Create)
	v1.GET("/schedules/:id", schedules.Get)
	v1.PATCH("/schedules/:id", schedules.Update)
	v1.DELETE("/schedules/:id", schedules.Delete)
	v1.GET("/schedules/:id/seats", schedules.Seats)
	v1.GET("/buses/:id/schedules", schedules.ListByBus)
	v1.GET("/drivers/:id/schedules", schedules.ListByDriver)
	v1.GET("/routes/:id/schedules", schedules.ListByRoute)

	// Booking lifecycle.
	v1.POST("/bookings", bookings.Create)
	v1.GET("/bookings/:id", bookings.Get)
	v1.GET("/bookings/reference/:ref", bookings.GetByReference)
	v1.POST("/bookings/:id/payment", bookings.Payment)
	v1.POST("/bookings/:id/cancel", bookings.Cancel)
	v1.GET("/bookings/:id/ticket", bookings.Ticket)
	v1.GET("/passengers/:id/bookings", bookings.ListByPassenger)
}
