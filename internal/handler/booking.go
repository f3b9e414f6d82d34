package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/engine"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/ticket"
)

// UserDirectory resolves passenger display data for responses and
// e-tickets.  It is optional; a nil directory leaves names blank.
type UserDirectory interface {
	Get(ctx context.Context, id int64) (*model.User, error)
}

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	Manager  *engine.BookingManager
	Registry *engine.ScheduleRegistry
	Fleet    engine.FleetDirectory
	Users    UserDirectory
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(m *engine.BookingManager, reg *engine.ScheduleRegistry, fleet engine.FleetDirectory, users UserDirectory) *BookingHandler {
	return &BookingHandler{Manager: m, Registry: reg, Fleet: fleet, Users: users}
}

type bookingResponse struct {
	ID          int64  `json:"id"`
	Reference   string `json:"reference"`
	ScheduleID  int64  `json:"schedule_id"`
	PassengerID int64  `json:"passenger_id"`
	Seats       []int  `json:"seats"`
	FareCents   int64  `json:"fare_cents"`
	Status      string `json:"status"`
	PaymentRef  string `json:"payment_ref,omitempty"`
	RefundCents int64  `json:"refund_cents"`
	BookedAt    string `json:"booked_at"`
	CancelledAt string `json:"cancelled_at,omitempty"`
}

func toBookingResponse(b *model.Booking) bookingResponse {
	out := bookingResponse{
		ID:          b.ID,
		Reference:   b.Reference,
		ScheduleID:  b.ScheduleID,
		PassengerID: b.PassengerID,
		Seats:       b.Seats,
		FareCents:   b.FareCents,
		Status:      string(b.Status),
		PaymentRef:  b.PaymentRef,
		RefundCents: b.RefundCents,
		BookedAt:    b.BookedAt.UTC().Format(time.RFC3339),
	}
	if b.CancelledAt != nil {
		out.CancelledAt = b.CancelledAt.UTC().Format(time.RFC3339)
	}
	return out
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	var body struct {
		ScheduleID  int64 `json:"schedule_id"`
		PassengerID int64 `json:"passenger_id"`
		Seats       []int `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	b, err := h.Manager.CreateBooking(c.Request().Context(), engine.CreateBookingInput{
		ScheduleID:  body.ScheduleID,
		PassengerID: body.PassengerID,
		Seats:       body.Seats,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// Payment handles POST /v1/bookings/:id/payment.  The body reports the
// outcome of an already-settled payment attempt; this service never
// talks to a payment gateway itself.
func (h *BookingHandler) Payment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid booking id"})
	}
	var body struct {
		Success   bool   `json:"success"`
		Reference string `json:"reference"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	b, err := h.Manager.ConfirmPayment(c.Request().Context(), id, engine.PaymentResult{
		Success:   body.Success,
		Reference: body.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Cancel handles POST /v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid booking id"})
	}
	b, err := h.Manager.CancelBooking(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid booking id"})
	}
	b, err := h.Manager.Booking(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetByReference handles GET /v1/bookings/reference/:ref.
func (h *BookingHandler) GetByReference(c echo.Context) error {
	ref := c.Param("ref")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "reference is required"})
	}
	b, err := h.Manager.BookingByReference(c.Request().Context(), ref)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// ListByPassenger handles GET /v1/passengers/:id/bookings.
func (h *BookingHandler) ListByPassenger(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid passenger id"})
	}
	bs, err := h.Manager.BookingsByPassenger(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]bookingResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingResponse(b))
	}
	return c.JSON(http.StatusOK, out)
}

// Ticket handles GET /v1/bookings/:id/ticket and streams the e-ticket
// PDF.  Only confirmed bookings have a ticket.
func (h *BookingHandler) Ticket(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()

	b, err := h.Manager.Booking(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if b.Status != model.BookingConfirmed {
		return c.JSON(http.StatusConflict, map[string]string{"error": "ticket is only available for confirmed bookings"})
	}

	s, err := h.Registry.Schedule(ctx, b.ScheduleID)
	if err != nil {
		return writeError(c, err)
	}
	data := ticket.Data{
		Reference: b.Reference,
		DepartsAt: s.DepartsAt,
		ArrivesAt: s.ArrivesAt,
		Seats:     b.Seats,
		FareCents: b.FareCents,
	}
	if route, err := h.Fleet.Route(ctx, s.RouteID); err == nil {
		data.Origin = route.Origin
		data.Destination = route.Destination
	}
	if bus, err := h.Fleet.Bus(ctx, s.BusID); err == nil {
		data.BusCode = bus.Code
	}
	if h.Users != nil {
		if u, err := h.Users.Get(ctx, b.PassengerID); err == nil {
			data.PassengerName = u.FullName
		}
	}

	pdf, filename, err := ticket.Build(data)
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
