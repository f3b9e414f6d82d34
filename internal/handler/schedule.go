package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/cache"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/engine"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
)

// ScheduleHandler serves the trip-schedule endpoints.
type ScheduleHandler struct {
	Registry     *engine.ScheduleRegistry
	Availability *cache.Availability
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(reg *engine.ScheduleRegistry, avail *cache.Availability) *ScheduleHandler {
	return &ScheduleHandler{Registry: reg, Availability: avail}
}

// scheduleResponse is the JSON shape for a schedule.  The seat map is
// exposed through the dedicated seats endpoint, not inlined here.
type scheduleResponse struct {
	ID             int64  `json:"id"`
	RouteID        int64  `json:"route_id"`
	BusID          int64  `json:"bus_id"`
	DriverID       int64  `json:"driver_id"`
	DepartsAt      string `json:"departs_at"`
	ArrivesAt      string `json:"arrives_at"`
	Status         string `json:"status"`
	Capacity       int    `json:"capacity"`
	AvailableSeats int    `json:"available_seats"`
}

func toScheduleResponse(s *model.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:             s.ID,
		RouteID:        s.RouteID,
		BusID:          s.BusID,
		DriverID:       s.DriverID,
		DepartsAt:      s.DepartsAt.UTC().Format(time.RFC3339),
		ArrivesAt:      s.ArrivesAt.UTC().Format(time.RFC3339),
		Status:         string(s.Status),
		Capacity:       s.Capacity,
		AvailableSeats: s.AvailableSeats,
	}
}

func toScheduleResponses(ss []*model.Schedule) []scheduleResponse {
	out := make([]scheduleResponse, 0, len(ss))
	for _, s := range ss {
		out = append(out, toScheduleResponse(s))
	}
	return out
}

// Create handles POST /v1/schedules.
func (h *ScheduleHandler) Create(c echo.Context) error {
	var body struct {
		RouteID   int64  `json:"route_id"`
		BusID     int64  `json:"bus_id"`
		DriverID  int64  `json:"driver_id"`
		DepartsAt string `json:"departs_at"`
		ArrivesAt string `json:"arrives_at"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	departs, err := time.Parse(time.RFC3339, body.DepartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid departs_at format"})
	}
	arrives, err := time.Parse(time.RFC3339, body.ArrivesAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid arrives_at format"})
	}

	s, err := h.Registry.CreateSchedule(c.Request().Context(), engine.CreateScheduleInput{
		RouteID:   body.RouteID,
		BusID:     body.BusID,
		DriverID:  body.DriverID,
		DepartsAt: departs.UTC(),
		ArrivesAt: arrives.UTC(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toScheduleResponse(s))
}

// Update handles PATCH /v1/schedules/:id.  Absent fields keep their
// current values.
func (h *ScheduleHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid schedule id"})
	}
	var body struct {
		RouteID   *int64  `json:"route_id"`
		BusID     *int64  `json:"bus_id"`
		DriverID  *int64  `json:"driver_id"`
		DepartsAt *string `json:"departs_at"`
		ArrivesAt *string `json:"arrives_at"`
		Status    *string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	in := engine.UpdateScheduleInput{
		RouteID:  body.RouteID,
		BusID:    body.BusID,
		DriverID: body.DriverID,
	}
	if body.DepartsAt != nil {
		t, err := time.Parse(time.RFC3339, *body.DepartsAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid departs_at format"})
		}
		t = t.UTC()
		in.DepartsAt = &t
	}
	if body.ArrivesAt != nil {
		t, err := time.Parse(time.RFC3339, *body.ArrivesAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid arrives_at format"})
		}
		t = t.UTC()
		in.ArrivesAt = &t
	}
	if body.Status != nil {
		st := model.ScheduleStatus(*body.Status)
		in.Status = &st
	}

	s, err := h.Registry.UpdateSchedule(c.Request().Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScheduleResponse(s))
}

// Delete handles DELETE /v1/schedules/:id.
func (h *ScheduleHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid schedule id"})
	}
	if err := h.Registry.DeleteSchedule(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/schedules/:id.
func (h *ScheduleHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid schedule id"})
	}
	s, err := h.Registry.Schedule(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScheduleResponse(s))
}

// Seats handles GET /v1/schedules/:id/seats.  The available count is
// served through the Redis cache; the per-seat states come from the
// authoritative schedule.
func (h *ScheduleHandler) Seats(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid schedule id"})
	}
	s, err := h.Registry.Schedule(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	available := s.AvailableSeats
	if h.Availability != nil {
		if n, err := h.Availability.Get(c.Request().Context(), id); err == nil {
			available = n
		}
	}
	type seatState struct {
		Number int    `json:"number"`
		Status string `json:"status"`
	}
	seats := make([]seatState, 0, s.Capacity)
	if s.Seats != nil {
		for _, st := range s.Seats.Snapshot() {
			seats = append(seats, seatState{Number: st.Number, Status: string(st.Status)})
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"schedule_id":     id,
		"capacity":        s.Capacity,
		"available_seats": available,
		"seats":           seats,
	})
}

// ListByBus handles GET /v1/buses/:id/schedules.
func (h *ScheduleHandler) ListByBus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid bus id"})
	}
	ss, err := h.Registry.SchedulesByBus(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScheduleResponses(ss))
}

// ListByDriver handles GET /v1/drivers/:id/schedules.
func (h *ScheduleHandler) ListByDriver(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid driver id"})
	}
	ss, err := h.Registry.SchedulesByDriver(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScheduleResponses(ss))
}

// ListByRoute handles GET /v1/routes/:id/schedules?date=YYYY-MM-DD.
func (h *ScheduleHandler) ListByRoute(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid route id"})
	}
	dateStr := c.QueryParam("date")
	if dateStr == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date query parameter is required"})
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid date format, want YYYY-MM-DD"})
	}
	ss, err := h.Registry.SchedulesByRouteAndDate(c.Request().Context(), id, day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScheduleResponses(ss))
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
