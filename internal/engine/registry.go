package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/event"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/inventory"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
)

// ScheduleRegistry is the sole authority over bus and driver time
// allocation.  Every create or update re-validates interval overlap
// against the latest committed state while holding the affected
// resource locks, so a bus or driver can never be double-booked.
type ScheduleRegistry struct {
	schedules ScheduleStore
	bookings  BookingStore
	fleet     FleetDirectory
	locks     *keyedMutex
	events    *event.Bus
	log       *zap.Logger
	now       func() time.Time
}

// CreateScheduleInput carries the operator's trip assignment.
type CreateScheduleInput struct {
	RouteID   int64
	BusID     int64
	DriverID  int64
	DepartsAt time.Time
	ArrivesAt time.Time
}

// UpdateScheduleInput lists the fields an update may change.  Nil
// pointers leave the current value untouched.
type UpdateScheduleInput struct {
	RouteID   *int64
	BusID     *int64
	DriverID  *int64
	DepartsAt *time.Time
	ArrivesAt *time.Time
	Status    *model.ScheduleStatus
}

// CreateSchedule validates the assignment, checks bus and driver
// availability for the trip window and registers the schedule with a
// fresh all-available seat inventory sized to the bus capacity.
func (r *ScheduleRegistry) CreateSchedule(ctx context.Context, in CreateScheduleInput) (*model.Schedule, error) {
	if in.RouteID <= 0 {
		return nil, model.ValidationError{Field: "route_id", Msg: "required"}
	}
	if in.BusID <= 0 {
		return nil, model.ValidationError{Field: "bus_id", Msg: "required"}
	}
	if in.DriverID <= 0 {
		return nil, model.ValidationError{Field: "driver_id", Msg: "required"}
	}
	if in.DepartsAt.IsZero() || in.ArrivesAt.IsZero() {
		return nil, model.ValidationError{Field: "departs_at", Msg: "departure and arrival are required"}
	}
	if !in.ArrivesAt.After(in.DepartsAt) {
		return nil, model.ValidationError{Field: "arrives_at", Msg: "arrival must be after departure"}
	}

	if _, err := r.fleet.Route(ctx, in.RouteID); err != nil {
		return nil, err
	}
	bus, err := r.fleet.Bus(ctx, in.BusID)
	if err != nil {
		return nil, err
	}
	if !bus.Operational() {
		return nil, model.StateError{Resource: "bus", State: string(bus.Status)}
	}
	driver, err := r.fleet.Driver(ctx, in.DriverID)
	if err != nil {
		return nil, err
	}
	if !driver.Available() {
		return nil, model.StateError{Resource: "driver", State: string(driver.Status)}
	}

	unlock := r.locks.LockAll(busKey(in.BusID), driverKey(in.DriverID))
	defer unlock()

	if err := r.checkOverlap(ctx, in.BusID, in.DriverID, in.DepartsAt, in.ArrivesAt, 0, true, true); err != nil {
		return nil, err
	}

	seats, err := inventory.New(bus.Capacity)
	if err != nil {
		return nil, model.ValidationError{Field: "capacity", Msg: "bus capacity must be positive", Err: err}
	}
	s := &model.Schedule{
		RouteID:        in.RouteID,
		BusID:          in.BusID,
		DriverID:       in.DriverID,
		DepartsAt:      in.DepartsAt.UTC(),
		ArrivesAt:      in.ArrivesAt.UTC(),
		Status:         model.ScheduleScheduled,
		Capacity:       bus.Capacity,
		AvailableSeats: bus.Capacity,
		Seats:          seats,
	}
	if err := r.schedules.Create(ctx, s); err != nil {
		return nil, err
	}

	r.log.Info("schedule created",
		zap.Int64("schedule_id", s.ID),
		zap.Int64("route_id", s.RouteID),
		zap.Int64("bus_id", s.BusID),
		zap.Int64("driver_id", s.DriverID),
		zap.Time("departs_at", s.DepartsAt),
		zap.Time("arrives_at", s.ArrivesAt),
	)
	ev := event.New(event.TypeScheduleCreated)
	ev.ScheduleID = s.ID
	r.events.Publish(ev)
	return s, nil
}

// UpdateSchedule applies partial changes.  Overlap is re-validated
// only for the resources or times that actually changed.  Switching
// to a different bus is refused while active bookings exist, because
// the inventory would have to be rebuilt underneath them; with no
// active bookings the inventory is reinitialized at the new capacity.
func (r *ScheduleRegistry) UpdateSchedule(ctx context.Context, id int64, in UpdateScheduleInput) (*model.Schedule, error) {
	unlockSched := r.locks.Lock(scheduleKey(id))
	defer unlockSched()

	s, err := r.schedules.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status.Terminal() {
		return nil, model.StateError{Resource: "schedule", State: string(s.Status)}
	}

	next := s.Clone()
	if in.RouteID != nil {
		if _, err := r.fleet.Route(ctx, *in.RouteID); err != nil {
			return nil, err
		}
		next.RouteID = *in.RouteID
	}
	if in.BusID != nil {
		next.BusID = *in.BusID
	}
	if in.DriverID != nil {
		next.DriverID = *in.DriverID
	}
	if in.DepartsAt != nil {
		next.DepartsAt = in.DepartsAt.UTC()
	}
	if in.ArrivesAt != nil {
		next.ArrivesAt = in.ArrivesAt.UTC()
	}
	if !next.ArrivesAt.After(next.DepartsAt) {
		return nil, model.ValidationError{Field: "arrives_at", Msg: "arrival must be after departure"}
	}
	if in.Status != nil {
		if !s.Status.CanTransition(*in.Status) {
			return nil, model.StateError{
				Resource: "schedule",
				Msg:      fmt.Sprintf("cannot transition %s to %s", s.Status, *in.Status),
			}
		}
		next.Status = *in.Status
	}

	timesChanged := !next.DepartsAt.Equal(s.DepartsAt) || !next.ArrivesAt.Equal(s.ArrivesAt)
	busChanged := next.BusID != s.BusID
	driverChanged := next.DriverID != s.DriverID

	unlockRes := r.locks.LockAll(
		busKey(s.BusID), busKey(next.BusID),
		driverKey(s.DriverID), driverKey(next.DriverID),
	)
	defer unlockRes()

	if busChanged {
		bus, err := r.fleet.Bus(ctx, next.BusID)
		if err != nil {
			return nil, err
		}
		if !bus.Operational() {
			return nil, model.StateError{Resource: "bus", State: string(bus.Status)}
		}
		active, err := r.bookings.CountActiveBySchedule(ctx, id)
		if err != nil {
			return nil, err
		}
		if active > 0 {
			return nil, model.ConflictError{
				Resource: "schedule",
				Msg:      "cannot change bus while active bookings exist",
			}
		}
		seats, err := inventory.New(bus.Capacity)
		if err != nil {
			return nil, model.ValidationError{Field: "capacity", Msg: "bus capacity must be positive", Err: err}
		}
		next.Capacity = bus.Capacity
		next.AvailableSeats = bus.Capacity
		next.Seats = seats
	}
	if driverChanged {
		driver, err := r.fleet.Driver(ctx, next.DriverID)
		if err != nil {
			return nil, err
		}
		if !driver.Available() {
			return nil, model.StateError{Resource: "driver", State: string(driver.Status)}
		}
	}

	if err := r.checkOverlap(ctx, next.BusID, next.DriverID, next.DepartsAt, next.ArrivesAt, id,
		timesChanged || busChanged, timesChanged || driverChanged); err != nil {
		return nil, err
	}

	if err := r.schedules.Update(ctx, next); err != nil {
		return nil, err
	}

	r.log.Info("schedule updated",
		zap.Int64("schedule_id", id),
		zap.String("status", string(next.Status)),
		zap.Bool("bus_changed", busChanged),
		zap.Bool("driver_changed", driverChanged),
		zap.Bool("times_changed", timesChanged),
	)
	evType := event.TypeScheduleUpdated
	if next.Status == model.ScheduleCancelled {
		evType = event.TypeScheduleCancelled
	}
	ev := event.New(evType)
	ev.ScheduleID = id
	r.events.Publish(ev)
	return next, nil
}

// DeleteSchedule removes a schedule that has no active bookings.
func (r *ScheduleRegistry) DeleteSchedule(ctx context.Context, id int64) error {
	unlock := r.locks.Lock(scheduleKey(id))
	defer unlock()

	if _, err := r.schedules.Get(ctx, id); err != nil {
		return err
	}
	active, err := r.bookings.CountActiveBySchedule(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return model.ConflictError{Resource: "schedule", Msg: "has active bookings"}
	}
	if err := r.schedules.Delete(ctx, id); err != nil {
		return err
	}

	r.log.Info("schedule deleted", zap.Int64("schedule_id", id))
	ev := event.New(event.TypeScheduleCancelled)
	ev.ScheduleID = id
	r.events.Publish(ev)
	return nil
}

// Schedule returns one schedule by id.
func (r *ScheduleRegistry) Schedule(ctx context.Context, id int64) (*model.Schedule, error) {
	return r.schedules.Get(ctx, id)
}

// SchedulesByRouteAndDate lists schedules departing on the given UTC
// calendar day for a route.
func (r *ScheduleRegistry) SchedulesByRouteAndDate(ctx context.Context, routeID int64, day time.Time) ([]*model.Schedule, error) {
	return r.schedules.ListByRouteAndDate(ctx, routeID, day)
}

// SchedulesByBus lists all schedules assigned to a bus.
func (r *ScheduleRegistry) SchedulesByBus(ctx context.Context, busID int64) ([]*model.Schedule, error) {
	return r.schedules.ListByBus(ctx, busID)
}

// SchedulesByDriver lists all schedules assigned to a driver.
func (r *ScheduleRegistry) SchedulesByDriver(ctx context.Context, driverID int64) ([]*model.Schedule, error) {
	return r.schedules.ListByDriver(ctx, driverID)
}

// SchedulesByStatus lists all schedules in the given status.
func (r *ScheduleRegistry) SchedulesByStatus(ctx context.Context, status model.ScheduleStatus) ([]*model.Schedule, error) {
	return r.schedules.ListByStatus(ctx, status)
}

// CompleteTrips marks every SCHEDULED or DELAYED schedule whose
// arrival has passed as COMPLETED and moves its CONFIRMED bookings to
// COMPLETED as well.  It returns the number of schedules completed.
// Intended to run periodically from the surrounding system.
func (r *ScheduleRegistry) CompleteTrips(ctx context.Context, now time.Time) (int, error) {
	candidates := make([]*model.Schedule, 0)
	for _, status := range []model.ScheduleStatus{model.ScheduleScheduled, model.ScheduleDelayed} {
		list, err := r.schedules.ListByStatus(ctx, status)
		if err != nil {
			return 0, err
		}
		candidates = append(candidates, list...)
	}

	completed := 0
	for _, c := range candidates {
		if c.ArrivesAt.After(now) {
			continue
		}
		if err := r.completeTrip(ctx, c.ID, now); err != nil {
			return completed, err
		}
		completed++
	}
	return completed, nil
}

func (r *ScheduleRegistry) completeTrip(ctx context.Context, id int64, now time.Time) error {
	unlock := r.locks.Lock(scheduleKey(id))
	defer unlock()

	s, err := r.schedules.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.Status.Terminal() || s.ArrivesAt.After(now) {
		return nil
	}
	s.Status = model.ScheduleCompleted
	if err := r.schedules.Update(ctx, s); err != nil {
		return err
	}

	bookings, err := r.bookings.ListBySchedule(ctx, id)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if b.Status != model.BookingConfirmed {
			continue
		}
		b.Status = model.BookingCompleted
		if err := r.bookings.Update(ctx, b); err != nil {
			return err
		}
	}
	r.log.Info("trip completed", zap.Int64("schedule_id", id))
	return nil
}

// checkOverlap verifies bus and/or driver availability for [start,
// end) against the latest committed schedules.  The caller must hold
// the corresponding resource locks.
func (r *ScheduleRegistry) checkOverlap(ctx context.Context, busID, driverID int64, start, end time.Time, excludeID int64, checkBus, checkDriver bool) error {
	if checkBus {
		overlaps, err := r.schedules.OverlappingByBus(ctx, busID, start, end, excludeID)
		if err != nil {
			return err
		}
		if len(overlaps) > 0 {
			return model.ConflictError{
				Resource: "bus",
				Msg:      fmt.Sprintf("bus %d already scheduled in %s", busID, formatWindow(overlaps[0])),
			}
		}
	}
	if checkDriver {
		overlaps, err := r.schedules.OverlappingByDriver(ctx, driverID, start, end, excludeID)
		if err != nil {
			return err
		}
		if len(overlaps) > 0 {
			return model.ConflictError{
				Resource: "driver",
				Msg:      fmt.Sprintf("driver %d already scheduled in %s", driverID, formatWindow(overlaps[0])),
			}
		}
	}
	return nil
}

func formatWindow(s *model.Schedule) string {
	return fmt.Sprintf("[%s, %s)", s.DepartsAt.Format(time.RFC3339), s.ArrivesAt.Format(time.RFC3339))
}
