// Package engine contains the scheduling and booking core: the
// schedule registry that owns bus/driver time allocation and the
// booking lifecycle manager that orchestrates seat reservation,
// payment confirmation and cancellation.  Storage is injected through
// the interfaces below; the engine itself serializes every mutation
// with keyed locks, so implementations only need each individual call
// to be atomic.
package engine

import (
	"context"
	"time"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
)

// ScheduleStore persists trip schedules together with their seat
// inventories.  Get and list methods return copies the caller may
// mutate freely; changes only take effect through Update.
// Missing ids surface as model.NotFoundError.
type ScheduleStore interface {
	Create(ctx context.Context, s *model.Schedule) error
	Get(ctx context.Context, id int64) (*model.Schedule, error)
	Update(ctx context.Context, s *model.Schedule) error
	Delete(ctx context.Context, id int64) error

	// OverlappingByBus returns non-cancelled schedules for the bus whose
	// [departs_at, arrives_at) interval overlaps [start, end).  A
	// non-zero excludeID drops that schedule from the result, which lets
	// an update overlap with itself.  OverlappingByDriver is the same
	// check keyed on the driver.
	OverlappingByBus(ctx context.Context, busID int64, start, end time.Time, excludeID int64) ([]*model.Schedule, error)
	OverlappingByDriver(ctx context.Context, driverID int64, start, end time.Time, excludeID int64) ([]*model.Schedule, error)

	ListByBus(ctx context.Context, busID int64) ([]*model.Schedule, error)
	ListByDriver(ctx context.Context, driverID int64) ([]*model.Schedule, error)
	ListByRouteAndDate(ctx context.Context, routeID int64, day time.Time) ([]*model.Schedule, error)
	ListByStatus(ctx context.Context, status model.ScheduleStatus) ([]*model.Schedule, error)
}

// BookingStore persists bookings.  Same copy and error conventions as
// ScheduleStore.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	Get(ctx context.Context, id int64) (*model.Booking, error)
	GetByReference(ctx context.Context, ref string) (*model.Booking, error)
	Update(ctx context.Context, b *model.Booking) error

	ListBySchedule(ctx context.Context, scheduleID int64) ([]*model.Booking, error)
	ListByPassenger(ctx context.Context, passengerID int64) ([]*model.Booking, error)
	// CountActiveBySchedule counts bookings in a non-terminal status.
	CountActiveBySchedule(ctx context.Context, scheduleID int64) (int, error)
}

// FleetDirectory is the read-only bus/driver/route lookup the registry
// validates assignments against.  The engine never writes fleet data.
type FleetDirectory interface {
	Bus(ctx context.Context, id int64) (*model.Bus, error)
	Driver(ctx context.Context, id int64) (*model.Driver, error)
	Route(ctx context.Context, id int64) (*model.Route, error)
}
