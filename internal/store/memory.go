// Package store provides the in-memory storage backend.  Each store
// is an explicitly constructed, mutex-guarded map keyed by id; there
// is no package-level state.  Get and list calls hand out deep copies
// so callers can stage changes and commit them through Update, which
// matches how the engine treats storage.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
)

// MemoryScheduleStore keeps schedules in process memory.
type MemoryScheduleStore struct {
	mu        sync.RWMutex
	nextID    int64
	schedules map[int64]*model.Schedule
}

// NewMemoryScheduleStore returns an empty schedule store.
func NewMemoryScheduleStore() *MemoryScheduleStore {
	return &MemoryScheduleStore{nextID: 1, schedules: make(map[int64]*model.Schedule)}
}

func (s *MemoryScheduleStore) Create(_ context.Context, sched *model.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sched.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	sched.CreatedAt = now
	sched.UpdatedAt = now
	s.schedules[sched.ID] = sched.Clone()
	return nil
}

func (s *MemoryScheduleStore) Get(_ context.Context, id int64) (*model.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sched, ok := s.schedules[id]
	if !ok {
		return nil, model.NotFoundError{Resource: "schedule"}
	}
	return sched.Clone(), nil
}

func (s *MemoryScheduleStore) Update(_ context.Context, sched *model.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[sched.ID]; !ok {
		return model.NotFoundError{Resource: "schedule"}
	}
	sched.UpdatedAt = time.Now().UTC()
	s.schedules[sched.ID] = sched.Clone()
	return nil
}

func (s *MemoryScheduleStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[id]; !ok {
		return model.NotFoundError{Resource: "schedule"}
	}
	delete(s.schedules, id)
	return nil
}

func (s *MemoryScheduleStore) OverlappingByBus(_ context.Context, busID int64, start, end time.Time, excludeID int64) ([]*model.Schedule, error) {
	return s.overlapping(func(sched *model.Schedule) bool { return sched.BusID == busID }, start, end, excludeID), nil
}

func (s *MemoryScheduleStore) OverlappingByDriver(_ context.Context, driverID int64, start, end time.Time, excludeID int64) ([]*model.Schedule, error) {
	return s.overlapping(func(sched *model.Schedule) bool { return sched.DriverID == driverID }, start, end, excludeID), nil
}

func (s *MemoryScheduleStore) overlapping(match func(*model.Schedule) bool, start, end time.Time, excludeID int64) []*model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Schedule
	for _, sched := range s.schedules {
		if sched.ID == excludeID || sched.Status == model.ScheduleCancelled {
			continue
		}
		if match(sched) && sched.Overlaps(start, end) {
			out = append(out, sched.Clone())
		}
	}
	return out
}

func (s *MemoryScheduleStore) ListByBus(_ context.Context, busID int64) ([]*model.Schedule, error) {
	return s.list(func(sched *model.Schedule) bool { return sched.BusID == busID }), nil
}

func (s *MemoryScheduleStore) ListByDriver(_ context.Context, driverID int64) ([]*model.Schedule, error) {
	return s.list(func(sched *model.Schedule) bool { return sched.DriverID == driverID }), nil
}

func (s *MemoryScheduleStore) ListByRouteAndDate(_ context.Context, routeID int64, day time.Time) ([]*model.Schedule, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	return s.list(func(sched *model.Schedule) bool {
		return sched.RouteID == routeID &&
			!sched.DepartsAt.Before(dayStart) && sched.DepartsAt.Before(dayEnd)
	}), nil
}

func (s *MemoryScheduleStore) ListByStatus(_ context.Context, status model.ScheduleStatus) ([]*model.Schedule, error) {
	return s.list(func(sched *model.Schedule) bool { return sched.Status == status }), nil
}

func (s *MemoryScheduleStore) list(match func(*model.Schedule) bool) []*model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Schedule, 0)
	for _, sched := range s.schedules {
		if match(sched) {
			out = append(out, sched.Clone())
		}
	}
	return out
}

// MemoryBookingStore keeps bookings in process memory.
type MemoryBookingStore struct {
	mu       sync.RWMutex
	nextID   int64
	bookings map[int64]*model.Booking
	byRef    map[string]int64
}

// NewMemoryBookingStore returns an empty booking store.
func NewMemoryBookingStore() *MemoryBookingStore {
	return &MemoryBookingStore{
		nextID:   1,
		bookings: make(map[int64]*model.Booking),
		byRef:    make(map[string]int64),
	}
}

func (s *MemoryBookingStore) Create(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byRef[b.Reference]; ok {
		return model.ConflictError{Resource: "booking", Msg: "duplicate reference"}
	}
	b.ID = s.nextID
	s.nextID++
	b.UpdatedAt = time.Now().UTC()
	s.bookings[b.ID] = b.Clone()
	s.byRef[b.Reference] = b.ID
	return nil
}

func (s *MemoryBookingStore) Get(_ context.Context, id int64) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, model.NotFoundError{Resource: "booking"}
	}
	return b.Clone(), nil
}

func (s *MemoryBookingStore) GetByReference(_ context.Context, ref string) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byRef[ref]
	if !ok {
		return nil, model.NotFoundError{Resource: "booking"}
	}
	return s.bookings[id].Clone(), nil
}

func (s *MemoryBookingStore) Update(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return model.NotFoundError{Resource: "booking"}
	}
	b.UpdatedAt = time.Now().UTC()
	s.bookings[b.ID] = b.Clone()
	return nil
}

func (s *MemoryBookingStore) ListBySchedule(_ context.Context, scheduleID int64) ([]*model.Booking, error) {
	return s.list(func(b *model.Booking) bool { return b.ScheduleID == scheduleID }), nil
}

func (s *MemoryBookingStore) ListByPassenger(_ context.Context, passengerID int64) ([]*model.Booking, error) {
	return s.list(func(b *model.Booking) bool { return b.PassengerID == passengerID }), nil
}

func (s *MemoryBookingStore) CountActiveBySchedule(_ context.Context, scheduleID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, b := range s.bookings {
		if b.ScheduleID == scheduleID && b.Active() {
			n++
		}
	}
	return n, nil
}

func (s *MemoryBookingStore) list(match func(*model.Booking) bool) []*model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Booking, 0)
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, b.Clone())
		}
	}
	return out
}

// MemoryFleetDirectory serves read-only bus, driver and route lookups
// from seeded maps.  The engine never writes fleet data, so there are
// no mutating methods beyond the Seed helpers used at construction.
type MemoryFleetDirectory struct {
	mu      sync.RWMutex
	buses   map[int64]*model.Bus
	drivers map[int64]*model.Driver
	routes  map[int64]*model.Route
}

// NewMemoryFleetDirectory returns an empty directory.
func NewMemoryFleetDirectory() *MemoryFleetDirectory {
	return &MemoryFleetDirectory{
		buses:   make(map[int64]*model.Bus),
		drivers: make(map[int64]*model.Driver),
		routes:  make(map[int64]*model.Route),
	}
}

// SeedBus registers a bus in the directory.
func (d *MemoryFleetDirectory) SeedBus(b model.Bus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buses[b.ID] = &b
}

// SeedDriver registers a driver in the directory.
func (d *MemoryFleetDirectory) SeedDriver(dr model.Driver) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drivers[dr.ID] = &dr
}

// SeedRoute registers a route in the directory.
func (d *MemoryFleetDirectory) SeedRoute(r model.Route) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes[r.ID] = &r
}

func (d *MemoryFleetDirectory) Bus(_ context.Context, id int64) (*model.Bus, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, ok := d.buses[id]
	if !ok {
		return nil, model.NotFoundError{Resource: "bus"}
	}
	out := *b
	return &out, nil
}

func (d *MemoryFleetDirectory) Driver(_ context.Context, id int64) (*model.Driver, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	dr, ok := d.drivers[id]
	if !ok {
		return nil, model.NotFoundError{Resource: "driver"}
	}
	out := *dr
	return &out, nil
}

func (d *MemoryFleetDirectory) Route(_ context.Context, id int64) (*model.Route, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.routes[id]
	if !ok {
		return nil, model.NotFoundError{Resource: "route"}
	}
	out := *r
	return &out, nil
}
