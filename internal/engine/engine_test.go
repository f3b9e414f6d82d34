package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/event"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/refund"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/store"
)

// testEnv wires a registry and manager over the in-memory stores with
// a seeded fleet and a controllable clock.
type testEnv struct {
	registry *ScheduleRegistry
	manager  *BookingManager
	fleet    *store.MemoryFleetDirectory
	events   *event.Bus
	clock    time.Time
}

func newTestEnv() *testEnv {
	fleet := store.NewMemoryFleetDirectory()
	fleet.SeedRoute(model.Route{ID: 1, Origin: "Springfield", Destination: "Shelbyville", FareCents: 1200})
	fleet.SeedRoute(model.Route{ID: 2, Origin: "Shelbyville", Destination: "Capital City", FareCents: 2500})
	fleet.SeedBus(model.Bus{ID: 1, Code: "BUS-001", Capacity: 40, Status: model.BusActive})
	fleet.SeedBus(model.Bus{ID: 2, Code: "BUS-002", Capacity: 30, Status: model.BusActive})
	fleet.SeedBus(model.Bus{ID: 3, Code: "BUS-003", Capacity: 50, Status: model.BusMaintenance})
	fleet.SeedDriver(model.Driver{ID: 1, Name: "Dana", LicenseNo: "L-1", Status: model.DriverActive})
	fleet.SeedDriver(model.Driver{ID: 2, Name: "Robin", LicenseNo: "L-2", Status: model.DriverActive})
	fleet.SeedDriver(model.Driver{ID: 3, Name: "Sam", LicenseNo: "L-3", Status: model.DriverInactive})

	events := event.NewBus(zap.NewNop())
	registry, manager := New(
		store.NewMemoryScheduleStore(),
		store.NewMemoryBookingStore(),
		fleet,
		refund.Default(),
		events,
		zap.NewNop(),
	)

	env := &testEnv{
		registry: registry,
		manager:  manager,
		fleet:    fleet,
		events:   events,
		clock:    time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC),
	}
	registry.now = func() time.Time { return env.clock }
	manager.now = func() time.Time { return env.clock }
	return env
}

// at builds a trip window on the env's base day.
func at(hour, endHour int) (time.Time, time.Time) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return day.Add(time.Duration(hour) * time.Hour), day.Add(time.Duration(endHour) * time.Hour)
}
