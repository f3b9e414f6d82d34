package model

import "time"

// BusStatus is the operational state of a vehicle.  Only ACTIVE buses
// may be assigned to new schedules.
type BusStatus string

const (
	BusActive      BusStatus = "ACTIVE"
	BusMaintenance BusStatus = "MAINTENANCE"
	BusRetired     BusStatus = "RETIRED"
)

// Bus represents a vehicle in the fleet.  Capacity determines the
// size of the seat inventory for every schedule the bus is assigned to.
type Bus struct {
	ID        int64     // buses.id
	Code      string    // buses.code (registration plate or fleet code)
	Capacity  int       // buses.capacity
	Status    BusStatus // buses.status
	CreatedAt time.Time // buses.created_at
	UpdatedAt time.Time // buses.updated_at
}

// Operational reports whether the bus can be assigned to a new trip.
func (b *Bus) Operational() bool {
	return b.Status == BusActive
}

// DriverStatus is the employment state of a driver.
type DriverStatus string

const (
	DriverActive   DriverStatus = "ACTIVE"
	DriverInactive DriverStatus = "INACTIVE"
)

// Driver represents a person licensed to operate trips.  Like buses,
// drivers are a time-exclusive resource: a driver can be assigned to
// at most one schedule for any instant.
type Driver struct {
	ID        int64        // drivers.id
	Name      string       // drivers.name
	LicenseNo string       // drivers.license_no
	Status    DriverStatus // drivers.status
	CreatedAt time.Time    // drivers.created_at
	UpdatedAt time.Time    // drivers.updated_at
}

// Available reports whether the driver can take on a new trip.
func (d *Driver) Available() bool {
	return d.Status == DriverActive
}
