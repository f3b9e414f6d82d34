// This file defines read-only lookups over fleet reference data:
// buses, drivers and routes.  The engine only ever reads these tables;
// seeding and administration happen outside this service.
package repository

import (
	"context"
	"database/sql"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
)

// FleetRepo serves bus, driver and route lookups.
type FleetRepo struct {
	db *sql.DB
}

// NewFleetRepo constructs a FleetRepo with the given DB handle.
func NewFleetRepo(db *sql.DB) *FleetRepo {
	return &FleetRepo{db: db}
}

// Bus retrieves a bus by ID.  It returns model.NotFoundError when no
// row matches.
func (r *FleetRepo) Bus(ctx context.Context, id int64) (*model.Bus, error) {
	const q = `SELECT id, code, capacity, status, created_at, updated_at FROM buses WHERE id = ?`
	var b model.Bus
	err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Code, &b.Capacity, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "bus")
	}
	return &b, nil
}

// Driver retrieves a driver by ID.
func (r *FleetRepo) Driver(ctx context.Context, id int64) (*model.Driver, error) {
	const q = `SELECT id, name, license_no, status, created_at, updated_at FROM drivers WHERE id = ?`
	var d model.Driver
	err := r.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.Name, &d.LicenseNo, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "driver")
	}
	return &d, nil
}

// Route retrieves a route by ID.
func (r *FleetRepo) Route(ctx context.Context, id int64) (*model.Route, error) {
	const q = `SELECT id, origin, destination, distance_km, fare_cents, created_at, updated_at FROM routes WHERE id = ?`
	var rt model.Route
	err := r.db.QueryRowContext(ctx, q, id).Scan(&rt.ID, &rt.Origin, &rt.Destination, &rt.DistanceKM, &rt.FareCents, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "route")
	}
	return &rt, nil
}
