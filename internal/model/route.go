package model

import "time"

// Route describes a fixed origin/destination pair served by the
// operator.  The fare is the per-seat price in cents for a single
// trip on this route; schedules multiply it by the number of seats
// booked unless an explicit override is supplied.
type Route struct {
	ID         int64     // routes.id
	Origin     string    // routes.origin
	Destination string   // routes.destination
	DistanceKM uint32    // routes.distance_km
	FareCents  int64     // routes.fare_cents (per seat)
	CreatedAt  time.Time // routes.created_at
	UpdatedAt  time.Time // routes.updated_at
}
