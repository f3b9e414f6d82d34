// This file defines persistence for trip schedules.  A schedule row
// carries the cached available_seats counter; the per-seat states live
// in the schedule_seats table and are loaded back into an
// inventory.SeatMap on read.  Writes that touch both tables run inside
// a transaction so the counter and the seat rows can never diverge on
// disk.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/inventory"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
)

// ScheduleRepo manages persistence for schedules and their seat maps.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo with the given DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// DB exposes the underlying sql.DB for callers that need transactions
// spanning multiple repositories.
func (r *ScheduleRepo) DB() *sql.DB {
	return r.db
}

const scheduleColumns = `id, route_id, bus_id, driver_id, departs_at, arrives_at, status, capacity, available_seats, created_at, updated_at`

// Create inserts a schedule together with one schedule_seats row per
// seat.  The generated ID and DB timestamps are written back onto the
// given Schedule.  The whole insert is transactional.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO schedules (route_id, bus_id, driver_id, departs_at, arrives_at, status, capacity, available_seats)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		s.RouteID, s.BusID, s.DriverID, s.DepartsAt, s.ArrivesAt, s.Status, s.Capacity, s.AvailableSeats,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id

	if err = insertSeatRows(ctx, tx, s.ID, s.Seats); err != nil {
		return err
	}

	// Read DB-assigned timestamps back onto the struct.
	const sel = `SELECT created_at, updated_at FROM schedules WHERE id = ?`
	if err = tx.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// Get retrieves a schedule by ID with its seat inventory restored from
// the schedule_seats table.  It returns model.NotFoundError when no
// row matches.
func (r *ScheduleRepo) Get(ctx context.Context, id int64) (*model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ?`
	s, err := scanSchedule(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err, "schedule")
	}
	booked, err := r.bookedSeats(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Seats, err = inventory.Restore(s.Capacity, booked)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Update rewrites a schedule row and replaces its seat rows with the
// current state of the in-memory seat map.  Delete-and-reinsert keeps
// the write simple and is cheap at bus capacities.
func (r *ScheduleRepo) Update(ctx context.Context, s *model.Schedule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `UPDATE schedules
	           SET route_id = ?, bus_id = ?, driver_id = ?, departs_at = ?, arrives_at = ?,
	               status = ?, capacity = ?, available_seats = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, q,
		s.RouteID, s.BusID, s.DriverID, s.DepartsAt, s.ArrivesAt,
		s.Status, s.Capacity, s.AvailableSeats, s.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish "missing row" from "identical values".
		var one int
		if err = tx.QueryRowContext(ctx, `SELECT 1 FROM schedules WHERE id = ?`, s.ID).Scan(&one); err != nil {
			return notFound(err, "schedule")
		}
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_seats WHERE schedule_id = ?`, s.ID); err != nil {
		return err
	}
	if err = insertSeatRows(ctx, tx, s.ID, s.Seats); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a schedule and its seat rows.  It returns
// model.NotFoundError when the schedule does not exist.  The engine
// has already verified there are no active bookings by the time this
// runs.
func (r *ScheduleRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_seats WHERE schedule_id = ?`, id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = model.NotFoundError{Resource: "schedule"}
		return err
	}
	return tx.Commit()
}

// OverlappingByBus finds non-cancelled schedules for the bus whose
// [departs_at, arrives_at) interval overlaps [start, end).  The
// predicate selects rows where NOT (existing ends before new starts OR
// existing starts after new ends).  A non-zero excludeID lets an
// update overlap with the row being updated.
func (r *ScheduleRepo) OverlappingByBus(ctx context.Context, busID int64, start, end time.Time, excludeID int64) ([]*model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + `
	           FROM schedules
	           WHERE bus_id = ? AND id <> ? AND status <> 'CANCELLED'
	             AND NOT (arrives_at <= ? OR departs_at >= ?)`
	return r.querySchedules(ctx, q, busID, excludeID, start, end)
}

// OverlappingByDriver is the same overlap check keyed on the driver.
func (r *ScheduleRepo) OverlappingByDriver(ctx context.Context, driverID int64, start, end time.Time, excludeID int64) ([]*model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + `
	           FROM schedules
	           WHERE driver_id = ? AND id <> ? AND status <> 'CANCELLED'
	             AND NOT (arrives_at <= ? OR departs_at >= ?)`
	return r.querySchedules(ctx, q, driverID, excludeID, start, end)
}

// ListByBus returns all schedules assigned to the bus ordered by
// departure time ascending.
func (r *ScheduleRepo) ListByBus(ctx context.Context, busID int64) ([]*model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE bus_id = ? ORDER BY departs_at ASC`
	return r.querySchedules(ctx, q, busID)
}

// ListByDriver returns all schedules assigned to the driver ordered by
// departure time ascending.
func (r *ScheduleRepo) ListByDriver(ctx context.Context, driverID int64) ([]*model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE driver_id = ? ORDER BY departs_at ASC`
	return r.querySchedules(ctx, q, driverID)
}

// ListByRouteAndDate returns schedules on the route departing within
// the UTC calendar day containing the given time.
func (r *ScheduleRepo) ListByRouteAndDate(ctx context.Context, routeID int64, day time.Time) ([]*model.Schedule, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	const q = `SELECT ` + scheduleColumns + `
	           FROM schedules
	           WHERE route_id = ? AND departs_at >= ? AND departs_at < ?
	           ORDER BY departs_at ASC`
	return r.querySchedules(ctx, q, routeID, dayStart, dayEnd)
}

// ListByStatus returns all schedules in the given status ordered by
// departure time ascending.
func (r *ScheduleRepo) ListByStatus(ctx context.Context, status model.ScheduleStatus) ([]*model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE status = ? ORDER BY departs_at ASC`
	return r.querySchedules(ctx, q, status)
}

// querySchedules runs a multi-row schedule query and restores each
// result's seat inventory.
func (r *ScheduleRepo) querySchedules(ctx context.Context, q string, args ...any) ([]*model.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*model.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range result {
		booked, err := r.bookedSeats(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		s.Seats, err = inventory.Restore(s.Capacity, booked)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// bookedSeats returns the seat numbers marked BOOKED for a schedule.
func (r *ScheduleRepo) bookedSeats(ctx context.Context, scheduleID int64) ([]int, error) {
	const q = `SELECT seat_no FROM schedule_seats WHERE schedule_id = ? AND status = 'BOOKED' ORDER BY seat_no ASC`
	rows, err := r.db.QueryContext(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		seats = append(seats, n)
	}
	return seats, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*model.Schedule, error) {
	var s model.Schedule
	err := row.Scan(
		&s.ID, &s.RouteID, &s.BusID, &s.DriverID,
		&s.DepartsAt, &s.ArrivesAt, &s.Status,
		&s.Capacity, &s.AvailableSeats, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// insertSeatRows bulk-inserts one schedule_seats row per seat in the
// map.  A single multi-row VALUES statement keeps the insert to one
// round trip even for large coaches.
func insertSeatRows(ctx context.Context, tx *sql.Tx, scheduleID int64, seats *inventory.SeatMap) error {
	if seats == nil || seats.Capacity() == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO schedule_seats (schedule_id, seat_no, status) VALUES `)
	args := make([]any, 0, seats.Capacity()*3)
	for i, st := range seats.Snapshot() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?)")
		args = append(args, scheduleID, st.Number, st.Status)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert seat rows: %w", err)
	}
	return nil
}
