// Package inventory implements the per-schedule seat occupancy state
// machine.  A SeatMap tracks every seat of one trip and enforces the
// two transitions the system allows: AVAILABLE -> BOOKED as part of an
// all-or-nothing reservation, and BOOKED -> AVAILABLE on release.
// Callers are responsible for serializing access; a SeatMap is not
// safe for concurrent use on its own.
package inventory

import (
	"fmt"
	"sort"
	"strings"
)

// SeatStatus is the occupancy state of a single seat.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatBooked    SeatStatus = "BOOKED"
)

// InvalidSeatError reports a seat number outside [1, capacity].
type InvalidSeatError struct {
	Seat     int
	Capacity int
}

func (e *InvalidSeatError) Error() string {
	return fmt.Sprintf("seat %d outside valid range [1, %d]", e.Seat, e.Capacity)
}

// UnavailableSeatsError reports a rejected reservation and lists every
// requested seat that was already booked.  No seat state changes when
// this error is returned.
type UnavailableSeatsError struct {
	Seats []int
}

func (e *UnavailableSeatsError) Error() string {
	parts := make([]string, 0, len(e.Seats))
	for _, s := range e.Seats {
		parts = append(parts, fmt.Sprintf("%d", s))
	}
	return "seats unavailable: " + strings.Join(parts, ",")
}

// SeatMap holds the occupancy state for seats 1..capacity of one
// schedule.  The zero value is not usable; construct with New or
// Restore.
type SeatMap struct {
	states []SeatStatus // index seat-1
}

// New creates a seat map with every seat AVAILABLE.  Capacity must be
// positive.
func New(capacity int) (*SeatMap, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", capacity)
	}
	states := make([]SeatStatus, capacity)
	for i := range states {
		states[i] = SeatAvailable
	}
	return &SeatMap{states: states}, nil
}

// Restore rebuilds a seat map from a stored set of booked seat
// numbers.  Seat numbers outside [1, capacity] are rejected.
func Restore(capacity int, booked []int) (*SeatMap, error) {
	m, err := New(capacity)
	if err != nil {
		return nil, err
	}
	for _, n := range booked {
		if n < 1 || n > capacity {
			return nil, &InvalidSeatError{Seat: n, Capacity: capacity}
		}
		m.states[n-1] = SeatBooked
	}
	return m, nil
}

// Capacity returns the total number of seats.
func (m *SeatMap) Capacity() int { return len(m.states) }

// IsAvailable reports whether the given seat is free to book.
func (m *SeatMap) IsAvailable(seat int) (bool, error) {
	if seat < 1 || seat > len(m.states) {
		return false, &InvalidSeatError{Seat: seat, Capacity: len(m.states)}
	}
	return m.states[seat-1] == SeatAvailable, nil
}

// Reserve transitions every requested seat AVAILABLE -> BOOKED as a
// single unit.  If any seat is out of range an InvalidSeatError is
// returned; if any seat is already booked an UnavailableSeatsError
// naming all conflicting seats is returned.  In both failure cases no
// seat changes state.
func (m *SeatMap) Reserve(seats []int) error {
	for _, n := range seats {
		if n < 1 || n > len(m.states) {
			return &InvalidSeatError{Seat: n, Capacity: len(m.states)}
		}
	}
	var taken []int
	for _, n := range seats {
		if m.states[n-1] != SeatAvailable {
			taken = append(taken, n)
		}
	}
	if len(taken) > 0 {
		sort.Ints(taken)
		return &UnavailableSeatsError{Seats: taken}
	}
	for _, n := range seats {
		m.states[n-1] = SeatBooked
	}
	return nil
}

// Release transitions the given seats BOOKED -> AVAILABLE.  Releasing
// a seat that is already AVAILABLE is a no-op, so repeated releases of
// the same set are harmless.  Out-of-range seats are rejected before
// any state changes.
func (m *SeatMap) Release(seats []int) error {
	for _, n := range seats {
		if n < 1 || n > len(m.states) {
			return &InvalidSeatError{Seat: n, Capacity: len(m.states)}
		}
	}
	for _, n := range seats {
		m.states[n-1] = SeatAvailable
	}
	return nil
}

// AvailableCount returns the number of seats currently AVAILABLE.
func (m *SeatMap) AvailableCount() int {
	free := 0
	for _, s := range m.states {
		if s == SeatAvailable {
			free++
		}
	}
	return free
}

// BookedCount returns the number of seats currently BOOKED.
func (m *SeatMap) BookedCount() int {
	return len(m.states) - m.AvailableCount()
}

// Booked returns the booked seat numbers in ascending order.  The
// result is a fresh slice the caller may keep.
func (m *SeatMap) Booked() []int {
	out := make([]int, 0, 8)
	for i, s := range m.states {
		if s == SeatBooked {
			out = append(out, i+1)
		}
	}
	return out
}

// SeatState pairs a seat number with its status for snapshots handed
// to storage and API layers.
type SeatState struct {
	Number int        `json:"number"`
	Status SeatStatus `json:"status"`
}

// Snapshot returns the full seat map ordered by seat number.
func (m *SeatMap) Snapshot() []SeatState {
	out := make([]SeatState, len(m.states))
	for i, s := range m.states {
		out[i] = SeatState{Number: i + 1, Status: s}
	}
	return out
}

// Clone returns an independent copy of the seat map.
func (m *SeatMap) Clone() *SeatMap {
	states := make([]SeatStatus, len(m.states))
	copy(states, m.states)
	return &SeatMap{states: states}
}
