package inventory

import (
	"errors"
	"testing"
)

func TestReserveAllOrNothing(t *testing.T) {
	m, err := New(10)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := m.Reserve([]int{4}); err != nil {
		t.Fatalf("seeding seat 4 failed: %v", err)
	}

	// Requesting {3,4,5} must fail because 4 is booked, and must leave
	// 3 and 5 untouched.
	err = m.Reserve([]int{3, 4, 5})
	var unavailable *UnavailableSeatsError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableSeatsError, got %v", err)
	}
	if len(unavailable.Seats) != 1 || unavailable.Seats[0] != 4 {
		t.Fatalf("conflicting seats wrong: %v", unavailable.Seats)
	}
	for _, seat := range []int{3, 5} {
		free, err := m.IsAvailable(seat)
		if err != nil {
			t.Fatalf("IsAvailable(%d): %v", seat, err)
		}
		if !free {
			t.Fatalf("seat %d should still be available after failed group reserve", seat)
		}
	}
	if got := m.AvailableCount(); got != 9 {
		t.Fatalf("available count changed on failed reserve: got %d want 9", got)
	}
}

func TestReserveReportsAllConflicts(t *testing.T) {
	m, _ := New(6)
	if err := m.Reserve([]int{2, 5}); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}

	err := m.Reserve([]int{5, 1, 2})
	var unavailable *UnavailableSeatsError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableSeatsError, got %v", err)
	}
	if len(unavailable.Seats) != 2 || unavailable.Seats[0] != 2 || unavailable.Seats[1] != 5 {
		t.Fatalf("expected sorted conflicts [2 5], got %v", unavailable.Seats)
	}
}

func TestReserveRejectsOutOfRange(t *testing.T) {
	m, _ := New(4)
	err := m.Reserve([]int{1, 5})
	var invalid *InvalidSeatError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidSeatError, got %v", err)
	}
	if invalid.Seat != 5 || invalid.Capacity != 4 {
		t.Fatalf("wrong error detail: %+v", invalid)
	}
	if got := m.AvailableCount(); got != 4 {
		t.Fatalf("out-of-range reserve mutated state, available=%d", got)
	}
	if err := m.Reserve([]int{0}); err == nil {
		t.Fatalf("seat 0 must be rejected")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	m, _ := New(8)
	if err := m.Reserve([]int{1, 2, 3}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := m.Release([]int{2, 3}); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if got := m.AvailableCount(); got != 7 {
		t.Fatalf("after release available=%d want 7", got)
	}
	// Second release of the same seats is a no-op.
	if err := m.Release([]int{2, 3}); err != nil {
		t.Fatalf("repeat release errored: %v", err)
	}
	if got := m.AvailableCount(); got != 7 {
		t.Fatalf("repeat release changed count: available=%d want 7", got)
	}
	if booked := m.Booked(); len(booked) != 1 || booked[0] != 1 {
		t.Fatalf("booked seats wrong: %v", booked)
	}
}

func TestRestoreRebuildsState(t *testing.T) {
	m, err := Restore(5, []int{2, 4})
	if err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if got := m.BookedCount(); got != 2 {
		t.Fatalf("booked count=%d want 2", got)
	}
	if _, err := Restore(3, []int{4}); err == nil {
		t.Fatalf("Restore must reject out-of-range booked seat")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m, _ := New(3)
	clone := m.Clone()
	if err := clone.Reserve([]int{1}); err != nil {
		t.Fatalf("reserve on clone failed: %v", err)
	}
	if free, _ := m.IsAvailable(1); !free {
		t.Fatalf("mutating clone leaked into original")
	}
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatalf("capacity 0 must be rejected")
	}
	if _, err := New(-3); err == nil {
		t.Fatalf("negative capacity must be rejected")
	}
}
