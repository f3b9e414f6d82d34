// Package refund computes cancellation refunds under a tiered
// time-based policy.  The policy is stateless configuration: given a
// fare, the trip's departure time and the moment of evaluation it
// returns the amount owed back to the passenger.  It touches no
// schedule or booking state and can be tested in isolation.
package refund

import (
	"math"
	"time"
)

// Policy holds the refund tiers.  Cancellations at least FullWindow
// before departure refund FullPercent of the fare; between
// PartialWindow and FullWindow they refund PartialPercent; closer than
// PartialWindow nothing is refunded.
type Policy struct {
	FullWindow    time.Duration
	PartialWindow time.Duration
	FullPercent   float64
	PartialPercent float64
}

// Default returns the operator's standard policy: 90% back up to 24
// hours before departure, 50% between 12 and 24 hours, nothing under
// 12 hours.
func Default() Policy {
	return Policy{
		FullWindow:     24 * time.Hour,
		PartialWindow:  12 * time.Hour,
		FullPercent:    0.90,
		PartialPercent: 0.50,
	}
}

// Amount returns the refund in cents for a fare cancelled at
// evaluation time.  Time already past departure counts as zero hours
// remaining, so late cancellations of departed trips refund nothing.
func (p Policy) Amount(fareCents int64, departure, evaluation time.Time) int64 {
	if fareCents <= 0 {
		return 0
	}
	remaining := departure.Sub(evaluation)
	if remaining < 0 {
		remaining = 0
	}
	switch {
	case remaining >= p.FullWindow:
		return round(float64(fareCents) * p.FullPercent)
	case remaining >= p.PartialWindow:
		return round(float64(fareCents) * p.PartialPercent)
	default:
		return 0
	}
}

func round(x float64) int64 {
	return int64(math.Round(x))
}
