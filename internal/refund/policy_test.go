package refund

import (
	"testing"
	"time"
)

func TestAmountTiers(t *testing.T) {
	p := Default()
	departure := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		fareCents int64
		before    time.Duration
		want      int64
	}{
		{"well before full window", 2400, 25 * time.Hour, 2160},
		{"exactly at full window boundary", 2400, 24 * time.Hour, 2160},
		{"inside partial window", 2400, 18 * time.Hour, 1200},
		{"exactly at partial window boundary", 2400, 12 * time.Hour, 1200},
		{"under partial window", 2400, 11*time.Hour + 59*time.Minute, 0},
		{"one hour before departure", 2400, time.Hour, 0},
		{"after departure", 2400, -2 * time.Hour, 0},
		{"rounds to nearest cent", 1001, 25 * time.Hour, 901},
		{"zero fare", 0, 48 * time.Hour, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eval := departure.Add(-tc.before)
			got := p.Amount(tc.fareCents, departure, eval)
			if got != tc.want {
				t.Fatalf("Amount(%d, -%s) = %d, want %d", tc.fareCents, tc.before, got, tc.want)
			}
		})
	}
}

func TestAmountMonotonicInTime(t *testing.T) {
	// Cancelling earlier must never refund less than cancelling later.
	p := Default()
	departure := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	fare := int64(5000)

	prev := int64(-1)
	for hours := 0; hours <= 48; hours++ {
		eval := departure.Add(-time.Duration(hours) * time.Hour)
		got := p.Amount(fare, departure, eval)
		if prev >= 0 && got < prev {
			t.Fatalf("refund decreased with more notice: %d hours -> %d, %d hours -> %d",
				hours-1, prev, hours, got)
		}
		prev = got
	}
}
