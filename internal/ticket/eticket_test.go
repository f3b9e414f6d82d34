package ticket

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestBuildProducesPDF(t *testing.T) {
	d := Data{
		Reference:     "abcd1234abcd1234",
		PassengerName: "Asha Rao",
		Origin:        "Central Station",
		Destination:   "Airport",
		DepartsAt:     time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		ArrivesAt:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		BusCode:       "BUS-12",
		Seats:         []int{1, 2},
		FareCents:     2400,
	}

	data, filename, err := Build(d)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty PDF output")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF")
	}
	if filename != "ETICKET_abcd1234abcd1234.pdf" {
		t.Fatalf("filename = %q", filename)
	}
}

func TestBuildSanitizesFilename(t *testing.T) {
	_, filename, err := Build(Data{Reference: "a/b c:d"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if strings.ContainsAny(filename, "/ :") {
		t.Fatalf("filename not sanitized: %q", filename)
	}
	if filename != "ETICKET_a_b_c_d.pdf" {
		t.Fatalf("filename = %q", filename)
	}
}

func TestSeatListAndCents(t *testing.T) {
	if got := seatList(nil); got != "-" {
		t.Fatalf("seatList(nil) = %q", got)
	}
	if got := seatList([]int{4, 12}); got != "4, 12" {
		t.Fatalf("seatList = %q", got)
	}
	if got := formatCents(2160); got != "$21.60" {
		t.Fatalf("formatCents = %q", got)
	}
	if got := formatCents(-5); got != "$0.00" {
		t.Fatalf("formatCents negative = %q", got)
	}
}
