// Package ticket renders e-ticket PDFs for confirmed bookings.
package ticket

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Data carries everything the PDF needs, pre-resolved by the caller.
// Keeping the renderer free of storage lookups makes it trivial to
// test and reuse.
type Data struct {
	Reference     string
	PassengerName string
	Origin        string
	Destination   string
	DepartsAt     time.Time
	ArrivesAt     time.Time
	BusCode       string
	Seats         []int
	FareCents     int64
}

// Build renders the e-ticket and returns the PDF bytes together with a
// download filename.
func Build(d Data) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BUS E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Reference   : %s", safe(d.Reference, "-")),
		fmt.Sprintf("Passenger   : %s", safe(d.PassengerName, "-")),
		fmt.Sprintf("Route       : %s -> %s", safe(d.Origin, "-"), safe(d.Destination, "-")),
		fmt.Sprintf("Departs     : %s", d.DepartsAt.UTC().Format("2006-01-02 15:04")),
		fmt.Sprintf("Arrives     : %s", d.ArrivesAt.UTC().Format("2006-01-02 15:04")),
		fmt.Sprintf("Bus         : %s", safe(d.BusCode, "-")),
		fmt.Sprintf("Seats       : %s", seatList(d.Seats)),
		fmt.Sprintf("Total fare  : %s", formatCents(d.FareCents)),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please present this ticket when boarding. The reference code identifies your booking.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%s.pdf", safeFilenamePart(d.Reference))
	return buf.Bytes(), filename, nil
}

func seatList(seats []int) string {
	if len(seats) == 0 {
		return "-"
	}
	parts := make([]string, len(seats))
	for i, s := range seats {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return strings.Join(parts, ", ")
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

func formatCents(v int64) string {
	if v < 0 {
		v = 0
	}
	return fmt.Sprintf("$%d.%02d", v/100, v%100)
}
