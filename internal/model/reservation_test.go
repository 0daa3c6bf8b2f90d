package model

import (
	"testing"
	"time"
)

func TestIntervalsOverlap(t *testing.T) {
	base := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", at(0), at(120), at(0), at(120), true},
		{"contained", at(0), at(120), at(30), at(60), true},
		{"partial front", at(0), at(120), at(-30), at(30), true},
		{"partial back", at(0), at(120), at(90), at(180), true},
		{"touching end-to-start", at(0), at(120), at(120), at(240), false},
		{"touching start-to-end", at(120), at(240), at(0), at(120), false},
		{"disjoint before", at(0), at(60), at(90), at(120), false},
		{"disjoint after", at(90), at(120), at(0), at(60), false},
		{"one minute overlap", at(0), at(120), at(119), at(180), true},
	}
	for _, tt := range cases {
		if got := IntervalsOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
			t.Errorf("%s: IntervalsOverlap=%v, want %v", tt.name, got, tt.want)
		}
		// Overlap is symmetric.
		if got := IntervalsOverlap(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
			t.Errorf("%s (swapped): IntervalsOverlap=%v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestReservationOverlaps(t *testing.T) {
	start := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)
	r := Reservation{
		ReservedAt:    start,
		ReservedUntil: start.Add(2 * time.Hour),
	}
	if !r.Overlaps(start.Add(time.Hour), start.Add(3*time.Hour)) {
		t.Error("expected overlap for intersecting interval")
	}
	if r.Overlaps(start.Add(2*time.Hour), start.Add(4*time.Hour)) {
		t.Error("half-open intervals that touch must not overlap")
	}
}
