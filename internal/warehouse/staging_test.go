//-------------------------------------------------------------------------
//
// RideMart Booking Warehouse
//
// Copyright (c) 2025 - 2026, the RideMart authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"testing"
	"time"
)

func TestParseDatetime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{
			name: "rfc3339",
			raw:  "2024-03-15T08:30:00Z",
			want: time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "space separated",
			raw:  "2024-03-15 08:30:00",
			want: time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "t separated naive",
			raw:  "2024-03-15T08:30:00",
			want: time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "minute precision",
			raw:  "2024-03-15 08:30",
			want: time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "date only",
			raw:  "2024-03-15",
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "surrounding whitespace",
			raw:  "  2024-03-15 08:30:00  ",
			want: time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{name: "empty", raw: "", ok: false},
		{name: "garbage", raw: "not-a-date", ok: false},
		{name: "day first", raw: "15/03/2024", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDatetime(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParseDatetime(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDatetime(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			if ok && got.Location() != time.UTC {
				t.Errorf("ParseDatetime(%q) location = %v, want UTC", tt.raw, got.Location())
			}
		})
	}
}

func TestParseBoundedFloat(t *testing.T) {
	const fareCap = 9999999999.99

	tests := []struct {
		name string
		raw  string
		lo   float64
		hi   float64
		want *float64
	}{
		{name: "plain value", raw: "152.50", lo: 0, hi: fareCap, want: floatPtr(152.50)},
		{name: "zero allowed", raw: "0", lo: 0, hi: fareCap, want: floatPtr(0)},
		{name: "negative fare rejected", raw: "-10.5", lo: 0, hi: fareCap, want: nil},
		{name: "large fare in capacity", raw: "99999.99", lo: 0, hi: fareCap, want: floatPtr(99999.99)},
		{name: "fare at column capacity", raw: "9999999999.99", lo: 0, hi: fareCap, want: floatPtr(fareCap)},
		{name: "fare beyond column capacity", raw: "100000000000", lo: 0, hi: fareCap, want: nil},
		{name: "rating in range", raw: "4.7", lo: 0, hi: 5, want: floatPtr(4.7)},
		{name: "rating at bound", raw: "5", lo: 0, hi: 5, want: floatPtr(5)},
		{name: "rating above bound", raw: "9.9", lo: 0, hi: 5, want: nil},
		{name: "nan", raw: "NaN", lo: 0, hi: fareCap, want: nil},
		{name: "inf", raw: "Inf", lo: 0, hi: fareCap, want: nil},
		{name: "positive inf", raw: "+Inf", lo: 0, hi: fareCap, want: nil},
		{name: "negative inf", raw: "-Inf", lo: 0, hi: fareCap, want: nil},
		{name: "empty", raw: "", lo: 0, hi: fareCap, want: nil},
		{name: "whitespace only", raw: "   ", lo: 0, hi: fareCap, want: nil},
		{name: "not a number", raw: "abc", lo: 0, hi: fareCap, want: nil},
		{name: "trimmed value", raw: " 12.0 ", lo: 0, hi: fareCap, want: floatPtr(12.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseBoundedFloat(tt.raw, tt.lo, tt.hi)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parseBoundedFloat(%q, %v, %v) = %v, want %v",
					tt.raw, tt.lo, tt.hi, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("parseBoundedFloat(%q, %v, %v) = %v, want %v",
					tt.raw, tt.lo, tt.hi, *got, *tt.want)
			}
		})
	}
}

func TestParseFlag(t *testing.T) {
	affirmative := []string{"true", "TRUE", "t", "yes", "Y", "1", " true "}
	for _, raw := range affirmative {
		if !parseFlag(raw) {
			t.Errorf("parseFlag(%q) = false, want true", raw)
		}
	}

	negative := []string{"", "false", "f", "no", "n", "0", "maybe", "NULL"}
	for _, raw := range negative {
		if parseFlag(raw) {
			t.Errorf("parseFlag(%q) = true, want false", raw)
		}
	}
}

func TestParseMeasures(t *testing.T) {
	row := StagingRow{
		BookingValue:   "321.75",
		RideDistance:   "-3.0",
		DriverRating:   "4.2",
		CustomerRating: "7.5",
		IsCancelled:    "true",
	}

	m := ParseMeasures(row)

	if m.BookingValue == nil || *m.BookingValue != 321.75 {
		t.Errorf("BookingValue = %v, want 321.75", m.BookingValue)
	}
	if m.RideDistance != nil {
		t.Errorf("RideDistance = %v, want nil for negative input", *m.RideDistance)
	}
	if m.DriverRating == nil || *m.DriverRating != 4.2 {
		t.Errorf("DriverRating = %v, want 4.2", m.DriverRating)
	}
	if m.CustomerRating != nil {
		t.Errorf("CustomerRating = %v, want nil for out-of-range input", *m.CustomerRating)
	}
	if !m.IsCancelled {
		t.Error("IsCancelled = false, want true")
	}
}

func TestParseMeasuresNonFiniteAndOverflow(t *testing.T) {
	// Non-finite floats parse but would poison SUM/AVG in the revenue
	// reports; values beyond the fact column capacity would make the
	// insert itself fail. Both null out like any other bad measure.
	row := StagingRow{
		BookingValue: "NaN",
		RideDistance: "100000000000",
	}

	m := ParseMeasures(row)
	if m.BookingValue != nil {
		t.Errorf("BookingValue = %v, want nil for NaN input", *m.BookingValue)
	}
	if m.RideDistance != nil {
		t.Errorf("RideDistance = %v, want nil for over-capacity input", *m.RideDistance)
	}

	row = StagingRow{BookingValue: "Inf", RideDistance: "-Inf"}
	m = ParseMeasures(row)
	if m.BookingValue != nil || m.RideDistance != nil {
		t.Error("expected nil measures for infinite inputs")
	}
}

func TestParseMeasuresAllEmpty(t *testing.T) {
	m := ParseMeasures(StagingRow{})

	if m.BookingValue != nil || m.RideDistance != nil ||
		m.DriverRating != nil || m.CustomerRating != nil {
		t.Error("expected all measures nil for empty row")
	}
	if m.IsCancelled {
		t.Error("IsCancelled = true, want false for empty flag")
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
