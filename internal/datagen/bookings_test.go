//-------------------------------------------------------------------------
//
// RideMart Booking Warehouse
//
// Copyright (c) 2025 - 2026, the RideMart authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"strings"
	"testing"
	"time"
)

func cleanGenerator(rows int) *BookingGenerator {
	return NewBookingGenerator(BookingConfig{
		Rows:     rows,
		RandSeed: 42,
		// No defects so record shape assertions are stable.
		DirtyPercent:     0,
		DuplicatePercent: 0,
	})
}

func TestNextRecordShape(t *testing.T) {
	g := cleanGenerator(100)

	for i := 0; i < 100; i++ {
		rec := g.nextRecord()

		if !strings.HasPrefix(rec.BookingID, "CNR") {
			t.Fatalf("BookingID = %q, want CNR prefix", rec.BookingID)
		}
		if !strings.HasPrefix(rec.CustomerID, "CID") {
			t.Fatalf("CustomerID = %q, want CID prefix", rec.CustomerID)
		}
		if rec.PickupLocation == "" || rec.DropLocation == "" {
			t.Fatal("clean records must have both locations")
		}
		if rec.PickupLocation == rec.DropLocation {
			t.Fatalf("pickup and drop should differ, both %q", rec.PickupLocation)
		}

		if _, err := time.Parse("2006-01-02 15:04:05", rec.Datetime); err != nil {
			t.Fatalf("Datetime %q not parseable: %v", rec.Datetime, err)
		}

		switch rec.IsCancelled {
		case "true":
			if !cancelledStatuses[rec.Status] {
				t.Fatalf("cancelled flag set for status %q", rec.Status)
			}
			if rec.RideDistance != "" || rec.DriverRating != "" {
				t.Fatal("cancelled rides must have empty ride measures")
			}
		case "false":
			if cancelledStatuses[rec.Status] {
				t.Fatalf("cancelled flag unset for status %q", rec.Status)
			}
		default:
			t.Fatalf("IsCancelled = %q, want true or false", rec.IsCancelled)
		}
	}
}

func TestBookingIDsSequential(t *testing.T) {
	g := cleanGenerator(10)

	first := g.bookingID()
	second := g.bookingID()
	if first != "CNR00000001" || second != "CNR00000002" {
		t.Errorf("ids = %q, %q; want CNR00000001, CNR00000002", first, second)
	}
}

func TestBookingIDDuplicates(t *testing.T) {
	g := NewBookingGenerator(BookingConfig{
		Rows:             100,
		RandSeed:         42,
		DuplicatePercent: 100,
	})

	first := g.bookingID()
	// With a 100% duplicate rate every subsequent id repeats the first.
	for i := 0; i < 10; i++ {
		if id := g.bookingID(); id != first {
			t.Fatalf("expected duplicate of %q, got %q", first, id)
		}
	}
}

func TestDirtyProducesDefect(t *testing.T) {
	g := NewBookingGenerator(BookingConfig{
		Rows:         100,
		RandSeed:     42,
		DirtyPercent: 100,
	})

	defects := 0
	for i := 0; i < 100; i++ {
		rec := g.nextRecord()
		if rec.BookingID == "" || rec.CustomerID == "" ||
			rec.PickupLocation == "" || rec.DropLocation == "" ||
			rec.PaymentMethod == "" || rec.BookingValue == "N/A" ||
			rec.DriverRating == "9.9" || rec.Datetime == "not-a-date" {
			defects++
		}
	}

	if defects != 100 {
		t.Errorf("only %d/100 dirty records show a defect", defects)
	}
}

func TestRenderTuple(t *testing.T) {
	rec := stagingRecord{
		BookingID:  "CNR00000001",
		Status:     "Completed",
		CustomerID: "CID1234567",
	}

	tuple := renderTuple(rec)

	if !strings.HasPrefix(tuple, "('CNR00000001', 'Completed', NULL, 'CID1234567'") {
		t.Errorf("unexpected tuple prefix: %s", tuple)
	}
	if !strings.HasSuffix(tuple, ")") {
		t.Errorf("tuple not closed: %s", tuple)
	}
	if strings.Count(tuple, "NULL") != 10 {
		t.Errorf("expected 10 NULL fields, got %d: %s", strings.Count(tuple, "NULL"), tuple)
	}
}

func TestRenderTupleEscapesQuotes(t *testing.T) {
	rec := stagingRecord{PickupLocation: "D'Souza Nagar"}
	tuple := renderTuple(rec)

	if !strings.Contains(tuple, "'D''Souza Nagar'") {
		t.Errorf("single quote not escaped: %s", tuple)
	}
}

func TestEscapeSingleQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"O'Brien", "O''Brien"},
		{"''", "''''"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := escapeSingleQuote(tt.in); got != tt.want {
			t.Errorf("escapeSingleQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCustomerPoolSize(t *testing.T) {
	g := cleanGenerator(50)
	if len(g.customers) != 10 {
		t.Errorf("customer pool = %d, want rows/5 = 10", len(g.customers))
	}

	small := cleanGenerator(2)
	if len(small.customers) != 1 {
		t.Errorf("customer pool = %d, want at least 1", len(small.customers))
	}
}
