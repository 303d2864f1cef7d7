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
	"math"
	"strconv"
	"strings"
	"time"
)

// StagingRow is one raw booking record as delivered by the upstream
// cleaning step. All fields arrive as text; NULLs are normalized to empty
// strings on scan.
type StagingRow struct {
	BookingID      string
	Status         string
	Datetime       string
	CustomerID     string
	VehicleType    string
	PickupLocation string
	DropLocation   string
	PaymentMethod  string
	BookingValue   string
	RideDistance   string
	DriverRating   string
	CustomerRating string
	IsCancelled    string
}

// Measures holds the parsed measure fields of a staging row. A nil value
// means the raw field was absent or malformed; the row still loads with
// the measure as NULL (best-effort policy, only identity and key failures
// reject a row).
type Measures struct {
	BookingValue   *float64
	RideDistance   *float64
	DriverRating   *float64
	CustomerRating *float64
	IsCancelled    bool
}

// Accepted datetime layouts, most common first.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDatetime parses a raw booking timestamp. Naive timestamps are
// interpreted as UTC so repeated loads resolve to identical instants
// regardless of the host timezone.
func ParseDatetime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Upper bounds match the fact column capacities, NUMERIC(12,2) for the
// fare and NUMERIC(10,2) for the distance. Values beyond them would fail
// at insert time, so they are treated like any other malformed measure.
const (
	maxBookingValue = 9999999999.99
	maxRideDistance = 99999999.99
)

// ParseMeasures extracts the measure fields from a staging row, nulling
// anything unparseable or out of range.
func ParseMeasures(row StagingRow) Measures {
	return Measures{
		BookingValue:   parseBoundedFloat(row.BookingValue, 0, maxBookingValue),
		RideDistance:   parseBoundedFloat(row.RideDistance, 0, maxRideDistance),
		DriverRating:   parseBoundedFloat(row.DriverRating, 0, 5),
		CustomerRating: parseBoundedFloat(row.CustomerRating, 0, 5),
		IsCancelled:    parseFlag(row.IsCancelled),
	}
}

// parseBoundedFloat parses raw as a finite float and enforces [lo, hi].
// NaN and the infinities parse but compare uselessly and would poison the
// report aggregates, so they count as malformed too.
func parseBoundedFloat(raw string, lo, hi float64) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f < lo || f > hi {
		return nil
	}
	return &f
}

// parseFlag coalesces a raw cancellation flag to a boolean. Anything that
// is not an affirmative token counts as false, including NULL and empty.
func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "yes", "y", "1":
		return true
	default:
		return false
	}
}
