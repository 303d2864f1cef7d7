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
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanfleet/ridemart/internal/logging"
)

// Reference data for the ride-booking domain.
var vehicleTypes = []string{
	"Auto", "Bike", "eBike", "Go Mini", "Go Sedan", "Premier Sedan", "XL",
}
var vehicleWeights = []int{25, 15, 5, 25, 15, 10, 5}

var paymentMethods = []string{"Cash", "UPI", "Credit Card", "Debit Card", "Wallet"}
var paymentWeights = []int{30, 35, 15, 10, 10}

// Booking statuses; the cancelled set drives the is_cancelled flag.
var statuses = []string{
	"Completed", "Cancelled by Customer", "Cancelled by Driver",
	"No Driver Found", "Incomplete",
}
var statusWeights = []int{62, 10, 18, 7, 3}

var cancelledStatuses = map[string]bool{
	"Cancelled by Customer": true,
	"Cancelled by Driver":   true,
}

// stagingRecord is one generated staging row, all fields already in
// their raw text form.
type stagingRecord struct {
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

// BookingConfig configures the staging data generator.
type BookingConfig struct {
	// Rows is the number of staging rows to generate.
	Rows int

	// RandSeed seeds the RNG; 0 means a random seed per run.
	RandSeed uint64

	// DirtyPercent is the share of rows (0-100) given a data-quality
	// defect (empty natural key, malformed measure or timestamp).
	DirtyPercent float64

	// DuplicatePercent is the share of rows (0-100) that reuse a
	// previously generated booking id.
	DuplicatePercent float64
}

// BookingGenerator fills the staging table with ride bookings, including
// a configurable fraction of dirty and duplicate rows so the pipeline's
// failure paths stay exercisable.
type BookingGenerator struct {
	faker *Faker
	cfg   BookingConfig
	batch BatchInsertConfig

	locations []string
	customers []string
	seenIDs   []string
	nextSeq   int
}

// NewBookingGenerator creates a staging data generator.
func NewBookingGenerator(cfg BookingConfig) *BookingGenerator {
	faker := NewFaker()
	if cfg.RandSeed != 0 {
		faker = NewFakerWithSeed(cfg.RandSeed)
	}

	g := &BookingGenerator{
		faker:   faker,
		cfg:     cfg,
		batch:   DefaultBatchConfig(),
		nextSeq: 1,
	}

	// Fixed pools so natural keys repeat the way real data does: a few
	// dozen locations, roughly one customer per five bookings.
	numLocations := 40
	for range numLocations {
		g.locations = append(g.locations, g.faker.City())
	}
	numCustomers := max(1, cfg.Rows/5)
	for range numCustomers {
		g.customers = append(g.customers, "CID"+g.faker.Digits(7))
	}

	return g
}

// Seed generates and inserts the configured number of staging rows.
func (g *BookingGenerator) Seed(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	logging.Info().
		Int("rows", g.cfg.Rows).
		Float64("dirty_percent", g.cfg.DirtyPercent).
		Float64("duplicate_percent", g.cfg.DuplicatePercent).
		Msg("Seeding staging bookings")

	progress := NewProgressReporter("staging_bookings", int64(g.cfg.Rows), g.batch.ProgressInterval)
	tuples := make([]string, 0, g.batch.BatchSize)
	var total int64

	for i := 0; i < g.cfg.Rows; i++ {
		rec := g.nextRecord()
		tuples = append(tuples, renderTuple(rec))

		if len(tuples) >= g.batch.BatchSize {
			if err := g.insertBatch(ctx, pool, tuples); err != nil {
				return total, err
			}
			total += int64(len(tuples))
			progress.Update(int64(len(tuples)))
			tuples = tuples[:0]
		}
	}

	if len(tuples) > 0 {
		if err := g.insertBatch(ctx, pool, tuples); err != nil {
			return total, err
		}
		total += int64(len(tuples))
		progress.Update(int64(len(tuples)))
	}
	progress.Done()

	return total, nil
}

// nextRecord builds one staging row, possibly duplicated or dirtied.
func (g *BookingGenerator) nextRecord() stagingRecord {
	status := ChooseWeighted(g.faker, statuses, statusWeights)
	cancelled := "false"
	if cancelledStatuses[status] {
		cancelled = "true"
	}

	when := g.faker.DateRange(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
	)

	pickup := Choose(g.faker, g.locations)
	drop := Choose(g.faker, g.locations)
	for drop == pickup && len(g.locations) > 1 {
		drop = Choose(g.faker, g.locations)
	}

	rec := stagingRecord{
		BookingID:      g.bookingID(),
		Status:         status,
		Datetime:       when.Format("2006-01-02 15:04:05"),
		CustomerID:     Choose(g.faker, g.customers),
		VehicleType:    ChooseWeighted(g.faker, vehicleTypes, vehicleWeights),
		PickupLocation: pickup,
		DropLocation:   drop,
		PaymentMethod:  ChooseWeighted(g.faker, paymentMethods, paymentWeights),
		BookingValue:   fmt.Sprintf("%.2f", g.faker.Float64(40, 2500)),
		RideDistance:   fmt.Sprintf("%.2f", g.faker.Float64(0.5, 55)),
		DriverRating:   fmt.Sprintf("%.1f", g.faker.Float64(2.5, 5)),
		CustomerRating: fmt.Sprintf("%.1f", g.faker.Float64(2.5, 5)),
		IsCancelled:    cancelled,
	}

	// Cancelled and unfulfilled rides carry no ride measures.
	if cancelled == "true" || status == "No Driver Found" {
		rec.RideDistance = ""
		rec.DriverRating = ""
		rec.CustomerRating = ""
	}

	if g.faker.Chance(g.cfg.DirtyPercent) {
		g.dirty(&rec)
	}
	return rec
}

// bookingID returns a fresh id, or with DuplicatePercent probability one
// that was already issued this run.
func (g *BookingGenerator) bookingID() string {
	if len(g.seenIDs) > 0 && g.faker.Chance(g.cfg.DuplicatePercent) {
		return Choose(g.faker, g.seenIDs)
	}

	id := fmt.Sprintf("CNR%08d", g.nextSeq)
	g.nextSeq++

	// Small reservoir is enough; duplicates only need to exist, not be
	// uniformly drawn from the whole run.
	if len(g.seenIDs) < 1024 {
		g.seenIDs = append(g.seenIDs, id)
	}
	return id
}

// dirty applies one randomly chosen data-quality defect.
func (g *BookingGenerator) dirty(rec *stagingRecord) {
	switch g.faker.Int(0, 7) {
	case 0:
		rec.PickupLocation = ""
	case 1:
		rec.DropLocation = ""
	case 2:
		rec.CustomerID = ""
	case 3:
		rec.PaymentMethod = ""
	case 4:
		rec.BookingID = ""
	case 5:
		rec.BookingValue = "N/A"
	case 6:
		rec.DriverRating = "9.9"
	case 7:
		rec.Datetime = "not-a-date"
	}
}

func (g *BookingGenerator) insertBatch(ctx context.Context, pool *pgxpool.Pool, tuples []string) error {
	sql := `INSERT INTO staging_bookings (
        booking_id, booking_status, booking_datetime, customer_id,
        vehicle_type, pickup_location, drop_location, payment_method,
        booking_value, ride_distance, driver_ratings, customer_rating,
        is_cancelled
    ) VALUES ` + strings.Join(tuples, ", ")

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to insert staging batch: %w", err)
	}
	return nil
}

// renderTuple renders one record as a SQL VALUES tuple. Empty fields
// become NULL so the staging table mirrors real upstream output.
func renderTuple(rec stagingRecord) string {
	fields := []string{
		rec.BookingID, rec.Status, rec.Datetime, rec.CustomerID,
		rec.VehicleType, rec.PickupLocation, rec.DropLocation,
		rec.PaymentMethod, rec.BookingValue, rec.RideDistance,
		rec.DriverRating, rec.CustomerRating, rec.IsCancelled,
	}

	quoted := make([]string, len(fields))
	for i, f := range fields {
		if f == "" {
			quoted[i] = "NULL"
			continue
		}
		quoted[i] = "'" + escapeSingleQuote(f) + "'"
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

func escapeSingleQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
