//-------------------------------------------------------------------------
//
// RideMart Booking Warehouse
//
// Copyright (c) 2025 - 2026, the RideMart authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/urbanfleet/ridemart/internal/logging"
	"github.com/urbanfleet/ridemart/pkg/version"
)

const metadataTable = "ridemart_metadata"

// SchemaVersion identifies the warehouse table layout. Bumped whenever the
// DDL changes incompatibly; load refuses to run against a mismatch.
const SchemaVersion = "1"

const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS ridemart_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// SaveInitMetadata records schema initialization metadata.
func SaveInitMetadata(ctx context.Context, q Querier) error {
	return saveMetadata(ctx, q, map[string]string{
		"schema_version": SchemaVersion,
		"version":        version.Short(),
		"initialized_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// SaveLoadMetadata records the outcome of a pipeline run.
func SaveLoadMetadata(ctx context.Context, q Querier, values map[string]string) error {
	merged := map[string]string{
		"last_load_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range values {
		merged[k] = v
	}
	return saveMetadata(ctx, q, merged)
}

func saveMetadata(ctx context.Context, q Querier, values map[string]string) error {
	if _, err := q.Exec(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	for key, value := range values {
		_, err := q.Exec(ctx, `
            INSERT INTO ridemart_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().Int("keys", len(values)).Msg("Saved metadata")
	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, q Querier, key string) (string, error) {
	var value string
	err := q.QueryRow(ctx, `
        SELECT value FROM ridemart_metadata WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, q Querier) (map[string]string, error) {
	rows, err := q.Query(ctx, `SELECT key, value FROM ridemart_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// CheckSchemaVersion verifies that the database was initialized with a
// compatible schema. Returns an error if the metadata table is missing or
// the recorded version differs.
func CheckSchemaVersion(ctx context.Context, q Querier) error {
	exists, err := MetadataExists(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to check metadata table: %w", err)
	}
	if !exists {
		return fmt.Errorf("database has not been initialized; run 'ridemart init' first")
	}

	v, err := GetMetadataValue(ctx, q, "schema_version")
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if v != SchemaVersion {
		return fmt.Errorf(
			"database schema version %s does not match expected %s; re-run 'ridemart init'",
			v, SchemaVersion)
	}
	return nil
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, q Querier) error {
	_, err := q.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}

// MetadataExists checks if the metadata table exists.
func MetadataExists(ctx context.Context, q Querier) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )
    `, metadataTable).Scan(&exists)
	return exists, err
}
