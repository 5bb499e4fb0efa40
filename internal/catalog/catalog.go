// Package catalog keeps a queryable record of imported assets in an embedded
// DuckDB database. The content store stays the source of truth for files;
// the catalog only backs the list/search APIs.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/aasx-viewer/backend/internal/models"
)

// AssetRecord is one catalog row.
type AssetRecord struct {
	AssetID       string    `json:"assetId"`
	Name          string    `json:"name,omitempty"`
	Manufacturer  string    `json:"manufacturer,omitempty"`
	SerialNumber  string    `json:"serialNumber,omitempty"`
	SourceFile    string    `json:"sourceFile,omitempty"`
	ImportedAt    time.Time `json:"importedAt"`
	ImageCount    int       `json:"imageCount"`
	MarkingCount  int       `json:"markingCount"`
	DocumentCount int       `json:"documentCount"`
	WarningCount  int       `json:"warningCount"`
}

// Catalog wraps the DuckDB handle.
type Catalog struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database at dbPath.
func Open(dbPath string) (*Catalog, error) {
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS assets (
			asset_id       VARCHAR PRIMARY KEY,
			name           VARCHAR,
			manufacturer   VARCHAR,
			serial_number  VARCHAR,
			source_file    VARCHAR,
			imported_at    TIMESTAMP NOT NULL,
			image_count    INTEGER NOT NULL,
			marking_count  INTEGER NOT NULL,
			document_count INTEGER NOT NULL,
			warning_count  INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating assets table: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Upsert replaces the row for rec.AssetID. Re-importing the same asset keeps
// exactly one catalog entry.
func (c *Catalog) Upsert(rec AssetRecord) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("starting catalog transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM assets WHERE asset_id = ?`, rec.AssetID); err != nil {
		return fmt.Errorf("replacing catalog row: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO assets (asset_id, name, manufacturer, serial_number, source_file,
			imported_at, image_count, marking_count, document_count, warning_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.AssetID, rec.Name, rec.Manufacturer, rec.SerialNumber, rec.SourceFile,
		rec.ImportedAt, rec.ImageCount, rec.MarkingCount, rec.DocumentCount, rec.WarningCount,
	)
	if err != nil {
		return fmt.Errorf("inserting catalog row: %w", err)
	}

	return tx.Commit()
}

// RecordResult derives a catalog row from a completed import and upserts it.
func (c *Catalog) RecordResult(result *models.ParseResult) error {
	return c.Upsert(AssetRecord{
		AssetID:       result.AssetID,
		Name:          result.Metadata.AssetName,
		Manufacturer:  result.Metadata.Manufacturer,
		SerialNumber:  result.Metadata.SerialNumber,
		SourceFile:    result.Metadata.SourceFile,
		ImportedAt:    result.Metadata.ImportedAt,
		ImageCount:    len(result.Content.ProductImages),
		MarkingCount:  len(result.Content.Markings),
		DocumentCount: len(result.Content.Documents),
		WarningCount:  len(result.Warnings),
	})
}

// List returns the most recently imported assets, newest first.
func (c *Catalog) List(ctx context.Context, limit int) ([]AssetRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT asset_id, name, manufacturer, serial_number, source_file,
			imported_at, image_count, marking_count, document_count, warning_count
		FROM assets ORDER BY imported_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var records []AssetRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the catalog row for an asset identifier.
func (c *Catalog) Get(ctx context.Context, assetID string) (*AssetRecord, bool, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT asset_id, name, manufacturer, serial_number, source_file,
			imported_at, image_count, marking_count, document_count, warning_count
		FROM assets WHERE asset_id = ?`, assetID)
	if err != nil {
		return nil, false, fmt.Errorf("querying asset: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, rows.Err()
	}
	rec, err := scanRecord(rows)
	if err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

// Delete removes the row for an asset identifier.
func (c *Catalog) Delete(assetID string) error {
	_, err := c.db.Exec(`DELETE FROM assets WHERE asset_id = ?`, assetID)
	if err != nil {
		return fmt.Errorf("deleting catalog row: %w", err)
	}
	return nil
}

func scanRecord(rows *sql.Rows) (AssetRecord, error) {
	var rec AssetRecord
	var name, manufacturer, serial, source sql.NullString
	err := rows.Scan(&rec.AssetID, &name, &manufacturer, &serial, &source,
		&rec.ImportedAt, &rec.ImageCount, &rec.MarkingCount, &rec.DocumentCount, &rec.WarningCount)
	if err != nil {
		return rec, fmt.Errorf("scanning catalog row: %w", err)
	}
	rec.Name = name.String
	rec.Manufacturer = manufacturer.String
	rec.SerialNumber = serial.String
	rec.SourceFile = source.String
	return rec, nil
}
