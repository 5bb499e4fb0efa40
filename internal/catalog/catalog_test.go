package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aasx-viewer/backend/internal/models"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.duckdb"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestUpsertAndGet(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	rec := AssetRecord{
		AssetID:       "urn:asset:1",
		Name:          "ValveX2",
		Manufacturer:  "Example GmbH",
		SerialNumber:  "SN-1",
		SourceFile:    "valve.aasx",
		ImportedAt:    time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		ImageCount:    3,
		MarkingCount:  1,
		DocumentCount: 2,
		WarningCount:  0,
	}
	if err := c.Upsert(rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, found, err := c.Get(ctx, "urn:asset:1")
	if err != nil || !found {
		t.Fatalf("Get failed: %v, found=%v", err, found)
	}
	if got.Name != "ValveX2" || got.ImageCount != 3 || got.DocumentCount != 2 {
		t.Errorf("Row mismatch: %+v", got)
	}

	// Re-import replaces the row instead of duplicating it.
	rec.Name = "ValveX2-rev2"
	rec.ImageCount = 5
	if err := c.Upsert(rec); err != nil {
		t.Fatalf("Second Upsert failed: %v", err)
	}

	list, err := c.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected single row after re-import, got %d", len(list))
	}
	if list[0].Name != "ValveX2-rev2" || list[0].ImageCount != 5 {
		t.Errorf("Replaced row mismatch: %+v", list[0])
	}
}

func TestGetMissing(t *testing.T) {
	c := openTestCatalog(t)

	_, found, err := c.Get(context.Background(), "urn:asset:nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("Get reported a missing asset as found")
	}
}

func TestListOrderAndLimit(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"urn:a", "urn:b", "urn:c"} {
		err := c.Upsert(AssetRecord{
			AssetID:    id,
			ImportedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Upsert %s failed: %v", id, err)
		}
	}

	list, err := c.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(list))
	}
	if list[0].AssetID != "urn:c" || list[1].AssetID != "urn:b" {
		t.Errorf("List not newest-first: %v, %v", list[0].AssetID, list[1].AssetID)
	}
}

func TestDelete(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	if err := c.Upsert(AssetRecord{AssetID: "urn:gone", ImportedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete("urn:gone"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found, _ := c.Get(ctx, "urn:gone"); found {
		t.Error("Row still present after delete")
	}

	// Deleting an absent row is not an error.
	if err := c.Delete("urn:never"); err != nil {
		t.Errorf("Delete of missing row failed: %v", err)
	}
}

func TestRecordResult(t *testing.T) {
	c := openTestCatalog(t)

	result := &models.ParseResult{
		AssetID: "urn:asset:rr",
		Metadata: models.Metadata{
			AssetName:    "Pump",
			Manufacturer: "Pump Works AG",
			SerialNumber: "P-1",
			SourceFile:   "pump.aasx",
			ImportedAt:   time.Now().UTC(),
		},
		Content: models.ExtractedContent{
			ProductImages: []string{"a.png", "b.png"},
			Markings:      []string{"ce.png"},
			Documents:     []models.DocumentRecord{{ID: "d1"}},
		},
		Warnings: []models.Warning{{Kind: models.WarningPartialMetadata}},
	}

	if err := c.RecordResult(result); err != nil {
		t.Fatalf("RecordResult failed: %v", err)
	}

	got, found, err := c.Get(context.Background(), "urn:asset:rr")
	if err != nil || !found {
		t.Fatalf("Get failed: %v, found=%v", err, found)
	}
	if got.ImageCount != 2 || got.MarkingCount != 1 || got.DocumentCount != 1 || got.WarningCount != 1 {
		t.Errorf("Derived counts mismatch: %+v", got)
	}
	if got.Manufacturer != "Pump Works AG" {
		t.Errorf("Manufacturer = %q", got.Manufacturer)
	}
}
