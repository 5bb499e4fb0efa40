package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aasx-viewer/backend/internal/models"
)

func newTestStore(t *testing.T) *ContentStore {
	t.Helper()
	s, err := NewContentStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewContentStore failed: %v", err)
	}
	return s
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}

func TestSanitizeAssetID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"url identifier", "https://example.com/ids/asset/9175_7013", "https___example.com_ids_asset_9175_7013"},
		{"query characters", "id?x=1&y=2", "id_x=1_y=2"},
		{"plain identifier", "valve-x2", "valve-x2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeAssetID(tt.id); got != tt.want {
				t.Errorf("SanitizeAssetID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestSaveAndAccessors(t *testing.T) {
	s := newTestStore(t)
	assetID := "https://example.com/ids/asset/1"

	img := writeTempFile(t, "front.png", "image-bytes")
	logo := writeTempFile(t, "company_logo.png", "logo-bytes")
	marking := writeTempFile(t, "ce_mark.png", "marking-bytes")
	doc := writeTempFile(t, "manual.pdf", "document-bytes")
	thumb := writeTempFile(t, "preview.jpg", "thumb-bytes")

	if _, err := s.SaveImage(assetID, img, "front.png"); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if _, err := s.SaveImage(assetID, logo, "company_logo.png"); err != nil {
		t.Fatalf("SaveImage (logo) failed: %v", err)
	}
	if _, err := s.SaveMarking(assetID, marking, "ce_mark.png"); err != nil {
		t.Fatalf("SaveMarking failed: %v", err)
	}
	dest, size, err := s.SaveDocument(assetID, doc, "manual.pdf")
	if err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	if size != int64(len("document-bytes")) {
		t.Errorf("SaveDocument size = %d", size)
	}
	if filepath.Base(dest) != "manual.pdf" {
		t.Errorf("SaveDocument dest = %s", dest)
	}

	thumbDest, err := s.SaveThumbnail(assetID, thumb)
	if err != nil {
		t.Fatalf("SaveThumbnail failed: %v", err)
	}
	if filepath.Base(thumbDest) != "thumbnail.jpg" {
		t.Errorf("Thumbnail stored as %s, want thumbnail.jpg", filepath.Base(thumbDest))
	}

	// Source files are copied, never moved.
	if _, err := os.Stat(img); err != nil {
		t.Errorf("Source file was removed: %v", err)
	}

	images, err := s.ProductImages(assetID)
	if err != nil {
		t.Fatalf("ProductImages failed: %v", err)
	}
	if len(images) != 1 || filepath.Base(images[0]) != "front.png" {
		t.Errorf("ProductImages = %v, want just front.png", images)
	}

	logoPath, ok := s.ManufacturerLogo(assetID)
	if !ok || filepath.Base(logoPath) != "company_logo.png" {
		t.Errorf("ManufacturerLogo = %q, %v", logoPath, ok)
	}

	markings, err := s.Markings(assetID)
	if err != nil || len(markings) != 1 {
		t.Errorf("Markings = %v, %v", markings, err)
	}

	docs, err := s.Documents(assetID)
	if err != nil || len(docs) != 1 {
		t.Errorf("Documents = %v, %v", docs, err)
	}

	gotThumb, ok := s.Thumbnail(assetID)
	if !ok || filepath.Base(gotThumb) != "thumbnail.jpg" {
		t.Errorf("Thumbnail = %q, %v", gotThumb, ok)
	}

	if !s.HasAsset(assetID) {
		t.Error("HasAsset = false for stored asset")
	}

	ids, err := s.ListAssets()
	if err != nil || len(ids) != 1 || ids[0] != SanitizeAssetID(assetID) {
		t.Errorf("ListAssets = %v, %v", ids, err)
	}
}

func TestSaveReplacesExisting(t *testing.T) {
	s := newTestStore(t)

	first := writeTempFile(t, "a.png", "old-content")
	second := writeTempFile(t, "b.png", "new-content")

	if _, err := s.SaveImage("asset", first, "view.png"); err != nil {
		t.Fatalf("First SaveImage failed: %v", err)
	}
	dest, err := s.SaveImage("asset", second, "view.png")
	if err != nil {
		t.Fatalf("Second SaveImage failed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Reading replaced file failed: %v", err)
	}
	if string(data) != "new-content" {
		t.Errorf("Replaced content = %q, want new-content", data)
	}

	images, _ := s.ProductImages("asset")
	if len(images) != 1 {
		t.Errorf("Expected single image after replacement, got %d", len(images))
	}
}

func TestRemoveAsset(t *testing.T) {
	s := newTestStore(t)
	src := writeTempFile(t, "x.png", "x")
	if _, err := s.SaveImage("gone", src, "x.png"); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveAsset("gone"); err != nil {
		t.Fatalf("RemoveAsset failed: %v", err)
	}
	if s.HasAsset("gone") {
		t.Error("Asset still present after removal")
	}
}

func TestEmptyAssetAccessors(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.Thumbnail("nothing"); ok {
		t.Error("Thumbnail reported for unknown asset")
	}
	if images, err := s.ProductImages("nothing"); err != nil || len(images) != 0 {
		t.Errorf("ProductImages for unknown asset = %v, %v", images, err)
	}
	if s.HasAsset("nothing") {
		t.Error("HasAsset = true for unknown asset")
	}
}

func TestWriteAndReadManifest(t *testing.T) {
	s := newTestStore(t)

	meta := models.Metadata{
		AssetName:          "Valve X2",
		Manufacturer:       "Example GmbH",
		SerialNumber:       "SN-001",
		ProductDesignation: "Industrial Valve",
		SourceFile:         "valve.aasx",
		ImportedAt:         time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := s.WriteManifest("asset-1", meta); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(s.AssetDir("asset-1"), ManifestName))
	if err != nil {
		t.Fatalf("Manifest not written: %v", err)
	}
	text := string(raw)

	// Keys are emitted sorted; importedAt uses ISO-8601.
	if !strings.Contains(text, "2026-08-01T12:00:00Z") {
		t.Errorf("Manifest date not ISO-8601:\n%s", text)
	}
	if strings.Index(text, `"assetName"`) > strings.Index(text, `"manufacturer"`) {
		t.Errorf("Manifest keys not sorted:\n%s", text)
	}
	if !strings.HasSuffix(text, "\n") {
		t.Error("Manifest missing trailing newline")
	}

	got, err := s.ReadManifest("asset-1")
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if got.AssetName != meta.AssetName || got.SerialNumber != meta.SerialNumber {
		t.Errorf("Round-tripped manifest mismatch: %+v", got)
	}
	if !got.ImportedAt.Equal(meta.ImportedAt) {
		t.Errorf("ImportedAt mismatch: %v", got.ImportedAt)
	}
}
