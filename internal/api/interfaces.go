// interfaces.go - Handler dependency interfaces for clean separation of concerns
package api

import (
	"context"

	"github.com/aasx-viewer/backend/internal/catalog"
	"github.com/aasx-viewer/backend/internal/models"
)

// ImportManager is the slice of the importer the handlers depend on.
type ImportManager interface {
	ImportFromFile(path, sourceName, assetIDOverride string) *models.ImportJob
	ImportFromURL(url, sourceName, assetIDOverride string) *models.ImportJob
	GetJob(id string) (*models.ImportJob, bool)
	Decide(id string, proceed bool) error
	Cancel(id string) error
}

// AssetCatalog is the slice of the catalog the handlers depend on.
type AssetCatalog interface {
	List(ctx context.Context, limit int) ([]catalog.AssetRecord, error)
	Get(ctx context.Context, assetID string) (*catalog.AssetRecord, bool, error)
	Delete(assetID string) error
}

// ContentReader is the slice of the content store the asset handlers depend
// on; the store on disk is the durable source of truth after import.
type ContentReader interface {
	Thumbnail(assetID string) (string, bool)
	ProductImages(assetID string) ([]string, error)
	ManufacturerLogo(assetID string) (string, bool)
	Markings(assetID string) ([]string, error)
	Documents(assetID string) ([]string, error)
	ReadManifest(assetID string) (*models.Metadata, error)
	HasAsset(assetID string) bool
	RemoveAsset(assetID string) error
}
