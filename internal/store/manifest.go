package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aasx-viewer/backend/internal/models"
)

// WriteManifest persists the metadata record as pretty-printed JSON with
// sorted keys and ISO-8601 dates.
func (s *ContentStore) WriteManifest(assetID string, meta models.Metadata) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return models.NewImportError(models.ErrStorageError, "encoding manifest", err)
	}

	// Round-trip through a map so MarshalIndent emits sorted keys.
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return models.NewImportError(models.ErrStorageError, "encoding manifest", err)
	}
	pretty, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return models.NewImportError(models.ErrStorageError, "encoding manifest", err)
	}

	dir := s.AssetDir(assetID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return models.NewImportError(models.ErrStorageError, "creating asset directory", err)
	}

	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, append(pretty, '\n'), 0644); err != nil {
		return models.NewImportError(models.ErrStorageError, fmt.Sprintf("writing %s", ManifestName), err)
	}
	return nil
}

// ReadManifest loads the stored metadata for an asset.
func (s *ContentStore) ReadManifest(assetID string) (*models.Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.AssetDir(assetID), ManifestName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var meta models.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &meta, nil
}
