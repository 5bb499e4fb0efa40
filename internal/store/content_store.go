// Package store persists classified package content into a per-asset
// directory tree and serves accessor queries over it. The store is the
// durable source of truth once an import completes.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aasx-viewer/backend/internal/models"
)

// ContentDirName is the subtree below the storage root holding all assets.
const ContentDirName = "AASXContent"

// Subdirectories of one asset.
const (
	ImagesDir    = "images"
	MarkingsDir  = "markings"
	DocumentsDir = "documents"
)

// ManifestName is the per-asset metadata file.
const ManifestName = "manifest.json"

// ThumbnailBaseName is the fixed thumbnail filename (original extension kept).
const ThumbnailBaseName = "thumbnail"

// ContentStore implements the per-asset local store. Construct one and
// inject it; there is no package-level instance.
type ContentStore struct {
	rootDir string
}

// NewContentStore creates the store root if needed.
func NewContentStore(rootDir string) (*ContentStore, error) {
	contentRoot := filepath.Join(rootDir, ContentDirName)
	if err := os.MkdirAll(contentRoot, 0755); err != nil {
		return nil, fmt.Errorf("creating content root: %w", err)
	}
	return &ContentStore{rootDir: contentRoot}, nil
}

// SanitizeAssetID makes an asset identifier filesystem-safe by replacing
// `/`, `:`, `?` and `&` with underscores.
func SanitizeAssetID(id string) string {
	replacer := strings.NewReplacer("/", "_", ":", "_", "?", "_", "&", "_")
	return replacer.Replace(id)
}

// AssetDir returns the directory for an asset identifier (sanitized).
func (s *ContentStore) AssetDir(assetID string) string {
	return filepath.Join(s.rootDir, SanitizeAssetID(assetID))
}

// SaveThumbnail copies srcPath under the fixed thumbnail name, keeping the
// source's original extension. Returns the destination path.
func (s *ContentStore) SaveThumbnail(assetID, srcPath string) (string, error) {
	ext := filepath.Ext(srcPath)
	dest := filepath.Join(s.AssetDir(assetID), ThumbnailBaseName+ext)
	if err := s.copyReplace(srcPath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// SaveImage copies a product image or manufacturer logo into images/.
func (s *ContentStore) SaveImage(assetID, srcPath, filename string) (string, error) {
	dest := filepath.Join(s.AssetDir(assetID), ImagesDir, filepath.Base(filename))
	if err := s.copyReplace(srcPath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// SaveMarking copies a certification marking image into markings/.
func (s *ContentStore) SaveMarking(assetID, srcPath, filename string) (string, error) {
	dest := filepath.Join(s.AssetDir(assetID), MarkingsDir, filepath.Base(filename))
	if err := s.copyReplace(srcPath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// SaveDocument copies a document into documents/ and returns its destination
// path and byte size.
func (s *ContentStore) SaveDocument(assetID, srcPath, filename string) (string, int64, error) {
	dest := filepath.Join(s.AssetDir(assetID), DocumentsDir, filepath.Base(filename))
	if err := s.copyReplace(srcPath, dest); err != nil {
		return "", 0, err
	}
	info, err := os.Stat(dest)
	if err != nil {
		return dest, 0, nil
	}
	return dest, info.Size(), nil
}

// Thumbnail returns the stored thumbnail path for an asset, if any.
func (s *ContentStore) Thumbnail(assetID string) (string, bool) {
	matches, _ := filepath.Glob(filepath.Join(s.AssetDir(assetID), ThumbnailBaseName+".*"))
	if len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}

// ProductImages lists stored product images, excluding the manufacturer logo.
func (s *ContentStore) ProductImages(assetID string) ([]string, error) {
	files, err := s.listDir(assetID, ImagesDir)
	if err != nil {
		return nil, err
	}
	images := files[:0]
	for _, f := range files {
		if !isLogoName(filepath.Base(f)) {
			images = append(images, f)
		}
	}
	return images, nil
}

// ManufacturerLogo returns the stored logo path, if any.
func (s *ContentStore) ManufacturerLogo(assetID string) (string, bool) {
	files, err := s.listDir(assetID, ImagesDir)
	if err != nil {
		return "", false
	}
	for _, f := range files {
		if isLogoName(filepath.Base(f)) {
			return f, true
		}
	}
	return "", false
}

// Markings lists stored certification marking images.
func (s *ContentStore) Markings(assetID string) ([]string, error) {
	return s.listDir(assetID, MarkingsDir)
}

// Documents lists stored document paths.
func (s *ContentStore) Documents(assetID string) ([]string, error) {
	return s.listDir(assetID, DocumentsDir)
}

// HasAsset reports whether any content exists for the identifier.
func (s *ContentStore) HasAsset(assetID string) bool {
	_, err := os.Stat(s.AssetDir(assetID))
	return err == nil
}

// ListAssets returns the sanitized identifiers of all stored assets.
func (s *ContentStore) ListAssets() ([]string, error) {
	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		return nil, fmt.Errorf("reading content root: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// RemoveAsset deletes the whole subtree for an asset.
func (s *ContentStore) RemoveAsset(assetID string) error {
	return os.RemoveAll(s.AssetDir(assetID))
}

func (s *ContentStore) listDir(assetID, sub string) ([]string, error) {
	dir := filepath.Join(s.AssetDir(assetID), sub)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", sub, err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// copyReplace copies src to dest, replacing any existing file
// (remove-then-copy). Files are always copied, never moved.
func (s *ContentStore) copyReplace(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return models.NewImportError(models.ErrStorageError, fmt.Sprintf("creating directory for %s", filepath.Base(dest)), err)
	}

	in, err := os.Open(src)
	if err != nil {
		return models.NewImportError(models.ErrStorageError, fmt.Sprintf("opening source %s", filepath.Base(src)), err)
	}
	defer in.Close()

	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return models.NewImportError(models.ErrStorageError, fmt.Sprintf("replacing %s", filepath.Base(dest)), err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return models.NewImportError(models.ErrStorageError, fmt.Sprintf("creating %s", filepath.Base(dest)), err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return models.NewImportError(models.ErrStorageError, fmt.Sprintf("writing %s", filepath.Base(dest)), err)
	}

	return out.Close()
}

func isLogoName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "logo")
}
