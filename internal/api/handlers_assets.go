// handlers_assets.go - Asset browsing handlers over the durable content store
package api

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aasx-viewer/backend/internal/store"
)

// AssetHandler serves imported assets from the content store and catalog.
type AssetHandler struct {
	content       ContentReader
	catalog       AssetCatalog
	allowDeletion bool
}

// NewAssetHandler creates a new asset handler.
func NewAssetHandler(content ContentReader, cat AssetCatalog, allowDeletion bool) *AssetHandler {
	return &AssetHandler{
		content:       content,
		catalog:       cat,
		allowDeletion: allowDeletion,
	}
}

// HandleListAssets returns the most recently imported assets.
func (h *AssetHandler) HandleListAssets(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := h.catalog.List(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to list assets", err)
	}
	return c.JSON(http.StatusOK, records)
}

// assetDetail combines the catalog row with the stored manifest and the
// names of the stored content files.
type assetDetail struct {
	AssetID   string      `json:"assetId"`
	Catalog   interface{} `json:"catalog,omitempty"`
	Manifest  interface{} `json:"manifest,omitempty"`
	Thumbnail bool        `json:"hasThumbnail"`
	Images    []string    `json:"images"`
	Markings  []string    `json:"markings"`
	Documents []string    `json:"documents"`
	Logo      bool        `json:"hasLogo"`
}

// HandleGetAsset returns asset detail for one identifier.
func (h *AssetHandler) HandleGetAsset(c echo.Context) error {
	id := store.SanitizeAssetID(c.Param("id"))
	if id == "" {
		return NewValidationError("id")
	}
	if !h.content.HasAsset(id) {
		return NewNotFoundError("asset", id)
	}

	detail := assetDetail{AssetID: id}
	if rec, ok, err := h.catalog.Get(c.Request().Context(), id); err == nil && ok {
		detail.Catalog = rec
	}
	if manifest, err := h.content.ReadManifest(id); err == nil {
		detail.Manifest = manifest
	}

	_, detail.Thumbnail = h.content.Thumbnail(id)
	_, detail.Logo = h.content.ManufacturerLogo(id)
	detail.Images = baseNames(listOrEmpty(h.content.ProductImages(id)))
	detail.Markings = baseNames(listOrEmpty(h.content.Markings(id)))
	detail.Documents = baseNames(listOrEmpty(h.content.Documents(id)))

	return c.JSON(http.StatusOK, detail)
}

// HandleGetThumbnail serves the stored thumbnail file.
func (h *AssetHandler) HandleGetThumbnail(c echo.Context) error {
	id := store.SanitizeAssetID(c.Param("id"))
	path, ok := h.content.Thumbnail(id)
	if !ok {
		return NewNotFoundError("thumbnail for asset", id)
	}
	return c.File(path)
}

// HandleGetLogo serves the stored manufacturer logo.
func (h *AssetHandler) HandleGetLogo(c echo.Context) error {
	id := store.SanitizeAssetID(c.Param("id"))
	path, ok := h.content.ManufacturerLogo(id)
	if !ok {
		return NewNotFoundError("logo for asset", id)
	}
	return c.File(path)
}

// HandleGetImage serves one stored product image by filename.
func (h *AssetHandler) HandleGetImage(c echo.Context) error {
	return h.serveNamedFile(c, h.content.ProductImages)
}

// HandleGetMarking serves one stored certification marking by filename.
func (h *AssetHandler) HandleGetMarking(c echo.Context) error {
	return h.serveNamedFile(c, h.content.Markings)
}

// HandleGetDocument serves one stored document by filename.
func (h *AssetHandler) HandleGetDocument(c echo.Context) error {
	return h.serveNamedFile(c, h.content.Documents)
}

// HandleGetContentMsgpack returns the asset's content listing as msgpack for
// bandwidth-sensitive clients.
func (h *AssetHandler) HandleGetContentMsgpack(c echo.Context) error {
	id := store.SanitizeAssetID(c.Param("id"))
	if !h.content.HasAsset(id) {
		return NewNotFoundError("asset", id)
	}

	manifest, _ := h.content.ReadManifest(id)
	thumbnail, _ := h.content.Thumbnail(id)
	logo, _ := h.content.ManufacturerLogo(id)

	payload := map[string]interface{}{
		"assetId":   id,
		"manifest":  manifest,
		"thumbnail": filepath.Base(thumbnail),
		"logo":      filepath.Base(logo),
		"images":    baseNames(listOrEmpty(h.content.ProductImages(id))),
		"markings":  baseNames(listOrEmpty(h.content.Markings(id))),
		"documents": baseNames(listOrEmpty(h.content.Documents(id))),
	}

	data, err := msgpack.Marshal(payload)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleDeleteAsset removes the asset's store subtree and catalog row.
func (h *AssetHandler) HandleDeleteAsset(c echo.Context) error {
	if !h.allowDeletion {
		return &APIError{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: "asset deletion is disabled"}
	}

	id := store.SanitizeAssetID(c.Param("id"))
	if !h.content.HasAsset(id) {
		return NewNotFoundError("asset", id)
	}

	if err := h.content.RemoveAsset(id); err != nil {
		return NewInternalError("failed to remove asset content", err)
	}
	if err := h.catalog.Delete(id); err != nil {
		return NewInternalError("failed to remove catalog entry", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// serveNamedFile serves one file out of an accessor listing, matched by its
// base name so path segments in the request cannot escape the asset dir.
func (h *AssetHandler) serveNamedFile(c echo.Context, list func(string) ([]string, error)) error {
	id := store.SanitizeAssetID(c.Param("id"))
	name := filepath.Base(c.Param("name"))
	if name == "" || name == "." {
		return NewValidationError("name")
	}

	files, err := list(id)
	if err != nil {
		return NewInternalError("failed to list asset content", err)
	}
	for _, f := range files {
		if filepath.Base(f) == name {
			return c.File(f)
		}
	}
	return NewNotFoundError("file", name)
}

func listOrEmpty(files []string, err error) []string {
	if err != nil {
		return nil
	}
	return files
}

func baseNames(files []string) []string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	return names
}
