// routes.go - Route registration helpers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Manager        ImportManager
	Content        ContentReader
	Catalog        AssetCatalog
	UploadDir      string
	AllowURLImport bool
	AllowDeletion  bool
	Version        string
}

// Handlers holds all handler instances.
type Handlers struct {
	Import *ImportHandler
	Assets *AssetHandler
	Socket *WebSocketHandler
	health *healthHandler
}

// NewHandlers creates all handler instances.
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Import: NewImportHandler(deps.Manager, deps.UploadDir, deps.AllowURLImport),
		Assets: NewAssetHandler(deps.Content, deps.Catalog, deps.AllowDeletion),
		Socket: NewWebSocketHandler(deps.Manager),
		health: &healthHandler{version: deps.Version},
	}
}

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handlers) {
	e.HTTPErrorHandler = ErrorHandler

	apiGroup := e.Group("/api")
	apiGroup.GET("/health", h.health.HandleHealth)

	importGroup := apiGroup.Group("/import")
	importGroup.POST("/upload", h.Import.HandleImportUpload)
	importGroup.POST("/url", h.Import.HandleImportURL)
	importGroup.GET("/:jobId", h.Import.HandleImportStatus)
	importGroup.GET("/:jobId/progress", h.Import.HandleImportProgressStream)
	importGroup.POST("/:jobId/decision", h.Import.HandleImportDecision)
	importGroup.POST("/:jobId/cancel", h.Import.HandleImportCancel)

	assetGroup := apiGroup.Group("/assets")
	assetGroup.GET("", h.Assets.HandleListAssets)
	assetGroup.GET("/:id", h.Assets.HandleGetAsset)
	assetGroup.GET("/:id/thumbnail", h.Assets.HandleGetThumbnail)
	assetGroup.GET("/:id/logo", h.Assets.HandleGetLogo)
	assetGroup.GET("/:id/images/:name", h.Assets.HandleGetImage)
	assetGroup.GET("/:id/markings/:name", h.Assets.HandleGetMarking)
	assetGroup.GET("/:id/documents/:name", h.Assets.HandleGetDocument)
	assetGroup.GET("/:id/content/msgpack", h.Assets.HandleGetContentMsgpack)
	assetGroup.DELETE("/:id", h.Assets.HandleDeleteAsset)

	apiGroup.GET("/ws/imports", h.Socket.HandleImportSocket)
}

// healthHandler reports server liveness and version.
type healthHandler struct {
	version string
}

func (h *healthHandler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}
