// handlers_import.go - Import pipeline handlers
package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aasx-viewer/backend/internal/models"
)

// ImportHandler serves the import lifecycle endpoints.
type ImportHandler struct {
	manager        ImportManager
	uploadDir      string
	allowURLImport bool
}

// NewImportHandler creates a new import handler.
func NewImportHandler(manager ImportManager, uploadDir string, allowURLImport bool) *ImportHandler {
	return &ImportHandler{
		manager:        manager,
		uploadDir:      uploadDir,
		allowURLImport: allowURLImport,
	}
}

type importUploadRequest struct {
	Name    string `json:"name"`
	Data    string `json:"data"` // Base64-encoded package content
	AssetID string `json:"assetId,omitempty"`
}

type importURLRequest struct {
	URL     string `json:"url"`
	AssetID string `json:"assetId,omitempty"`
}

type decisionRequest struct {
	Proceed bool `json:"proceed"`
}

// HandleImportUpload accepts a package as base64 JSON, persists it to the
// upload directory, and starts an import job.
func (h *ImportHandler) HandleImportUpload(c echo.Context) error {
	var req importUploadRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Name == "" {
		return NewValidationError("name")
	}
	if req.Data == "" {
		return NewValidationError("data")
	}

	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}

	path := filepath.Join(h.uploadDir, uuid.New().String()+filepath.Ext(req.Name))
	if err := os.WriteFile(path, decoded, 0644); err != nil {
		return NewInternalError("failed to save uploaded package", err)
	}

	job := h.manager.ImportFromFile(path, req.Name, req.AssetID)
	return c.JSON(http.StatusAccepted, job)
}

// HandleImportURL starts an import from a remote package URL.
func (h *ImportHandler) HandleImportURL(c echo.Context) error {
	if !h.allowURLImport {
		return &APIError{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: "URL import is disabled"}
	}

	var req importURLRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.URL == "" {
		return NewValidationError("url")
	}

	job := h.manager.ImportFromURL(req.URL, filepath.Base(req.URL), req.AssetID)
	return c.JSON(http.StatusAccepted, job)
}

// HandleImportStatus returns the current job snapshot.
func (h *ImportHandler) HandleImportStatus(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	job, ok := h.manager.GetJob(id)
	if !ok {
		return NewNotFoundError("import job", id)
	}
	return c.JSON(http.StatusOK, job)
}

// HandleImportDecision supplies the continue/abort decision for a job halted
// in awaitingUserDecision.
func (h *ImportHandler) HandleImportDecision(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if err := h.manager.Decide(id, req.Proceed); err != nil {
		return NewConflictError(err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleImportCancel requests cancellation of a running job.
func (h *ImportHandler) HandleImportCancel(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	if err := h.manager.Cancel(id); err != nil {
		return NewConflictError(err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleImportProgressStream streams job snapshots via SSE until the job
// reaches a terminal state.
func (h *ImportHandler) HandleImportProgressStream(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}
	if _, ok := h.manager.GetJob(id); !ok {
		return NewNotFoundError("import job", id)
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var lastState models.ImportState
	var lastProgress float64

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-ticker.C:
			job, ok := h.manager.GetJob(id)
			if !ok {
				return nil
			}

			if job.State != lastState || job.Progress != lastProgress {
				data, err := json.Marshal(job)
				if err != nil {
					return nil
				}
				if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", data); err != nil {
					return nil
				}
				c.Response().Flush()
				lastState = job.State
				lastProgress = job.Progress
			}

			if job.State.Terminal() {
				return nil
			}
		}
	}
}
