package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aasx-viewer/backend/internal/models"
)

func newImportContext(t *testing.T, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandleImportUpload(t *testing.T) {
	manager := newMockManager()
	uploadDir := t.TempDir()
	h := NewImportHandler(manager, uploadDir, false)

	payload := base64.StdEncoding.EncodeToString([]byte("zip-bytes"))
	body, _ := json.Marshal(map[string]string{
		"name":    "valve.aasx",
		"data":    payload,
		"assetId": "urn:asset:forced",
	})

	c, rec := newImportContext(t, http.MethodPost, string(body))
	require.NoError(t, h.HandleImportUpload(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var job models.ImportJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "job-file", job.ID)

	// Upload landed in the upload directory with the original extension.
	assert.Equal(t, "valve.aasx", manager.lastSource)
	assert.Equal(t, "urn:asset:forced", manager.lastID)
	assert.Equal(t, uploadDir, filepath.Dir(manager.lastPath))
	assert.Equal(t, ".aasx", filepath.Ext(manager.lastPath))

	data, err := os.ReadFile(manager.lastPath)
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(data))
}

func TestHandleImportUploadValidation(t *testing.T) {
	h := NewImportHandler(newMockManager(), t.TempDir(), false)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing name", `{"data":"aGk="}`, "VALIDATION_ERROR"},
		{"missing data", `{"name":"valve.aasx"}`, "VALIDATION_ERROR"},
		{"invalid base64", `{"name":"valve.aasx","data":"!!not-base64!!"}`, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newImportContext(t, http.MethodPost, tt.body)
			err := h.HandleImportUpload(c)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestHandleImportURL(t *testing.T) {
	manager := newMockManager()
	h := NewImportHandler(manager, t.TempDir(), true)

	c, rec := newImportContext(t, http.MethodPost, `{"url":"https://example.com/packages/valve.aasx"}`)
	require.NoError(t, h.HandleImportURL(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	assert.Equal(t, "https://example.com/packages/valve.aasx", manager.lastURL)
	assert.Equal(t, "valve.aasx", manager.lastSource)
}

func TestHandleImportURLDisabled(t *testing.T) {
	h := NewImportHandler(newMockManager(), t.TempDir(), false)

	c, _ := newImportContext(t, http.MethodPost, `{"url":"https://example.com/x.aasx"}`)
	err := h.HandleImportURL(c)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestHandleImportStatus(t *testing.T) {
	manager := newMockManager()
	manager.ImportFromFile("/tmp/x.aasx", "x.aasx", "")
	h := NewImportHandler(manager, t.TempDir(), false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("jobId")
	c.SetParamValues("job-file")

	require.NoError(t, h.HandleImportStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var job models.ImportJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, models.ImportStateExtracting, job.State)
}

func TestHandleImportStatusNotFound(t *testing.T) {
	h := NewImportHandler(newMockManager(), t.TempDir(), false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("jobId")
	c.SetParamValues("nope")

	err := h.HandleImportStatus(c)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestHandleImportDecision(t *testing.T) {
	manager := newMockManager()
	manager.ImportFromFile("/tmp/x.aasx", "x.aasx", "")
	h := NewImportHandler(manager, t.TempDir(), false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"proceed":true}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("jobId")
	c.SetParamValues("job-file")

	require.NoError(t, h.HandleImportDecision(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleImportDecisionConflict(t *testing.T) {
	manager := newMockManager()
	manager.ImportFromFile("/tmp/x.aasx", "x.aasx", "")
	manager.decideErr = errors.New("import job job-file is not awaiting a decision")
	h := NewImportHandler(manager, t.TempDir(), false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"proceed":true}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("jobId")
	c.SetParamValues("job-file")

	err := h.HandleImportDecision(c)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestHandleImportCancel(t *testing.T) {
	manager := newMockManager()
	manager.ImportFromFile("/tmp/x.aasx", "x.aasx", "")
	h := NewImportHandler(manager, t.TempDir(), false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("jobId")
	c.SetParamValues("job-file")

	require.NoError(t, h.HandleImportCancel(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestErrorHandlerRendersAPIError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(NewNotFoundError("asset", "x"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Code)
	assert.Contains(t, body.Message, "asset not found")
}
