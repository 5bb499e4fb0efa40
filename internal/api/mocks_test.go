package api

import (
	"context"
	"fmt"

	"github.com/aasx-viewer/backend/internal/catalog"
	"github.com/aasx-viewer/backend/internal/models"
)

// mockManager is a scriptable ImportManager for handler tests.
type mockManager struct {
	jobs       map[string]*models.ImportJob
	decideErr  error
	cancelErr  error
	lastPath   string
	lastSource string
	lastID     string
	lastURL    string
}

func newMockManager() *mockManager {
	return &mockManager{jobs: make(map[string]*models.ImportJob)}
}

func (m *mockManager) ImportFromFile(path, sourceName, assetIDOverride string) *models.ImportJob {
	m.lastPath = path
	m.lastSource = sourceName
	m.lastID = assetIDOverride
	job := &models.ImportJob{ID: "job-file", SourceName: sourceName, State: models.ImportStateExtracting}
	m.jobs[job.ID] = job
	return job
}

func (m *mockManager) ImportFromURL(url, sourceName, assetIDOverride string) *models.ImportJob {
	m.lastURL = url
	m.lastSource = sourceName
	m.lastID = assetIDOverride
	job := &models.ImportJob{ID: "job-url", SourceName: sourceName, SourceURL: url, State: models.ImportStateDownloading}
	m.jobs[job.ID] = job
	return job
}

func (m *mockManager) GetJob(id string) (*models.ImportJob, bool) {
	job, ok := m.jobs[id]
	return job, ok
}

func (m *mockManager) Decide(id string, proceed bool) error {
	if _, ok := m.jobs[id]; !ok {
		return fmt.Errorf("import job not found: %s", id)
	}
	return m.decideErr
}

func (m *mockManager) Cancel(id string) error {
	if _, ok := m.jobs[id]; !ok {
		return fmt.Errorf("import job not found: %s", id)
	}
	return m.cancelErr
}

// mockContent is an in-memory ContentReader.
type mockContent struct {
	assets    map[string]bool
	thumbnail string
	logo      string
	images    []string
	markings  []string
	documents []string
	manifest  *models.Metadata
	removed   []string
}

func newMockContent(ids ...string) *mockContent {
	assets := make(map[string]bool)
	for _, id := range ids {
		assets[id] = true
	}
	return &mockContent{assets: assets}
}

func (m *mockContent) Thumbnail(assetID string) (string, bool) {
	return m.thumbnail, m.thumbnail != ""
}

func (m *mockContent) ProductImages(assetID string) ([]string, error) { return m.images, nil }
func (m *mockContent) ManufacturerLogo(assetID string) (string, bool) { return m.logo, m.logo != "" }
func (m *mockContent) Markings(assetID string) ([]string, error)      { return m.markings, nil }
func (m *mockContent) Documents(assetID string) ([]string, error)     { return m.documents, nil }

func (m *mockContent) ReadManifest(assetID string) (*models.Metadata, error) {
	if m.manifest == nil {
		return nil, fmt.Errorf("no manifest for %s", assetID)
	}
	return m.manifest, nil
}

func (m *mockContent) HasAsset(assetID string) bool { return m.assets[assetID] }

func (m *mockContent) RemoveAsset(assetID string) error {
	delete(m.assets, assetID)
	m.removed = append(m.removed, assetID)
	return nil
}

// mockCatalog is an in-memory AssetCatalog.
type mockCatalog struct {
	records []catalog.AssetRecord
	deleted []string
	listErr error
}

func (m *mockCatalog) List(ctx context.Context, limit int) ([]catalog.AssetRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if limit < len(m.records) {
		return m.records[:limit], nil
	}
	return m.records, nil
}

func (m *mockCatalog) Get(ctx context.Context, assetID string) (*catalog.AssetRecord, bool, error) {
	for i := range m.records {
		if m.records[i].AssetID == assetID {
			return &m.records[i], true, nil
		}
	}
	return nil, false, nil
}

func (m *mockCatalog) Delete(assetID string) error {
	m.deleted = append(m.deleted, assetID)
	return nil
}
