// Package importer sequences the package import pipeline: scan for issues,
// await a user decision when needed, extract, resolve metadata, classify and
// persist content. One Manager tracks all import jobs; callers serialize
// imports targeting the same asset identifier.
package importer

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aasx-viewer/backend/internal/catalog"
	"github.com/aasx-viewer/backend/internal/classify"
	"github.com/aasx-viewer/backend/internal/models"
	"github.com/aasx-viewer/backend/internal/store"
)

// Catalog is the slice of the asset catalog the importer needs.
type Catalog interface {
	RecordResult(result *models.ParseResult) error
}

var _ Catalog = (*catalog.Catalog)(nil)

// Manager owns import jobs and their staging workspaces.
type Manager struct {
	jobs        map[string]*job
	mu          sync.RWMutex
	store       *store.ContentStore
	catalog     Catalog // optional; nil disables catalog upserts
	classifier  classify.Classifier
	tempDir     string
	allowedExts []string
	client      *http.Client
}

// Options tunes a Manager. Zero values fall back to the built-in defaults.
type Options struct {
	// TempDir hosts downloads and staging workspaces.
	TempDir string
	// DownloadTimeout bounds one whole package download.
	DownloadTimeout time.Duration
	// AllowedExtensions are the package extensions (lowercase, with dot)
	// accepted without an unsupportedFormat pre-scan issue.
	AllowedExtensions []string
}

const defaultDownloadTimeout = 10 * time.Minute

var defaultAllowedExtensions = []string{".aasx", ".zip"}

// job pairs the externally visible snapshot with the pipeline's control
// channels. Snapshot fields are guarded by Manager.mu.
type job struct {
	snapshot models.ImportJob
	decision chan bool
	cancel   context.CancelFunc
}

// NewManager creates an import manager. Each import owns a disjoint staging
// workspace under opts.TempDir named by a fresh random token.
func NewManager(contentStore *store.ContentStore, cat Catalog, classifier classify.Classifier, opts Options) *Manager {
	if classifier == nil {
		classifier = classify.Default()
	}
	timeout := opts.DownloadTimeout
	if timeout <= 0 {
		timeout = defaultDownloadTimeout
	}
	allowed := opts.AllowedExtensions
	if len(allowed) == 0 {
		allowed = defaultAllowedExtensions
	}
	return &Manager{
		jobs:        make(map[string]*job),
		store:       contentStore,
		catalog:     cat,
		classifier:  classifier,
		tempDir:     opts.TempDir,
		allowedExts: allowed,
		client:      &http.Client{Timeout: timeout},
	}
}

// ImportFromFile starts an import of a local package file. assetIDOverride,
// when non-empty, wins over any identifier resolved from the package.
func (m *Manager) ImportFromFile(path, sourceName, assetIDOverride string) *models.ImportJob {
	j := m.newJob(sourceName, "", models.ImportStateExtracting)
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel

	go m.run(ctx, j.snapshot.ID, path, sourceName, "", assetIDOverride)
	return m.snapshotOf(j)
}

// ImportFromURL downloads the package first, then runs the same pipeline.
func (m *Manager) ImportFromURL(url, sourceName, assetIDOverride string) *models.ImportJob {
	j := m.newJob(sourceName, url, models.ImportStateDownloading)
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel

	go m.run(ctx, j.snapshot.ID, "", sourceName, url, assetIDOverride)
	return m.snapshotOf(j)
}

// GetJob returns a copy of the job snapshot.
func (m *Manager) GetJob(id string) (*models.ImportJob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	snap := j.snapshot
	return &snap, true
}

// Decide supplies the continue/abort decision for a job halted in
// awaitingUserDecision. Continue resumes into parsing; abort returns the job
// to idle and discards the staging workspace.
func (m *Manager) Decide(id string, proceed bool) error {
	m.mu.RLock()
	j, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("import job not found: %s", id)
	}
	if state := m.currentState(id); state != models.ImportStateAwaitingDecision {
		return fmt.Errorf("import job %s is not awaiting a decision (state: %s)", id, state)
	}

	select {
	case j.decision <- proceed:
		return nil
	default:
		return fmt.Errorf("decision already supplied for import job %s", id)
	}
}

// Cancel requests cancellation of a running job. During download this aborts
// cleanly with no store mutation and returns the job to idle; in the parsing
// and storingContent stages the pipeline checks for cancellation between
// files and fails the job with userAborted.
func (m *Manager) Cancel(id string) error {
	m.mu.RLock()
	j, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("import job not found: %s", id)
	}
	if m.currentState(id).Terminal() {
		return fmt.Errorf("import job %s already finished", id)
	}
	j.cancel()
	return nil
}

// CleanupOldJobs drops finished jobs older than maxAge.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for id, j := range m.jobs {
		if !j.snapshot.State.Terminal() {
			continue
		}
		if j.snapshot.CompletedAt != nil && j.snapshot.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
		}
	}
}

// newJob registers a job already in its first pipeline state, so a snapshot
// taken before the goroutine is scheduled never reads as terminal and Cancel
// cannot race the pipeline startup. Idle is reserved for post-abort jobs.
func (m *Manager) newJob(sourceName, url string, initial models.ImportState) *job {
	j := &job{
		snapshot: models.ImportJob{
			ID:         uuid.New().String(),
			SourceName: sourceName,
			SourceURL:  url,
			State:      initial,
			Stage:      "queued",
			CreatedAt:  time.Now(),
		},
		decision: make(chan bool, 1),
	}

	m.mu.Lock()
	m.jobs[j.snapshot.ID] = j
	m.mu.Unlock()
	return j
}

func (m *Manager) snapshotOf(j *job) *models.ImportJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := j.snapshot
	return &snap
}

func (m *Manager) currentState(id string) models.ImportState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if j, ok := m.jobs[id]; ok {
		return j.snapshot.State
	}
	return models.ImportStateIdle
}

func (m *Manager) setState(id string, state models.ImportState, stage string, progress float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return
	}
	j.snapshot.State = state
	j.snapshot.Stage = stage
	j.snapshot.Progress = progress
}

func (m *Manager) setProgress(id string, progress float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.snapshot.Progress = progress
	}
}

func (m *Manager) setIssues(id string, issues []models.ImportIssue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.snapshot.Issues = issues
	}
}

// markIdle records an abort or download cancellation: the job is back where
// it started and the staging workspace has been discarded.
func (m *Manager) markIdle(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	j.snapshot.State = models.ImportStateIdle
	j.snapshot.Stage = ""
	j.snapshot.Progress = 0
	j.snapshot.Result = nil
	j.snapshot.CompletedAt = &now
}

func (m *Manager) markCompleted(id string, result *models.ParseResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	j.snapshot.State = models.ImportStateCompleted
	j.snapshot.Stage = "done"
	j.snapshot.Progress = 100
	j.snapshot.Result = result
	j.snapshot.CompletedAt = &now
}

func (m *Manager) markFailed(id string, impErr *models.ImportError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	j.snapshot.State = models.ImportStateFailed
	j.snapshot.ErrorKind = impErr.Kind
	j.snapshot.Error = impErr.Reason
	j.snapshot.CompletedAt = &now
	fmt.Printf("[Import %s] Failed: %v\n", shortID(id), impErr)
}

func (m *Manager) extensionAllowed(ext string) bool {
	for _, allowed := range m.allowedExts {
		if ext == allowed {
			return true
		}
	}
	return false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
