package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/aasx-viewer/backend/internal/aas"
	"github.com/aasx-viewer/backend/internal/archive"
	"github.com/aasx-viewer/backend/internal/classify"
	"github.com/aasx-viewer/backend/internal/models"
	"github.com/aasx-viewer/backend/internal/opc"
)

// run drives one import through the state machine. The staging workspace is
// removed on every exit path, success or failure.
func (m *Manager) run(ctx context.Context, jobID, srcPath, sourceName, url, overrideID string) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Import %s] PANIC recovered: %v\n", shortID(jobID), r)
			m.markFailed(jobID, models.NewImportError(models.ErrParsingFailed,
				fmt.Sprintf("import panicked: %v", r), nil))
		}
	}()

	if url != "" {
		m.setState(jobID, models.ImportStateDownloading, "downloading package", 0)
		downloaded, err := m.download(ctx, jobID, url)
		if err != nil {
			if ctx.Err() != nil {
				// Cancelled mid-download: no store mutation happened.
				fmt.Printf("[Import %s] Download cancelled\n", shortID(jobID))
				m.markIdle(jobID)
				return
			}
			m.markFailed(jobID, models.NewImportError(models.ErrDownloadFailed,
				fmt.Sprintf("download failed: %v", err), err))
			return
		}
		srcPath = downloaded
		defer os.Remove(srcPath)
	}

	workspace, err := os.MkdirTemp(m.tempDir, "aasx-import-")
	if err != nil {
		m.markFailed(jobID, models.NewImportError(models.ErrExtractionFailed, "could not create staging workspace", err))
		return
	}
	defer os.RemoveAll(workspace)

	m.setState(jobID, models.ImportStateExtracting, "extracting package", 10)
	fmt.Printf("[Import %s] Extracting %s\n", shortID(jobID), sourceName)

	issues, impErr := m.extract(srcPath, sourceName, workspace)
	if impErr != nil {
		m.markFailed(jobID, impErr)
		return
	}
	m.setProgress(jobID, 40)

	issues = append(issues, prescan(workspace)...)
	if len(issues) > 0 {
		fmt.Printf("[Import %s] Pre-scan found %d issue(s), awaiting decision\n", shortID(jobID), len(issues))
		m.setIssues(jobID, issues)
		m.setState(jobID, models.ImportStateAwaitingDecision, "awaiting user decision", 40)

		if !m.awaitDecision(ctx, jobID) {
			fmt.Printf("[Import %s] Aborted by user\n", shortID(jobID))
			m.markIdle(jobID)
			return
		}
	}

	m.setState(jobID, models.ImportStateParsing, "resolving metadata", 50)
	result, impErr := m.parseAndStore(ctx, jobID, workspace, sourceName, overrideID)
	if impErr != nil {
		m.markFailed(jobID, impErr)
		return
	}

	if m.catalog != nil {
		if err := m.catalog.RecordResult(result); err != nil {
			// The store already holds the content; a catalog miss is not
			// worth failing the import over.
			fmt.Printf("[Import %s] Warning: catalog update failed: %v\n", shortID(jobID), err)
			result.Warnings = append(result.Warnings, models.Warning{
				Kind:    models.WarningCorruptedFile,
				Message: fmt.Sprintf("asset catalog update failed: %v", err),
			})
		}
	}

	fmt.Printf("[Import %s] Completed: asset %s, %d image(s), %d document(s), %d warning(s)\n",
		shortID(jobID), result.AssetID, len(result.Content.ProductImages),
		len(result.Content.Documents), len(result.Warnings))
	m.markCompleted(jobID, result)
}

// extract opens the archive and extracts members one at a time so a single
// corrupted member degrades to a pre-scan issue instead of sinking the whole
// package.
func (m *Manager) extract(srcPath, sourceName, workspace string) ([]models.ImportIssue, *models.ImportError) {
	var issues []models.ImportIssue

	if ext := strings.ToLower(filepath.Ext(sourceName)); ext != "" && !m.extensionAllowed(ext) {
		issues = append(issues, models.ImportIssue{
			Kind:    models.IssueUnsupportedFormat,
			Message: fmt.Sprintf("unexpected package extension %q, expected one of %s", ext, strings.Join(m.allowedExts, ", ")),
			Path:    sourceName,
		})
	}

	reader, err := archive.Open(srcPath)
	if err != nil {
		return nil, asImportError(err)
	}
	defer reader.Close()

	for _, entry := range reader.Entries() {
		if entry.IsDir {
			continue
		}
		if _, err := reader.ExtractEntry(entry, workspace); err != nil {
			issues = append(issues, models.ImportIssue{
				Kind:    models.IssueCorruptedMember,
				Message: fmt.Sprintf("could not extract package member: %v", err),
				Path:    entry.Path,
			})
		}
	}

	return issues, nil
}

// prescan verifies the mandatory package parts are present in the staging
// workspace. Nothing has been written to the store at this point.
func prescan(workspace string) []models.ImportIssue {
	var issues []models.ImportIssue
	for _, part := range []string{opc.ContentTypesPath, opc.RootRelsPath} {
		if _, err := os.Stat(filepath.Join(workspace, filepath.FromSlash(part))); err != nil {
			issues = append(issues, models.ImportIssue{
				Kind:    models.IssueMissingContent,
				Message: fmt.Sprintf("mandatory package part missing: %s", part),
				Path:    part,
			})
		}
	}
	return issues
}

// awaitDecision suspends until the caller supplies continue/abort. A
// cancelled context counts as abort.
func (m *Manager) awaitDecision(ctx context.Context, jobID string) bool {
	m.mu.RLock()
	j, ok := m.jobs[jobID]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	select {
	case proceed := <-j.decision:
		return proceed
	case <-ctx.Done():
		return false
	}
}

// parseAndStore runs metadata extraction and content classification over the
// staging workspace and commits classified files to the content store.
func (m *Manager) parseAndStore(ctx context.Context, jobID, workspace, sourceName, overrideID string) (*models.ParseResult, *models.ImportError) {
	var warnings []models.Warning

	ctypes, ctWarnings, impErr := readContentTypes(workspace)
	if impErr != nil {
		return nil, impErr
	}
	warnings = append(warnings, ctWarnings...)

	rootRels, relWarnings := readRelationships(workspace, opc.RootRelsPath)
	warnings = append(warnings, relWarnings...)

	assetID := overrideID
	if assetID == "" {
		var idWarnings []models.Warning
		assetID, idWarnings = aas.ResolveAssetID(workspace, rootRels)
		warnings = append(warnings, idWarnings...)
	}

	meta, metaWarnings := aas.ExtractMetadata(workspace, sourceName)
	warnings = append(warnings, metaWarnings...)
	m.setProgress(jobID, 60)

	m.setState(jobID, models.ImportStateStoringContent, "storing content", 65)
	content, storeWarnings, impErr := m.storeContent(ctx, assetID, workspace, rootRels, ctypes)
	if impErr != nil {
		return nil, impErr
	}
	warnings = append(warnings, storeWarnings...)
	m.setProgress(jobID, 95)

	if err := m.store.WriteManifest(assetID, meta); err != nil {
		return nil, asImportError(err)
	}

	return &models.ParseResult{
		AssetID:  assetID,
		Metadata: meta,
		Content:  content,
		Warnings: warnings,
	}, nil
}

// storeContent walks every extracted file except relationship fragments and
// the content-types manifest, classifies it, and copies it into the
// per-asset store. A failed copy degrades to a corruptedFile warning. The
// thumbnail slot is populated exclusively from the declared thumbnail
// relationship, never from the walk.
func (m *Manager) storeContent(ctx context.Context, assetID, workspace string, rootRels []opc.Relationship, ctypes *opc.ContentTypeTable) (models.ExtractedContent, []models.Warning, *models.ImportError) {
	var content models.ExtractedContent
	var warnings []models.Warning

	walkErr := filepath.WalkDir(workspace, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "_rels" {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(workspace, p)
		if err != nil {
			return nil
		}
		partPath := filepath.ToSlash(rel)
		if strings.HasSuffix(partPath, ".rels") || path.Base(partPath) == opc.ContentTypesPath {
			return nil
		}

		c := m.classifier.Classify(partPath)
		switch c.Slot {
		case classify.SlotLogo:
			dest, err := m.store.SaveImage(assetID, p, path.Base(partPath))
			if err != nil {
				warnings = append(warnings, copyWarning(partPath, err))
				return nil
			}
			content.ManufacturerLogo = dest
		case classify.SlotMarking:
			dest, err := m.store.SaveMarking(assetID, p, path.Base(partPath))
			if err != nil {
				warnings = append(warnings, copyWarning(partPath, err))
				return nil
			}
			content.Markings = append(content.Markings, dest)
		case classify.SlotProductImage:
			dest, err := m.store.SaveImage(assetID, p, path.Base(partPath))
			if err != nil {
				warnings = append(warnings, copyWarning(partPath, err))
				return nil
			}
			content.ProductImages = append(content.ProductImages, dest)
		case classify.SlotDocument:
			dest, size, err := m.store.SaveDocument(assetID, p, path.Base(partPath))
			if err != nil {
				warnings = append(warnings, copyWarning(partPath, err))
				return nil
			}
			name := path.Base(partPath)
			content.Documents = append(content.Documents, models.DocumentRecord{
				ID:               uuid.New().String(),
				Title:            strings.TrimSuffix(name, path.Ext(name)),
				LocalPath:        dest,
				MimeType:         ctypes.TypeFor(partPath),
				Category:         c.Category,
				OriginalFilename: name,
				Size:             size,
			})
		}
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return content, warnings, models.NewImportError(models.ErrUserAborted, "import cancelled while storing content", walkErr)
		}
		return content, warnings, models.NewImportError(models.ErrStorageError, "walking extracted content", walkErr)
	}

	thumb, thumbWarnings := m.storeThumbnail(assetID, workspace, rootRels)
	content.Thumbnail = thumb
	warnings = append(warnings, thumbWarnings...)

	return content, warnings, nil
}

func (m *Manager) storeThumbnail(assetID, workspace string, rootRels []opc.Relationship) (string, []models.Warning) {
	thumbRels := opc.FindByType(rootRels, opc.RelTypeThumbnail)
	if len(thumbRels) == 0 {
		return "", nil
	}

	target := thumbRels[0].NormalizedTarget()
	src := filepath.Join(workspace, filepath.FromSlash(target))
	if _, err := os.Stat(src); err != nil {
		return "", []models.Warning{{
			Kind:    models.WarningMissingContent,
			Message: "declared thumbnail not present in package",
			Path:    target,
		}}
	}

	dest, err := m.store.SaveThumbnail(assetID, src)
	if err != nil {
		return "", []models.Warning{copyWarning(target, err)}
	}
	return dest, nil
}

// readContentTypes loads [Content_Types].xml. Absence degrades to a warning
// (the pre-scan already surfaced it as an issue and the user chose to
// continue); a present-but-unreadable manifest is a hard error.
func readContentTypes(workspace string) (*opc.ContentTypeTable, []models.Warning, *models.ImportError) {
	f, err := os.Open(filepath.Join(workspace, opc.ContentTypesPath))
	if err != nil {
		return opc.NewContentTypeTable(), []models.Warning{{
			Kind:    models.WarningMissingContent,
			Message: "content types manifest missing, MIME types unknown",
			Path:    opc.ContentTypesPath,
		}}, nil
	}
	defer f.Close()

	table, err := opc.ParseContentTypes(f)
	if err != nil {
		return nil, nil, models.NewImportError(models.ErrMissingManifest,
			"content types manifest is unreadable", err)
	}
	return table, nil, nil
}

// readRelationships loads a .rels fragment; a missing or unparsable fragment
// yields an empty set plus a warning, never an error.
func readRelationships(workspace, relsPath string) ([]opc.Relationship, []models.Warning) {
	f, err := os.Open(filepath.Join(workspace, filepath.FromSlash(relsPath)))
	if err != nil {
		return nil, []models.Warning{{
			Kind:    models.WarningRelationshipNotFound,
			Message: fmt.Sprintf("relationship file not found: %s", relsPath),
			Path:    relsPath,
		}}
	}
	defer f.Close()

	rels, err := opc.ParseRelationships(f)
	if err != nil {
		return nil, []models.Warning{{
			Kind:    models.WarningRelationshipNotFound,
			Message: fmt.Sprintf("relationship file unreadable: %v", err),
			Path:    relsPath,
		}}
	}
	return rels, nil
}

func copyWarning(partPath string, err error) models.Warning {
	return models.Warning{
		Kind:    models.WarningCorruptedFile,
		Message: fmt.Sprintf("could not store file: %v", err),
		Path:    partPath,
	}
}

// asImportError keeps typed import errors and wraps anything else as a
// parsing failure.
func asImportError(err error) *models.ImportError {
	var impErr *models.ImportError
	if errors.As(err, &impErr) {
		return impErr
	}
	return models.NewImportError(models.ErrParsingFailed, err.Error(), err)
}
