// Package archive opens exchange packages as ZIP containers and extracts
// their entries to a destination directory without interpreting them.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aasx-viewer/backend/internal/models"
)

// Entry is one member of the package: a package-relative path plus whether
// the member is a directory. Entries returned by Entries carry a handle to
// the underlying member so ExtractEntry needs no rescan.
type Entry struct {
	Path  string
	IsDir bool

	file *zip.File
}

// Reader enumerates and extracts the members of a package.
type Reader struct {
	rc *zip.ReadCloser
}

// Open opens the file at path as a ZIP container. Returns an invalidPackage
// error when the container cannot be opened (bad header, truncated data).
func Open(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, models.NewImportError(models.ErrFileNotFound, fmt.Sprintf("source file not found: %s", path), err)
		}
		return nil, models.NewImportError(models.ErrFileNotFound, fmt.Sprintf("source file not readable: %s", path), err)
	}

	rc, err := zip.OpenReader(path)
	if err != nil {
		// ErrInsecurePath leaves the reader usable; the per-entry extraction
		// guard rejects the offending members individually.
		if rc == nil || !errors.Is(err, zip.ErrInsecurePath) {
			return nil, models.NewImportError(models.ErrInvalidPackage, "file is not a valid package archive", err)
		}
	}

	return &Reader{rc: rc}, nil
}

// Close releases the underlying archive handle.
func (r *Reader) Close() error {
	return r.rc.Close()
}

// Entries lists every member of the archive in archive order.
func (r *Reader) Entries() []Entry {
	entries := make([]Entry, 0, len(r.rc.File))
	for _, f := range r.rc.File {
		entries = append(entries, Entry{
			Path:  strings.TrimSuffix(f.Name, "/"),
			IsDir: f.FileInfo().IsDir(),
			file:  f,
		})
	}
	return entries
}

// ExtractAll streams every member into destDir, creating parent directories
// as needed. Members that would escape destDir (absolute paths or `..`
// traversal) are rejected with an extractionFailed error.
func (r *Reader) ExtractAll(destDir string) error {
	for _, f := range r.rc.File {
		if err := r.extractFile(f, destDir); err != nil {
			return err
		}
	}
	return nil
}

// ExtractEntry writes one enumerated entry below destDir and returns the
// destination path. Unlike Extract it works directly off the member handle,
// so extracting every entry of a package stays linear.
func (r *Reader) ExtractEntry(e Entry, destDir string) (string, error) {
	if e.file == nil {
		return "", models.NewImportError(models.ErrExtractionFailed,
			fmt.Sprintf("entry not found in package: %s", e.Path), nil)
	}
	if err := r.extractFile(e.file, destDir); err != nil {
		return "", err
	}
	dest, _ := safeJoin(destDir, e.file.Name)
	return dest, nil
}

// Extract writes the single named member below destDir and returns the
// destination path it was written to.
func (r *Reader) Extract(name string, destDir string) (string, error) {
	for _, f := range r.rc.File {
		if strings.TrimSuffix(f.Name, "/") == strings.TrimSuffix(name, "/") {
			if err := r.extractFile(f, destDir); err != nil {
				return "", err
			}
			dest, _ := safeJoin(destDir, f.Name)
			return dest, nil
		}
	}
	return "", models.NewImportError(models.ErrExtractionFailed, fmt.Sprintf("entry not found in package: %s", name), nil)
}

func (r *Reader) extractFile(f *zip.File, destDir string) error {
	dest, ok := safeJoin(destDir, f.Name)
	if !ok {
		return models.NewImportError(models.ErrExtractionFailed,
			fmt.Sprintf("entry path escapes extraction root: %s", f.Name), nil)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(dest, 0755); err != nil {
			return models.NewImportError(models.ErrExtractionFailed, fmt.Sprintf("creating directory %s", f.Name), err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return models.NewImportError(models.ErrExtractionFailed, fmt.Sprintf("creating parent directory for %s", f.Name), err)
	}

	in, err := f.Open()
	if err != nil {
		return models.NewImportError(models.ErrExtractionFailed, fmt.Sprintf("opening entry %s", f.Name), err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return models.NewImportError(models.ErrExtractionFailed, fmt.Sprintf("creating %s", f.Name), err)
	}

	// Stream to disk; packages may hold members larger than memory.
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return models.NewImportError(models.ErrExtractionFailed, fmt.Sprintf("writing entry %s", f.Name), err)
	}

	return out.Close()
}

// safeJoin joins name below root and reports whether the result stays
// inside root.
func safeJoin(root, name string) (string, bool) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", false
	}
	return filepath.Join(root, cleaned), true
}
