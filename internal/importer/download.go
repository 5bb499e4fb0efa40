package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// download streams the package at url into a temp file, reporting progress
// when the server provides a content length. Cancelling the context aborts
// the transfer and removes the partial file.
func (m *Manager) download(ctx context.Context, jobID, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned %s", resp.Status)
	}

	out, err := os.CreateTemp(m.tempDir, "aasx-download-")
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	destPath := out.Name()

	total := resp.ContentLength
	buf := make([]byte, 1024*1024)
	var written int64
	lastUpdate := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			out.Close()
			os.Remove(destPath)
			return "", err
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				out.Close()
				os.Remove(destPath)
				return "", fmt.Errorf("writing download: %w", writeErr)
			}
			written += int64(n)

			if total > 0 && time.Since(lastUpdate) > 100*time.Millisecond {
				progress := float64(written) / float64(total) * 10
				if progress > 9.9 {
					progress = 9.9
				}
				m.setProgress(jobID, progress)
				lastUpdate = time.Now()
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			out.Close()
			os.Remove(destPath)
			return "", fmt.Errorf("reading download: %w", readErr)
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(destPath)
		return "", err
	}

	fmt.Printf("[Import %s] Downloaded %d bytes to %s\n", shortID(jobID), written, filepath.Base(destPath))
	return destPath, nil
}
