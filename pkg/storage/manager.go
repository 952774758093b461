package storage

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// PartSuffix marks an in-flight download next to its destination. A marker
// is promoted to the final name only on full receipt; on any error it is left
// in place for inspection, and the final name is never created partially.
const PartSuffix = ".part"

// copyChunkSize is the buffer size for streaming downloads to disk
const copyChunkSize = 256 * 1024

// Manager handles file storage for downloaded images and duplicate detection
type Manager struct {
	outputDir string
	existing  map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a storage manager rooted at outputDir, creating the
// directory recursively if needed
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		existing:  make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles records the files already present in the output
// directory. Leftover partial markers from an earlier failed run do not
// count as downloaded.
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), PartSuffix) {
			continue
		}
		m.existing[entry.Name()] = true
	}

	return nil
}

// FileNameForURL derives the local file name for an image URL: its final
// path segment. Two distinct URLs sharing a final segment map to the same
// file and the later download overwrites the earlier one; this mirrors the
// site's own naming and is a documented limitation, not corrected here.
func FileNameForURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid image URL %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("image URL %q has no usable file name", rawURL)
	}
	return name, nil
}

// Path returns the destination path for a file name
func (m *Manager) Path(filename string) string {
	return filepath.Join(m.outputDir, filename)
}

// IsDownloaded reports whether a file with the given name is already present
func (m *Manager) IsDownloaded(filename string) bool {
	m.mu.RLock()
	known := m.existing[filename]
	m.mu.RUnlock()
	if known {
		return true
	}

	// Double-check the filesystem; another worker or an earlier run may
	// have produced the file after the startup scan
	if _, err := os.Stat(m.Path(filename)); err == nil {
		m.mu.Lock()
		m.existing[filename] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// Save streams r into the destination for filename. Data goes to a partial
// marker first and is renamed into place only on full receipt, so a reader
// of the destination never observes a truncated file. On any error the
// marker is left behind for inspection.
func (m *Manager) Save(r io.Reader, filename string) error {
	dest := m.Path(filename)
	marker := dest + PartSuffix

	out, err := os.Create(marker)
	if err != nil {
		return fmt.Errorf("failed to create partial file: %w", err)
	}

	buf := make([]byte, copyChunkSize)
	_, err = io.CopyBuffer(out, r, buf)
	closeErr := out.Close()

	if err != nil {
		return fmt.Errorf("failed to write image data: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close partial file: %w", closeErr)
	}

	if err := os.Rename(marker, dest); err != nil {
		return fmt.Errorf("failed to promote partial file: %w", err)
	}

	m.mu.Lock()
	m.existing[filename] = true
	m.mu.Unlock()

	return nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// DownloadedCount returns the number of files known to be present
func (m *Manager) DownloadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.existing)
}
