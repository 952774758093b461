package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fotofetch/pkg/config"
)

const (
	testEmail    = "user@example.com"
	testPassword = "hunter2"
)

// TestHelper provides common test utilities
type TestHelper struct {
	t            *testing.T
	mockServer   *MockFotoshareServer
	tempDir      string
	cleanupFuncs []func()
}

// NewTestHelper creates a new test helper
func NewTestHelper(t *testing.T) *TestHelper {
	tempDir, err := os.MkdirTemp("", "fotofetch_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	return &TestHelper{
		t:            t,
		tempDir:      tempDir,
		cleanupFuncs: []func(){},
	}
}

// SetupMockServer initializes the mock fotoshare server
func (h *TestHelper) SetupMockServer() *MockFotoshareServer {
	h.mockServer = NewMockFotoshareServer(testEmail, testPassword)
	h.AddCleanup(h.mockServer.Close)
	return h.mockServer
}

// GetTempDir returns the temporary directory for test files
func (h *TestHelper) GetTempDir() string {
	return h.tempDir
}

// CreateTempSubDir creates a subdirectory in the temp directory
func (h *TestHelper) CreateTempSubDir(name string) string {
	dir := filepath.Join(h.tempDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		h.t.Fatalf("Failed to create temp subdir: %v", err)
	}
	return dir
}

// AddCleanup adds a cleanup function to be called when test ends
func (h *TestHelper) AddCleanup(fn func()) {
	h.cleanupFuncs = append(h.cleanupFuncs, fn)
}

// Cleanup runs all cleanup functions
func (h *TestHelper) Cleanup() {
	for i := len(h.cleanupFuncs) - 1; i >= 0; i-- {
		h.cleanupFuncs[i]()
	}
	os.RemoveAll(h.tempDir)
}

// CreateTestConfig creates a configuration pointed at the mock server
func (h *TestHelper) CreateTestConfig() *config.Config {
	cfg := config.DefaultConfig()

	cfg.Fotoshare.BaseURL = h.mockServer.GetURL()
	cfg.Fotoshare.UserAgent = "TestBot/1.0"

	cfg.Output.Directory = h.CreateTempSubDir("downloads")

	cfg.Download.Workers = 3
	cfg.Download.AlbumTimeout = 5 * time.Second
	cfg.Download.PageTimeout = 5 * time.Second
	cfg.Download.DownloadTimeout = 5 * time.Second

	cfg.Logging.Level = "error"

	return cfg
}

// AssertFileExists checks if a file exists
func (h *TestHelper) AssertFileExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		h.t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func (h *TestHelper) AssertFileNotExists(path string) {
	if _, err := os.Stat(path); err == nil {
		h.t.Errorf("Expected file to not exist: %s", path)
	}
}

// directAlbumPage builds an album page linking full-size images directly.
// The thumbnail src deliberately carries a non-image extension so only the
// anchor target counts as a download candidate.
func directAlbumPage(base string, names ...string) string {
	page := "<html><body><div class=\"gallery\">"
	for _, name := range names {
		page += fmt.Sprintf(`<a href="%s/images/%s"><img src="%s/thumbs/%s.thumb"></a>`, base, name, base, name)
	}
	page += "</div></body></html>"
	return page
}

// thumbnailAlbumPage builds an album page that only links photo permalinks,
// forcing the resolver through its permalink traversal
func thumbnailAlbumPage(base string, permalinks ...string) string {
	page := "<html><body><div class=\"gallery\">"
	for _, p := range permalinks {
		page += fmt.Sprintf(`<a href="%s%s"><img src="%s/thumbs%s.thumb"></a>`, base, p, base, p)
	}
	page += "</div></body></html>"
	return page
}

// permalinkPage builds a photo page whose first image is the full-size one
func permalinkPage(base, imageName string) string {
	return fmt.Sprintf(`<html><body><img src="%s/images/%s" class="photo"></body></html>`, base, imageName)
}
