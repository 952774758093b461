package integration

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"fotofetch/pkg/scraper"
)

// TestDownloadPublicAlbum downloads an album whose page links the full-size
// images directly, without any authentication
func TestDownloadPublicAlbum(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	mockServer := helper.SetupMockServer()
	base := mockServer.GetURL()
	mockServer.AddAlbum("/a/vacation", directAlbumPage(base, "beach.jpg", "sunset.jpg", "dunes.png"))

	cfg := helper.CreateTestConfig()

	s, err := scraper.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create scraper: %v", err)
	}

	summary, err := s.DownloadAlbum(context.Background(), base+"/a/vacation")
	if err != nil {
		t.Fatalf("DownloadAlbum failed: %v", err)
	}

	if summary.Total != 3 || summary.Downloaded != 3 {
		t.Errorf("Expected 3/3 downloaded, got total=%d downloaded=%d failed=%d",
			summary.Total, summary.Downloaded, summary.Failed)
	}
	if mockServer.GetLoginAttempts() != 0 {
		t.Errorf("Expected no login attempts for public album, got %d", mockServer.GetLoginAttempts())
	}
	if mockServer.GetImageRequests() != 3 {
		t.Errorf("Expected exactly 3 image requests (one per anchor), got %d", mockServer.GetImageRequests())
	}

	for _, name := range []string{"beach.jpg", "sunset.jpg", "dunes.png"} {
		path := filepath.Join(cfg.Output.Directory, name)
		helper.AssertFileExists(path)

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		if !bytes.Equal(data, fakeJPEG) {
			t.Errorf("File %s content does not match served bytes", name)
		}
	}
}

// TestThumbnailFallback downloads an album that only links photo permalinks,
// so every image must be discovered through its own page
func TestThumbnailFallback(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	mockServer := helper.SetupMockServer()
	base := mockServer.GetURL()
	mockServer.AddAlbum("/a/wedding", thumbnailAlbumPage(base, "/p/abc1", "/p/abc2"))
	mockServer.AddPermalink("/p/abc1", permalinkPage(base, "ceremony.jpg"))
	mockServer.AddPermalink("/p/abc2", permalinkPage(base, "reception.jpg"))

	cfg := helper.CreateTestConfig()

	s, err := scraper.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create scraper: %v", err)
	}

	summary, err := s.DownloadAlbum(context.Background(), base+"/a/wedding")
	if err != nil {
		t.Fatalf("DownloadAlbum failed: %v", err)
	}

	if summary.Downloaded != 2 {
		t.Errorf("Expected 2 downloads, got %d", summary.Downloaded)
	}
	helper.AssertFileExists(filepath.Join(cfg.Output.Directory, "ceremony.jpg"))
	helper.AssertFileExists(filepath.Join(cfg.Output.Directory, "reception.jpg"))
}

// TestThumbnailFallbackSkipsBrokenPage verifies that one failing photo page
// does not abort the remaining permalinks
func TestThumbnailFallbackSkipsBrokenPage(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	mockServer := helper.SetupMockServer()
	base := mockServer.GetURL()
	mockServer.AddAlbum("/a/mixed", thumbnailAlbumPage(base, "/p/ok1", "/p/bad", "/p/ok2"))
	mockServer.AddPermalink("/p/ok1", permalinkPage(base, "first.jpg"))
	mockServer.AddPermalink("/p/ok2", permalinkPage(base, "second.jpg"))
	mockServer.SetErrorResponse("/p/bad", http.StatusInternalServerError)

	cfg := helper.CreateTestConfig()

	s, err := scraper.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create scraper: %v", err)
	}

	summary, err := s.DownloadAlbum(context.Background(), base+"/a/mixed")
	if err != nil {
		t.Fatalf("DownloadAlbum failed: %v", err)
	}

	if summary.Downloaded != 2 {
		t.Errorf("Expected 2 downloads despite broken page, got %d", summary.Downloaded)
	}
	helper.AssertFileExists(filepath.Join(cfg.Output.Directory, "first.jpg"))
	helper.AssertFileExists(filepath.Join(cfg.Output.Directory, "second.jpg"))
}

// TestLoginThenDownload authenticates with valid credentials before
// downloading a private album
func TestLoginThenDownload(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	mockServer := helper.SetupMockServer()
	base := mockServer.GetURL()
	mockServer.AddAlbum("/a/private", directAlbumPage(base, "secret.jpg"))

	cfg := helper.CreateTestConfig()
	cfg.Fotoshare.Email = testEmail
	cfg.Fotoshare.Password = testPassword

	s, err := scraper.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create scraper: %v", err)
	}

	summary, err := s.DownloadAlbum(context.Background(), base+"/a/private")
	if err != nil {
		t.Fatalf("DownloadAlbum failed: %v", err)
	}

	if mockServer.GetLoginAttempts() != 1 {
		t.Errorf("Expected exactly 1 login attempt, got %d", mockServer.GetLoginAttempts())
	}
	if summary.Downloaded != 1 {
		t.Errorf("Expected 1 download, got %d", summary.Downloaded)
	}
	helper.AssertFileExists(filepath.Join(cfg.Output.Directory, "secret.jpg"))
}

// TestLoginRejectedOnOKStatus covers the site answering a bad password with
// an HTTP 200 page containing an error message: the run must abort before
// any image is requested
func TestLoginRejectedOnOKStatus(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	mockServer := helper.SetupMockServer()
	base := mockServer.GetURL()
	mockServer.AddAlbum("/a/private", directAlbumPage(base, "secret.jpg"))

	cfg := helper.CreateTestConfig()
	cfg.Fotoshare.Email = testEmail
	cfg.Fotoshare.Password = "wrong password"

	s, err := scraper.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create scraper: %v", err)
	}

	_, err = s.DownloadAlbum(context.Background(), base+"/a/private")
	if err == nil {
		t.Fatal("Expected DownloadAlbum to fail on rejected credentials")
	}

	if mockServer.GetLoginAttempts() != 1 {
		t.Errorf("Expected exactly 1 login attempt, got %d", mockServer.GetLoginAttempts())
	}
	if mockServer.GetImageRequests() != 0 {
		t.Errorf("Expected no image requests after failed login, got %d", mockServer.GetImageRequests())
	}
	helper.AssertFileNotExists(filepath.Join(cfg.Output.Directory, "secret.jpg"))
}

// TestRerunSkipsExistingFiles runs the same album twice and verifies the
// second run touches no image on the server
func TestRerunSkipsExistingFiles(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	mockServer := helper.SetupMockServer()
	base := mockServer.GetURL()
	mockServer.AddAlbum("/a/vacation", directAlbumPage(base, "beach.jpg", "sunset.jpg"))

	cfg := helper.CreateTestConfig()

	s, err := scraper.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create scraper: %v", err)
	}

	first, err := s.DownloadAlbum(context.Background(), base+"/a/vacation")
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if first.Downloaded != 2 {
		t.Fatalf("Expected 2 downloads on first run, got %d", first.Downloaded)
	}

	mockServer.ResetCounters()

	s2, err := scraper.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create second scraper: %v", err)
	}
	second, err := s2.DownloadAlbum(context.Background(), base+"/a/vacation")
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if second.Skipped != 2 || second.Downloaded != 0 {
		t.Errorf("Expected 2 skipped on rerun, got downloaded=%d skipped=%d",
			second.Downloaded, second.Skipped)
	}
	if mockServer.GetImageRequests() != 0 {
		t.Errorf("Expected no image requests on rerun, got %d", mockServer.GetImageRequests())
	}
}

// TestEmptyAlbum verifies that an album yielding no image URLs is reported
// as an error rather than a silent no-op
func TestEmptyAlbum(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	mockServer := helper.SetupMockServer()
	mockServer.AddAlbum("/a/empty", "<html><body><p>Nothing here yet.</p></body></html>")

	cfg := helper.CreateTestConfig()

	s, err := scraper.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create scraper: %v", err)
	}

	_, err = s.DownloadAlbum(context.Background(), mockServer.GetURL()+"/a/empty")
	if !errors.Is(err, scraper.ErrNoImages) {
		t.Errorf("Expected ErrNoImages, got %v", err)
	}
}

// TestTransferFailuresAreNotFatal verifies that a failing image download is
// counted in the summary without failing the run
func TestTransferFailuresAreNotFatal(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	mockServer := helper.SetupMockServer()
	base := mockServer.GetURL()
	mockServer.AddAlbum("/a/flaky", directAlbumPage(base, "good.jpg", "broken.jpg"))
	mockServer.SetErrorResponse("/images/broken.jpg", http.StatusNotFound)

	cfg := helper.CreateTestConfig()

	s, err := scraper.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create scraper: %v", err)
	}

	summary, err := s.DownloadAlbum(context.Background(), base+"/a/flaky")
	if err != nil {
		t.Fatalf("DownloadAlbum failed: %v", err)
	}

	if summary.Downloaded != 1 || summary.Failed != 1 {
		t.Errorf("Expected 1 downloaded and 1 failed, got downloaded=%d failed=%d",
			summary.Downloaded, summary.Failed)
	}
	helper.AssertFileExists(filepath.Join(cfg.Output.Directory, "good.jpg"))
	helper.AssertFileNotExists(filepath.Join(cfg.Output.Directory, "broken.jpg"))
}
