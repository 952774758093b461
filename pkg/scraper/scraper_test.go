package scraper

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"fotofetch/pkg/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAlbumClient is a mock implementation of AlbumClient
type mockAlbumClient struct {
	login        func(ctx context.Context, email, password string) error
	pages        map[string]string
	streamData   string
	streamErr    error
	loginCalls   int32
	fetchCalls   int32
	streamCalls  int32
	streamErrFor map[string]bool
	mu           sync.Mutex
}

func (m *mockAlbumClient) Login(ctx context.Context, email, password string) error {
	atomic.AddInt32(&m.loginCalls, 1)
	if m.login != nil {
		return m.login(ctx, email, password)
	}
	return nil
}

func (m *mockAlbumClient) GetDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	atomic.AddInt32(&m.fetchCalls, 1)
	m.mu.Lock()
	html, ok := m.pages[pageURL]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no page for %s", pageURL)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (m *mockAlbumClient) GetStream(ctx context.Context, url string) (io.ReadCloser, error) {
	atomic.AddInt32(&m.streamCalls, 1)
	m.mu.Lock()
	failThis := m.streamErrFor[url]
	m.mu.Unlock()
	if m.streamErr != nil || failThis {
		if m.streamErr != nil {
			return nil, m.streamErr
		}
		return nil, fmt.Errorf("transfer refused for %s", url)
	}
	data := m.streamData
	if data == "" {
		data = "image data"
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.Directory = t.TempDir()
	cfg.Download.Workers = 2
	return cfg
}

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig()

	s, err := New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.NotNil(t, s.client)
	assert.Equal(t, cfg, s.config)
}

func TestDownloadAlbumSuccess(t *testing.T) {
	albumURL := "https://fotoshare.co/i/album1"
	client := &mockAlbumClient{
		pages: map[string]string{
			albumURL: `<html><body>
				<a href="https://cdn.example.com/full/a.jpg">a</a>
				<a href="https://cdn.example.com/full/b.png">b</a>
			</body></html>`,
		},
		streamData: "image bytes",
	}

	cfg := testConfig(t)
	s, err := New(cfg)
	require.NoError(t, err)
	s.client = client

	summary, err := s.DownloadAlbum(context.Background(), albumURL)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Downloaded)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)

	for _, name := range []string{"a.jpg", "b.png"} {
		data, err := os.ReadFile(filepath.Join(cfg.Output.Directory, name))
		require.NoError(t, err)
		assert.Equal(t, "image bytes", string(data))
	}

	// No credentials configured, so no login attempt
	assert.Equal(t, int32(0), atomic.LoadInt32(&client.loginCalls))
}

func TestDownloadAlbumSkipsExisting(t *testing.T) {
	albumURL := "https://fotoshare.co/i/album1"
	client := &mockAlbumClient{
		pages: map[string]string{
			albumURL: `<html><body>
				<a href="https://cdn.example.com/full/a.jpg">a</a>
				<a href="https://cdn.example.com/full/b.jpg">b</a>
			</body></html>`,
		},
	}

	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Output.Directory, "a.jpg"), []byte("old"), 0644))

	s, err := New(cfg)
	require.NoError(t, err)
	s.client = client

	summary, err := s.DownloadAlbum(context.Background(), albumURL)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Downloaded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)

	// The existing file was not re-fetched or overwritten
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.streamCalls))
	data, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestDownloadAlbumLoginFailure(t *testing.T) {
	client := &mockAlbumClient{
		login: func(ctx context.Context, email, password string) error {
			return fmt.Errorf("authentication rejected")
		},
	}

	cfg := testConfig(t)
	cfg.Fotoshare.Email = "user@example.com"
	cfg.Fotoshare.Password = "secret"

	s, err := New(cfg)
	require.NoError(t, err)
	s.client = client

	summary, err := s.DownloadAlbum(context.Background(), "https://fotoshare.co/i/album1")
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "login failed")

	// Resolution never starts after a failed login
	assert.Equal(t, int32(0), atomic.LoadInt32(&client.fetchCalls))
}

func TestDownloadAlbumNoImages(t *testing.T) {
	albumURL := "https://fotoshare.co/i/empty"
	client := &mockAlbumClient{
		pages: map[string]string{
			albumURL: `<html><body><p>nothing here</p></body></html>`,
		},
	}

	cfg := testConfig(t)
	s, err := New(cfg)
	require.NoError(t, err)
	s.client = client

	summary, err := s.DownloadAlbum(context.Background(), albumURL)
	require.ErrorIs(t, err, ErrNoImages)
	assert.Nil(t, summary)
}

func TestDownloadAlbumResolveFailure(t *testing.T) {
	client := &mockAlbumClient{pages: map[string]string{}}

	cfg := testConfig(t)
	s, err := New(cfg)
	require.NoError(t, err)
	s.client = client

	summary, err := s.DownloadAlbum(context.Background(), "https://fotoshare.co/i/gone")
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "failed to resolve album")
}

func TestDownloadAlbumTransferFailuresAreNotFatal(t *testing.T) {
	albumURL := "https://fotoshare.co/i/album1"
	client := &mockAlbumClient{
		pages: map[string]string{
			albumURL: `<html><body>
				<a href="https://cdn.example.com/full/ok.jpg">ok</a>
				<a href="https://cdn.example.com/full/bad.jpg">bad</a>
			</body></html>`,
		},
		streamErrFor: map[string]bool{
			"https://cdn.example.com/full/bad.jpg": true,
		},
	}

	cfg := testConfig(t)
	s, err := New(cfg)
	require.NoError(t, err)
	s.client = client

	summary, err := s.DownloadAlbum(context.Background(), albumURL)
	require.NoError(t, err, "per-item failures must not fail the run")

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Downloaded)
	assert.Equal(t, 1, summary.Failed)

	_, statErr := os.Stat(filepath.Join(cfg.Output.Directory, "ok.jpg"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(cfg.Output.Directory, "bad.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadAlbumThumbnailFallback(t *testing.T) {
	albumURL := "https://fotoshare.co/i/album1"
	client := &mockAlbumClient{
		pages: map[string]string{
			albumURL: `<html><body>
				<a href="/p/abc"><img src="/thumb/abc.webp"></a>
			</body></html>`,
			"https://fotoshare.co/p/abc": `<html><body>
				<img src="https://cdn.example.com/full/abc.jpg">
			</body></html>`,
		},
	}

	cfg := testConfig(t)
	s, err := New(cfg)
	require.NoError(t, err)
	s.client = client

	summary, err := s.DownloadAlbum(context.Background(), albumURL)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Downloaded)

	_, statErr := os.Stat(filepath.Join(cfg.Output.Directory, "abc.jpg"))
	assert.NoError(t, statErr)
}
