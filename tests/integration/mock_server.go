package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
)

// fakeJPEG is a minimal payload served for every image request. The bytes
// only need to survive a round trip to disk, not decode as a real JPEG.
var fakeJPEG = []byte("\xff\xd8\xff\xe0fake-jpeg-body\xff\xd9")

// MockFotoshareServer simulates the fotoshare.co pages the downloader
// touches: the sign-in form handler, album pages, photo permalink pages,
// and the image files themselves.
type MockFotoshareServer struct {
	server *httptest.Server

	mu         sync.Mutex
	albums     map[string]string // path -> album page HTML
	permalinks map[string]string // path -> permalink page HTML

	validEmail    string
	validPassword string

	loginAttempts  int64
	imageRequests  int64
	errorResponses map[string]int
}

// NewMockFotoshareServer starts a mock server accepting the given
// credentials on its /login endpoint.
func NewMockFotoshareServer(email, password string) *MockFotoshareServer {
	m := &MockFotoshareServer{
		albums:         make(map[string]string),
		permalinks:     make(map[string]string),
		validEmail:     email,
		validPassword:  password,
		errorResponses: make(map[string]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handleRequest))
	return m
}

// GetURL returns the mock server's base URL
func (m *MockFotoshareServer) GetURL() string {
	return m.server.URL
}

// Close shuts down the mock server
func (m *MockFotoshareServer) Close() {
	m.server.Close()
}

// AddAlbum registers an album page at the given path serving the given HTML
func (m *MockFotoshareServer) AddAlbum(path, html string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.albums[path] = html
}

// AddPermalink registers a photo permalink page at the given path
func (m *MockFotoshareServer) AddPermalink(path, html string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.permalinks[path] = html
}

// SetErrorResponse makes the server answer the given path with the given
// status code instead of its normal response
func (m *MockFotoshareServer) SetErrorResponse(path string, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorResponses[path] = statusCode
}

// GetLoginAttempts returns how many POSTs hit the sign-in endpoint
func (m *MockFotoshareServer) GetLoginAttempts() int64 {
	return atomic.LoadInt64(&m.loginAttempts)
}

// GetImageRequests returns how many image files were requested
func (m *MockFotoshareServer) GetImageRequests() int64 {
	return atomic.LoadInt64(&m.imageRequests)
}

// ResetCounters resets all request counters
func (m *MockFotoshareServer) ResetCounters() {
	atomic.StoreInt64(&m.loginAttempts, 0)
	atomic.StoreInt64(&m.imageRequests, 0)
}

func (m *MockFotoshareServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	if code, ok := m.errorResponses[r.URL.Path]; ok {
		m.mu.Unlock()
		http.Error(w, http.StatusText(code), code)
		return
	}
	album, isAlbum := m.albums[r.URL.Path]
	permalink, isPermalink := m.permalinks[r.URL.Path]
	m.mu.Unlock()

	switch {
	case r.URL.Path == "/login" && r.Method == http.MethodPost:
		m.handleLogin(w, r)
	case isAlbum:
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, album)
	case isPermalink:
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, permalink)
	case strings.HasSuffix(strings.ToLower(r.URL.Path), ".jpg"),
		strings.HasSuffix(strings.ToLower(r.URL.Path), ".jpeg"),
		strings.HasSuffix(strings.ToLower(r.URL.Path), ".png"),
		strings.HasSuffix(strings.ToLower(r.URL.Path), ".gif"):
		atomic.AddInt64(&m.imageRequests, 1)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(fakeJPEG)
	default:
		http.NotFound(w, r)
	}
}

// handleLogin mimics fotoshare.co's sign-in behavior: wrong credentials
// still get an HTTP 200, with an error message embedded in the page body.
func (m *MockFotoshareServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&m.loginAttempts, 1)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	w.Header().Set("Content-Type", "text/html")
	if email != m.validEmail || password != m.validPassword {
		fmt.Fprint(w, `<html><body><div class="alert">Invalid email or password.</div></body></html>`)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "session", Value: "mock-session-token", Path: "/"})
	fmt.Fprint(w, `<html><body><p>Welcome back!</p></body></html>`)
}
