// Package testutil provides a mock Metal Archives site for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSite is a configurable mock Metal Archives server for testing.
type MockSite struct {
	server         *httptest.Server
	mu             sync.RWMutex
	handlers       map[string]http.HandlerFunc
	prefixHandlers map[string]http.HandlerFunc

	// Tracking
	requestCount      int
	conditionalCount  int
	pathCounts        map[string]int
	lastRequestHeader http.Header
}

// NewMockSite creates and starts a new mock site.
func NewMockSite() *MockSite {
	mock := &MockSite{
		handlers:       make(map[string]http.HandlerFunc),
		prefixHandlers: make(map[string]http.HandlerFunc),
		pathCounts:     make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[r.URL.Path]++
		mock.lastRequestHeader = r.Header.Clone()
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			mock.conditionalCount++
		}
		handler := mock.lookup(r.URL.Path)
		mock.mu.Unlock()

		if handler != nil {
			handler(w, r)
			return
		}
		http.NotFound(w, r)
	}))

	return mock
}

// lookup must be called with mu held.
func (m *MockSite) lookup(path string) http.HandlerFunc {
	if h, ok := m.handlers[path]; ok {
		return h
	}

	var best string
	for prefix := range m.prefixHandlers {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return nil
	}
	return m.prefixHandlers[best]
}

// URL returns the mock server URL.
func (m *MockSite) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSite) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSite) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.conditionalCount = 0
	m.pathCounts = make(map[string]int)
	m.lastRequestHeader = nil
}

// SetHandler sets a custom handler for an exact path.
func (m *MockSite) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetPrefixHandler sets a handler for every path starting with prefix.
func (m *MockSite) SetPrefixHandler(prefix string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefixHandlers[prefix] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockSite) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, resp.handler())
}

func (resp MockResponse) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			_, _ = w.Write([]byte(resp.Body))
		}
	}
}

// SetDataTable serves rows as a DataTables endpoint at path, honoring the
// iDisplayStart and iDisplayLength query parameters. The reported total is
// len(rows).
func (m *MockSite) SetDataTable(path string, rows [][]string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("iDisplayStart"))
		length, err := strconv.Atoi(r.URL.Query().Get("iDisplayLength"))
		if err != nil || length <= 0 {
			length = len(rows)
		}

		end := start + length
		if start > len(rows) {
			start = len(rows)
		}
		if end > len(rows) {
			end = len(rows)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(DataTableJSON(rows[start:end], len(rows))))
	})
}

// SetNews serves posts on the paged news endpoint, perPage posts a page.
// Pages past the end are served empty.
func (m *MockSite) SetNews(posts []NewsPost, perPage int) {
	m.SetPrefixHandler("/news/index/page/", func(w http.ResponseWriter, r *http.Request) {
		number, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/news/index/page/"))
		if err != nil || number < 1 {
			http.NotFound(w, r)
			return
		}

		start := (number - 1) * perPage
		end := start + perPage
		if start > len(posts) {
			start = len(posts)
		}
		if end > len(posts) {
			end = len(posts)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(NewsHTML(posts[start:end]...)))
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockSite) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// GetPathCount returns the number of requests made for one path.
func (m *MockSite) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// GetConditionalCount returns the number of conditional requests.
func (m *MockSite) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockSite) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// DataTableJSON renders a DataTables envelope. A negative total omits
// iTotalRecords.
func DataTableJSON(rows [][]string, total int) string {
	if rows == nil {
		rows = [][]string{}
	}

	envelope := map[string]any{
		"error":  "",
		"sEcho":  1,
		"aaData": rows,
	}
	if total >= 0 {
		envelope["iTotalRecords"] = total
		envelope["iTotalDisplayRecords"] = total
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// NewHealthyResponse creates a 200 OK response with cache validators.
func NewHealthyResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"ETag":         `"test-etag-123"`,
			"Expires":      time.Now().Add(5 * time.Minute).Format(http.TimeFormat),
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(retryAfter string) MockResponse {
	resp := MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       "Too Many Requests",
		Headers:    map[string]string{"Content-Type": "text/plain"},
	}
	if retryAfter != "" {
		resp.Headers["Retry-After"] = retryAfter
	}
	return resp
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       "Internal Server Error",
		Headers:    map[string]string{"Content-Type": "text/plain"},
	}
}

// NewConditionalHandler answers 304 when If-None-Match equals etag.
func NewConditionalHandler(etag string, data string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Expires", time.Now().Add(5*time.Minute).Format(http.TimeFormat))

		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(data))
	}
}
