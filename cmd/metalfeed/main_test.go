package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/metal-archives-client/internal/testutil"
	"github.com/Sternrassler/metal-archives-client/pkg/client"
	"github.com/Sternrassler/metal-archives-client/pkg/feed"
	"github.com/Sternrassler/metal-archives-client/pkg/models"
	"github.com/rs/zerolog"
)

var february = time.Date(2019, time.February, 27, 12, 0, 0, 0, time.UTC)

func newTestSite(t *testing.T) *testutil.MockSite {
	t.Helper()

	site := testutil.NewMockSite()
	t.Cleanup(site.Close)

	site.SetNews(testutil.NewsPosts(15), models.NewsPageSize)
	site.SetDataTable(testutil.BandAdditionsPath, testutil.BandRows(250))
	site.SetDataTable(testutil.BandUpdatesPath, testutil.BandRows(12))
	site.SetDataTable(testutil.LatestReviewsPath, testutil.ReviewRows(30))
	site.SetDataTable(testutil.UpcomingAlbumsPath, testutil.UpcomingRows(120))
	site.SetResponse(testutil.StatsPath, testutil.MockResponse{StatusCode: http.StatusOK, Body: testutil.StatsHTML})
	return site
}

func newTestServer(t *testing.T, site *testutil.MockSite, ping func(context.Context) error) *server {
	t.Helper()

	cfg := client.DefaultConfig("metalfeed-test/1.0")
	cfg.BaseURL = site.URL()
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	home := feed.New(c, feed.Config{
		BaseURL:       c.BaseURL(),
		Now:           func() time.Time { return february },
		ShortListSize: 3,
	}, nil)

	return newServer(home, ping, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var snap map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return snap
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, newTestSite(t), nil)

	w := do(t, srv.routes(), http.MethodGet, "/health")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestReadyEndpoint(t *testing.T) {
	site := newTestSite(t)

	srv := newTestServer(t, site, nil)
	if w := do(t, srv.routes(), http.MethodGet, "/ready"); w.Code != http.StatusOK {
		t.Errorf("Expected status 200 without redis, got %d", w.Code)
	}

	srv = newTestServer(t, site, func(context.Context) error { return errors.New("connection refused") })
	w := do(t, srv.routes(), http.MethodGet, "/ready")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "connection refused") {
		t.Errorf("Expected ping error in body, got %q", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	site := newTestSite(t)
	srv := newTestServer(t, site, nil)

	if err := srv.home.LoadMore(context.Background(), feed.SectionNews); err != nil {
		t.Fatalf("LoadMore failed: %v", err)
	}

	w := do(t, srv.routes(), http.MethodGet, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body, _ := io.ReadAll(w.Body)
	for _, name := range []string{"ma_requests_total", "ma_pagination_fetches_total", "ma_feed_section_loads_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("Expected %s in metrics output", name)
		}
	}
}

func TestSectionEndpoint(t *testing.T) {
	site := newTestSite(t)
	srv := newTestServer(t, site, nil)
	if err := srv.home.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	h := srv.routes()

	w := do(t, h, http.MethodGet, "/feed/band_additions?limit=3")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	snap := decodeSnapshot(t, w)
	if snap["count"] != float64(200) || snap["total"] != float64(250) || snap["has_more"] != true {
		t.Errorf("Unexpected snapshot header: %v", snap)
	}
	if snap["month"] != testutil.TestMonth {
		t.Errorf("Expected month %s, got %v", testutil.TestMonth, snap["month"])
	}
	if items, _ := snap["items"].([]any); len(items) != 3 {
		t.Errorf("Expected 3 items, got %d", len(items))
	}

	w = do(t, h, http.MethodGet, "/feed/statistics")
	snap = decodeSnapshot(t, w)
	if snap["statistic"] == nil {
		t.Errorf("Expected statistic in snapshot, got %v", snap)
	}

	w = do(t, h, http.MethodGet, "/feed")
	var index []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &index); err != nil {
		t.Fatalf("Failed to decode index: %v", err)
	}
	if len(index) != len(feed.Sections()) {
		t.Errorf("Expected %d sections, got %d", len(feed.Sections()), len(index))
	}
}

func TestSectionEndpoint_BadRequests(t *testing.T) {
	h := newTestServer(t, newTestSite(t), nil).routes()

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/feed/gigs", http.StatusNotFound},
		{http.MethodGet, "/feed/news?limit=-1", http.StatusBadRequest},
		{http.MethodGet, "/feed/news?limit=many", http.StatusBadRequest},
		{http.MethodPost, "/feed/gigs/more", http.StatusNotFound},
		{http.MethodPost, "/feed/statistics/more", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			if w := do(t, h, tt.method, tt.target); w.Code != tt.want {
				t.Errorf("Expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestMoreEndpoint(t *testing.T) {
	site := newTestSite(t)
	h := newTestServer(t, site, nil).routes()

	for i, want := range []float64{200, 250, 250} {
		w := do(t, h, http.MethodPost, "/feed/band_additions/more")
		if w.Code != http.StatusOK {
			t.Fatalf("call %d: expected status 200, got %d", i, w.Code)
		}
		if got := decodeSnapshot(t, w)["count"]; got != want {
			t.Errorf("call %d: expected count %v, got %v", i, want, got)
		}
	}

	if got := site.GetPathCount(testutil.BandAdditionsPath); got != 2 {
		t.Errorf("Expected 2 requests, got %d", got)
	}
}

func TestMoreEndpoint_NewsStopsAtShortPage(t *testing.T) {
	site := newTestSite(t)
	h := newTestServer(t, site, nil).routes()

	for i, want := range []float64{10, 15, 15} {
		w := do(t, h, http.MethodPost, "/feed/news/more")
		if w.Code != http.StatusOK {
			t.Fatalf("call %d: expected status 200, got %d", i, w.Code)
		}
		if got := decodeSnapshot(t, w)["count"]; got != want {
			t.Errorf("call %d: expected count %v, got %v", i, want, got)
		}
	}

	if got := site.GetRequestCount(); got != 2 {
		t.Errorf("Expected 2 news requests, got %d", got)
	}
}

func TestMoreEndpoint_TransportFailure(t *testing.T) {
	site := newTestSite(t)
	site.SetResponse(testutil.LatestReviewsPath, testutil.NewServerErrorResponse())
	h := newTestServer(t, site, nil).routes()

	w := do(t, h, http.MethodPost, "/feed/latest_reviews/more")
	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	site := newTestSite(t)
	srv := newTestServer(t, site, nil)
	h := srv.routes()

	w := do(t, h, http.MethodPost, "/feed/refresh")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"month":"2019-02"`) {
		t.Errorf("Expected month in body, got %q", w.Body.String())
	}

	// A failed section keeps its data.
	site.SetResponse(testutil.UpcomingAlbumsPath, testutil.NewServerErrorResponse())
	w = do(t, h, http.MethodPost, "/feed/refresh")
	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}
	if got := len(srv.home.UpcomingAlbums()); got != 100 {
		t.Errorf("Expected 100 upcoming albums kept, got %d", got)
	}
}

func TestFilterRows(t *testing.T) {
	rows := []row{
		{Title: "Dissection - Storm of the Light's Bane", Detail: "Full-length"},
		{Title: "Darkthrone - Transilvanian Hunger", Detail: "Full-length"},
		{Title: "Emperor - In the Nightside Eclipse", Detail: "Full-length"},
	}

	filtered := filterRows(rows, "dark")
	if len(filtered) != 1 || filtered[0].Title != rows[1].Title {
		t.Errorf("Expected only Darkthrone, got %v", filtered)
	}

	if got := filterRows(rows, "zzz"); len(got) != 0 {
		t.Errorf("Expected no matches, got %v", got)
	}
}

func TestPageConfig(t *testing.T) {
	cfg, err := pageConfig("https://example.org", true, "2019-02")
	if err != nil {
		t.Fatalf("pageConfig failed: %v", err)
	}
	if got := cfg.Options[models.OptionYearMonth]; got != "2019-02" {
		t.Errorf("Expected month option 2019-02, got %q", got)
	}

	if _, err := pageConfig("https://example.org", true, "Feb 2019"); err == nil {
		t.Error("Expected error for malformed month")
	}
	if _, err := pageConfig("https://example.org", false, "2019-02"); err == nil {
		t.Error("Expected error for month on a kind without months")
	}

	cfg, err = pageConfig("https://example.org", false, "")
	if err != nil || cfg.Options != nil {
		t.Errorf("Expected plain config, got %v, %v", cfg, err)
	}
}

func TestLookupKind(t *testing.T) {
	if _, kc, err := lookupKind("latest_reviews"); err != nil || !kc.monthly {
		t.Errorf("Expected monthly latest_reviews, got %v", err)
	}
	if _, _, err := lookupKind("statistics"); !errors.Is(err, feed.ErrNotPaged) {
		t.Errorf("Expected ErrNotPaged, got %v", err)
	}
	if _, _, err := lookupKind("gigs"); !errors.Is(err, feed.ErrUnknownSection) {
		t.Errorf("Expected ErrUnknownSection, got %v", err)
	}
}

func runCLI(t *testing.T, site *testutil.MockSite, args ...string) (string, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "metalfeed.yaml")
	content := "site:\n  base_url: \"" + site.URL() + "\"\n  user_agent: \"metalfeed-test/1.0\"\nlogging:\n  format: json\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", path}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	site := newTestSite(t)

	out, err := runCLI(t, site, "list", "band_additions", "--month", testutil.TestMonth, "--pages", "2")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "Recently added bands") {
		t.Errorf("Expected heading in output:\n%s", out)
	}
	if !strings.Contains(out, "250 of 250") {
		t.Errorf("Expected footer '250 of 250' in output:\n%s", out)
	}
	if strings.Contains(out, "more available") {
		t.Errorf("Expected no more pages:\n%s", out)
	}
}

func TestListCommand_Filter(t *testing.T) {
	site := newTestSite(t)

	out, err := runCLI(t, site, "list", "news", "--filter", "news 7")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "News 7") {
		t.Errorf("Expected 'News 7' in filtered output:\n%s", out)
	}
	if strings.Contains(out, "News 3 ") {
		t.Errorf("Expected 'News 3' filtered out:\n%s", out)
	}
}

func TestListCommand_UnknownKind(t *testing.T) {
	_, err := runCLI(t, newTestSite(t), "list", "gigs")
	if !errors.Is(err, feed.ErrUnknownSection) {
		t.Errorf("Expected ErrUnknownSection, got %v", err)
	}
}

func TestDumpCommand(t *testing.T) {
	site := newTestSite(t)

	out, err := runCLI(t, site, "dump", "upcoming_albums")
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}

	var albums []models.UpcomingAlbum
	if err := json.Unmarshal([]byte(out), &albums); err != nil {
		t.Fatalf("Failed to decode dump: %v", err)
	}
	if len(albums) != 120 {
		t.Errorf("Expected 120 albums, got %d", len(albums))
	}
}

func TestStatsCommand(t *testing.T) {
	site := newTestSite(t)

	out, err := runCLI(t, site, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if !strings.Contains(out, "142,839 bands") {
		t.Errorf("Expected summary in output:\n%s", out)
	}
}

func TestHomeCommand(t *testing.T) {
	site := newTestSite(t)

	out, err := runCLI(t, site, "home")
	if err != nil {
		t.Fatalf("home failed: %v", err)
	}
	for _, s := range feed.Sections() {
		if !strings.Contains(out, s.Title()) {
			t.Errorf("Expected %q in output", s.Title())
		}
	}
}
