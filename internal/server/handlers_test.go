package server

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Kush-Singh-26/lectern/archive/config"
	"github.com/Kush-Singh-26/lectern/archive/render"
	"github.com/Kush-Singh-26/lectern/archive/service"
	"github.com/Kush-Singh-26/lectern/archive/testutil"
)

const testRoot = "/articles"

// envelope mirrors the response wrapper with the payload left raw so each
// test can decode it into the shape it expects.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type listingBody struct {
	Items []struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	} `json:"items"`
	TotalPages int `json:"total_pages"`
}

func newTestServer(t *testing.T, articles int) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.ArticlesDir = testRoot

	fs := testutil.NewArticlesFs(testRoot)
	if err := testutil.WriteArticleTree(fs, testRoot, articles); err != nil {
		t.Fatalf("failed to write fixtures: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := service.New(cfg, fs, render.New(cfg), nil, logger)
	if err != nil {
		t.Fatalf("service.New failed: %v", err)
	}
	return New(cfg, svc, logger)
}

func doRequest(t *testing.T, s *Server, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestListArticles(t *testing.T) {
	s := newTestServer(t, 3)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/articles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("success should be true")
	}

	var body listingBody
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if len(body.Items) != 3 {
		t.Errorf("items = %d, want 3", len(body.Items))
	}
	if body.TotalPages != 1 {
		t.Errorf("total_pages = %d, want 1", body.TotalPages)
	}
}

func TestListPagination(t *testing.T) {
	s := newTestServer(t, 5)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/articles?limit=2&page=0", nil)
	env := decodeEnvelope(t, rec)

	var body listingBody
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if len(body.Items) != 2 {
		t.Errorf("items = %d, want 2", len(body.Items))
	}
	if body.TotalPages != 3 {
		t.Errorf("total_pages = %d, want 3", body.TotalPages)
	}

	// A page past the end is an empty listing, not an error.
	rec = doRequest(t, s, http.MethodGet, "/api/v1/articles?limit=2&page=9", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env = decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if len(body.Items) != 0 {
		t.Errorf("items past the end = %d, want 0", len(body.Items))
	}
}

func TestInvalidPagination(t *testing.T) {
	s := newTestServer(t, 2)

	for _, target := range []string{
		"/api/v1/articles?limit=abc",
		"/api/v1/articles?page=-1",
		"/api/v1/articles?limit=0",
		"/api/v1/articles?limit=-5",
	} {
		rec := doRequest(t, s, http.MethodGet, target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestGetArticle(t *testing.T) {
	s := newTestServer(t, 2)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/articles/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("response should carry an ETag")
	}

	env := decodeEnvelope(t, rec)
	var art struct {
		ID      int    `json:"id"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(env.Data, &art); err != nil {
		t.Fatalf("failed to decode article: %v", err)
	}
	if art.ID != 1 || !strings.Contains(art.Content, "<h1") {
		t.Errorf("unexpected article payload: %+v", art)
	}

	// A matching validator short-circuits to 304.
	rec = doRequest(t, s, http.MethodGet, "/api/v1/articles/1",
		http.Header{"If-None-Match": []string{etag}})
	if rec.Code != http.StatusNotModified {
		t.Errorf("status with matching ETag = %d, want 304", rec.Code)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	s := newTestServer(t, 1)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/articles/99", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("success should be false")
	}
	if env.Message != "article not found" {
		t.Errorf("message = %q, want %q", env.Message, "article not found")
	}
}

func TestGetArticleInvalidID(t *testing.T) {
	s := newTestServer(t, 1)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/articles/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListByTag(t *testing.T) {
	s := newTestServer(t, 3)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/articles/tags/go", nil)
	env := decodeEnvelope(t, rec)

	var body listingBody
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if len(body.Items) != 3 {
		t.Errorf("items = %d, want 3", len(body.Items))
	}

	// Unknown tags are an empty page, not a 404.
	rec = doRequest(t, s, http.MethodGet, "/api/v1/articles/tags/unknown", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env = decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if len(body.Items) != 0 {
		t.Errorf("unknown tag items = %d, want 0", len(body.Items))
	}
}

func TestListByKeyword(t *testing.T) {
	s := newTestServer(t, 2)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/articles/keywords/fixture", nil)
	env := decodeEnvelope(t, rec)

	var body listingBody
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if len(body.Items) != 2 {
		t.Errorf("items = %d, want 2", len(body.Items))
	}
}

func TestPagesEndpoints(t *testing.T) {
	s := newTestServer(t, 5)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/articles/pages?limit=2", nil)
	env := decodeEnvelope(t, rec)
	var pages int
	if err := json.Unmarshal(env.Data, &pages); err != nil {
		t.Fatalf("failed to decode pages: %v", err)
	}
	if pages != 3 {
		t.Errorf("pages = %d, want 3", pages)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/articles/tags/go/pages?limit=2", nil)
	env = decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &pages); err != nil {
		t.Fatalf("failed to decode pages: %v", err)
	}
	if pages != 3 {
		t.Errorf("tag pages = %d, want 3", pages)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/articles/pages?limit=0", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCacheStatsFlow(t *testing.T) {
	s := newTestServer(t, 1)

	stats := func() (hits, misses uint64, rate float64) {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/articles/cache/stats", nil)
		env := decodeEnvelope(t, rec)
		var body struct {
			HitCount  uint64  `json:"hit_count"`
			MissCount uint64  `json:"miss_count"`
			HitRate   float64 `json:"hit_rate"`
		}
		if err := json.Unmarshal(env.Data, &body); err != nil {
			t.Fatalf("failed to decode stats: %v", err)
		}
		return body.HitCount, body.MissCount, body.HitRate
	}

	if h, m, _ := stats(); h != 0 || m != 0 {
		t.Fatalf("fresh stats = %d/%d, want 0/0", h, m)
	}

	doRequest(t, s, http.MethodGet, "/api/v1/articles/1", nil) // miss
	doRequest(t, s, http.MethodGet, "/api/v1/articles/1", nil) // hit

	h, m, rate := stats()
	if h != 1 || m != 1 {
		t.Errorf("stats = %d/%d hits/misses, want 1/1", h, m)
	}
	if rate != 50.0 {
		t.Errorf("hit_rate = %v, want 50.0", rate)
	}

	rec := doRequest(t, s, http.MethodPost, "/api/v1/articles/cache/stats/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d, want 200", rec.Code)
	}
	if h, m, _ := stats(); h != 0 || m != 0 {
		t.Errorf("stats after reset = %d/%d, want 0/0", h, m)
	}
}

func TestClearCache(t *testing.T) {
	s := newTestServer(t, 1)

	rec := doRequest(t, s, http.MethodDelete, "/api/v1/articles/cache", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Message != "cache cleared" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestRebuildIndexEndpoint(t *testing.T) {
	s := newTestServer(t, 3)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/articles/index/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var report struct {
		Indexed int `json:"indexed"`
	}
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Indexed != 3 {
		t.Errorf("indexed = %d, want 3", report.Indexed)
	}
}

func TestRefreshArticleEndpoint(t *testing.T) {
	s := newTestServer(t, 2)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/articles/1/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/articles/99/refresh", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGzipResponses(t *testing.T) {
	s := newTestServer(t, 1)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/articles",
		http.Header{"Accept-Encoding": []string{"gzip"}})
	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}

	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("failed to open gzip body: %v", err)
	}
	defer func() { _ = gz.Close() }()

	raw, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("failed to read gzip body: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode gzip payload: %v", err)
	}
	if !env.Success {
		t.Error("success should be true")
	}
}
