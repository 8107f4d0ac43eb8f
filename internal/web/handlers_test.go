package web

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/RadioRCA/internal/archive"
	"github.com/JonMunkholm/RadioRCA/internal/config"
	"github.com/JonMunkholm/RadioRCA/internal/history"
	"github.com/JonMunkholm/RadioRCA/internal/ingest"
	"github.com/JonMunkholm/RadioRCA/internal/rca"
	"github.com/JonMunkholm/RadioRCA/internal/schema"
)

// Same geometry as the engine tests: the user stands at (57.0, 12.0),
// SITEA is 0.5 km due north pointing at them, SITEB 5 km south.
const (
	testDesign = "Site;Cell;Lat;Lon;Azimuth;Height\n" +
		"SITEA;SITEA_A;57.0044966;12.0;0;30\n" +
		"SITEB;SITEB_A;56.9550339;12.0;0;30\n"

	testCM = "NodeId;sectorId;Band;electricalTilt;pci\n" +
		"SITEA;1;L2100;34;101\n" +
		"SITEB;1;L2100;34;102\n"

	testNRDumpName = "clean_20250101T000000_cm_nr_cell.csv"
	testNRDump     = "NodeId;NRCellDUId;nRPCI;SSBFrequency\n" +
		"GBG001;GBG001_N1;501;647328\n" +
		"GBG002;GBG002_N2;501;647328\n"

	testLTEDumpName = "clean_20250101T000000_cm_lte_cell.csv"
	testLTEDump     = "NodeId;EUtranCellFDDId;physicalLayerCellIdGroup;physicalLayerSubCellId\n" +
		"GBG101;GBG101_L1;33;2\n"
)

func testConfig(root string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Data: config.DataConfig{Root: root, RetentionPerCategory: 5, SweepInterval: time.Hour},
		Ingest: config.IngestConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   100 * time.Millisecond,
			Timeout:       30 * time.Second,
		},
		Analysis: config.AnalysisConfig{DefaultSiteLimit: 1},
		Rate:     config.RateLimitConfig{Enabled: false},
		Security: config.SecurityConfig{EnableCSP: true},
		Logging:  config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) (*Server, *archive.Store) {
	t.Helper()

	root := t.TempDir()
	cfg := testConfig(root)
	for _, opt := range opts {
		opt(cfg)
	}

	store := archive.NewStore(root)
	limiter := ingest.NewLimiter(cfg.Ingest.MaxConcurrent, cfg.Ingest.MaxWaitTime)
	svc := Services{
		Engine:  rca.NewEngine(store),
		Lookup:  rca.NewLookup(store),
		Ingest:  ingest.NewService(store, limiter),
		Archive: store,
		History: history.NewStore(root),
	}
	return NewServer(cfg, svc), store
}

func seedClean(t *testing.T, store *archive.Store, category schema.Category, name, content string) {
	t.Helper()
	_, err := store.Write(category, name, func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
	if err != nil {
		t.Fatalf("seeding %s: %v", name, err)
	}
}

func doRequest(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d, want 200", rec.Code)
	}

	var body struct {
		Status string               `json:"status"`
		Ingest ingest.LimiterStatus `json:"ingest"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if body.Ingest.MaxConcurrent != 2 {
		t.Errorf("limiter max = %d, want 2", body.Ingest.MaxConcurrent)
	}

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy header missing with CSP enabled")
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	s, store := newTestServer(t)
	seedClean(t, store, schema.CategoryDatabase, "clean_20250101T000000_sites.csv", testDesign)
	seedClean(t, store, schema.CategoryCM, "clean_20250101T000000_cm_dump.csv", testCM)

	body := strings.NewReader(`{"latitude": 57.0, "longitude": 12.0}`)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/analyze", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /analyze = %d, body %s", rec.Code, rec.Body.String())
	}

	var res rca.AnalysisResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Stage != rca.StageDone {
		t.Errorf("Stage = %v, want %v", res.Stage, rca.StageDone)
	}
	// site_limit omitted: the configured default of one site applies
	if len(res.Sites) != 1 || res.Sites[0] != "SITEA" {
		t.Errorf("Sites = %v, want [SITEA]", res.Sites)
	}
	if !strings.Contains(res.Verdict, "SITEA_A") {
		t.Errorf("Verdict = %q, want it to name SITEA_A", res.Verdict)
	}

	// The run lands in the journal
	entries := s.svc.History.List()
	if len(entries) != 1 {
		t.Fatalf("history has %d entries after one run, want 1", len(entries))
	}
	if entries[0].RunID != res.RunID || entries[0].SiteLimit != 1 {
		t.Errorf("journal entry = %+v, want run %s with site limit 1", entries[0], res.RunID)
	}
}

func TestAnalyzeRequestErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "REQ000",
		},
		{
			name:       "latitude out of range",
			body:       `{"latitude": 95, "longitude": 12}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "REQ001",
		},
		{
			name:       "longitude out of range",
			body:       `{"latitude": 57, "longitude": 200}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "REQ002",
		},
		{
			name:       "negative site limit",
			body:       `{"latitude": 57, "longitude": 12, "site_limit": -2}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "REQ003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/v1/analyze", strings.NewReader(tt.body))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if resp := decodeError(t, rec); resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestAnalyzeEmptyArchive(t *testing.T) {
	s, _ := newTestServer(t)

	body := strings.NewReader(`{"latitude": 57.0, "longitude": 12.0}`)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/analyze", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("POST /analyze with empty archive = %d, want 404", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "ARC001" {
		t.Errorf("code = %q, want ARC001", resp.Code)
	}
}

func TestAnalyzeExport(t *testing.T) {
	s, store := newTestServer(t)
	seedClean(t, store, schema.CategoryDatabase, "clean_20250101T000000_sites.csv", testDesign)
	seedClean(t, store, schema.CategoryCM, "clean_20250101T000000_cm_dump.csv", testCM)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/analyze/export?lat=57.0&lon=12.0&format=csv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET export = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, `attachment; filename="rca_`) {
		t.Errorf("Content-Disposition = %q, want an rca_ attachment", got)
	}

	r := csv.NewReader(rec.Body)
	r.Comma = ';'
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse exported csv: %v", err)
	}
	if len(records) < 2 || records[0][0] != "site" {
		t.Errorf("exported csv starts %v, want a site header plus cells", records[0])
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/analyze/export?lat=57.0&lon=12.0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET export (xlsx) = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type = %q, want the xlsx media type", got)
	}
}

func TestAnalyzeExportBadQuery(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/analyze/export?lat=abc&lon=12", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("GET export with bad lat = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "REQ001" {
		t.Errorf("code = %q, want REQ001", resp.Code)
	}
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestIngestRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)

	body, contentType := multipartUpload(t, "NR_sites.csv", testDesign)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/database", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /ingest/database = %d, body %s", rec.Code, rec.Body.String())
	}

	var res ingest.CleanResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Rows != 2 {
		t.Errorf("Rows = %d, want 2", res.Rows)
	}
	if !strings.HasPrefix(res.CleanFile, "clean_") || !strings.HasSuffix(res.CleanFile, ".csv") {
		t.Errorf("CleanFile = %q, want a clean_*.csv name", res.CleanFile)
	}
	if res.Category != schema.CategoryDatabase {
		t.Errorf("Category = %q, want database", res.Category)
	}

	// The published file shows up in the archive listing
	rec = doRequest(t, s, http.MethodGet, "/api/v1/archive/database", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /archive/database = %d", rec.Code)
	}
	var list ArchiveListResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 1 || len(list.Files) != 1 || list.Files[0].Name != res.CleanFile {
		t.Errorf("archive list = %+v, want the ingested file", list)
	}
}

func TestIngestErrors(t *testing.T) {
	t.Run("unknown category", func(t *testing.T) {
		s, _ := newTestServer(t)
		body, contentType := multipartUpload(t, "sites.csv", testDesign)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/weather", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if resp := decodeError(t, rec); resp.Code != "REQ004" {
			t.Errorf("code = %q, want REQ004", resp.Code)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		s, _ := newTestServer(t)
		rec := doRequest(t, s, http.MethodPost, "/api/v1/ingest/database", strings.NewReader(`{"file": "x"}`))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if resp := decodeError(t, rec); resp.Code != "ING003" {
			t.Errorf("code = %q, want ING003", resp.Code)
		}
	})

	t.Run("oversized upload", func(t *testing.T) {
		s, _ := newTestServer(t, func(cfg *config.Config) {
			cfg.Ingest.MaxFileSize = 64
		})
		body, contentType := multipartUpload(t, "sites.csv", testDesign)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/database", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
		}
		if resp := decodeError(t, rec); resp.Code != "ING002" {
			t.Errorf("code = %q, want ING002", resp.Code)
		}
	})
}

func TestArchiveEndpoints(t *testing.T) {
	s, store := newTestServer(t)

	// Summary always covers every category
	rec := doRequest(t, s, http.MethodGet, "/api/v1/archive", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /archive = %d", rec.Code)
	}
	var sums []archive.CategorySummary
	if err := json.NewDecoder(rec.Body).Decode(&sums); err != nil {
		t.Fatal(err)
	}
	if len(sums) != len(schema.All()) {
		t.Errorf("summary has %d categories, want %d", len(sums), len(schema.All()))
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/archive/weather", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("GET /archive/weather = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "REQ004" {
		t.Errorf("code = %q, want REQ004", resp.Code)
	}

	// Empty category lists cleanly
	rec = doRequest(t, s, http.MethodGet, "/api/v1/archive/pm", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /archive/pm = %d, want 200", rec.Code)
	}
	var list ArchiveListResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 0 || len(list.Files) != 0 {
		t.Errorf("empty category list = %+v, want zero files", list)
	}

	// Preview with nothing archived
	rec = doRequest(t, s, http.MethodGet, "/api/v1/archive/pm/preview", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET preview with empty archive = %d, want 404", rec.Code)
	}

	// Preview after a seed honors the rows parameter
	seedClean(t, store, schema.CategoryDatabase, "clean_20250101T000000_sites.csv", testDesign)
	rec = doRequest(t, s, http.MethodGet, "/api/v1/archive/database/preview?rows=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET preview = %d, body %s", rec.Code, rec.Body.String())
	}
	var prev ingest.PreviewResult
	if err := json.NewDecoder(rec.Body).Decode(&prev); err != nil {
		t.Fatal(err)
	}
	if prev.TotalRows != 2 || len(prev.Rows) != 1 {
		t.Errorf("preview = %d total, %d shown, want 2 total and 1 shown", prev.TotalRows, len(prev.Rows))
	}
	if len(prev.Headers) == 0 || prev.Headers[0] != "Site" {
		t.Errorf("preview headers = %v, want the design table header", prev.Headers)
	}
}

func TestHistoryEmpty(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /history = %d, want 200", rec.Code)
	}
	var entries []history.Entry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want none", entries)
	}
}

func TestLookupEndpoints(t *testing.T) {
	s, store := newTestServer(t)
	seedClean(t, store, schema.CategoryCM, testNRDumpName, testNRDump)
	seedClean(t, store, schema.CategoryCM, testLTEDumpName, testLTEDump)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/lookup/nr-cell?pci=501", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET nr-cell = %d, body %s", rec.Code, rec.Body.String())
	}
	var nr NRLookupResponse
	if err := json.NewDecoder(rec.Body).Decode(&nr); err != nil {
		t.Fatal(err)
	}
	if nr.PCI != 501 || len(nr.Cells) != 2 {
		t.Errorf("nr lookup = pci %d with %d cells, want 501 with 2", nr.PCI, len(nr.Cells))
	}
	if nr.Severity != "" {
		t.Errorf("Severity = %q without an rsrp sample, want empty", nr.Severity)
	}

	// An rsrp sample gets graded alongside
	rec = doRequest(t, s, http.MethodGet, "/api/v1/lookup/nr-cell?pci=501&rsrp=-120", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET nr-cell with rsrp = %d", rec.Code)
	}
	nr = NRLookupResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&nr); err != nil {
		t.Fatal(err)
	}
	if nr.Severity != "CRITICAL" || nr.RSRPDBm == nil || *nr.RSRPDBm != -120 {
		t.Errorf("graded lookup = severity %q rsrp %v, want CRITICAL at -120", nr.Severity, nr.RSRPDBm)
	}

	// Group 33 sub 2 broadcasts 101
	rec = doRequest(t, s, http.MethodGet, "/api/v1/lookup/lte-anchor?pci=101", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET lte-anchor = %d, body %s", rec.Code, rec.Body.String())
	}
	var lte LTELookupResponse
	if err := json.NewDecoder(rec.Body).Decode(&lte); err != nil {
		t.Fatal(err)
	}
	if len(lte.Cells) != 1 || lte.Cells[0].Cell != "GBG101_L1" {
		t.Errorf("lte lookup = %+v, want GBG101_L1", lte.Cells)
	}
}

func TestLookupValidation(t *testing.T) {
	// The rsrp case needs a dump in place: the sample is parsed only
	// after the PCI resolves.
	s, store := newTestServer(t)
	seedClean(t, store, schema.CategoryCM, testNRDumpName, testNRDump)

	tests := []struct {
		name   string
		target string
	}{
		{name: "missing pci", target: "/api/v1/lookup/nr-cell"},
		{name: "pci not an integer", target: "/api/v1/lookup/nr-cell?pci=abc"},
		{name: "nr pci out of range", target: "/api/v1/lookup/nr-cell?pci=1008"},
		{name: "lte pci out of range", target: "/api/v1/lookup/lte-anchor?pci=504"},
		{name: "rsrp not a number", target: "/api/v1/lookup/nr-cell?pci=501&rsrp=low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodGet, tt.target, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("GET %s = %d, want 400", tt.target, rec.Code)
			}
		})
	}
}

func TestLookupMissingDump(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/lookup/nr-cell?pci=501", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET nr-cell with empty archive = %d, want 404", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "ARC002" {
		t.Errorf("code = %q, want ARC002", resp.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.RequireAPIKey = true
		cfg.Security.APIKeys = []string{"test-key-1"}
	})

	// Missing key
	rec := doRequest(t, s, http.MethodGet, "/api/v1/history", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "AUTH01") {
		t.Errorf("body = %q, want AUTH01", rec.Body.String())
	}

	// Wrong key
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	req.Header.Set("X-API-Key", "nope")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong key = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "AUTH02") {
		t.Errorf("body = %q, want AUTH02", rec.Body.String())
	}

	// Right key
	req = httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	req.Header.Set("X-API-Key", "test-key-1")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key = %d, want 200", rec.Code)
	}

	// Liveness stays open
	rec = doRequest(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz behind auth = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Rate.Enabled = true
		cfg.Rate.RequestsPerMinute = 2
		cfg.Rate.IngestLimit = 1
	})

	for i := 0; i < 2; i++ {
		if rec := doRequest(t, s, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i+1, rec.Code)
		}
	}

	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}
	if resp := decodeError(t, rec); resp.Code != "RATE01" {
		t.Errorf("code = %q, want RATE01", resp.Code)
	}
}
