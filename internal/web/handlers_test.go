package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pjensen/csvflow/internal/config"
)

// testConfig returns a config suitable for handler tests. The database
// pool is nil; only routes that never touch it are exercised.
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: 5 * time.Second,
		},
		Ingest: config.IngestConfig{
			MaxBodySize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			Timeout:       5 * time.Second,
		},
		Pipeline: config.PipelineConfig{
			Encoding:      "utf-8",
			MaxBufferSize: 1 << 20,
			BatchSize:     1000,
			SheetName:     "Sheet1",
		},
		Rate:    config.RateLimitConfig{Enabled: false},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func TestConvertNormalizesCSV(t *testing.T) {
	srv := NewServer(nil, testConfig())

	// Quoted plain fields are unnecessary and dropped; typed values
	// re-serialize canonically.
	body := "\"hello\",42,true\n,3.140,#N/A\n"
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	want := "hello,42,true\n,3.14,#N/A\n"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
}

func TestConvertRejectsOversizedBody(t *testing.T) {
	cfg := testConfig()
	cfg.Ingest.MaxBodySize = 16
	srv := NewServer(nil, cfg)

	body := strings.Repeat("a,b,c\n", 100)
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
}

func TestIngestValidatesTableName(t *testing.T) {
	srv := NewServer(nil, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/users%3Bdrop?columns=a", strings.NewReader("x\n"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestIngestRequiresColumns(t *testing.T) {
	srv := NewServer(nil, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/users", strings.NewReader("x\n"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "columns") {
		t.Errorf("body %q does not mention columns", rec.Body.String())
	}
}

func TestParseColumns(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"simple", "a,b,c", 3, false},
		{"with spaces", " a , b ", 2, false},
		{"empty", "", 0, true},
		{"injection", "a,b;drop", 0, true},
		{"leading digit", "1a", 0, true},
		{"underscore ok", "_col_1", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := parseColumns(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseColumns(%q) succeeded, want error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseColumns(%q): %v", tt.raw, err)
			}
			if len(cols) != tt.want {
				t.Errorf("got %d columns, want %d", len(cols), tt.want)
			}
		})
	}
}
