package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"menu-scraper/pkg/utils"
)

func TestFetchPage_HTML(t *testing.T) {
	const body = "<html><body>Dinner Menu</body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "menu-scraper-test/1.0" {
			t.Errorf("unexpected User-Agent: %q", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	fetcher := NewFetcher(server.Client(), testConfig(0), testLogger())
	result, err := fetcher.FetchPage(context.Background(), server.URL+"/menu")

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", result.StatusCode)
	}
	if result.ContentType != "text/html" {
		t.Errorf("expected content type text/html (parameters stripped), got %q", result.ContentType)
	}
	if !result.IsHTML() {
		t.Error("expected IsHTML to be true")
	}
	if result.IsPDF() {
		t.Error("expected IsPDF to be false")
	}
	if string(result.Body) != body {
		t.Errorf("unexpected body: %q", result.Body)
	}
}

func TestFetchPage_PDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	t.Cleanup(server.Close)

	fetcher := NewFetcher(server.Client(), testConfig(0), testLogger())
	result, err := fetcher.FetchPage(context.Background(), server.URL+"/menu.pdf")

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !result.IsPDF() {
		t.Error("expected IsPDF to be true")
	}
	if result.IsHTML() {
		t.Error("expected IsHTML to be false")
	}
}

func TestFetchPage_MissingContentTypeTreatedAsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Suppress Content-Type sniffing by writing the header explicitly empty
		w.Header()["Content-Type"] = nil
		w.Write([]byte("<html></html>"))
	}))
	t.Cleanup(server.Close)

	fetcher := NewFetcher(server.Client(), testConfig(0), testLogger())
	result, err := fetcher.FetchPage(context.Background(), server.URL)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.ContentType != "" {
		t.Errorf("expected empty content type, got %q", result.ContentType)
	}
	if !result.IsHTML() {
		t.Error("expected missing Content-Type to count as HTML")
	}
}

func TestFetchPage_NonOKStatusStillReturnsResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("<html><title>404 Not Found</title></html>"))
	}))
	t.Cleanup(server.Close)

	fetcher := NewFetcher(server.Client(), testConfig(0), testLogger())
	result, err := fetcher.FetchPage(context.Background(), server.URL+"/gone")

	// Single-attempt fetch surfaces the status to the caller, not an error
	if err != nil {
		t.Fatalf("expected no error for 404, got: %v", err)
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", result.StatusCode)
	}
	if len(result.Body) == 0 {
		t.Error("expected body to be readable for non-OK status")
	}
}

func TestFetchPage_SizeCapExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(0)
	cfg.MaxPageSizeBytes = 1024

	fetcher := NewFetcher(server.Client(), cfg, testLogger())
	result, err := fetcher.FetchPage(context.Background(), server.URL)

	if err == nil {
		t.Fatal("expected error for oversized page")
	}
	if !errors.Is(err, utils.ErrPageSizeExceeded) {
		t.Errorf("expected ErrPageSizeExceeded, got: %v", err)
	}
	if result == nil || result.StatusCode != http.StatusOK {
		t.Error("expected result with status populated even on size failure")
	}
}

func TestFetchPage_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	client := server.Client()
	server.Close()

	fetcher := NewFetcher(client, testConfig(0), testLogger())
	result, err := fetcher.FetchPage(context.Background(), target)

	if err == nil {
		t.Fatal("expected error for unreachable host")
	}
	if result != nil {
		t.Error("expected nil result when no response was obtained")
	}
}

func TestMediaType(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"text/html; charset=utf-8", "text/html"},
		{"TEXT/HTML", "text/html"},
		{"application/pdf", "application/pdf"},
		{"", ""},
		{"application/xhtml+xml;q=0.9", "application/xhtml+xml"},
	}
	for _, tt := range tests {
		if got := mediaType(tt.header); got != tt.want {
			t.Errorf("mediaType(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
