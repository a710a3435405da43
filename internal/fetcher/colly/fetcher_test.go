package collyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Garden Basics</title>
<meta name="description" content="How to start a vegetable garden.">
</head>
<body><p>Content</p></body>
</html>`

func TestFetcherExtractsPageData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(samplePage)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "test-agent", Timeout: 5 * time.Second})
	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if page.URL != srv.URL {
		t.Fatalf("expected url %q, got %q", srv.URL, page.URL)
	}
	if page.Title != "Garden Basics" {
		t.Fatalf("expected title extracted, got %q", page.Title)
	}
	if page.MetaDescription != "How to start a vegetable garden." {
		t.Fatalf("expected meta description extracted, got %q", page.MetaDescription)
	}
	if page.RawMarkup == "" {
		t.Fatal("expected raw markup to be retained")
	}
}

func TestFetcherReportsHTTPErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{Timeout: 5 * time.Second})
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestFetcherRejectsCanceledContext(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, "https://example.com"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestFetcherRejectsInvalidURL(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	if _, err := f.Fetch(context.Background(), "not-a-url"); err == nil {
		t.Fatal("expected visit error for invalid url")
	}
}

func TestExtractHeadToleratesBrokenMarkup(t *testing.T) {
	t.Parallel()

	title, meta := extractHead([]byte("<html><title>Partial"))
	if title != "Partial" {
		t.Fatalf("expected lenient title parse, got %q", title)
	}
	if meta != "" {
		t.Fatalf("expected empty meta, got %q", meta)
	}
}
