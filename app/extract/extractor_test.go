package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scholarstream/scholarstream/app/cfg"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Test Article</title></head>
<body>
  <article>
    <h1>Test Article</h1>
    <p>This is the first paragraph of the article body with enough prose for
    the readability pass to treat it as the main content of the page.</p>
    <p>A second paragraph keeps the content block comfortably above the
    extraction threshold so the test stays stable.</p>
  </article>
</body>
</html>`

func setup() *Extractor {
	cfg.Set(&cfg.Cfg{UserAgent: "scholarstream-test", Timeout: 5})
	return NewExtractor(nil)
}

func TestRun(t *testing.T) {
	extractor := setup()

	text, err := extractor.Run([]byte(articleHTML))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(text, "first paragraph of the article body") {
		t.Errorf("Extracted text missing article body: %q", text)
	}
	if strings.Contains(text, "<p>") {
		t.Error("Extracted text should not contain HTML tags")
	}
}

func TestRun_EmptyData(t *testing.T) {
	extractor := setup()

	_, err := extractor.Run(nil)
	if err == nil {
		t.Error("Expected error for empty HTML data")
	}
}

func TestExtractFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	cfg.Set(&cfg.Cfg{UserAgent: "scholarstream-test", Timeout: 5})
	extractor := NewExtractor(server.Client())

	text, err := extractor.ExtractFromURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("ExtractFromURL failed: %v", err)
	}
	if !strings.Contains(text, "second paragraph") {
		t.Errorf("Extracted text missing article body: %q", text)
	}
}

func TestExtractFromURL_RejectsNonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	cfg.Set(&cfg.Cfg{UserAgent: "scholarstream-test", Timeout: 5})
	extractor := NewExtractor(server.Client())

	_, err := extractor.ExtractFromURL(context.Background(), server.URL)
	if err == nil {
		t.Error("Expected error for non-HTML content type")
	}
}

func TestExtractFromURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg.Set(&cfg.Cfg{UserAgent: "scholarstream-test", Timeout: 5})
	extractor := NewExtractor(server.Client())

	_, err := extractor.ExtractFromURL(context.Background(), server.URL)
	if err == nil {
		t.Error("Expected error for HTTP 404 response")
	}
}
