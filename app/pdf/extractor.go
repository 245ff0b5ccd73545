package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/scholarstream/scholarstream/app/cfg"
)

const (
	// maxPages bounds extraction; pages past the cap are skipped silently
	maxPages = 20
	// maxTextChars hard-truncates the cleaned full text
	maxTextChars = 1000000
	// maxSectionChars bounds each extracted section body
	maxSectionChars = 1000
)

// Section boundary patterns. Best-effort heuristic segmentation: multi
// column layouts, missing headers, or repeated keywords can produce wrong
// boundaries, which is an accepted limitation of keyword matching.
var sectionPatterns = []struct {
	name string
	expr *regexp.Regexp
}{
	{"abstract", regexp.MustCompile(`(?is)abstract\s+(.*?)(?:introduction|1\.|$)`)},
	{"introduction", regexp.MustCompile(`(?is)introduction\s+(.*?)(?:related work|background|2\.|$)`)},
	{"conclusion", regexp.MustCompile(`(?is)conclusion\s+(.*?)(?:references|$)`)},
}

// controlChars matches C0 controls except tab/newline/carriage return,
// plus DEL
var controlChars = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")

// Extractor downloads PDFs and turns them into cleaned text
type Extractor struct {
	httpClient *http.Client
	userAgent  string
}

func NewExtractor(httpClient *http.Client) *Extractor {
	c := cfg.Get()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(c.Timeout) * time.Second}
	}
	return &Extractor{
		httpClient: httpClient,
		userAgent:  c.UserAgent,
	}
}

// ExtractFromURL downloads a PDF and extracts its page text, capped at
// maxPages pages and maxTextChars characters. A page that fails to extract
// is skipped and logged; a download or document-level failure returns an
// error and no text.
func (e *Extractor) ExtractFromURL(ctx context.Context, pdfURL string) (string, error) {
	slog.Debug("Downloading PDF", "url", pdfURL)

	data, err := e.download(ctx, pdfURL)
	if err != nil {
		return "", fmt.Errorf("failed to download PDF: %w", err)
	}

	text, err := e.extract(data)
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	slog.Debug("Extracted PDF text", "url", pdfURL, "chars", len(text))
	return text, nil
}

func (e *Extractor) download(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (e *Extractor) extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}

	numPages := reader.NumPage()
	if numPages > maxPages {
		numPages = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		pageText, err := extractPage(reader, i)
		if err != nil {
			slog.Warn("Skipping page", "page", i, "error", err)
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return cleanText(sb.String()), nil
}

// extractPage isolates the library call so a panic on a malformed page
// object downgrades to a skipped page instead of killing the batch
func extractPage(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page extraction panicked: %v", r)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", fmt.Errorf("page object is null")
	}

	return page.GetPlainText(nil)
}

// cleanText strips control characters, escapes backslashes and double
// quotes, and hard-truncates to maxTextChars
func cleanText(text string) string {
	text = controlChars.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `"`, `\"`)
	return truncate(text, maxTextChars)
}

// Summary collapses whitespace runs to single spaces, trims, and truncates
// to maxChars. Empty input yields empty output.
func Summary(text string, maxChars int) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	return truncate(cleaned, maxChars)
}

// Sections applies the fixed boundary patterns and returns the sections
// that matched, each trimmed and capped. Unmatched sections are simply
// absent.
func Sections(text string) map[string]string {
	sections := make(map[string]string)
	for _, p := range sectionPatterns {
		match := p.expr.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		body := truncate(strings.TrimSpace(match[1]), maxSectionChars)
		if body != "" {
			sections[p.name] = body
		}
	}
	return sections
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
