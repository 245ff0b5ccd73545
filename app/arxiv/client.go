package arxiv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/scholarstream/scholarstream/app/cfg"
)

const apiBaseURL = "http://export.arxiv.org/api/query"

// absURLExpr extracts the ArXiv id from an entry's abstract-page id URL.
// Entries whose <id> is not an abs URL are dropped.
var absURLExpr = regexp.MustCompile(`arxiv\.org/abs/([\w./-]+)$`)

// Client queries the ArXiv API. Every request is preceded by a fixed delay;
// the ArXiv usage policy asks for no more than one request every three
// seconds, so calls are strictly sequential by construction.
type Client struct {
	httpClient   *http.Client
	feedParser   *gofeed.Parser
	baseURL      string
	userAgent    string
	requestDelay time.Duration
	requestCount int
}

func NewClient(httpClient *http.Client) *Client {
	c := cfg.Get()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(c.Timeout) * time.Second}
	}
	return &Client{
		httpClient:   httpClient,
		feedParser:   gofeed.NewParser(),
		baseURL:      apiBaseURL,
		userAgent:    c.UserAgent,
		requestDelay: time.Duration(c.ArxivRequestDelay) * time.Millisecond,
	}
}

// SearchPapers fetches the latest papers matching searchQuery. It requests
// three times the wanted count to absorb dedup and sort losses, then
// deduplicates by URL, sorts by publication date descending, and truncates
// to limit.
func (c *Client) SearchPapers(ctx context.Context, searchQuery string, limit int) ([]Paper, error) {
	maxResults := limit * 3

	params := url.Values{}
	params.Set("search_query", searchQuery)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	data, err := c.makeRequest(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	papers := c.parseResponse(data)
	papers = dedupeByURL(papers)
	sortByDateDesc(papers)

	if len(papers) > limit {
		papers = papers[:limit]
	}

	return papers, nil
}

func (c *Client) makeRequest(ctx context.Context, requestURL string) ([]byte, error) {
	if err := sleep(ctx, c.requestDelay); err != nil {
		return nil, err
	}

	c.requestCount++
	slog.Debug("ArXiv request", "count", c.requestCount, "url", requestURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ArXiv response: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ArXiv API error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// parseResponse turns an Atom response into normalized papers. Entries
// missing a title or an abstract-URL id are dropped silently; a malformed
// entry never aborts the batch.
func (c *Client) parseResponse(data []byte) []Paper {
	feed, err := c.feedParser.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Error("Failed to parse ArXiv response", "error", err)
		return nil
	}

	papers := make([]Paper, 0, len(feed.Items))
	for _, item := range feed.Items {
		paper, ok := normalizeEntry(item)
		if !ok {
			continue
		}
		papers = append(papers, paper)
	}

	slog.Debug("Parsed ArXiv response", "entries", len(feed.Items), "papers", len(papers))
	return papers
}

func normalizeEntry(item *gofeed.Item) (Paper, bool) {
	title := collapseWhitespace(item.Title)
	if title == "" {
		return Paper{}, false
	}

	match := absURLExpr.FindStringSubmatch(item.GUID)
	if match == nil {
		return Paper{}, false
	}
	arxivID := match[1]

	paper := Paper{
		ArxivID:  arxivID,
		Title:    title,
		Abstract: collapseWhitespace(item.Description),
		URL:      "https://arxiv.org/abs/" + arxivID,
		PDFURL:   "https://arxiv.org/pdf/" + arxivID + ".pdf",
		Authors:  extractAuthors(item),
	}

	if item.PublishedParsed != nil {
		published := item.PublishedParsed.UTC()
		paper.PublicationDate = &published
		paper.Year = published.Year()
	}

	return paper, true
}

func extractAuthors(item *gofeed.Item) []string {
	var authors []string
	for _, author := range item.Authors {
		if author == nil || strings.TrimSpace(author.Name) == "" {
			authors = append(authors, "Unknown")
			continue
		}
		authors = append(authors, strings.TrimSpace(author.Name))
	}
	return authors
}

// collapseWhitespace folds the newline-wrapped text ArXiv emits into a
// single trimmed line
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dedupeByURL keeps one paper per URL, last occurrence winning
func dedupeByURL(papers []Paper) []Paper {
	byURL := make(map[string]int, len(papers))
	unique := make([]Paper, 0, len(papers))
	for _, p := range papers {
		if i, ok := byURL[p.URL]; ok {
			unique[i] = p
			continue
		}
		byURL[p.URL] = len(unique)
		unique = append(unique, p)
	}
	return unique
}

// sortByDateDesc orders papers newest first; papers without a parseable
// publication date sort as epoch, i.e. last
func sortByDateDesc(papers []Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		return sortDate(papers[i]).After(sortDate(papers[j]))
	})
}

func sortDate(p Paper) time.Time {
	if p.PublicationDate == nil {
		return time.Unix(0, 0)
	}
	return *p.PublicationDate
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
