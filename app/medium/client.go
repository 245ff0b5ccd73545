package medium

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/scholarstream/scholarstream/app/cfg"
	"github.com/scholarstream/scholarstream/app/sources"
)

// Client fetches and normalizes Medium tag feeds. The per-tag pipeline is
// strictly sequential: normalize, recency filter, spam filter, score, sort,
// truncate.
type Client struct {
	httpClient     *http.Client
	feedParser     *gofeed.Parser
	sources        *sources.Sources
	scorer         *Scorer
	userAgent      string
	articlesPerTag int
}

func NewClient(httpClient *http.Client, src *sources.Sources) *Client {
	c := cfg.Get()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(c.Timeout) * time.Second}
	}
	return &Client{
		httpClient:     httpClient,
		feedParser:     gofeed.NewParser(),
		sources:        src,
		scorer:         NewScorer(src.Medium.SpamKeywords),
		userAgent:      c.UserAgent,
		articlesPerTag: c.ArticlesPerTag,
	}
}

// FetchByTag returns up to limit quality articles for one tag, newest
// scoring first. maxAgeHours of zero disables the recency filter.
func (c *Client) FetchByTag(ctx context.Context, tag string, limit int, maxAgeHours int) ([]Article, error) {
	feedURL := c.sources.FeedURLFor(tag)

	slog.Debug("Fetching Medium feed", "tag", tag, "url", feedURL, "max_age_hours", maxAgeHours)

	data, err := c.fetchFeed(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed for tag %q: %w", tag, err)
	}

	feed, err := c.feedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed for tag %q: %w", tag, err)
	}

	articles := c.buildArticles(feed.Items, tag, limit, maxAgeHours, time.Now())

	slog.Info("Fetched Medium articles",
		"tag", tag,
		"kept", len(articles),
		"dropped", len(feed.Items)-len(articles))

	return articles, nil
}

// FetchAllTags polls every configured tag feed in order, concatenates the
// per-tag results and re-sorts the union by quality score descending. No
// cross-tag limit is applied. Per-tag failures are logged and skipped.
func (c *Client) FetchAllTags(ctx context.Context, maxAgeHours int) []Article {
	var all []Article
	for _, tag := range c.sources.TagNames() {
		articles, err := c.FetchByTag(ctx, tag, c.articlesPerTag, maxAgeHours)
		if err != nil {
			slog.Error("Failed to fetch Medium tag", "tag", tag, "error", err)
			continue
		}
		all = append(all, articles...)
	}

	sortByScoreDesc(all)
	return all
}

// buildArticles runs the normalization pipeline over raw feed items. The
// stage order matters: recency and spam filtering happen before scoring so
// dropped items are never scored.
func (c *Client) buildArticles(items []*gofeed.Item, tag string, limit int, maxAgeHours int, now time.Time) []Article {
	cutoff := now.Add(-time.Duration(maxAgeHours) * time.Hour)

	articles := make([]Article, 0, len(items))
	for idx, item := range items {
		article := c.normalizeItem(item, tag, idx, now)

		if maxAgeHours > 0 && article.PubDate.Before(cutoff) {
			continue
		}
		if c.scorer.IsSpam(article) {
			continue
		}

		article.QualityScore = c.scorer.QualityScore(article)
		articles = append(articles, article)
	}

	sortByScoreDesc(articles)

	if len(articles) > limit {
		articles = articles[:limit]
	}

	return articles
}

func (c *Client) normalizeItem(item *gofeed.Item, tag string, idx int, now time.Time) Article {
	article := Article{
		ID:          item.GUID,
		Title:       cmp.Or(item.Title, "Untitled"),
		Link:        item.Link,
		PubDate:     now,
		Author:      "Unknown",
		Description: item.Description,
		Content:     cmp.Or(item.Content, item.Description),
		Categories:  item.Categories,
	}

	if article.ID == "" {
		article.ID = fmt.Sprintf("medium-%d-%d", now.UnixMilli(), idx)
	}

	if item.PublishedParsed != nil {
		article.PubDate = *item.PublishedParsed
	}

	// Medium publishes the byline as dc:creator; plain RSS author is the
	// fallback before the Unknown placeholder.
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 && item.DublinCoreExt.Creator[0] != "" {
		article.Author = item.DublinCoreExt.Creator[0]
	} else if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		article.Author = strings.TrimSpace(item.Author.Name)
	}

	if len(article.Categories) == 0 {
		article.Categories = []string{tag}
	}

	article.Thumbnail = extractThumbnail(article.Content)

	return article
}

func (c *Client) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// extractThumbnail pulls the first <img src> out of the embedded item HTML
func extractThumbnail(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	src, _ := doc.Find("img[src]").First().Attr("src")
	return src
}

func sortByScoreDesc(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].QualityScore > articles[j].QualityScore
	})
}
