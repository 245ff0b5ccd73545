package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/scholarstream/scholarstream/app/arxiv"
	"github.com/scholarstream/scholarstream/app/database"
	"github.com/scholarstream/scholarstream/app/medium"
)

// fakeRepo is an in-memory ContentRepository mirroring the store semantics
// the jobs rely on: (content_type, url) uniqueness on insert and full_text
// nullability as the parse-state marker.
type fakeRepo struct {
	mu     sync.Mutex
	items  []*database.ContentItem
	nextID int

	insertedTotal int
	listCalls     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{}
}

func (r *fakeRepo) find(contentType, url string) *database.ContentItem {
	for _, item := range r.items {
		if item.ContentType == contentType && item.URL == url {
			return item
		}
	}
	return nil
}

func (r *fakeRepo) InsertItems(_ context.Context, items []database.ContentItem) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, item := range items {
		if r.find(item.ContentType, item.URL) != nil {
			continue
		}
		r.nextID++
		stored := item
		stored.ID = fmt.Sprintf("item-%d", r.nextID)
		if stored.ScrapedAt.IsZero() {
			stored.ScrapedAt = time.Now().UTC()
		}
		r.items = append(r.items, &stored)
		inserted++
	}
	r.insertedTotal += inserted
	return inserted, nil
}

func (r *fakeRepo) GetByURL(_ context.Context, contentType, url string) (*database.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item := r.find(contentType, url); item != nil {
		copied := *item
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*database.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.ID == id {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) UpdateTags(_ context.Context, id string, tags []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.ID == id {
			item.Tags = tags
			return nil
		}
	}
	return fmt.Errorf("item %s not found", id)
}

func (r *fakeRepo) FilterExistingURLs(_ context.Context, urls []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := make(map[string]bool)
	for _, url := range urls {
		for _, item := range r.items {
			if item.URL == url {
				existing[url] = true
				break
			}
		}
	}
	return existing, nil
}

func (r *fakeRepo) ListUnparsedPapers(_ context.Context, limit int) ([]database.ContentItem, error) {
	return r.listUnparsed(database.ContentTypePaper, limit)
}

func (r *fakeRepo) ListUnextractedArticles(_ context.Context, limit int) ([]database.ContentItem, error) {
	return r.listUnparsed(database.ContentTypeArticle, limit)
}

func (r *fakeRepo) listUnparsed(contentType string, limit int) ([]database.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listCalls++

	var out []database.ContentItem
	for _, item := range r.items {
		if item.ContentType != contentType || item.FullText != "" {
			continue
		}
		out = append(out, *item)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateParseResult(_ context.Context, id string, fullText string, summary string, sections map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.ID == id {
			now := time.Now().UTC()
			item.FullText = fullText
			item.TextSummary = summary
			item.Sections = sections
			item.ParsedAt = &now
			return nil
		}
	}
	return fmt.Errorf("item %s not found", id)
}

func (r *fakeRepo) ParseStats(_ context.Context) (database.ParseStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats database.ParseStats
	for _, item := range r.items {
		if item.ContentType != database.ContentTypePaper {
			continue
		}
		stats.Total++
		if item.FullText != "" {
			stats.Parsed++
		} else {
			stats.Unparsed++
		}
	}
	return stats, nil
}

func (r *fakeRepo) ListRecentlyParsed(_ context.Context, limit int) ([]database.ParsedItemSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []database.ParsedItemSummary
	for _, item := range r.items {
		if item.ContentType != database.ContentTypePaper || item.ParsedAt == nil {
			continue
		}
		out = append(out, database.ParsedItemSummary{
			ID:         item.ID,
			Title:      item.Title,
			ParsedAt:   *item.ParsedAt,
			TextLength: len(item.FullText),
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepo) CountItems(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items), nil
}

// fakePaperSource serves canned papers keyed by search query
type fakePaperSource struct {
	papers map[string][]arxiv.Paper
	err    error
}

func (s *fakePaperSource) SearchPapers(_ context.Context, searchQuery string, limit int) ([]arxiv.Paper, error) {
	if s.err != nil {
		return nil, s.err
	}
	papers := s.papers[searchQuery]
	if len(papers) > limit {
		papers = papers[:limit]
	}
	return papers, nil
}

// fakeArticleSource returns a fixed article batch
type fakeArticleSource struct {
	articles []medium.Article
}

func (s *fakeArticleSource) FetchAllTags(_ context.Context, _ int) []medium.Article {
	return s.articles
}

// fakeExtractor serves canned text keyed by URL; URLs in failures return an
// error instead
type fakeExtractor struct {
	texts    map[string]string
	failures map[string]error
	calls    int
}

func (e *fakeExtractor) ExtractFromURL(_ context.Context, url string) (string, error) {
	e.calls++
	if err, ok := e.failures[url]; ok {
		return "", err
	}
	return e.texts[url], nil
}
