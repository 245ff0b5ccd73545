package database

import (
	"context"
)

// ContentRepository is the store surface the fetch and parse jobs depend on.
// Dedup is caller-managed on (content_type, url); the unique constraint on
// that pair is the backstop against concurrent check-then-insert races.
type ContentRepository interface {
	InsertItems(ctx context.Context, items []ContentItem) (int, error)
	GetByURL(ctx context.Context, contentType, url string) (*ContentItem, error)
	GetByID(ctx context.Context, id string) (*ContentItem, error)
	UpdateTags(ctx context.Context, id string, tags []string) error
	FilterExistingURLs(ctx context.Context, urls []string) (map[string]bool, error)

	ListUnparsedPapers(ctx context.Context, limit int) ([]ContentItem, error)
	ListUnextractedArticles(ctx context.Context, limit int) ([]ContentItem, error)
	UpdateParseResult(ctx context.Context, id string, fullText string, summary string, sections map[string]string) error

	ParseStats(ctx context.Context) (ParseStats, error)
	ListRecentlyParsed(ctx context.Context, limit int) ([]ParsedItemSummary, error)
	CountItems(ctx context.Context) (int, error)
}
