package jobs

import (
	"context"

	"github.com/scholarstream/scholarstream/app/arxiv"
	"github.com/scholarstream/scholarstream/app/medium"
)

// PaperSource yields normalized papers for a search query
type PaperSource interface {
	SearchPapers(ctx context.Context, searchQuery string, limit int) ([]arxiv.Paper, error)
}

// ArticleSource yields scored articles for the configured tag set
type ArticleSource interface {
	FetchAllTags(ctx context.Context, maxAgeHours int) []medium.Article
}

// TextExtractor turns a source URL into extracted plain text
type TextExtractor interface {
	ExtractFromURL(ctx context.Context, url string) (string, error)
}
