package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scholarstream/scholarstream/app/cfg"
	"github.com/scholarstream/scholarstream/app/database"
	"github.com/scholarstream/scholarstream/app/pdf"
)

// ArticleExtractJob fills full_text for hobby articles by fetching the
// article page and reducing it to readable text. Same skip-and-continue
// failure policy and pacing as the paper parse job; the paper parse status
// counts are unaffected since they cover research papers only.
type ArticleExtractJob struct {
	extractor TextExtractor
	repo      database.ContentRepository
	itemDelay time.Duration
	batchSize int
}

func NewArticleExtractJob(extractor TextExtractor, repo database.ContentRepository) *ArticleExtractJob {
	c := cfg.Get()
	return &ArticleExtractJob{
		extractor: extractor,
		repo:      repo,
		itemDelay: time.Duration(c.ParseItemDelay) * time.Millisecond,
		batchSize: c.ParseBatchSize,
	}
}

// ExtractUnreadArticles processes one bounded batch of articles with no
// extracted text yet
func (j *ArticleExtractJob) ExtractUnreadArticles(ctx context.Context) error {
	slog.Info("Starting article extraction job", "batch_size", j.batchSize)

	articles, err := j.repo.ListUnextractedArticles(ctx, j.batchSize)
	if err != nil {
		slog.Error("Failed to list unextracted articles", "error", err)
		return err
	}

	if len(articles) == 0 {
		slog.Info("No articles need extraction")
		return nil
	}

	extracted := 0
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := j.extractArticle(ctx, article); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("Skipping article", "id", article.ID, "error", err)
		} else {
			extracted++
		}

		if err := sleep(ctx, j.itemDelay); err != nil {
			return err
		}
	}

	slog.Info("Article extraction batch complete", "extracted", extracted)
	return nil
}

func (j *ArticleExtractJob) extractArticle(ctx context.Context, article database.ContentItem) error {
	if article.URL == "" {
		return fmt.Errorf("no source URL")
	}

	text, err := j.extractor.ExtractFromURL(ctx, article.URL)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if text == "" {
		return fmt.Errorf("no text extracted")
	}

	summary := pdf.Summary(text, summaryChars)

	if err := j.repo.UpdateParseResult(ctx, article.ID, text, summary, nil); err != nil {
		return fmt.Errorf("failed to store extracted content: %w", err)
	}

	return nil
}
