package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/scholarstream/scholarstream/app/database"
	"github.com/scholarstream/scholarstream/app/medium"
)

// MediumFetchJob pulls the configured Medium tag feeds and stores articles
// that survived the spam filter. Unlike papers, rediscovered articles are
// skipped wholesale; their tags are never merged on a later run.
type MediumFetchJob struct {
	source ArticleSource
	repo   database.ContentRepository
}

func NewMediumFetchJob(source ArticleSource, repo database.ContentRepository) *MediumFetchJob {
	return &MediumFetchJob{source: source, repo: repo}
}

// FetchAndSaveMediumArticles fetches all tag feeds, drops URLs already in
// the store with one bulk membership query, and inserts the remainder.
func (j *MediumFetchJob) FetchAndSaveMediumArticles(ctx context.Context, maxAgeHours int) error {
	slog.Info("Starting Medium fetch job", "max_age_hours", maxAgeHours)

	articles := j.source.FetchAllTags(ctx, maxAgeHours)
	if err := ctx.Err(); err != nil {
		return err
	}

	slog.Info("Fetched Medium articles", "count", len(articles))

	if len(articles) == 0 {
		slog.Warn("No articles found")
		return nil
	}

	items := make([]database.ContentItem, 0, len(articles))
	urls := make([]string, 0, len(articles))
	for _, article := range articles {
		items = append(items, articleToItem(article))
		urls = append(urls, article.Link)
	}

	existing, err := j.repo.FilterExistingURLs(ctx, urls)
	if err != nil {
		slog.Error("Failed to check duplicates", "error", err)
		return err
	}

	var newItems []database.ContentItem
	for _, item := range items {
		if existing[item.URL] {
			continue
		}
		newItems = append(newItems, item)
	}

	slog.Info("Duplicate check complete", "duplicates", len(items)-len(newItems), "new", len(newItems))

	if len(newItems) == 0 {
		slog.Info("All articles already in database")
		return nil
	}

	inserted, err := j.repo.InsertItems(ctx, newItems)
	if err != nil {
		slog.Error("Failed to insert articles", "error", err)
		return err
	}

	slog.Info("Medium fetch job complete", "saved", inserted)
	return nil
}

func articleToItem(article medium.Article) database.ContentItem {
	return database.ContentItem{
		ContentType: database.ContentTypeArticle,
		Title:       article.Title,
		URL:         article.Link,
		Description: article.Description,
		Authors:     []string{article.Author},
		Tags:        article.Categories,
		ScrapedAt:   time.Now().UTC(),
	}
}
