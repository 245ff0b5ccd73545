package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/scholarstream/scholarstream/app/arxiv"
	"github.com/scholarstream/scholarstream/app/cfg"
	"github.com/scholarstream/scholarstream/app/database"
	"github.com/scholarstream/scholarstream/app/sources"
)

// PaperFetchJob walks the interest taxonomy and ingests the latest ArXiv
// papers per interest. Rediscovered papers are never re-inserted; they only
// pick up the triggering interest as an extra tag.
type PaperFetchJob struct {
	source            PaperSource
	repo              database.ContentRepository
	sources           *sources.Sources
	papersPerInterest int
	interestDelay     time.Duration
}

func NewPaperFetchJob(source PaperSource, repo database.ContentRepository, src *sources.Sources) *PaperFetchJob {
	c := cfg.Get()
	return &PaperFetchJob{
		source:            source,
		repo:              repo,
		sources:           src,
		papersPerInterest: c.PapersPerInterest,
		interestDelay:     time.Duration(c.InterestDelay) * time.Millisecond,
	}
}

// FetchPapersForAllInterests iterates the flattened interest list in order.
// Per-interest failures are logged and do not stop the remaining interests;
// only context cancellation aborts the run.
func (j *PaperFetchJob) FetchPapersForAllInterests(ctx context.Context) error {
	interests := j.sources.InterestLabels()
	slog.Info("Starting paper fetch job", "interests", len(interests), "per_interest", j.papersPerInterest)

	totalSaved := 0
	for _, interest := range interests {
		if err := ctx.Err(); err != nil {
			return err
		}

		saved, err := j.fetchInterest(ctx, interest)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("Failed to fetch interest", "interest", interest, "error", err)
			continue
		}
		totalSaved += saved

		if err := sleep(ctx, j.interestDelay); err != nil {
			return err
		}
	}

	slog.Info("Paper fetch job complete", "new_papers", totalSaved)
	return nil
}

func (j *PaperFetchJob) fetchInterest(ctx context.Context, interest string) (int, error) {
	slog.Info("Fetching latest papers", "interest", interest)

	query := j.sources.CategoryFor(interest)
	papers, err := j.source.SearchPapers(ctx, query, j.papersPerInterest)
	if err != nil {
		return 0, err
	}

	if len(papers) == 0 {
		slog.Warn("No papers found", "interest", interest)
		return 0, nil
	}

	// Check which papers already exist; existing rows get the interest
	// merged into their tag set instead of a new row.
	existingURLs := make(map[string]bool)
	for _, paper := range papers {
		existing, err := j.repo.GetByURL(ctx, database.ContentTypePaper, paper.URL)
		if err != nil {
			slog.Error("Failed to check existing paper", "url", paper.URL, "error", err)
			continue
		}
		if existing == nil {
			continue
		}

		existingURLs[paper.URL] = true

		if !containsTag(existing.Tags, interest) {
			updated := append(append([]string{}, existing.Tags...), interest)
			if err := j.repo.UpdateTags(ctx, existing.ID, updated); err != nil {
				slog.Error("Failed to merge tag", "id", existing.ID, "tag", interest, "error", err)
				continue
			}
			slog.Debug("Added tag to existing paper", "id", existing.ID, "tag", interest)
		}
	}

	var newItems []database.ContentItem
	for _, paper := range papers {
		if existingURLs[paper.URL] {
			continue
		}
		newItems = append(newItems, paperToItem(paper, interest))
	}

	if len(newItems) == 0 {
		slog.Info("All papers already exist", "interest", interest)
		return 0, nil
	}

	inserted, err := j.repo.InsertItems(ctx, newItems)
	if err != nil {
		return 0, err
	}

	slog.Info("Saved new papers", "interest", interest, "count", inserted)
	return inserted, nil
}

// paperToItem maps a normalized paper to storage shape, seeded with the
// triggering interest as its initial tag
func paperToItem(paper arxiv.Paper, interest string) database.ContentItem {
	return database.ContentItem{
		ContentType:     database.ContentTypePaper,
		Title:           paper.Title,
		URL:             paper.URL,
		Description:     paper.Abstract,
		Authors:         paper.Authors,
		Tags:            []string{interest},
		ArxivID:         paper.ArxivID,
		PDFURL:          paper.PDFURL,
		PublicationDate: paper.PublicationDate,
		CitationsCount:  paper.CitationsCount,
		ScrapedAt:       time.Now().UTC(),
	}
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
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
