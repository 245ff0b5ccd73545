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

// summaryChars caps the stored text summary of a parsed paper
const summaryChars = 2000

// ParseStatus reports paper parse progress to the command surface
type ParseStatus struct {
	Total      int     `json:"total"`
	Parsed     int     `json:"parsed"`
	Unparsed   int     `json:"unparsed"`
	Percentage float64 `json:"percentage"`
}

// ContentParserJob extracts PDF text for stored papers. Parse state is
// carried by full_text nullability: a failed item stays unparsed and is
// picked up again by a later run.
type ContentParserJob struct {
	extractor     TextExtractor
	repo          database.ContentRepository
	itemDelay     time.Duration
	batchDelay    time.Duration
	batchSize     int
	allBatchSize  int
}

func NewContentParserJob(extractor TextExtractor, repo database.ContentRepository) *ContentParserJob {
	c := cfg.Get()
	return &ContentParserJob{
		extractor:    extractor,
		repo:         repo,
		itemDelay:    time.Duration(c.ParseItemDelay) * time.Millisecond,
		batchDelay:   time.Duration(c.ParseBatchDelay) * time.Millisecond,
		batchSize:    c.ParseBatchSize,
		allBatchSize: c.ParseAllBatchSize,
	}
}

// ParseUnparsedPapers processes one bounded batch of unparsed papers
func (j *ContentParserJob) ParseUnparsedPapers(ctx context.Context) error {
	slog.Info("Starting PDF parsing job", "batch_size", j.batchSize)

	papers, err := j.repo.ListUnparsedPapers(ctx, j.batchSize)
	if err != nil {
		slog.Error("Failed to list unparsed papers", "error", err)
		return err
	}

	if len(papers) == 0 {
		slog.Info("All papers already parsed or none found")
		return nil
	}

	parsed, err := j.parseBatch(ctx, papers)
	if err != nil {
		return err
	}

	slog.Info("PDF parsing batch complete", "parsed", parsed)
	return nil
}

// ParseAllPapers drains the unparsed backlog in batches. The loop ends when
// a query returns zero unparsed papers; the store state converging to empty
// is the only termination condition.
func (j *ContentParserJob) ParseAllPapers(ctx context.Context) error {
	slog.Info("Starting exhaustive PDF parsing job", "batch_size", j.allBatchSize)

	totalParsed := 0
	batchNumber := 1

	for {
		papers, err := j.repo.ListUnparsedPapers(ctx, j.allBatchSize)
		if err != nil {
			slog.Error("Failed to list unparsed papers", "batch", batchNumber, "error", err)
			return err
		}

		if len(papers) == 0 {
			slog.Info("All papers have been parsed", "total", totalParsed)
			return nil
		}

		slog.Info("Processing parse batch", "batch", batchNumber, "size", len(papers))

		parsed, err := j.parseBatch(ctx, papers)
		if err != nil {
			return err
		}
		totalParsed += parsed

		slog.Info("Parse progress", "batch", batchNumber, "total_parsed", totalParsed)
		batchNumber++

		if err := sleep(ctx, j.batchDelay); err != nil {
			return err
		}
	}
}

// ParsePaperByID processes exactly one paper and reports failures loudly
// instead of skipping
func (j *ContentParserJob) ParsePaperByID(ctx context.Context, id string) error {
	paper, err := j.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load paper: %w", err)
	}
	if paper == nil {
		return fmt.Errorf("paper %s not found", id)
	}
	if paper.PDFURL == "" {
		return fmt.Errorf("paper %s has no PDF URL", id)
	}

	if err := j.parsePaper(ctx, *paper); err != nil {
		return err
	}

	slog.Info("Paper parsed", "id", id)
	return nil
}

// GetParseStatus reports total/parsed/unparsed counts and the percentage
// parsed, one-decimal precision left to the presentation layer
func (j *ContentParserJob) GetParseStatus(ctx context.Context) (ParseStatus, error) {
	stats, err := j.repo.ParseStats(ctx)
	if err != nil {
		return ParseStatus{}, err
	}

	return ParseStatus{
		Total:      stats.Total,
		Parsed:     stats.Parsed,
		Unparsed:   stats.Unparsed,
		Percentage: stats.Percentage(),
	}, nil
}

// GetParseDetails lists the most recently parsed papers
func (j *ContentParserJob) GetParseDetails(ctx context.Context, limit int) ([]database.ParsedItemSummary, error) {
	return j.repo.ListRecentlyParsed(ctx, limit)
}

// parseBatch processes papers sequentially with the per-item delay. Every
// per-item failure is a skip, never an abort; only context cancellation
// stops the batch. Returns the number of papers successfully parsed.
func (j *ContentParserJob) parseBatch(ctx context.Context, papers []database.ContentItem) (int, error) {
	parsed := 0
	for _, paper := range papers {
		if err := ctx.Err(); err != nil {
			return parsed, err
		}

		slog.Info("Parsing paper", "id", paper.ID, "title", paper.Title)

		if err := j.parsePaper(ctx, paper); err != nil {
			if ctx.Err() != nil {
				return parsed, ctx.Err()
			}
			slog.Warn("Skipping paper", "id", paper.ID, "error", err)
		} else {
			parsed++
		}

		if err := sleep(ctx, j.itemDelay); err != nil {
			return parsed, err
		}
	}
	return parsed, nil
}

func (j *ContentParserJob) parsePaper(ctx context.Context, paper database.ContentItem) error {
	if paper.PDFURL == "" {
		return fmt.Errorf("no PDF URL")
	}

	fullText, err := j.extractor.ExtractFromURL(ctx, paper.PDFURL)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if fullText == "" {
		return fmt.Errorf("no text extracted")
	}

	summary := pdf.Summary(fullText, summaryChars)
	sections := pdf.Sections(fullText)

	if err := j.repo.UpdateParseResult(ctx, paper.ID, fullText, summary, sections); err != nil {
		return fmt.Errorf("failed to store parse result: %w", err)
	}

	return nil
}
