package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// ContentItemRepository handles database operations for content items
type ContentItemRepository struct {
	db *DB
}

var _ ContentRepository = (*ContentItemRepository)(nil)

func NewContentItemRepository(db *DB) *ContentItemRepository {
	return &ContentItemRepository{db: db}
}

const itemColumns = `id, content_type, title, url, COALESCE(description, ''),
	COALESCE(authors_list, '{}'), COALESCE(tags, '{}'),
	COALESCE(arxiv_id, ''), COALESCE(pdf_url, ''), publication_date,
	COALESCE(citations_count, 0), scraped_at,
	COALESCE(full_text, ''), COALESCE(text_summary, ''), sections, parsed_at`

// InsertItems stores a batch of new items in one statement. Rows colliding
// with an existing (content_type, url) pair are dropped by the store, so the
// returned count can be lower than len(items) when two jobs race on the
// same URL.
func (r *ContentItemRepository) InsertItems(ctx context.Context, items []ContentItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO content_items (
			content_type, title, url, description, authors_list, tags,
			arxiv_id, pdf_url, publication_date, citations_count, scraped_at
		) VALUES `)

	const cols = 11
	args := make([]interface{}, 0, len(items)*cols)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(i*cols + j + 1))
		}
		sb.WriteString(")")

		scrapedAt := item.ScrapedAt
		if scrapedAt.IsZero() {
			scrapedAt = time.Now().UTC()
		}

		args = append(args,
			item.ContentType, item.Title, item.URL, nullString(item.Description),
			pq.Array(item.Authors), pq.Array(item.Tags),
			nullString(item.ArxivID), nullString(item.PDFURL),
			item.PublicationDate, item.CitationsCount, scrapedAt)
	}
	sb.WriteString(" ON CONFLICT (content_type, url) DO NOTHING")

	result, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert items: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted row count: %w", err)
	}

	return int(inserted), nil
}

// GetByURL returns the item with the given dedup key, or nil when absent
func (r *ContentItemRepository) GetByURL(ctx context.Context, contentType, url string) (*ContentItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM content_items
		WHERE content_type = $1 AND url = $2
	`, contentType, url)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by url: %w", err)
	}

	return item, nil
}

// GetByID returns the item with the given id, or nil when absent
func (r *ContentItemRepository) GetByID(ctx context.Context, id string) (*ContentItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM content_items
		WHERE id = $1
	`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by id: %w", err)
	}

	return item, nil
}

// UpdateTags replaces the tag set of an item
func (r *ContentItemRepository) UpdateTags(ctx context.Context, id string, tags []string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE content_items SET tags = $2 WHERE id = $1
	`, id, pq.Array(tags))
	if err != nil {
		return fmt.Errorf("failed to update tags: %w", err)
	}
	return nil
}

// FilterExistingURLs reports which of the given URLs are already stored,
// across both content types, in a single membership query.
func (r *ContentItemRepository) FilterExistingURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(urls) == 0 {
		return existing, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT url FROM content_items WHERE url = ANY($1)
	`, pq.Array(urls))
	if err != nil {
		return nil, fmt.Errorf("failed to check existing urls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url row: %w", err)
		}
		existing[url] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating url rows: %w", err)
	}

	return existing, nil
}

// ListUnparsedPapers returns research papers with no extracted text yet,
// oldest scraped first
func (r *ContentItemRepository) ListUnparsedPapers(ctx context.Context, limit int) ([]ContentItem, error) {
	return r.listUnparsed(ctx, ContentTypePaper, limit)
}

// ListUnextractedArticles returns hobby articles with no extracted text yet
func (r *ContentItemRepository) ListUnextractedArticles(ctx context.Context, limit int) ([]ContentItem, error) {
	return r.listUnparsed(ctx, ContentTypeArticle, limit)
}

func (r *ContentItemRepository) listUnparsed(ctx context.Context, contentType string, limit int) ([]ContentItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM content_items
		WHERE content_type = $1 AND full_text IS NULL
		ORDER BY scraped_at ASC
		LIMIT $2
	`, contentType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unparsed items: %w", err)
	}
	defer rows.Close()

	var items []ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

// UpdateParseResult stores the extracted text fields and stamps parsed_at.
// full_text and parsed_at transition together; callers must not pass empty
// text here.
func (r *ContentItemRepository) UpdateParseResult(ctx context.Context, id string, fullText string, summary string, sections map[string]string) error {
	sectionsJSON, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("failed to encode sections: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE content_items
		SET full_text = $2, text_summary = $3, sections = $4, parsed_at = NOW()
		WHERE id = $1
	`, id, fullText, summary, sectionsJSON)
	if err != nil {
		return fmt.Errorf("failed to update parse result: %w", err)
	}

	return nil
}

// ParseStats reports parse progress over research papers
func (r *ContentItemRepository) ParseStats(ctx context.Context) (ParseStats, error) {
	var stats ParseStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) AS total,
			COUNT(full_text) AS parsed,
			COUNT(*) - COUNT(full_text) AS unparsed
		FROM content_items
		WHERE content_type = $1
	`, ContentTypePaper).Scan(&stats.Total, &stats.Parsed, &stats.Unparsed)
	if err != nil {
		return ParseStats{}, fmt.Errorf("failed to get parse stats: %w", err)
	}

	return stats, nil
}

// ListRecentlyParsed returns the most recently parsed papers for the
// operator report
func (r *ContentItemRepository) ListRecentlyParsed(ctx context.Context, limit int) ([]ParsedItemSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, parsed_at, LENGTH(full_text)
		FROM content_items
		WHERE content_type = $1 AND parsed_at IS NOT NULL
		ORDER BY parsed_at DESC
		LIMIT $2
	`, ContentTypePaper, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list parsed items: %w", err)
	}
	defer rows.Close()

	var summaries []ParsedItemSummary
	for rows.Next() {
		var s ParsedItemSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.ParsedAt, &s.TextLength); err != nil {
			return nil, fmt.Errorf("failed to scan parsed item row: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parsed item rows: %w", err)
	}

	return summaries, nil
}

// CountItems returns the total number of stored items of all types
func (r *ContentItemRepository) CountItems(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*ContentItem, error) {
	var item ContentItem
	var sectionsJSON []byte

	err := row.Scan(
		&item.ID, &item.ContentType, &item.Title, &item.URL, &item.Description,
		pq.Array(&item.Authors), pq.Array(&item.Tags),
		&item.ArxivID, &item.PDFURL, &item.PublicationDate,
		&item.CitationsCount, &item.ScrapedAt,
		&item.FullText, &item.TextSummary, &sectionsJSON, &item.ParsedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(sectionsJSON) > 0 {
		if err := json.Unmarshal(sectionsJSON, &item.Sections); err != nil {
			return nil, fmt.Errorf("failed to decode sections: %w", err)
		}
	}

	return &item, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
