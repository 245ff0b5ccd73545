package database

import (
	"time"
)

const (
	ContentTypePaper   = "research_paper"
	ContentTypeArticle = "hobby_article"
)

// ContentItem is the persisted unit of aggregated content. Research papers
// and hobby articles share the table; the paper-only fields stay empty for
// articles. FullText is the parse-state marker: an item with no stored full
// text is unparsed, and FullText/ParsedAt are only ever written together.
type ContentItem struct {
	ID          string
	ContentType string
	Title       string
	URL         string
	Description string
	Authors     []string
	Tags        []string

	ArxivID         string
	PDFURL          string
	PublicationDate *time.Time
	CitationsCount  int

	ScrapedAt time.Time

	FullText    string
	TextSummary string
	Sections    map[string]string
	ParsedAt    *time.Time
}

// ParseStats summarizes parse progress over research papers.
type ParseStats struct {
	Total    int
	Parsed   int
	Unparsed int
}

// Percentage reports parsed/total as a percentage. An empty corpus counts
// as a denominator of one so the result stays defined.
func (s ParseStats) Percentage() float64 {
	total := s.Total
	if total == 0 {
		total = 1
	}
	return float64(s.Parsed) / float64(total) * 100
}

// ParsedItemSummary is a row of the operator-facing parse report.
type ParsedItemSummary struct {
	ID         string
	Title      string
	ParsedAt   time.Time
	TextLength int
}
