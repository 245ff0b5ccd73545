package arxiv

import "time"

// Paper is a normalized ArXiv API entry. URL is the canonical abstract page
// and serves as the dedup key downstream.
type Paper struct {
	ArxivID         string
	Title           string
	Abstract        string
	Year            int
	Authors         []string
	URL             string
	PDFURL          string
	PublicationDate *time.Time
	CitationsCount  int
}
