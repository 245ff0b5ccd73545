package medium

import "time"

// Article is a normalized Medium RSS item, held in memory until the fetch
// job persists it. QualityScore is filled by the Scorer after spam
// filtering.
type Article struct {
	ID           string
	Title        string
	Link         string
	PubDate      time.Time
	Author       string
	Description  string
	Content      string
	Categories   []string
	Thumbnail    string
	QualityScore int
}
