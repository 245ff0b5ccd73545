package medium

import (
	"log/slog"
	"strings"
)

// Scorer applies the spam rules and the quality heuristic to normalized
// articles. Both are pure functions over the article fields; the keyword
// list comes from the sources config.
type Scorer struct {
	spamKeywords []string
}

func NewScorer(spamKeywords []string) *Scorer {
	keywords := make([]string, 0, len(spamKeywords))
	for _, kw := range spamKeywords {
		keywords = append(keywords, strings.ToLower(kw))
	}
	return &Scorer{spamKeywords: keywords}
}

// IsSpam flags an article when any hard rule matches. Rules are a boolean
// OR and short-circuit on the first hit; there is no score accumulation.
func (s *Scorer) IsSpam(article Article) bool {
	text := strings.ToLower(article.Title + " " + article.Description + " " + article.Author)

	for _, keyword := range s.spamKeywords {
		if strings.Contains(text, keyword) {
			slog.Debug("Spam detected", "rule", "keyword", "keyword", keyword, "title", article.Title)
			return true
		}
	}

	if len(article.Title) < 10 || len(article.Description) < 20 {
		slog.Debug("Spam detected", "rule", "too_short", "title", article.Title)
		return true
	}

	if hasRepeatedRun(article.Title, 6) {
		slog.Debug("Spam detected", "rule", "repeated_chars", "title", article.Title)
		return true
	}

	if article.Title == strings.ToUpper(article.Title) && len(article.Title) > 20 {
		slog.Debug("Spam detected", "rule", "all_caps", "title", article.Title)
		return true
	}

	return false
}

// QualityScore is an additive heuristic starting at 100. It is floored at
// zero but not capped above 100.
func (s *Scorer) QualityScore(article Article) int {
	score := 100

	if len(article.Description) < 50 {
		score -= 20
	}
	if len(article.Content) < 100 {
		score -= 20
	}

	if len(article.Description) > 200 {
		score += 10
	}
	if len(article.Content) > 500 {
		score += 15
	}

	if article.Author == "Unknown" {
		score -= 10
	}

	if article.Thumbnail != "" {
		score += 5
	}

	if score < 0 {
		score = 0
	}

	return score
}

// hasRepeatedRun reports whether any character repeats at least n times
// consecutively. Go's regexp has no backreferences, so the classic
// (.)\1{5,} pattern is spelled out as a scan.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}
