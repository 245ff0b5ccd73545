package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarstream/scholarstream/app/database"
)

func seedArticles(t *testing.T, repo *fakeRepo, n int) []string {
	t.Helper()

	items := make([]database.ContentItem, 0, n)
	urls := make([]string, 0, n)
	for i := 0; i < n; i++ {
		url := fmt.Sprintf("https://medium.com/p/%d", i)
		items = append(items, database.ContentItem{
			ContentType: database.ContentTypeArticle,
			Title:       fmt.Sprintf("Article %d", i),
			URL:         url,
			ScrapedAt:   time.Now().UTC(),
		})
		urls = append(urls, url)
	}
	_, err := repo.InsertItems(context.Background(), items)
	require.NoError(t, err)
	return urls
}

func TestExtractUnreadArticles(t *testing.T) {
	jobsTestCfg()
	repo := newFakeRepo()
	urls := seedArticles(t, repo, 2)

	extractor := &fakeExtractor{texts: map[string]string{
		urls[0]: "readable article body",
		urls[1]: "another readable body",
	}}

	job := NewArticleExtractJob(extractor, repo)
	require.NoError(t, job.ExtractUnreadArticles(context.Background()))

	stored, err := repo.GetByID(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, "readable article body", stored.FullText)
	assert.NotEmpty(t, stored.TextSummary)
	assert.NotNil(t, stored.ParsedAt)
	assert.Nil(t, stored.Sections, "articles carry no section map")
}

func TestExtractUnreadArticles_FailureSkips(t *testing.T) {
	jobsTestCfg()
	repo := newFakeRepo()
	urls := seedArticles(t, repo, 2)

	extractor := &fakeExtractor{
		texts:    map[string]string{urls[1]: "only this one works"},
		failures: map[string]error{urls[0]: fmt.Errorf("page gone")},
	}

	job := NewArticleExtractJob(extractor, repo)
	require.NoError(t, job.ExtractUnreadArticles(context.Background()))

	first, _ := repo.GetByID(context.Background(), "item-1")
	assert.Empty(t, first.FullText)

	second, _ := repo.GetByID(context.Background(), "item-2")
	assert.Equal(t, "only this one works", second.FullText)
}

func TestExtractUnreadArticles_LeavesPapersAlone(t *testing.T) {
	jobsTestCfg()
	repo := newFakeRepo()

	_, err := repo.InsertItems(context.Background(), []database.ContentItem{{
		ContentType: database.ContentTypePaper,
		Title:       "A Paper",
		URL:         "https://arxiv.org/abs/2408.00001",
		PDFURL:      "https://arxiv.org/pdf/2408.00001.pdf",
	}})
	require.NoError(t, err)

	extractor := &fakeExtractor{texts: map[string]string{}}
	job := NewArticleExtractJob(extractor, repo)
	require.NoError(t, job.ExtractUnreadArticles(context.Background()))

	assert.Zero(t, extractor.calls, "paper rows are outside the article extraction scope")
}
