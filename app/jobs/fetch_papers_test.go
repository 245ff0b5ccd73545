package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarstream/scholarstream/app/arxiv"
	"github.com/scholarstream/scholarstream/app/cfg"
	"github.com/scholarstream/scholarstream/app/database"
	"github.com/scholarstream/scholarstream/app/sources"
)

func jobsTestCfg() {
	cfg.Set(&cfg.Cfg{
		PapersPerInterest: 10,
		ArticlesPerTag:    5,
		ParseBatchSize:    5,
		ParseAllBatchSize: 2,
	})
}

func twoInterestSources() *sources.Sources {
	return &sources.Sources{
		Interests: []sources.Discipline{
			{
				Name: "Computer Science",
				Topics: []sources.Topic{
					{Label: "Machine Learning", Category: "cs.LG"},
					{Label: "Robotics", Category: "cs.RO"},
				},
			},
		},
	}
}

func testPaper(id string) arxiv.Paper {
	published := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	return arxiv.Paper{
		ArxivID:         id,
		Title:           "Paper " + id,
		Abstract:        "Abstract of " + id,
		Year:            2026,
		Authors:         []string{"Alice Smith"},
		URL:             "https://arxiv.org/abs/" + id,
		PDFURL:          "https://arxiv.org/pdf/" + id + ".pdf",
		PublicationDate: &published,
	}
}

func TestFetchPapers_InsertsNewPapers(t *testing.T) {
	jobsTestCfg()
	repo := newFakeRepo()
	source := &fakePaperSource{papers: map[string][]arxiv.Paper{
		"cat:cs.LG": {testPaper("2408.00001"), testPaper("2408.00002")},
		"cat:cs.RO": {testPaper("2408.00003")},
	}}

	job := NewPaperFetchJob(source, repo, twoInterestSources())
	require.NoError(t, job.FetchPapersForAllInterests(context.Background()))

	count, _ := repo.CountItems(context.Background())
	assert.Equal(t, 3, count)

	stored, err := repo.GetByURL(context.Background(), database.ContentTypePaper, "https://arxiv.org/abs/2408.00001")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, []string{"Machine Learning"}, stored.Tags)
	assert.Equal(t, "https://arxiv.org/pdf/2408.00001.pdf", stored.PDFURL)
}

func TestFetchPapers_SecondRunInsertsNothing(t *testing.T) {
	jobsTestCfg()
	repo := newFakeRepo()
	source := &fakePaperSource{papers: map[string][]arxiv.Paper{
		"cat:cs.LG": {testPaper("2408.00001")},
		"cat:cs.RO": {testPaper("2408.00003")},
	}}

	job := NewPaperFetchJob(source, repo, twoInterestSources())
	require.NoError(t, job.FetchPapersForAllInterests(context.Background()))

	firstRunInserted := repo.insertedTotal
	require.NoError(t, job.FetchPapersForAllInterests(context.Background()))

	assert.Equal(t, firstRunInserted, repo.insertedTotal, "second run must not insert duplicates")
	count, _ := repo.CountItems(context.Background())
	assert.Equal(t, 2, count)
}

func TestFetchPapers_MergesTagOnRediscovery(t *testing.T) {
	jobsTestCfg()
	repo := newFakeRepo()

	// The same paper comes back for both interests: one row, both tags.
	shared := testPaper("2408.00042")
	source := &fakePaperSource{papers: map[string][]arxiv.Paper{
		"cat:cs.LG": {shared},
		"cat:cs.RO": {shared},
	}}

	job := NewPaperFetchJob(source, repo, twoInterestSources())
	require.NoError(t, job.FetchPapersForAllInterests(context.Background()))

	count, _ := repo.CountItems(context.Background())
	assert.Equal(t, 1, count)

	stored, err := repo.GetByURL(context.Background(), database.ContentTypePaper, shared.URL)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, []string{"Machine Learning", "Robotics"}, stored.Tags)
}

func TestFetchPapers_TagMergeIsIdempotent(t *testing.T) {
	jobsTestCfg()
	repo := newFakeRepo()
	shared := testPaper("2408.00042")
	source := &fakePaperSource{papers: map[string][]arxiv.Paper{
		"cat:cs.LG": {shared},
		"cat:cs.RO": {shared},
	}}

	job := NewPaperFetchJob(source, repo, twoInterestSources())
	require.NoError(t, job.FetchPapersForAllInterests(context.Background()))
	require.NoError(t, job.FetchPapersForAllInterests(context.Background()))

	stored, err := repo.GetByURL(context.Background(), database.ContentTypePaper, shared.URL)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, []string{"Machine Learning", "Robotics"}, stored.Tags, "repeat runs must not duplicate tags")
}

func TestFetchPapers_EmptyInterestContinues(t *testing.T) {
	jobsTestCfg()
	repo := newFakeRepo()

	// Only the second interest yields papers; the first returns nothing and
	// must not stop the run.
	source := &fakePaperSource{papers: map[string][]arxiv.Paper{
		"cat:cs.RO": {testPaper("2408.00003")},
	}}

	job := NewPaperFetchJob(source, repo, twoInterestSources())
	require.NoError(t, job.FetchPapersForAllInterests(context.Background()))

	count, _ := repo.CountItems(context.Background())
	assert.Equal(t, 1, count)
}

func TestFetchPapers_ContextCancellationAborts(t *testing.T) {
	jobsTestCfg()
	repo := newFakeRepo()
	source := &fakePaperSource{papers: map[string][]arxiv.Paper{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := NewPaperFetchJob(source, repo, twoInterestSources())
	err := job.FetchPapersForAllInterests(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
