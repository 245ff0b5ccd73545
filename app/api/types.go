package api

import (
	"github.com/scholarstream/scholarstream/app/database"
	"github.com/scholarstream/scholarstream/app/jobs"
)

// Handler carries the job entry points exposed on the command surface
type Handler struct {
	repo       database.ContentRepository
	paperJob   *jobs.PaperFetchJob
	mediumJob  *jobs.MediumFetchJob
	parserJob  *jobs.ContentParserJob
	articleJob *jobs.ArticleExtractJob

	defaultMaxAgeHours int
}
