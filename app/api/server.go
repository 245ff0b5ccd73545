package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP router with all command routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	{
		api.POST("/fetch-papers", handler.FetchPapers)
		api.POST("/fetch-medium", handler.FetchMedium)
		api.POST("/parse-papers", handler.ParsePapers)
		api.POST("/parse-all-papers", handler.ParseAllPapers)
		api.POST("/parse-paper/:id", handler.ParsePaperByID)
		api.GET("/parse-status", handler.GetParseStatus)
		api.GET("/parse-details", handler.GetParseDetails)
		api.POST("/extract-articles", handler.ExtractArticles)
	}

	return r
}
