package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scholarstream/scholarstream/app/database"
	"github.com/scholarstream/scholarstream/app/jobs"
)

const parseDetailsLimit = 20

func NewHandler(repo database.ContentRepository, paperJob *jobs.PaperFetchJob,
	mediumJob *jobs.MediumFetchJob, parserJob *jobs.ContentParserJob,
	articleJob *jobs.ArticleExtractJob) *Handler {
	return &Handler{
		repo:               repo,
		paperJob:           paperJob,
		mediumJob:          mediumJob,
		parserJob:          parserJob,
		articleJob:         articleJob,
		defaultMaxAgeHours: 2,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if count, err := h.repo.CountItems(c.Request.Context()); err == nil {
		health["items"] = count
	} else {
		health["status"] = "degraded"
		health["error"] = err.Error()
	}

	c.JSON(http.StatusOK, health)
}

// FetchPapers triggers the ArXiv fetch job. Jobs are fire-and-forget: the
// handler acknowledges immediately and progress is observable through logs
// and the status endpoint, not the response.
func (h *Handler) FetchPapers(c *gin.Context) {
	go func() {
		if err := h.paperJob.FetchPapersForAllInterests(context.Background()); err != nil {
			slog.Error("Paper fetch job failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "started",
		"message": "Paper fetch job started",
	})
}

// FetchMedium triggers the Medium fetch job. The optional hours query
// parameter bounds article age; zero disables the recency filter.
func (h *Handler) FetchMedium(c *gin.Context) {
	hours := h.defaultMaxAgeHours
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hours parameter"})
			return
		}
		hours = parsed
	}

	go func() {
		if err := h.mediumJob.FetchAndSaveMediumArticles(context.Background(), hours); err != nil {
			slog.Error("Medium fetch job failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "started",
		"message": fmt.Sprintf("Medium fetch job started (%d hours)", hours),
	})
}

// ParsePapers triggers one bounded parse batch
func (h *Handler) ParsePapers(c *gin.Context) {
	go func() {
		if err := h.parserJob.ParseUnparsedPapers(context.Background()); err != nil {
			slog.Error("Parse job failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "started",
		"message": "PDF parsing job started",
	})
}

// ParseAllPapers triggers the exhaustive parse loop
func (h *Handler) ParseAllPapers(c *gin.Context) {
	go func() {
		if err := h.parserJob.ParseAllPapers(context.Background()); err != nil {
			slog.Error("Exhaustive parse job failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "started",
		"message": "Exhaustive PDF parsing job started",
	})
}

// ParsePaperByID parses a single paper synchronously and reports failure
// in the response
func (h *Handler) ParsePaperByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing paper id"})
		return
	}

	if err := h.parserJob.ParsePaperByID(c.Request.Context(), id); err != nil {
		slog.Error("Single paper parse failed", "id", id, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "parsed", "id": id})
}

// GetParseStatus reports parse progress with one-decimal percentage
func (h *Handler) GetParseStatus(c *gin.Context) {
	status, err := h.parserJob.GetParseStatus(c.Request.Context())
	if err != nil {
		slog.Error("Failed to get parse status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":      status.Total,
		"parsed":     status.Parsed,
		"unparsed":   status.Unparsed,
		"percentage": fmt.Sprintf("%.1f", status.Percentage),
	})
}

// GetParseDetails lists recently parsed papers for operator inspection
func (h *Handler) GetParseDetails(c *gin.Context) {
	details, err := h.parserJob.GetParseDetails(c.Request.Context(), parseDetailsLimit)
	if err != nil {
		slog.Error("Failed to get parse details", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows := make([]gin.H, 0, len(details))
	for _, d := range details {
		rows = append(rows, gin.H{
			"id":          d.ID,
			"title":       d.Title,
			"parsed_at":   d.ParsedAt.Format(time.RFC3339),
			"text_length": d.TextLength,
		})
	}

	c.JSON(http.StatusOK, gin.H{"papers": rows, "count": len(rows)})
}

// ExtractArticles triggers one bounded article extraction batch
func (h *Handler) ExtractArticles(c *gin.Context) {
	go func() {
		if err := h.articleJob.ExtractUnreadArticles(context.Background()); err != nil {
			slog.Error("Article extraction job failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "started",
		"message": "Article extraction job started",
	})
}
