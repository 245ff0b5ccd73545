package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scholarstream/scholarstream/app/api"
	"github.com/scholarstream/scholarstream/app/arxiv"
	"github.com/scholarstream/scholarstream/app/cfg"
	"github.com/scholarstream/scholarstream/app/database"
	"github.com/scholarstream/scholarstream/app/extract"
	"github.com/scholarstream/scholarstream/app/jobs"
	"github.com/scholarstream/scholarstream/app/medium"
	"github.com/scholarstream/scholarstream/app/pdf"
	"github.com/scholarstream/scholarstream/app/sources"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting ScholarStream server", "version", appConfig.Version)

	db, err := database.NewConnection(
		appConfig.DBHost, appConfig.DBPort, appConfig.DBUser,
		appConfig.DBPassword, appConfig.DBName)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()
	slog.Info("Connected to database")

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	slog.Info("Migrations applied", "version", version, "dirty", dirty)

	src, err := sources.Load(appConfig.SourcesFile)
	if err != nil {
		log.Fatal("Failed to load source tables: ", err)
	}
	slog.Info("Source tables loaded",
		"interests", len(src.InterestLabels()),
		"medium_tags", len(src.TagNames()),
		"spam_keywords", len(src.Medium.SpamKeywords))

	repo := database.NewContentItemRepository(db)

	httpClient := &http.Client{Timeout: time.Duration(appConfig.Timeout) * time.Second}

	arxivClient := arxiv.NewClient(httpClient)
	mediumClient := medium.NewClient(httpClient, src)
	pdfExtractor := pdf.NewExtractor(httpClient)
	pageExtractor := extract.NewExtractor(httpClient)

	paperJob := jobs.NewPaperFetchJob(arxivClient, repo, src)
	mediumJob := jobs.NewMediumFetchJob(mediumClient, repo)
	parserJob := jobs.NewContentParserJob(pdfExtractor, repo)
	articleJob := jobs.NewArticleExtractJob(pageExtractor, repo)

	handler := api.NewHandler(repo, paperJob, mediumJob, parserJob, articleJob)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Server shutdown complete")
}
