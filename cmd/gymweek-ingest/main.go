// gymweek-ingest runs one ingestion pass and exits. It is the cron entry
// point; the scheduler is responsible for never running two instances at
// once.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/gymweek/internal/config"
	"github.com/claude/gymweek/internal/extract"
	"github.com/claude/gymweek/internal/freshness"
	"github.com/claude/gymweek/internal/pipeline"
	"github.com/claude/gymweek/internal/scrape"
	"github.com/claude/gymweek/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	source := scrape.NewClient(cfg.Source.FeedURL, cfg.Source.ReaderURL,
		cfg.Source.TitleFilter, cfg.Source.MaxDocuments)
	parser := extract.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	eval := freshness.New(db, log)
	pipe := pipeline.New(db, source, parser, eval, log)

	report, err := pipe.Run(ctx)
	printReport(log, report)
	if err != nil {
		log.Error("ingestion failed", "error", err)
		os.Exit(1)
	}
	log.Info("ingestion complete")
}

func printReport(log *slog.Logger, report *pipeline.Report) {
	if report == nil {
		return
	}
	log.Info("ingestion report",
		"succeeded", report.Succeeded,
		"skipped", report.Skipped,
		"skip_reason", report.SkipReason,
		"processed", report.ProcessedCount,
		"errors", len(report.Errors),
		"source_urls", report.SourceURLs,
		"note", report.Note,
	)
	for _, e := range report.Errors {
		log.Warn("document error", "error", e)
	}
}
