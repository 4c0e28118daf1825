// Package pipeline orchestrates one ingestion run: freshness check,
// document acquisition, LLM extraction, validation, deduplication and
// per-day persistence.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/gymweek/internal/dates"
	"github.com/claude/gymweek/internal/freshness"
	"github.com/claude/gymweek/internal/models"
	"github.com/claude/gymweek/internal/scrape"
	"github.com/claude/gymweek/internal/storage"
	"github.com/google/uuid"
)

const runLogRetention = 30 * 24 * time.Hour

// Store is the write surface the pipeline needs.
type Store interface {
	PutDay(ctx context.Context, day models.DaySchedule) (bool, error)
	SubmissionExists(ctx context.Context, weekID string) (bool, error)
	RecordSubmission(ctx context.Context, weekID, sourceURL string, ingestedAt time.Time) error
	MarkUpdated(ctx context.Context, instant time.Time) error
	InsertRunLog(ctx context.Context, log storage.RunLog) error
	UpdateRunLog(ctx context.Context, log storage.RunLog) error
	PruneRunLogs(ctx context.Context, olderThan time.Time) (int64, error)
}

// Source acquires raw documents.
type Source interface {
	ListCandidateDocuments(ctx context.Context) ([]string, error)
	FetchDocument(ctx context.Context, url string) (*scrape.Document, error)
}

// Parser extracts a candidate submission from markdown.
type Parser interface {
	Parse(ctx context.Context, markdown string) (*models.WeekSubmission, error)
}

// Evaluator decides whether acquisition is warranted.
type Evaluator interface {
	ShouldSkip(ctx context.Context, now time.Time) freshness.Decision
}

// Report summarizes one ingestion run.
type Report struct {
	Succeeded      bool     `json:"succeeded"`
	Skipped        bool     `json:"skipped"`
	SkipReason     string   `json:"skip_reason,omitempty"`
	ProcessedCount int      `json:"processed_count"`
	Errors         []string `json:"errors,omitempty"`
	SourceURLs     []string `json:"source_urls,omitempty"`
	Note           string   `json:"note,omitempty"`
}

// Pipeline runs the ingestion sequence.
type Pipeline struct {
	store  Store
	source Source
	parser Parser
	eval   Evaluator
	log    *slog.Logger
	now    func() time.Time
}

// New creates a Pipeline.
func New(store Store, source Source, parser Parser, eval Evaluator, log *slog.Logger) *Pipeline {
	return &Pipeline{
		store:  store,
		source: source,
		parser: parser,
		eval:   eval,
		log:    log,
		now:    time.Now,
	}
}

// Run executes one ingestion run. Callers must serialize runs: the pipeline
// assumes a single concurrent instance and implements no distributed lock.
// A nil error with per-document entries in Report.Errors means the batch
// partially succeeded; a non-nil error means the run aborted before
// processing (total acquisition failure).
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := p.now()
	report := &Report{Succeeded: true}

	decision := p.eval.ShouldSkip(ctx, start)
	if decision.Skip {
		p.log.Info("scrape skipped", "reason", decision.Reason, "days_ahead", decision.DaysAhead)
		recordSkip()
		report.Skipped = true
		report.SkipReason = decision.Reason
		p.writeRunLog(ctx, storage.RunLog{
			ID: uuid.New(), StartedAt: start, Status: "skipped", SkipReason: decision.Reason,
		})
		return report, nil
	}
	p.log.Info("scrape proceeding", "reason", decision.Reason, "days_ahead", decision.DaysAhead)

	runLog := storage.RunLog{ID: uuid.New(), StartedAt: start, Status: "running"}
	p.writeRunLog(ctx, runLog)

	urls, err := p.source.ListCandidateDocuments(ctx)
	if err != nil {
		recordRun("error")
		report.Succeeded = false
		report.Errors = append(report.Errors, err.Error())
		p.finishRunLog(ctx, runLog, report, start)
		return report, fmt.Errorf("listing candidate documents: %w", err)
	}
	report.SourceURLs = urls

	if len(urls) == 0 {
		report.Note = "no candidate documents found"
		p.log.Info("no candidate documents found")
		recordRun("success")
		p.finishRunLog(ctx, runLog, report, start)
		return report, nil
	}

	for _, url := range urls {
		if err := p.processDocument(ctx, url, report); err != nil {
			// Per-document failure: record and continue with the rest.
			p.log.Warn("document skipped", "url", url, "error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", url, err))
		}
	}

	recordRun("success")
	p.finishRunLog(ctx, runLog, report, start)

	if pruned, err := p.store.PruneRunLogs(ctx, start.Add(-runLogRetention)); err != nil {
		p.log.Warn("pruning run logs failed", "error", err)
	} else if pruned > 0 {
		p.log.Info("pruned old run logs", "count", pruned)
	}

	return report, nil
}

// processDocument fetches, parses, validates and persists one document.
func (p *Pipeline) processDocument(ctx context.Context, url string, report *Report) error {
	doc, err := p.source.FetchDocument(ctx, url)
	if err != nil {
		return err
	}

	sub, err := p.parser.Parse(ctx, doc.Markdown)
	if err != nil {
		return fmt.Errorf("extraction: %w", err)
	}
	sub.SourceURL = doc.URL
	sub.IngestedAt = p.now()

	days, err := p.validate(sub)
	if err != nil {
		return fmt.Errorf("validation: %w", err)
	}

	exists, err := p.store.SubmissionExists(ctx, sub.WeekID)
	if err != nil {
		return err
	}
	if exists {
		p.log.Info("submission already processed", "week_id", sub.WeekID, "url", url)
		report.Note = appendNote(report.Note, fmt.Sprintf("week %s already processed", sub.WeekID))
		return nil
	}

	for _, day := range days {
		inserted, err := p.store.PutDay(ctx, day)
		if err != nil {
			return err
		}
		if inserted {
			recordDayPersisted()
		} else {
			p.log.Info("day already stored, keeping existing record", "date", day.Date.Format("2006-01-02"))
		}
	}

	if err := p.store.RecordSubmission(ctx, sub.WeekID, sub.SourceURL, sub.IngestedAt); err != nil {
		return err
	}
	if err := p.store.MarkUpdated(ctx, p.now()); err != nil {
		return err
	}

	report.ProcessedCount++
	recordSuccessWatermark(p.now())
	p.log.Info("submission stored", "week_id", sub.WeekID, "days", len(days), "url", url)
	return nil
}

// validate checks the untrusted candidate's structure and resolves its
// partial dates. Nothing is persisted unless the whole document validates.
func (p *Pipeline) validate(sub *models.WeekSubmission) ([]models.DaySchedule, error) {
	if sub.WeekID == "" {
		return nil, fmt.Errorf("missing week identifier")
	}
	if n := len(sub.Days); n < models.MinWeekDays || n > models.MaxWeekDays {
		return nil, fmt.Errorf("got %d days, want %d-%d", n, models.MinWeekDays, models.MaxWeekDays)
	}

	ref := p.now()
	days := make([]models.DaySchedule, 0, len(sub.Days))
	for i, d := range sub.Days {
		if d.DayName == "" {
			return nil, fmt.Errorf("day %d: missing day name", i)
		}
		pd, err := models.ParsePartialDate(d.DisplayDate)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", i, err)
		}
		date, err := dates.Normalize(pd, ref)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", i, err)
		}
		sessions := d.Sessions
		if sessions == nil {
			sessions = []models.TrainingSession{}
		}
		days = append(days, models.DaySchedule{
			Date:        date,
			DayName:     d.DayName,
			DisplayDate: pd.String(),
			Sessions:    sessions,
		})
	}
	return days, nil
}

// writeRunLog inserts a run log entry; failures are logged, never fatal.
func (p *Pipeline) writeRunLog(ctx context.Context, log storage.RunLog) {
	if err := p.store.InsertRunLog(ctx, log); err != nil {
		p.log.Warn("writing run log failed", "error", err)
	}
}

// finishRunLog updates the run log with the terminal outcome.
func (p *Pipeline) finishRunLog(ctx context.Context, runLog storage.RunLog, report *Report, start time.Time) {
	durationMs := int(p.now().Sub(start).Milliseconds())
	runLog.Status = "success"
	if !report.Succeeded {
		runLog.Status = "error"
	}
	runLog.ProcessedCount = report.ProcessedCount
	runLog.Errors = report.Errors
	runLog.SourceURLs = report.SourceURLs
	runLog.DurationMs = &durationMs
	if err := p.store.UpdateRunLog(ctx, runLog); err != nil {
		p.log.Warn("updating run log failed", "error", err)
	}
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
