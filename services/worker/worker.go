package worker

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"strings"
	"time"

	"sjsage522/newsworker/helpers"
	"sjsage522/newsworker/internal"
	"sjsage522/newsworker/internal/crawler"
	"sjsage522/newsworker/internal/window"
	"sjsage522/newsworker/logger"
	"sjsage522/newsworker/pkg/errors"
	"sjsage522/newsworker/services/report"
	"sjsage522/newsworker/services/workitems"
)

// PublishKey is the stream entry field carrying a published article
const PublishKey = "b64_article"

// ReportWriter persists the articles of one run
type ReportWriter interface {
	Write(articles []crawler.Article) (string, error)
}

// Worker takes work items from a source and runs one scrape per item
type Worker struct {
	ctx       context.Context
	deps      internal.Dependencies
	views     crawler.ViewFactory
	images    crawler.ImageFetcher
	writer    ReportWriter
	journal   helpers.ErrorJournal
	selectors crawler.Selectors
	maxPages  int
	now       func() time.Time
	log       *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	deps internal.Dependencies,
	views crawler.ViewFactory,
	images crawler.ImageFetcher,
	writer ReportWriter,
	journal helpers.ErrorJournal,
	selectors crawler.Selectors,
	maxPages int,
) *Worker {
	return &Worker{
		ctx:       ctx,
		deps:      deps,
		views:     views,
		images:    images,
		writer:    writer,
		journal:   journal,
		selectors: selectors,
		maxPages:  maxPages,
		now:       time.Now,
		log:       logger.ForWorker(),
	}
}

// SetClock replaces the clock used to resolve date windows
func (w *Worker) SetClock(now func() time.Time) {
	w.now = now
}

// Start processes work items until the source is drained or the context ends
func (w *Worker) Start() error {
	source := w.deps.Source
	processed := 0

	for {
		item, err := source.Next(w.ctx)
		if stderrors.Is(err, workitems.ErrNoMoreItems) {
			w.log.Info().Int("items", processed).Msg("No more work items")
			return nil
		}
		if err != nil {
			if w.ctx.Err() != nil {
				w.log.Info().Int("items", processed).Msg("Worker stopped")
				return nil
			}
			return err
		}

		start := time.Now()
		itemLog := w.log.WithField("item", item.ID)

		if err := w.Process(w.ctx, item); err != nil {
			itemLog.Error().Err(err).Msg("Work item failed")
			w.journal.LogError(item.ID, err)
			if failErr := source.Fail(w.ctx, item, err); failErr != nil {
				itemLog.Error().Err(failErr).Msg("Failed to mark work item as failed")
			}
		} else if err := source.Complete(w.ctx, item); err != nil {
			itemLog.Error().Err(err).Msg("Failed to mark work item as complete")
		}

		processed++
		if os.Getenv("NEWSWORKER_ENVIRONMENT") != "production" {
			itemLog.Debug().Dur("elapsed", time.Since(start)).Msg("Work item finished")
		}
	}
}

// Process runs the scrape for one work item.
// An unknown window code is recorded and the item ends without output.
func (w *Worker) Process(ctx context.Context, item workitems.Item) error {
	itemLog := w.log.WithFields(logger.Fields{
		"item":       item.ID,
		"limit_date": item.LimitDate,
		"phrase":     item.Phrase,
	})

	cutoff, err := window.Resolve(item.LimitDate, w.now())
	if err != nil {
		if errors.IsInvalidWindowCode(err) {
			itemLog.Error().Err(err).Msg("Invalid date window, nothing to scrape")
			w.journal.LogError(item.ID, err)
			return nil
		}
		return err
	}

	phrase := strings.TrimSpace(item.Phrase)
	if phrase == "" {
		return errors.NewValidation("worker", "search phrase is empty")
	}

	itemLog.Info().
		Str("cutoff", cutoff.Format("2006-01-02")).
		Str("window", window.Describe(item.LimitDate)).
		Msg("Starting scrape")

	view, err := w.views(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := view.Close(); err != nil {
			itemLog.Warn().Err(err).Msg("Failed to close listing view")
		}
	}()

	scraper := crawler.NewScraper(view, crawler.NewExtractor(w.selectors, w.images), w.maxPages)
	articles, err := scraper.Scrape(ctx, phrase, cutoff)
	if err != nil {
		return err
	}

	path, err := w.writer.Write(articles)
	if err != nil {
		return err
	}

	itemLog.Info().
		Int("articles", len(articles)).
		Str("report", path).
		Msg("Scrape complete")

	w.publish(itemLog, articles)
	return nil
}

// publish sends every article to the output streams when a publisher is configured
func (w *Worker) publish(itemLog *logger.Logger, articles []crawler.Article) {
	if w.deps.Publisher == nil || len(articles) == 0 {
		return
	}

	for _, article := range articles {
		data, err := json.Marshal(report.Record(article))
		if err != nil {
			itemLog.Error().Err(err).Msg("Failed to encode article")
			continue
		}
		if err := w.deps.Publisher.Publish(PublishKey, data); err != nil {
			itemLog.Error().Err(err).Msg("Failed to publish article")
		}
	}

	// Trim all streams after publishing
	if err := w.deps.Publisher.TrimStreams(); err != nil {
		itemLog.Error().Err(err).Msg("Failed to trim streams")
	}
}
