package crawler

import (
	"context"
	"fmt"
	"time"

	"sjsage522/newsworker/logger"
)

// scrapeState tracks where a scrape is in its page loop
type scrapeState int

const (
	stateScanning scrapeState = iota
	stateStopRequested
	stateDone
)

func (s scrapeState) String() string {
	switch s {
	case stateScanning:
		return "scanning"
	case stateStopRequested:
		return "stop_requested"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Scraper walks a search listing page by page and collects in-window articles
type Scraper struct {
	View      ListingView
	Extractor *Extractor
	MaxPages  int
	log       *logger.Logger
}

// NewScraper creates a new scraper. maxPages <= 0 means no page limit.
func NewScraper(view ListingView, extractor *Extractor, maxPages int) *Scraper {
	return &Scraper{
		View:      view,
		Extractor: extractor,
		MaxPages:  maxPages,
		log:       logger.ForScraper(),
	}
}

// Scrape collects the articles for phrase whose date is not before cutoff.
// The first article older than cutoff ends the scrape; the rest of its page
// is not evaluated. View errors are returned as is.
func (s *Scraper) Scrape(ctx context.Context, phrase string, cutoff time.Time) ([]Article, error) {
	if err := s.View.OpenSearch(ctx, phrase); err != nil {
		return nil, fmt.Errorf("open search for %q: %w", phrase, err)
	}

	var articles []Article
	state := stateScanning
	page := 1

	for state != stateDone {
		elements, err := s.View.CurrentPageElements(ctx)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", page, err)
		}

		s.log.Info().
			Int("page", page).
			Int("elements", len(elements)).
			Msg("Scraping page")

		for _, el := range elements {
			extraction := s.Extractor.Extract(ctx, el, phrase)
			if extraction.IsSkipped() {
				continue
			}

			article := extraction.Article
			if article.Date.Before(cutoff) {
				s.log.Info().
					Int("page", page).
					Str("date", article.Date.Format("2006-01-02")).
					Str("cutoff", cutoff.Format("2006-01-02")).
					Msg("Reached article older than the date window")
				state = stateStopRequested
				break
			}

			articles = append(articles, article)
		}

		state, err = s.advance(ctx, state, page)
		if err != nil {
			return nil, err
		}
		page++
	}

	s.log.Info().
		Int("pages", page-1).
		Int("articles", len(articles)).
		Msg("Scrape finished")

	return articles, nil
}

// advance decides what follows a finished page
func (s *Scraper) advance(ctx context.Context, state scrapeState, page int) (scrapeState, error) {
	if state == stateStopRequested {
		return stateDone, nil
	}
	if s.MaxPages > 0 && page >= s.MaxPages {
		s.log.Info().Int("max_pages", s.MaxPages).Msg("Page limit reached")
		return stateDone, nil
	}

	clicked, err := s.View.ClickNext(ctx)
	if err != nil {
		return stateDone, fmt.Errorf("load page %d: %w", page+1, err)
	}
	if !clicked {
		s.log.Debug().Int("page", page).Msg("No next page control")
		return stateDone, nil
	}
	return stateScanning, nil
}
