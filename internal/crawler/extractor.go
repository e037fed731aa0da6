package crawler

import (
	"context"
	"regexp"
	"strings"
	"time"

	"sjsage522/newsworker/internal/window"
	"sjsage522/newsworker/logger"
	"sjsage522/newsworker/pkg/errors"
)

// Timestamp layouts tried in order: "Sep. 5, 2024" then "September 5, 2024"
var timestampLayouts = []string{
	"Jan. 2, 2006",
	"January 2, 2006",
}

// moneyRegex matches $11.1, $111,111.11, 11 dollars and 11 USD
var moneyRegex = regexp.MustCompile(`(?i)\$\d+(?:,\d{3})*(?:\.\d{2})?|\b\d+(?:,\d{3})*(?:\.\d{2})?\s*(?:dollars|usd)\b`)

// Extractor turns listing elements into articles
type Extractor struct {
	Selectors Selectors
	Images    ImageFetcher
	log       *logger.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(selectors Selectors, images ImageFetcher) *Extractor {
	return &Extractor{
		Selectors: selectors,
		Images:    images,
		log:       logger.ForScraper(),
	}
}

// Extract reads one element. Missing sub-fields and unknown timestamp formats
// come back as a skip, never as an error of the run.
func (e *Extractor) Extract(ctx context.Context, el Element, phrase string) Extraction {
	title, err := el.Text(ctx, e.Selectors.Title)
	if err != nil {
		return e.skip(errors.NewExtraction("title", "error extracting element data", err))
	}
	description, err := el.Text(ctx, e.Selectors.Description)
	if err != nil {
		return e.skip(errors.NewExtraction("description", "error extracting element data", err))
	}
	timestamp, err := el.Text(ctx, e.Selectors.Timestamp)
	if err != nil {
		return e.skip(errors.NewExtraction("timestamp", "error extracting element data", err))
	}
	imageURL, err := el.Attr(ctx, e.Selectors.Image, e.Selectors.ImageAttr)
	if err != nil {
		return e.skip(errors.NewExtraction("image", "error extracting element data", err))
	}

	date, err := ParseTimestamp(timestamp)
	if err != nil {
		return e.skip(err)
	}

	var imagePath string
	if e.Images != nil {
		imagePath = e.Images.Fetch(ctx, imageURL)
	}

	return Extracted(Article{
		Title:            title,
		Description:      description,
		Date:             date,
		TitleCount:       CountPhrase(title, phrase),
		DescriptionCount: CountPhrase(description, phrase),
		HasMoney:         ContainsMoney(description),
		ImagePath:        imagePath,
	})
}

func (e *Extractor) skip(reason error) Extraction {
	e.log.Warn().Err(reason).Msg("Skipping listing element")
	return Skipped(reason)
}

// ParseTimestamp parses listing timestamps such as "Oct. 3, 2026" or
// "October 3, 2026" into a calendar date
func ParseTimestamp(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return window.Day(t), nil
		}
	}
	return time.Time{}, errors.NewDateParse("timestamp", text)
}

// ContainsMoney reports whether text mentions an amount of money
func ContainsMoney(text string) bool {
	return moneyRegex.MatchString(text)
}

// CountPhrase counts non-overlapping, case-insensitive occurrences of phrase in text
func CountPhrase(text, phrase string) int {
	if phrase == "" {
		return 0
	}
	return strings.Count(strings.ToLower(text), strings.ToLower(phrase))
}
