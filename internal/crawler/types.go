package crawler

import (
	"context"
	"time"
)

// Article represents one news listing entry that passed extraction
type Article struct {
	Title            string
	Description      string
	Date             time.Time
	TitleCount       int
	DescriptionCount int
	HasMoney         bool
	ImagePath        string
}

// Extraction is the outcome of reading one listing element: either an
// Article or the reason the element was skipped.
type Extraction struct {
	Article Article
	Reason  error
}

// Extracted wraps a fully populated article
func Extracted(article Article) Extraction {
	return Extraction{Article: article}
}

// Skipped marks an element that could not be turned into an article
func Skipped(reason error) Extraction {
	return Extraction{Reason: reason}
}

// IsSkipped reports whether the element was skipped
func (e Extraction) IsSkipped() bool {
	return e.Reason != nil
}

// Element is one rendered listing entry
type Element interface {
	// Text returns the visible text of the first descendant matching selector
	Text(ctx context.Context, selector string) (string, error)

	// Attr returns an attribute of the first descendant matching selector
	Attr(ctx context.Context, selector, name string) (string, error)
}

// ListingView drives a paged search results listing
type ListingView interface {
	// OpenSearch loads the first results page for phrase
	OpenSearch(ctx context.Context, phrase string) error

	// CurrentPageElements returns the listing entries of the loaded page in document order
	CurrentPageElements(ctx context.Context) ([]Element, error)

	// ClickNext loads the next page. It returns false when the page has no next control.
	ClickNext(ctx context.Context) (bool, error)

	// Close releases the view
	Close() error
}

// ViewFactory opens a fresh listing view for one run
type ViewFactory func(ctx context.Context) (ListingView, error)

// ImageFetcher downloads an image and returns its local path, or "" on failure
type ImageFetcher interface {
	Fetch(ctx context.Context, imageURL string) string
}

// Selectors contains CSS selectors for various elements in the page
type Selectors struct {
	Listing     string
	Title       string
	Description string
	Timestamp   string
	Image       string
	ImageAttr   string
	NextPage    string
}

// DefaultSelectors matches the search results markup of latimes.com
func DefaultSelectors() Selectors {
	return Selectors{
		Listing:     "div.promo-wrapper",
		Title:       "div.promo-title-container",
		Description: "p.promo-description",
		Timestamp:   "p.promo-timestamp",
		Image:       "img.image",
		ImageAttr:   "src",
		NextPage:    "div.search-results-module-next-page",
	}
}
