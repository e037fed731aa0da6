package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"sjsage522/newsworker/helpers"
	"sjsage522/newsworker/logger"
	"sjsage522/newsworker/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// StaticView reads server-rendered search pages over plain HTTP
type StaticView struct {
	BaseURL   string
	Selectors Selectors
	pageURL   *url.URL
	doc       *goquery.Document
	log       *logger.Logger
}

// NewStaticView creates a listing view backed by goquery
func NewStaticView(baseURL string, selectors Selectors) *StaticView {
	return &StaticView{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Selectors: selectors,
		log:       logger.ForBrowser(),
	}
}

// SearchURL builds the search results address for phrase
func SearchURL(baseURL, phrase string) string {
	return strings.TrimRight(baseURL, "/") + "/search?q=" + url.QueryEscape(phrase)
}

// OpenSearch loads the first results page for phrase
func (v *StaticView) OpenSearch(ctx context.Context, phrase string) error {
	return v.load(ctx, SearchURL(v.BaseURL, phrase))
}

func (v *StaticView) load(ctx context.Context, target string) error {
	pageURL, err := url.Parse(target)
	if err != nil {
		return errors.NewBrowser("static", "invalid page URL "+target, err)
	}

	v.log.Debug().Str("url", target).Msg("Loading page")

	utf8Body, err := helpers.FetchWithRandomHeaders(ctx, target)
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return errors.NewBrowser("static", "failed to parse HTML", err)
	}

	v.pageURL = pageURL
	v.doc = doc
	return nil
}

// CurrentPageElements returns the listing entries of the loaded page
func (v *StaticView) CurrentPageElements(ctx context.Context) ([]Element, error) {
	if v.doc == nil {
		return nil, errors.NewBrowser("static", "no page loaded", nil)
	}

	var elements []Element
	v.doc.Find(v.Selectors.Listing).Each(func(i int, s *goquery.Selection) {
		elements = append(elements, &staticElement{sel: s, base: v.pageURL})
	})
	return elements, nil
}

// ClickNext follows the link inside the next page control
func (v *StaticView) ClickNext(ctx context.Context) (bool, error) {
	if v.doc == nil {
		return false, errors.NewBrowser("static", "no page loaded", nil)
	}

	control := v.doc.Find(v.Selectors.NextPage).First()
	if control.Length() == 0 {
		return false, nil
	}

	href, ok := control.Attr("href")
	if !ok {
		href, ok = control.Find("a[href]").First().Attr("href")
	}
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		v.log.Warn().Msg("Next page control has no link")
		return false, nil
	}

	next, err := v.pageURL.Parse(href)
	if err != nil {
		return false, errors.NewBrowser("static", "invalid next page link "+href, err)
	}

	if err := v.load(ctx, next.String()); err != nil {
		return false, err
	}
	return true, nil
}

// Close releases the loaded document
func (v *StaticView) Close() error {
	v.doc = nil
	return nil
}

// staticElement is one listing entry of a goquery document
type staticElement struct {
	sel  *goquery.Selection
	base *url.URL
}

func (e *staticElement) find(selector string) (*goquery.Selection, error) {
	found := e.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, fmt.Errorf("no element matches %q", selector)
	}
	return found, nil
}

// Text returns the trimmed text of the first match
func (e *staticElement) Text(ctx context.Context, selector string) (string, error) {
	found, err := e.find(selector)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(found.Text()), nil
}

// Attr returns an attribute of the first match. src and href are resolved
// against the page address the way a browser reports them.
func (e *staticElement) Attr(ctx context.Context, selector, name string) (string, error) {
	found, err := e.find(selector)
	if err != nil {
		return "", err
	}

	value, ok := found.Attr(name)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", fmt.Errorf("element %q has no %s attribute", selector, name)
	}

	if (name == "src" || name == "href") && e.base != nil {
		if resolved, err := e.base.Parse(value); err == nil {
			return resolved.String(), nil
		}
	}
	return value, nil
}
