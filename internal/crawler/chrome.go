package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sjsage522/newsworker/logger"
	"sjsage522/newsworker/pkg/errors"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configures how the browser is reached
type ChromeOptions struct {
	// RemoteURL is a devtools websocket or http endpoint. Empty starts a local Chrome.
	RemoteURL string
	Headless  bool
	// Timeout bounds every single browser lookup
	Timeout time.Duration
}

// ChromeView drives the search listing in a real browser
type ChromeView struct {
	BaseURL   string
	Selectors Selectors
	timeout   time.Duration

	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	log           *logger.Logger
}

// NewChromeView starts (or attaches to) a browser and returns a view on it
func NewChromeView(ctx context.Context, baseURL string, selectors Selectors, opts ChromeOptions) (*ChromeView, error) {
	log := logger.ForBrowser()

	var allocCtx context.Context
	var cancelAlloc context.CancelFunc
	if opts.RemoteURL != "" {
		log.Info().Str("remote", opts.RemoteURL).Msg("Attaching to remote Chrome")
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, opts.RemoteURL)
	} else {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.WindowSize(1280, 800),
		)
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, allocOpts...)
	}

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// An empty Run launches the browser so start failures surface here
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, errors.NewBrowser("chrome", "failed to start browser", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ChromeView{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		Selectors:     selectors,
		timeout:       timeout,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		log:           log,
	}, nil
}

// run executes actions with the lookup timeout, also stopping when ctx ends
func (v *ChromeView) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(v.browserCtx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// OpenSearch navigates to the results page for phrase
func (v *ChromeView) OpenSearch(ctx context.Context, phrase string) error {
	target := SearchURL(v.BaseURL, phrase)
	v.log.Info().Str("url", target).Msg("Opening search")

	err := v.run(ctx, 3*v.timeout,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return errors.NewBrowser("chrome", "failed to open "+target, err)
	}
	return nil
}

// CurrentPageElements returns the listing nodes of the loaded page
func (v *ChromeView) CurrentPageElements(ctx context.Context) ([]Element, error) {
	var nodes []*cdp.Node
	err := v.run(ctx, v.timeout,
		chromedp.Nodes(v.Selectors.Listing, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, errors.NewBrowser("chrome", "failed to list elements", err)
	}

	elements := make([]Element, 0, len(nodes))
	for _, node := range nodes {
		elements = append(elements, &chromeElement{view: v, node: node})
	}
	return elements, nil
}

// ClickNext clicks the next page control and waits for the new page
func (v *ChromeView) ClickNext(ctx context.Context) (bool, error) {
	var controls []*cdp.Node
	var before string
	err := v.run(ctx, v.timeout,
		chromedp.Location(&before),
		chromedp.Nodes(v.Selectors.NextPage, &controls, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	)
	if err != nil {
		return false, errors.NewBrowser("chrome", "failed to find next page control", err)
	}
	if len(controls) == 0 {
		return false, nil
	}

	ids := []cdp.NodeID{controls[0].NodeID}
	if err := v.run(ctx, v.timeout, chromedp.Click(ids, chromedp.ByNodeID)); err != nil {
		return false, errors.NewBrowser("chrome", "failed to click next page control", err)
	}

	if err := v.waitForNavigation(ctx, before); err != nil {
		return false, err
	}
	return true, nil
}

// waitForNavigation polls the location until it differs from before
func (v *ChromeView) waitForNavigation(ctx context.Context, before string) error {
	deadline := time.Now().Add(3 * v.timeout)
	for time.Now().Before(deadline) {
		var location string
		if err := v.run(ctx, v.timeout, chromedp.Location(&location)); err != nil {
			return errors.NewBrowser("chrome", "failed to read location", err)
		}
		if location != before {
			v.log.Debug().Str("url", location).Msg("Next page loaded")
			return v.run(ctx, 3*v.timeout, chromedp.WaitReady("body", chromedp.ByQuery))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return errors.NewBrowser("chrome", fmt.Sprintf("page did not change from %s", before), nil)
}

// Close shuts the browser down
func (v *ChromeView) Close() error {
	v.cancelBrowser()
	v.cancelAlloc()
	return nil
}

// chromeElement is one listing node in the live page
type chromeElement struct {
	view *ChromeView
	node *cdp.Node
}

func (e *chromeElement) find(ctx context.Context, selector string) ([]cdp.NodeID, error) {
	var found []*cdp.Node
	err := e.view.run(ctx, e.view.timeout,
		chromedp.Nodes(selector, &found, chromedp.ByQueryAll, chromedp.AtLeast(0), chromedp.FromNode(e.node)),
	)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("no element matches %q", selector)
	}
	return []cdp.NodeID{found[0].NodeID}, nil
}

// Text returns the rendered text of the first match
func (e *chromeElement) Text(ctx context.Context, selector string) (string, error) {
	ids, err := e.find(ctx, selector)
	if err != nil {
		return "", err
	}

	var text string
	if err := e.view.run(ctx, e.view.timeout, chromedp.Text(ids, &text, chromedp.ByNodeID)); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Attr returns the DOM property name of the first match, so src comes back absolute
func (e *chromeElement) Attr(ctx context.Context, selector, name string) (string, error) {
	ids, err := e.find(ctx, selector)
	if err != nil {
		return "", err
	}

	var value string
	if err := e.view.run(ctx, e.view.timeout, chromedp.JavascriptAttribute(ids, name, &value, chromedp.ByNodeID)); err != nil {
		return "", err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("element %q has no %s attribute", selector, name)
	}
	return value, nil
}
