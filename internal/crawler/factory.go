package crawler

import (
	"context"

	"sjsage522/newsworker/config"
	"sjsage522/newsworker/logger"
)

// SelectorsFromConfig builds the listing selectors from the configuration
func SelectorsFromConfig(cfg *config.Config) Selectors {
	sel := DefaultSelectors()
	sel.Listing = cfg.ListingSelector
	sel.Title = cfg.TitleSelector
	sel.Description = cfg.DescriptionSelector
	sel.Timestamp = cfg.TimestampSelector
	sel.Image = cfg.ImageSelector
	sel.NextPage = cfg.NextPageSelector
	return sel
}

// NewViewFactory returns a factory opening the listing view the configuration asks for
func NewViewFactory(cfg *config.Config) ViewFactory {
	sel := SelectorsFromConfig(cfg)

	if cfg.BrowserMode == config.BrowserModeHTTP {
		logger.ForBrowser().Info().Str("base_url", cfg.SearchBaseURL).Msg("Using static HTTP listing view")
		return func(ctx context.Context) (ListingView, error) {
			return NewStaticView(cfg.SearchBaseURL, sel), nil
		}
	}

	opts := ChromeOptions{
		RemoteURL: cfg.ChromeAddr,
		Headless:  cfg.ChromeHeadless,
		Timeout:   cfg.BrowserTimeout,
	}
	logger.ForBrowser().Info().
		Str("base_url", cfg.SearchBaseURL).
		Bool("headless", opts.Headless).
		Str("remote", opts.RemoteURL).
		Msg("Using Chrome listing view")

	return func(ctx context.Context) (ListingView, error) {
		return NewChromeView(ctx, cfg.SearchBaseURL, sel, opts)
	}
}
