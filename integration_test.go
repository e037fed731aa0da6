package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"sjsage522/newsworker/config"
	"sjsage522/newsworker/services/images"
	"sjsage522/newsworker/services/workitems"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

// Search results as the news site renders them, two pages for "economy"
const searchPageOne = `
<!DOCTYPE html>
<html>
<body>
    <ul class="search-results-module-results-menu">
        <li><div class="promo-wrapper">
            <div class="promo-title-container"><h3><a href="/story/1">Economy grows</a></h3></div>
            <p class="promo-description">GDP up $3 billion this quarter</p>
            <p class="promo-timestamp">Oct. 17, 2026</p>
            <img class="image" src="/img/p1a.jpg" />
        </div></li>
        <li><div class="promo-wrapper">
            <div class="promo-title-container"><h3><a href="/story/2">Markets</a></h3></div>
            <p class="promo-description">The economy and the economy</p>
            <p class="promo-timestamp">Oct. 9, 2026</p>
            <img class="image" src="/img/p1b.jpg" />
        </div></li>
        <li><div class="promo-wrapper">
            <div class="promo-title-container"><h3><a href="/story/3">Jobs report</a></h3></div>
            <p class="promo-description">Hiring slowed in September</p>
            <p class="promo-timestamp">September 30, 2026</p>
            <img class="image" src="/img/p1c.jpg" />
        </div></li>
    </ul>
    <div class="search-results-module-next-page"><a href="/search?q=economy&p=2">Next</a></div>
</body>
</html>
`

const searchPageTwo = `
<!DOCTYPE html>
<html>
<body>
    <ul class="search-results-module-results-menu">
        <li><div class="promo-wrapper">
            <div class="promo-title-container"><h3>Economy in August</h3></div>
            <p class="promo-description">Old news</p>
            <p class="promo-timestamp">Aug. 28, 2026</p>
            <img class="image" src="/img/p2a.jpg" />
        </div></li>
        <li><div class="promo-wrapper">
            <div class="promo-title-container"><h3>Economy today</h3></div>
            <p class="promo-description">Fresh but listed late</p>
            <p class="promo-timestamp">Oct. 10, 2026</p>
            <img class="image" src="/img/p2b.jpg" />
        </div></li>
    </ul>
    <div class="search-results-module-next-page"><a href="/search?q=economy&p=3">Next</a></div>
</body>
</html>
`

// newsSite serves the search pages and images and records every request
type newsSite struct {
	mu       sync.Mutex
	requests []string
}

func (s *newsSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.RequestURI())
	s.mu.Unlock()

	switch {
	case r.URL.Path == "/search" && r.URL.Query().Get("p") == "":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, searchPageOne)
	case r.URL.Path == "/search" && r.URL.Query().Get("p") == "2":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, searchPageTwo)
	case filepath.Dir(r.URL.Path) == "/img":
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg " + r.URL.Path))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *newsSite) requested(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r == uri {
			return true
		}
	}
	return false
}

func (s *newsSite) imageRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, r := range s.requests {
		if filepath.Dir(r) == "/img" {
			count++
		}
	}
	return count
}

// TestIntegration runs one work item end to end against a fake news site
func TestIntegration(t *testing.T) {
	site := &newsSite{}
	server := httptest.NewServer(site)
	defer server.Close()

	dir := t.TempDir()
	outputDir := filepath.Join(dir, "output")
	itemsFile := filepath.Join(dir, "workitems.yaml")
	err := os.WriteFile(itemsFile, []byte("- id: economy-2\n  payload:\n    limit_date: \"2\"\n    phrase: economy\n"), 0o644)
	assert.NoError(t, err)

	t.Setenv("BROWSER_MODE", config.BrowserModeHTTP)
	t.Setenv("SEARCH_BASE_URL", server.URL)
	t.Setenv("OUTPUT_DIR", outputDir)
	t.Setenv("WORKITEMS_SOURCE", config.SourceFile)
	t.Setenv("WORKITEMS_FILE", itemsFile)
	t.Setenv("PUBLISH_ARTICLES", "false")
	t.Setenv("MEMCACHE_ADDR", "127.0.0.1:1")

	cfg := config.LoadConfig()
	assert.NoError(t, cfg.Validate())

	ctx := context.Background()
	services, err := initializeServices(ctx, cfg)
	assert.NoError(t, err)
	defer services.Cleanup()

	w := newWorker(ctx, cfg, services)
	w.SetClock(func() time.Time {
		return time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	})

	assert.NoError(t, w.Start())

	// The work item completed
	source, ok := services.Source.(*workitems.FileSource)
	assert.True(t, ok)
	outcomes := source.Outcomes()
	assert.Len(t, outcomes, 1)
	assert.Equal(t, "economy-2", outcomes[0].Item.ID)
	assert.Empty(t, outcomes[0].Error)

	// Header plus the three page-one articles
	f, err := excelize.OpenFile(filepath.Join(outputDir, "Output.xlsx"))
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	assert.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, "title", rows[0][0])
	assert.Equal(t, "Economy grows", rows[1][0])
	assert.Equal(t, "10-17-2026", rows[1][2])
	assert.Equal(t, "TRUE", rows[1][5])
	assert.Equal(t, "Markets", rows[2][0])
	assert.Equal(t, "2", rows[2][4])
	assert.Equal(t, "Jobs report", rows[3][0])
	assert.Equal(t, "09-30-2026", rows[3][2])
	assert.Equal(t, filepath.Join(outputDir, "p1c.jpg"), rows[3][6])

	// Page two was opened, page three never was
	assert.True(t, site.requested("/search?q=economy&p=2"))
	assert.False(t, site.requested("/search?q=economy&p=3"))

	// The out-of-window record was fully extracted, the element after it never was
	assert.True(t, site.requested("/img/p2a.jpg"))
	assert.False(t, site.requested("/img/p2b.jpg"))
	assert.Equal(t, 4, site.imageRequests())

	data, err := os.ReadFile(filepath.Join(outputDir, "p1a.jpg"))
	assert.NoError(t, err)
	assert.Equal(t, "jpeg /img/p1a.jpg", string(data))

	// Nothing went to the error journal
	_, err = os.Stat(cfg.ErrorLogFile)
	assert.True(t, os.IsNotExist(err))
}

// TestIntegrationInvalidWindow checks that an unknown code is journaled and produces no report
func TestIntegrationInvalidWindow(t *testing.T) {
	site := &newsSite{}
	server := httptest.NewServer(site)
	defer server.Close()

	dir := t.TempDir()
	itemsFile := filepath.Join(dir, "workitems.yaml")
	err := os.WriteFile(itemsFile, []byte("- id: bad\n  payload:\n    limit_date: \"5\"\n    phrase: economy\n"), 0o644)
	assert.NoError(t, err)

	t.Setenv("BROWSER_MODE", config.BrowserModeHTTP)
	t.Setenv("SEARCH_BASE_URL", server.URL)
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "output"))
	t.Setenv("WORKITEMS_FILE", itemsFile)
	t.Setenv("MEMCACHE_ADDR", "127.0.0.1:1")

	cfg := config.LoadConfig()
	services, err := initializeServices(context.Background(), cfg)
	assert.NoError(t, err)
	defer services.Cleanup()

	w := newWorker(context.Background(), cfg, services)
	assert.NoError(t, w.Start())

	site.mu.Lock()
	assert.Empty(t, site.requests)
	site.mu.Unlock()

	_, err = os.Stat(filepath.Join(dir, "output", "Output.xlsx"))
	assert.True(t, os.IsNotExist(err))

	journal, err := os.ReadFile(cfg.ErrorLogFile)
	assert.NoError(t, err)
	assert.Contains(t, string(journal), "[bad]")
	assert.Contains(t, string(journal), `invalid limit date "5"`)
}

// blockedImageCache reports every image host as rate limited
type blockedImageCache struct{}

func (blockedImageCache) Get(key string) ([]byte, error) {
	if strings.HasPrefix(key, images.BlockKeyPrefix) {
		return []byte("300"), nil
	}
	return nil, errors.New("cache miss")
}

func (blockedImageCache) Set(key string, value []byte, expiration time.Duration) error {
	return nil
}

func (blockedImageCache) Delete(key string) error {
	return nil
}

// TestIntegrationCacheBlocksImages checks that the service cache reaches the image fetcher
func TestIntegrationCacheBlocksImages(t *testing.T) {
	site := &newsSite{}
	server := httptest.NewServer(site)
	defer server.Close()

	dir := t.TempDir()
	outputDir := filepath.Join(dir, "output")
	itemsFile := filepath.Join(dir, "workitems.yaml")
	err := os.WriteFile(itemsFile, []byte("- id: economy-2\n  payload:\n    limit_date: \"2\"\n    phrase: economy\n"), 0o644)
	assert.NoError(t, err)

	t.Setenv("BROWSER_MODE", config.BrowserModeHTTP)
	t.Setenv("SEARCH_BASE_URL", server.URL)
	t.Setenv("OUTPUT_DIR", outputDir)
	t.Setenv("WORKITEMS_FILE", itemsFile)
	t.Setenv("MEMCACHE_ADDR", "127.0.0.1:1")

	cfg := config.LoadConfig()
	services, err := initializeServices(context.Background(), cfg)
	assert.NoError(t, err)
	defer services.Cleanup()
	services.Cache = blockedImageCache{}

	w := newWorker(context.Background(), cfg, services)
	w.SetClock(func() time.Time {
		return time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	})
	assert.NoError(t, w.Start())

	assert.Equal(t, 0, site.imageRequests())

	f, err := excelize.OpenFile(filepath.Join(outputDir, "Output.xlsx"))
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	assert.NoError(t, err)
	assert.Len(t, rows, 4)
	for _, row := range rows[1:] {
		if len(row) > 6 {
			assert.Empty(t, row[6])
		}
	}
}
