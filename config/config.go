package config

import (
	"os"
	"strconv"
	"time"

	"sjsage522/newsworker/pkg/errors"
)

// Browser modes
const (
	BrowserModeChrome = "chrome"
	BrowserModeHTTP   = "http"
)

// Work item sources
const (
	SourceFile  = "file"
	SourceRedis = "redis"
)

// Config represents the application configuration
type Config struct {
	// Output configuration
	OutputDir    string
	ReportFile   string
	ErrorLogFile string

	// Search configuration
	SearchBaseURL  string
	BrowserMode    string
	ChromeHeadless bool
	ChromeAddr     string
	BrowserTimeout time.Duration
	MaxPages       int

	// Listing selectors
	ListingSelector     string
	TitleSelector       string
	DescriptionSelector string
	TimestampSelector   string
	ImageSelector       string
	NextPageSelector    string

	// Work item configuration
	WorkItemsSource string
	WorkItemsFile   string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisItemsStream     string
	RedisItemsGroup      string
	RedisConsumer        string
	RedisOutputStream    string
	RedisStreamCount     int
	RedisStreamMaxLength int
	PublishArticles      bool

	// Memcache configuration
	MemcacheAddr   string
	ImageBlockTime time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	outputDir := getEnv("OUTPUT_DIR", "output")
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	browserTimeout, _ := strconv.Atoi(getEnv("BROWSER_TIMEOUT_SECONDS", "10"))
	maxPages, _ := strconv.Atoi(getEnv("MAX_PAGES", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	imageBlock, _ := strconv.Atoi(getEnv("IMAGE_BLOCK_SECONDS", "300"))
	headless, _ := strconv.ParseBool(getEnv("CHROME_HEADLESS", "true"))
	publish, _ := strconv.ParseBool(getEnv("PUBLISH_ARTICLES", "false"))

	hostname, _ := os.Hostname()

	return &Config{
		OutputDir:    outputDir,
		ReportFile:   getEnv("REPORT_FILE", "Output.xlsx"),
		ErrorLogFile: getEnv("ERROR_LOG_FILE", outputDir+"/errors.log"),

		SearchBaseURL:  getEnv("SEARCH_BASE_URL", "https://www.latimes.com"),
		BrowserMode:    getEnv("BROWSER_MODE", BrowserModeChrome),
		ChromeHeadless: headless,
		ChromeAddr:     getEnv("CHROME_REMOTE_URL", ""),
		BrowserTimeout: time.Duration(browserTimeout) * time.Second,
		MaxPages:       maxPages,

		ListingSelector:     getEnv("SELECTOR_LISTING", "div.promo-wrapper"),
		TitleSelector:       getEnv("SELECTOR_TITLE", "div.promo-title-container"),
		DescriptionSelector: getEnv("SELECTOR_DESCRIPTION", "p.promo-description"),
		TimestampSelector:   getEnv("SELECTOR_TIMESTAMP", "p.promo-timestamp"),
		ImageSelector:       getEnv("SELECTOR_IMAGE", "img.image"),
		NextPageSelector:    getEnv("SELECTOR_NEXT_PAGE", "div.search-results-module-next-page"),

		WorkItemsSource: getEnv("WORKITEMS_SOURCE", SourceFile),
		WorkItemsFile:   getEnv("WORKITEMS_FILE", "workitems.yaml"),

		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisItemsStream:     getEnv("REDIS_ITEMS_STREAM", "newsworker:items"),
		RedisItemsGroup:      getEnv("REDIS_ITEMS_GROUP", "newsworker"),
		RedisConsumer:        getEnv("REDIS_CONSUMER", hostname),
		RedisOutputStream:    getEnv("REDIS_OUTPUT_STREAM", "newsworker:articles"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLength,
		PublishArticles:      publish,

		MemcacheAddr:   getEnv("MEMCACHE_ADDR", "localhost:11211"),
		ImageBlockTime: time.Duration(imageBlock) * time.Second,

		Environment: getEnv("NEWSWORKER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the worker cannot run with
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.NewConfiguration("OUTPUT_DIR is required", nil)
	}
	if c.ReportFile == "" {
		return errors.NewConfiguration("REPORT_FILE is required", nil)
	}
	if c.SearchBaseURL == "" {
		return errors.NewConfiguration("SEARCH_BASE_URL is required", nil)
	}
	if c.BrowserMode != BrowserModeChrome && c.BrowserMode != BrowserModeHTTP {
		return errors.NewConfiguration("BROWSER_MODE must be 'chrome' or 'http', got "+c.BrowserMode, nil)
	}
	if c.BrowserTimeout <= 0 {
		return errors.NewConfiguration("BROWSER_TIMEOUT_SECONDS must be at least 1", nil)
	}
	if c.MaxPages < 0 {
		return errors.NewConfiguration("MAX_PAGES must not be negative", nil)
	}
	switch c.WorkItemsSource {
	case SourceFile:
		if c.WorkItemsFile == "" {
			return errors.NewConfiguration("WORKITEMS_FILE is required for the file source", nil)
		}
	case SourceRedis:
		if c.RedisItemsStream == "" || c.RedisItemsGroup == "" || c.RedisConsumer == "" {
			return errors.NewConfiguration("REDIS_ITEMS_STREAM, REDIS_ITEMS_GROUP and REDIS_CONSUMER are required for the redis source", nil)
		}
	default:
		return errors.NewConfiguration("WORKITEMS_SOURCE must be 'file' or 'redis', got "+c.WorkItemsSource, nil)
	}
	if c.PublishArticles && c.RedisStreamCount < 1 {
		return errors.NewConfiguration("REDIS_STREAM_COUNT must be at least 1", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
