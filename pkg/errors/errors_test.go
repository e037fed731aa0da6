package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrawlerError_Error(t *testing.T) {
	cause := stderrors.New("connection reset")

	err := NewNetwork("images", "failed to download", cause)
	assert.Equal(t, "[network] images: failed to download - connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	err = NewValidation("worker", "search phrase is empty")
	assert.Equal(t, "[validation] worker: search phrase is empty", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("item 7: %w", NewInvalidWindowCode("9"))

	assert.True(t, IsInvalidWindowCode(wrapped))
	assert.True(t, IsType(wrapped, ErrorTypeInvalidWindowCode))
	assert.False(t, IsType(wrapped, ErrorTypeBrowser))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeBrowser))
	assert.False(t, IsType(nil, ErrorTypeBrowser))

	assert.Contains(t, wrapped.Error(), `invalid limit date "9"`)
}

func TestIsRateLimit(t *testing.T) {
	err := NewRateLimit("helpers", "429")
	assert.True(t, IsRateLimit(err))
	assert.Contains(t, err.Error(), "rate limited; retry after 429")
	assert.False(t, IsRateLimit(NewNetwork("helpers", "unexpected status code: 500", nil)))
}

func TestIsRecoverable(t *testing.T) {
	testCases := []struct {
		err         *CrawlerError
		recoverable bool
	}{
		{NewExtraction("scraper", "missing title", nil), true},
		{NewDateParse("scraper", "yesterday"), true},
		{NewImageDownload("images", "status 404", nil), true},
		{NewBrowser("chrome", "crashed", nil), false},
		{NewReport("excel", "disk full", nil), false},
		{NewQueue("redis", "down", nil), false},
		{NewConfiguration("bad", nil), false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.recoverable, tc.err.IsRecoverable(), tc.err.Error())
	}
}
