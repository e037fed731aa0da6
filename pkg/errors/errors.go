package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeInvalidWindowCode represents an unknown date window code
	ErrorTypeInvalidWindowCode ErrorType = "invalid_window_code"
	// ErrorTypeExtraction represents a listing element missing a sub-field
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeDateParse represents a timestamp in no accepted format
	ErrorTypeDateParse ErrorType = "date_parse"
	// ErrorTypeImageDownload represents a failed image retrieval
	ErrorTypeImageDownload ErrorType = "image_download"
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeBrowser represents browser automation errors
	ErrorTypeBrowser ErrorType = "browser"
	// ErrorTypeReport represents spreadsheet export errors
	ErrorTypeReport ErrorType = "report"
	// ErrorTypeQueue represents work item queue errors
	ErrorTypeQueue ErrorType = "queue"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CrawlerError represents a crawler-specific error
type CrawlerError struct {
	Type     ErrorType
	Provider string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *CrawlerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Provider, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlerError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether the error only costs a single element or
// image and the run can go on.
func (e *CrawlerError) IsRecoverable() bool {
	switch e.Type {
	case ErrorTypeExtraction, ErrorTypeDateParse, ErrorTypeImageDownload:
		return true
	default:
		return false
	}
}

// New creates a new CrawlerError
func New(errType ErrorType, provider, message string, err error) *CrawlerError {
	return &CrawlerError{
		Type:     errType,
		Provider: provider,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewInvalidWindowCode creates an error for a window code outside the known set
func NewInvalidWindowCode(code string) *CrawlerError {
	return New(ErrorTypeInvalidWindowCode, "window", fmt.Sprintf("invalid limit date %q, choose from 0-3", code), nil)
}

// NewExtraction creates a new element extraction error
func NewExtraction(provider, message string, err error) *CrawlerError {
	return New(ErrorTypeExtraction, provider, message, err)
}

// NewDateParse creates a new timestamp parsing error
func NewDateParse(provider, text string) *CrawlerError {
	return New(ErrorTypeDateParse, provider, fmt.Sprintf("invalid date format: %q", text), nil)
}

// NewImageDownload creates a new image download error
func NewImageDownload(provider, message string, err error) *CrawlerError {
	return New(ErrorTypeImageDownload, provider, message, err)
}

// NewNetwork creates a new network error
func NewNetwork(provider, message string, err error) *CrawlerError {
	return New(ErrorTypeNetwork, provider, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(provider string, retryAfter string) *CrawlerError {
	message := fmt.Sprintf("rate limited; retry after %s", retryAfter)
	return New(ErrorTypeRateLimit, provider, message, nil)
}

// NewBrowser creates a new browser automation error
func NewBrowser(provider, message string, err error) *CrawlerError {
	return New(ErrorTypeBrowser, provider, message, err)
}

// NewReport creates a new report error
func NewReport(provider, message string, err error) *CrawlerError {
	return New(ErrorTypeReport, provider, message, err)
}

// NewQueue creates a new work item queue error
func NewQueue(provider, message string, err error) *CrawlerError {
	return New(ErrorTypeQueue, provider, message, err)
}

// NewCache creates a new cache error
func NewCache(provider, message string, err error) *CrawlerError {
	return New(ErrorTypeCache, provider, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(provider, message string, err error) *CrawlerError {
	return New(ErrorTypePublisher, provider, message, err)
}

// NewValidation creates a new validation error
func NewValidation(provider, message string) *CrawlerError {
	return New(ErrorTypeValidation, provider, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlerError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether any error in err's chain is a CrawlerError of the given type
func IsType(err error, errType ErrorType) bool {
	var crawlerErr *CrawlerError
	if !stderrors.As(err, &crawlerErr) {
		return false
	}
	return crawlerErr.Type == errType
}

// IsInvalidWindowCode reports whether err was caused by an unknown window code
func IsInvalidWindowCode(err error) bool {
	return IsType(err, ErrorTypeInvalidWindowCode)
}

// IsRateLimit reports whether err was caused by a rate limited response
func IsRateLimit(err error) bool {
	return IsType(err, ErrorTypeRateLimit)
}
