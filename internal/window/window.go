// Package window turns a work item's limit date code into the oldest
// publication date a scrape accepts.
package window

import (
	"time"

	"sjsage522/newsworker/logger"
	"sjsage522/newsworker/pkg/errors"
)

// Window codes accepted in work items
const (
	CodeCurrent        = "1"
	CodeCurrentAlias   = "0"
	CodePrevious       = "2"
	CodeBeforePrevious = "3"
)

// Resolve returns the cutoff date for code relative to now. The result is a
// calendar date at UTC midnight.
//
// Codes "0" and "1" cut off at now's date itself, not at the start of the
// month.
func Resolve(code string, now time.Time) (time.Time, error) {
	today := Day(now)

	var cutoff time.Time
	switch code {
	case CodeCurrent, CodeCurrentAlias:
		cutoff = today
	case CodePrevious:
		cutoff = today.AddDate(0, 0, -today.Day())
	case CodeBeforePrevious:
		previousEnd := firstOfMonth(today).AddDate(0, 0, -1)
		cutoff = firstOfMonth(previousEnd).AddDate(0, 0, -1)
	default:
		return time.Time{}, errors.NewInvalidWindowCode(code)
	}

	logger.ForScraper().Info().
		Str("code", code).
		Str("window", Describe(code)).
		Str("month", cutoff.Format("January 2006")).
		Str("cutoff", cutoff.Format("2006-01-02")).
		Msg("Resolved date window")

	return cutoff, nil
}

// Describe returns a label for code, used in logs
func Describe(code string) string {
	switch code {
	case CodeCurrent, CodeCurrentAlias:
		return "current month"
	case CodePrevious:
		return "past month"
	case CodeBeforePrevious:
		return "month before the past month"
	default:
		return "unknown"
	}
}

// Day truncates t to its calendar date at UTC midnight
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
