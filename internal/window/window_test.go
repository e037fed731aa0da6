package window

import (
	"testing"
	"time"

	"sjsage522/newsworker/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	testCases := []struct {
		name     string
		code     string
		now      time.Time
		expected time.Time
	}{
		{"current", "1", time.Date(2026, time.October, 18, 15, 4, 5, 0, time.UTC), date(2026, time.October, 18)},
		{"current alias", "0", time.Date(2026, time.October, 18, 23, 59, 0, 0, time.UTC), date(2026, time.October, 18)},
		{"previous", "2", time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC), date(2026, time.September, 30)},
		{"before previous", "3", time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC), date(2026, time.August, 31)},
		{"previous across year", "2", date(2026, time.January, 15), date(2025, time.December, 31)},
		{"before previous across year", "3", date(2026, time.January, 15), date(2025, time.November, 30)},
		{"previous leap february", "2", date(2024, time.March, 1), date(2024, time.February, 29)},
		{"before previous from march", "3", date(2024, time.March, 31), date(2024, time.January, 31)},
		{"before previous from first of month", "3", date(2024, time.May, 1), date(2024, time.March, 31)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cutoff, err := Resolve(tc.code, tc.now)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, cutoff)
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	for _, code := range []string{"0", "1", "2", "3"} {
		first, err := Resolve(code, now)
		assert.NoError(t, err)
		second, err := Resolve(code, now)
		assert.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestResolveInvalidCode(t *testing.T) {
	for _, code := range []string{"", "4", "-1", " 1", "two"} {
		_, err := Resolve(code, time.Now())
		assert.Error(t, err, "code %q", code)
		assert.True(t, errors.IsInvalidWindowCode(err), "code %q", code)
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "current month", Describe("0"))
	assert.Equal(t, "current month", Describe("1"))
	assert.Equal(t, "past month", Describe("2"))
	assert.Equal(t, "month before the past month", Describe("3"))
	assert.Equal(t, "unknown", Describe("9"))
}
