// Package parse converts human-entered size and date strings into
// canonical values. Parse failures are reported immediately and never
// touch the store.
package parse

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Size parses strings like "100MB", "1.5GiB" or "2048" into bytes.
func Size(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(n), nil
}

// Date parses a date string and normalizes it to midnight UTC of that
// day, matching the day-granularity comparison used by date filters.
func Date(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		y, m, d := t.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}
