// Package core implements the engine behind gofileup: category
// resolution, upload orchestration with retry, deletion coordination,
// and query/filter evaluation over the tracking store.
package core

import (
	"strings"
	"time"

	"github.com/gofileup/gofileup/internal/model"
)

// Predicate decides whether a tracked file matches one filter
// criterion.
type Predicate func(*model.FileRecord) bool

// Combine conjoins predicates: every predicate must match. With no
// predicates everything matches. Evaluation short-circuits on the
// first non-match.
func Combine(preds ...Predicate) Predicate {
	return func(f *model.FileRecord) bool {
		for _, p := range preds {
			if !p(f) {
				return false
			}
		}
		return true
	}
}

// Search matches file names containing the term, case-insensitively.
func Search(term string) Predicate {
	term = strings.ToLower(term)
	return func(f *model.FileRecord) bool {
		return strings.Contains(strings.ToLower(f.Name), term)
	}
}

// SinceDate matches files uploaded on or after the given day.
// Comparison is at day granularity in UTC.
func SinceDate(day time.Time) Predicate {
	day = truncateDay(day)
	return func(f *model.FileRecord) bool {
		return !truncateDay(f.UploadedAt).Before(day)
	}
}

// BeforeDate matches files uploaded strictly before the given day.
func BeforeDate(day time.Time) Predicate {
	day = truncateDay(day)
	return func(f *model.FileRecord) bool {
		return truncateDay(f.UploadedAt).Before(day)
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LargerThan matches files strictly larger than n bytes.
func LargerThan(n int64) Predicate {
	return func(f *model.FileRecord) bool {
		return f.Size > n
	}
}

// SmallerThan matches files strictly smaller than n bytes.
func SmallerThan(n int64) Predicate {
	return func(f *model.FileRecord) bool {
		return f.Size < n
	}
}

// Category matches files assigned to the named category,
// case-insensitively. An uncategorized file never matches a non-empty
// name.
func Category(name string) Predicate {
	return func(f *model.FileRecord) bool {
		if f.Category == "" {
			return name == ""
		}
		return strings.EqualFold(f.Category, name)
	}
}

// Expired matches files past their expiry window at the given instant.
func Expired(now time.Time) Predicate {
	return func(f *model.FileRecord) bool {
		return f.Expiry(now) == model.ExpiryExpired
	}
}

// ExpiringSoon matches files inside the expiring-soon window but not
// yet expired. Mutually exclusive with Expired at any instant.
func ExpiringSoon(now time.Time) Predicate {
	return func(f *model.FileRecord) bool {
		return f.Expiry(now) == model.ExpiryExpiringSoon
	}
}
