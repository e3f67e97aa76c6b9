package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gofileup/gofileup/internal/model"
	"github.com/gofileup/gofileup/internal/store"
)

// SortField names a sortable file attribute.
type SortField string

const (
	SortByName     SortField = "name"
	SortBySize     SortField = "size"
	SortByDate     SortField = "date"
	SortByExpiry   SortField = "expiry"
	SortByCategory SortField = "category"
	SortByLink     SortField = "link"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortField validates a user-supplied sort field name.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(s)); f {
	case SortByName, SortBySize, SortByDate, SortByExpiry, SortByCategory, SortByLink:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", s)
	}
}

// ParseSortOrder validates a user-supplied sort direction.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(s)); o {
	case OrderAsc, OrderDesc:
		return o, nil
	case "":
		return OrderAsc, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// DefaultPerPage is the page size used when the caller does not choose
// one.
const DefaultPerPage = 20

// QueryEngine evaluates filter/sort/paginate queries over the tracked
// files. All evaluation happens in memory on the store snapshot; the
// store never learns about filter semantics.
type QueryEngine struct {
	store *store.Store
}

// NewQueryEngine creates a query engine.
func NewQueryEngine(st *store.Store) *QueryEngine {
	return &QueryEngine{store: st}
}

// Query returns one page of the tracked files matching every
// predicate, sorted by field/order, along with the total match count
// before pagination.
//
// perPage <= 0 disables pagination. Pages are 1-based; a page beyond
// the last yields an empty slice, not an error.
func (q *QueryEngine) Query(ctx context.Context, preds []Predicate, field SortField, order SortOrder, page, perPage int) ([]*model.FileRecord, int, error) {
	all, err := q.store.AllFiles(ctx)
	if err != nil {
		return nil, 0, err
	}
	match := Combine(preds...)

	var files []*model.FileRecord
	for _, f := range all {
		if match(f) {
			files = append(files, f)
		}
	}
	total := len(files)

	SortFiles(files, field, order)

	if perPage <= 0 {
		return files, total, nil
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= total {
		return []*model.FileRecord{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return files[start:end], total, nil
}

// SortFiles sorts in place by the primary field with the requested
// direction. Ties always break by upload date ascending, then id
// ascending, regardless of the requested order, so equal keys render
// in a stable and predictable sequence.
func SortFiles(files []*model.FileRecord, field SortField, order SortOrder) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if c := compareField(a, b, field); c != 0 {
			if order == OrderDesc {
				return c > 0
			}
			return c < 0
		}
		if !a.UploadedAt.Equal(b.UploadedAt) {
			return a.UploadedAt.Before(b.UploadedAt)
		}
		return a.ID < b.ID
	})
}

func compareField(a, b *model.FileRecord, field SortField) int {
	switch field {
	case SortBySize:
		return compareInt64(a.Size, b.Size)
	case SortByDate:
		return a.UploadedAt.Compare(b.UploadedAt)
	case SortByExpiry:
		// The exact expiry instant, not the floored day count, so two
		// files expiring hours apart never tie.
		return a.ExpiresAt().Compare(b.ExpiresAt())
	case SortByCategory:
		return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
	case SortByLink:
		return strings.Compare(a.DownloadLink, b.DownloadLink)
	default: // SortByName
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
