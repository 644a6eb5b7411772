// Package catalog implements the item catalog query engine: filter,
// sort and paginate a collection of items, either in memory or pushed
// down to the database through SQL fragments.
package catalog

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rewear-app/rewear/internal/model"
)

// Sort keys.
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortPointsLow  = "points-low"
	SortPointsHigh = "points-high"
)

// DefaultLimit is the page size used when none is given.
const DefaultLimit = 12

// Query describes one catalog listing request. The zero value, once
// normalized, lists the first page of everything, newest first.
type Query struct {
	Category  string // case-insensitive substring match
	Search    string // matches title/description substring or an exact tag
	Size      string // exact match
	Condition string // exact match
	SortBy    string
	Page      int
	Limit     int
}

// Page is the pagination envelope returned with every listing.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ParseValues builds a Query from URL parameters. Malformed or missing
// values are silently defaulted, never rejected: listing must stay
// permissive even for garbage input.
func ParseValues(values url.Values) Query {
	q := Query{
		Category:  values.Get("category"),
		Search:    values.Get("search"),
		Size:      values.Get("size"),
		Condition: values.Get("condition"),
		SortBy:    values.Get("sortBy"),
	}
	q.Page, _ = strconv.Atoi(values.Get("page"))
	q.Limit, _ = strconv.Atoi(values.Get("limit"))
	return q.Normalize()
}

// Normalize coerces page, limit and sort key to usable values.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	switch q.SortBy {
	case SortNewest, SortOldest, SortPointsLow, SortPointsHigh:
	default:
		q.SortBy = SortNewest
	}
	return q
}

// Offset returns the number of records to skip for the requested page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// PageFor computes the pagination envelope for a match count.
// Pages is 0 when nothing matched; page may exceed pages (the caller
// then gets an empty slice, not an error).
func PageFor(page, limit, total int) Page {
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Matches reports whether an item satisfies every filter in the query,
// including the fixed public-catalog baseline (status AVAILABLE).
// Title and description are matched as case-insensitive substrings;
// tags are matched by exact, case-sensitive membership.
func Matches(item *model.Item, q Query) bool {
	if item.Status != model.ItemStatusAvailable {
		return false
	}
	if q.Category != "" && !containsFold(item.Category, q.Category) {
		return false
	}
	if q.Size != "" && item.Size != q.Size {
		return false
	}
	if q.Condition != "" && item.Condition != q.Condition {
		return false
	}
	if q.Search != "" {
		if containsFold(item.Title, q.Search) || containsFold(item.Description, q.Search) {
			return true
		}
		for _, tag := range item.Tags {
			if tag == q.Search {
				return true
			}
		}
		return false
	}
	return true
}

// Apply runs the full query in memory: filter, sort, slice to one page.
// The input slice is never modified.
func Apply(items []model.Item, q Query) ([]model.Item, Page) {
	q = q.Normalize()

	var matched []model.Item
	for i := range items {
		if Matches(&items[i], q) {
			matched = append(matched, items[i])
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return less(&matched[i], &matched[j], q.SortBy)
	})

	envelope := PageFor(q.Page, q.Limit, len(matched))

	start := q.Offset()
	if start >= len(matched) {
		return []model.Item{}, envelope
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], envelope
}

// less orders two items for the given sort key, breaking ties by id
// ascending so repeated queries over unchanged data return identical
// ordering.
func less(a, b *model.Item, sortBy string) bool {
	switch sortBy {
	case SortOldest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case SortPointsLow:
		if a.PointValue != b.PointValue {
			return a.PointValue < b.PointValue
		}
	case SortPointsHigh:
		if a.PointValue != b.PointValue {
			return a.PointValue > b.PointValue
		}
	default: // newest
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
	}
	return a.ID < b.ID
}

// Predicates returns the SQL conditions and arguments equivalent to
// Matches, for delegating the filter to the database. Conditions are
// meant to be AND-joined into a WHERE clause over the items table.
func (q Query) Predicates() ([]string, []any) {
	conds := []string{`status = ?`}
	args := []any{model.ItemStatusAvailable}

	if q.Category != "" {
		conds = append(conds, `instr(lower(category), ?) > 0`)
		args = append(args, strings.ToLower(q.Category))
	}
	if q.Search != "" {
		conds = append(conds,
			`(instr(lower(title), ?) > 0 OR instr(lower(description), ?) > 0
			  OR EXISTS (SELECT 1 FROM item_tags t WHERE t.item_id = items.id AND t.tag = ?))`)
		needle := strings.ToLower(q.Search)
		args = append(args, needle, needle, q.Search)
	}
	if q.Size != "" {
		conds = append(conds, `size = ?`)
		args = append(args, q.Size)
	}
	if q.Condition != "" {
		conds = append(conds, `condition = ?`)
		args = append(args, q.Condition)
	}

	return conds, args
}

// OrderBy returns the SQL ORDER BY expression for the query's sort key,
// with the same id tie-break as the in-memory path.
func (q Query) OrderBy() string {
	switch q.SortBy {
	case SortOldest:
		return `items.created_at ASC, items.id ASC`
	case SortPointsLow:
		return `items.point_value ASC, items.id ASC`
	case SortPointsHigh:
		return `items.point_value DESC, items.id ASC`
	default:
		return `items.created_at DESC, items.id ASC`
	}
}

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
