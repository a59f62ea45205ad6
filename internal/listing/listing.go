// Package listing implements the search, sort and paginate pipeline shared by
// the room, user and booking lists.
package listing

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"roomadmin/internal/models"
)

// Page sizes offered to operators.
var PageSizes = []int{5, 10, 20, 50}

const (
	DefaultPageSize = 5
	MaxPageSize     = 100
)

// Locale drives string collation.
var Locale = language.Indonesian

var ErrUnknownSortKey = errors.New("unknown sort key")

// Fields maps a column name to the accessor reading it from a record.
type Fields[T any] map[string]func(T) any

// Query selects one page of a filtered, sorted list.
type Query struct {
	Search   string
	Sort     SortState
	Page     int
	PageSize int
}

// Page is one slice of a list plus the numbers the pager shows.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	From       int `json:"from"`
	To         int `json:"to"`
}

// Apply filters records by q.Search, sorts them by q.Sort and cuts page q.Page.
// The input slice is not modified.
func Apply[T any](records []T, fields Fields[T], q Query) (Page[T], error) {
	filtered := Filter(records, fields, q.Search)

	if err := Sort(filtered, fields, q.Sort); err != nil {
		return Page[T]{}, err
	}

	return Paginate(filtered, q.Page, q.PageSize), nil
}

// Filter keeps the records where any field contains term, ignoring case.
func Filter[T any](records []T, fields Fields[T], term string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if term == "" || matches(rec, fields, term) {
			out = append(out, rec)
		}
	}
	return out
}

func matches[T any](rec T, fields Fields[T], term string) bool {
	for _, get := range fields {
		if strings.Contains(strings.ToLower(stringify(get(rec))), term) {
			return true
		}
	}
	return false
}

// Sort orders records in place, keeping the relative order of equal records.
// An unsorted state leaves the input order untouched.
func Sort[T any](records []T, fields Fields[T], state SortState) error {
	if !state.Active() {
		return nil
	}
	get, ok := fields[state.Key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, state.Key)
	}

	col := collate.New(Locale)
	slices.SortStableFunc(records, func(a, b T) int {
		c := compare(col, get(a), get(b))
		if state.Direction == Descending {
			return -c
		}
		return c
	})
	return nil
}

func compare(col *collate.Collator, a, b any) int {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if x, ok := instant(a); ok {
		if y, ok := instant(b); ok {
			return x.Compare(y)
		}
	}
	return col.CompareString(stringify(a), stringify(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func instant(v any) (time.Time, bool) {
	switch t := v.(type) {
	case models.Date:
		return t.Time, true
	case time.Time:
		return t, true
	}
	return time.Time{}, false
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
