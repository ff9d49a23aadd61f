// Package view computes derived presentations of a fetched record
// collection: predicate filtering, stable sorting, and pagination. Every
// function here is pure — the authoritative collection is never mutated, so a
// filter or sort change re-derives instantly without a re-fetch.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/hms/console/pkg/paging"
)

// Direction selects the sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// FilterState maps a filter-field name to its selected value. An empty value
// means the filter is inactive.
type FilterState map[string]string

// Active returns the subset of filters with non-empty values.
func (f FilterState) Active() FilterState {
	out := make(FilterState, len(f))
	for k, v := range f {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// SortState names the active sort key and its direction.
type SortState struct {
	Key       string
	Direction Direction
}

// Query bundles the full derivation input for one render.
type Query struct {
	Filters FilterState
	Sort    SortState
	Page    paging.Params
}

// Result is the derived projection handed to presentation.
type Result[T any] struct {
	Items      []T
	Total      int // matches after filtering, before pagination
	Page       int
	TotalPages int
}

// ---------------------------------------------------------------------------
// Field descriptors
// ---------------------------------------------------------------------------

// Comparator orders two records ascending under a named sort key.
type Comparator[T any] func(a, b T) bool

// Fields describes how a record type exposes its filterable and sortable
// fields. Text fields match by case-insensitive substring, exact fields by
// equality; all active filters must match (logical AND).
type Fields[T any] struct {
	Text  map[string]func(T) string
	Exact map[string]func(T) string
	Sort  map[string]Comparator[T]
}

// StringKey builds a lexicographic comparator from a string accessor.
func StringKey[T any](get func(T) string) Comparator[T] {
	return func(a, b T) bool { return get(a) < get(b) }
}

// NumberKey builds a numeric comparator from a float accessor.
func NumberKey[T any](get func(T) float64) Comparator[T] {
	return func(a, b T) bool { return get(a) < get(b) }
}

// TimeKey builds a chronological comparator from a time accessor.
func TimeKey[T any](get func(T) time.Time) Comparator[T] {
	return func(a, b T) bool { return get(a).Before(get(b)) }
}

// ---------------------------------------------------------------------------
// Derivation
// ---------------------------------------------------------------------------

// Matches reports whether a single record passes every active filter.
// Unknown filter names match nothing, so a typo excludes rather than silently
// admitting records.
func (f Fields[T]) Matches(rec T, filters FilterState) bool {
	for name, want := range filters {
		if want == "" {
			continue
		}
		if get, ok := f.Text[name]; ok {
			if !strings.Contains(strings.ToLower(get(rec)), strings.ToLower(want)) {
				return false
			}
			continue
		}
		if get, ok := f.Exact[name]; ok {
			if get(rec) != want {
				return false
			}
			continue
		}
		return false
	}
	return true
}

// Derive applies filters, sort, and pagination in that order and returns the
// resulting projection. The input slice is left untouched; sorting happens on
// a copy and is stable, so records comparing equal retain fetch order.
func Derive[T any](items []T, fields Fields[T], q Query) Result[T] {
	filtered := make([]T, 0, len(items))
	for _, rec := range items {
		if fields.Matches(rec, q.Filters) {
			filtered = append(filtered, rec)
		}
	}

	if cmp, ok := fields.Sort[q.Sort.Key]; ok {
		less := cmp
		if q.Sort.Direction == Descending {
			less = func(a, b T) bool { return cmp(b, a) }
		}
		sort.SliceStable(filtered, func(i, j int) bool { return less(filtered[i], filtered[j]) })
	}

	total := len(filtered)
	p := q.Page.Normalize()
	start, end := p.Window(total)

	return Result[T]{
		Items:      filtered[start:end],
		Total:      total,
		Page:       p.Page,
		TotalPages: paging.TotalPages(total, p.PageSize),
	}
}
