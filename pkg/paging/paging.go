// Package paging provides 1-based page math for client-side collections.
package paging

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Params holds the pagination state for a derived view.
type Params struct {
	Page     int // 1-based
	PageSize int
}

// Normalize clamps the parameters into a usable range. A non-positive page
// becomes 1 and a non-positive or oversized page size falls back to the
// defaults.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// TotalPages returns the number of pages needed to show total items. An empty
// collection still has one (empty) page.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Window returns the [start, end) slice bounds for the given page. Pages past
// the end of the collection yield an empty window rather than an error.
func (p Params) Window(total int) (start, end int) {
	p = p.Normalize()
	start = (p.Page - 1) * p.PageSize
	if start >= total {
		return total, total
	}
	end = start + p.PageSize
	if end > total {
		end = total
	}
	return start, end
}

// HasNext reports whether a page exists after the current one.
func (p Params) HasNext(total int) bool {
	p = p.Normalize()
	return p.Page < TotalPages(total, p.PageSize)
}

// HasPrevious reports whether a page exists before the current one.
func (p Params) HasPrevious() bool {
	return p.Page > 1
}
