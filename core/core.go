package core

// Shared filter defaults for core read paths.
var (
	defaultDeleted = false
	defaultEnabled = true
)

const (
	limitDefault = 25
	limitMax     = 100
)

// Page holds the normalized offset cursor of a collection read.
type Page struct {
	Limit  int
	Offset int
}

// NormalizePage returns a Page with limit clamped to (0, limitMax] and a
// non-negative offset, falling back to defaults for absent or invalid
// values.
func NormalizePage(limit, offset int) Page {
	if limit <= 0 {
		limit = limitDefault
	}

	if limit > limitMax {
		limit = limitMax
	}

	if offset < 0 {
		offset = 0
	}

	return Page{
		Limit:  limit,
		Offset: offset,
	}
}

// Paging describes the position of a page within the full collection. Next
// is only set when rows exist beyond the current page.
type Paging struct {
	Next  *int `json:"next,omitempty"`
	Total int  `json:"total"`
}

func paging(total int, page Page) Paging {
	p := Paging{
		Total: total,
	}

	if page.Offset+page.Limit < total {
		next := page.Offset + page.Limit

		p.Next = &next
	}

	return p
}

// pageBounds clamps the page cursor against a collection of length total and
// returns the slice boundaries.
func pageBounds(total int, page Page) (int, int) {
	lo := page.Offset

	if lo > total {
		lo = total
	}

	hi := lo + page.Limit

	if hi > total {
		hi = total
	}

	return lo, hi
}
