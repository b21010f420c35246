package engine

import (
	"fmt"

	"github.com/drummonds/pdftopng/domain"
)

// ResolvePageRange turns the user-facing 1-based inclusive start/end pages into
// ascending zero-based page indices. A zero start or end selects the first or
// last page. An empty selection is an error, never an empty slice.
func ResolvePageRange(pageCount, start, end int) ([]int, error) {
	if pageCount <= 0 {
		return nil, domain.PageRangeError("document has no pages")
	}
	if start < 0 || end < 0 {
		return nil, domain.PageRangeError(fmt.Sprintf("page numbers must be positive, got start %d end %d", start, end))
	}

	first := start
	if first == 0 {
		first = 1
	}
	last := end
	if last == 0 {
		last = pageCount
	}

	if first > pageCount {
		return nil, domain.PageRangeError(fmt.Sprintf("start-page out of range: %d (1..%d)", first, pageCount))
	}
	if last > pageCount {
		return nil, domain.PageRangeError(fmt.Sprintf("end-page out of range: %d (1..%d)", last, pageCount))
	}
	if first > last {
		return nil, domain.PageRangeError(fmt.Sprintf("start-page (%d) cannot be greater than end-page (%d)", first, last))
	}

	indices := make([]int, 0, last-first+1)
	for page := first; page <= last; page++ {
		indices = append(indices, page-1)
	}
	return indices, nil
}
