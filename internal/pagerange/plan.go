// Package pagerange partitions a paginated document into per-job page ranges.
// Implements: prd001-planning (R1, R3);
//
//	docs/ARCHITECTURE § Planning.
package pagerange

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/clearclown/markpdfdown/pkg/types"
)

// ErrInvalidInput reports unusable planner parameters.
var ErrInvalidInput = errors.New("invalid plan input")

// Plan partitions [1, totalPages] into contiguous, non-overlapping ranges of
// at most pagesPerJob pages each, in ascending page order. The last range may
// be shorter. Identical inputs always produce identical boundaries (R1.3).
func Plan(totalPages, pagesPerJob int) ([]types.PageRange, error) {
	if totalPages < 1 {
		return nil, fmt.Errorf("%w: total pages %d, need at least 1", ErrInvalidInput, totalPages)
	}
	if pagesPerJob < 1 {
		return nil, fmt.Errorf("%w: pages per job %d, need at least 1", ErrInvalidInput, pagesPerJob)
	}

	count := (totalPages + pagesPerJob - 1) / pagesPerJob
	ranges := make([]types.PageRange, 0, count)
	for start := 1; start <= totalPages; start += pagesPerJob {
		end := start + pagesPerJob - 1
		if end > totalPages {
			end = totalPages
		}
		ranges = append(ranges, types.PageRange{
			Index: len(ranges) + 1,
			Start: start,
			End:   end,
		})
	}
	return ranges, nil
}

// PartName returns the part filename for the 1-based range index. Names are
// zero-padded to a fixed width so that ascending lexical order equals
// ascending range order; the merger recovers range order by sorting these
// names, never by completion order (R3.2).
func PartName(index, total int) string {
	width := len(strconv.Itoa(total))
	if width < 3 {
		width = 3
	}
	return fmt.Sprintf("part-%0*d.md", width, index)
}
