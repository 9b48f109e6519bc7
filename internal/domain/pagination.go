package domain

import "math"

// PaginationParams selects one page of a list in repository order. Page is 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset is the number of rows to skip. Pages below 1 read from the start; offsets that
// would overflow int saturate at math.MaxInt, which reads an empty page.
func (p PaginationParams) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}
