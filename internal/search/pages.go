package search

// Ellipsis marks an elided run of page numbers in a PageNumbers sequence.
// Real page numbers start at 1, so 0 is unambiguous.
const Ellipsis = 0

// PageNumbers produces the compact page-control sequence for a result set:
// page 1, a window of pages around the current one, and the last page, with
// Ellipsis markers standing in for elided runs.
//
// One page or less needs no controls, so the sequence is empty.
func PageNumbers(currentPage, totalPages int) []int {
	if totalPages <= 1 {
		return []int{}
	}

	pages := []int{1}

	if currentPage > 3 {
		pages = append(pages, Ellipsis)
	}

	lo := currentPage - 1
	if lo < 2 {
		lo = 2
	}
	hi := currentPage + 1
	if hi > totalPages-1 {
		hi = totalPages - 1
	}
	for p := lo; p <= hi; p++ {
		pages = append(pages, p)
	}

	if currentPage < totalPages-2 {
		pages = append(pages, Ellipsis)
	}

	pages = append(pages, totalPages)
	return pages
}
