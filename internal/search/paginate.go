package search

import (
	"sort"

	"teztech/internal/database"
)

// Result is one page of an ordered, filtered candidate set.
type Result struct {
	Items        []database.Job
	CurrentPage  int
	TotalPages   int
	TotalMatches int
}

// SortNewestFirst orders jobs by CreatedAt descending in place. The sort is
// stable so listings created at the same instant keep their insertion
// order, and repeated calls on identical input produce identical output.
func SortNewestFirst(jobs []database.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}

// Paginate slices an already-ordered result set into one page.
//
// A page beyond the end is not clamped: the requested page is echoed back
// with an empty Items slice. Whether to redirect to page 1 is the caller's
// decision, not this engine's.
func Paginate(ordered []database.Job, page, pageSize int) Result {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	total := len(ordered)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := make([]database.Job, end-start)
	copy(items, ordered[start:end])

	return Result{
		Items:        items,
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalMatches: total,
	}
}
