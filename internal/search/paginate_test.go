package search

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"teztech/internal/database"
)

func sequentialJobs(n int) []database.Job {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jobs := make([]database.Job, 0, n)
	for i := 1; i <= n; i++ {
		jobs = append(jobs, database.Job{
			Model: gorm.Model{
				ID:        uint(i),
				CreatedAt: base.Add(time.Duration(i) * time.Hour),
			},
			Title: fmt.Sprintf("Job %d", i),
		})
	}
	return jobs
}

func TestSortNewestFirst(t *testing.T) {
	jobs := sequentialJobs(5)
	SortNewestFirst(jobs)

	for i := 0; i < len(jobs)-1; i++ {
		if jobs[i].CreatedAt.Before(jobs[i+1].CreatedAt) {
			t.Fatalf("jobs not in descending order at %d: %v", i, ids(jobs))
		}
	}
	if jobs[0].ID != 5 {
		t.Fatalf("newest job should come first, got %d", jobs[0].ID)
	}
}

func TestSortNewestFirstIsStable(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jobs := []database.Job{
		{Model: gorm.Model{ID: 7, CreatedAt: ts}},
		{Model: gorm.Model{ID: 3, CreatedAt: ts}},
		{Model: gorm.Model{ID: 9, CreatedAt: ts}},
	}
	SortNewestFirst(jobs)
	assertIDs(t, jobs, 7, 3, 9)
}

func TestPaginatePageCount(t *testing.T) {
	jobs := sequentialJobs(23)

	result := Paginate(jobs, 3, 10)
	if result.TotalMatches != 23 {
		t.Fatalf("total matches = %d, want 23", result.TotalMatches)
	}
	if result.TotalPages != 3 {
		t.Fatalf("total pages = %d, want 3", result.TotalPages)
	}
	if len(result.Items) != 3 {
		t.Fatalf("page 3 has %d items, want 3", len(result.Items))
	}
	if result.CurrentPage != 3 {
		t.Fatalf("current page = %d, want 3", result.CurrentPage)
	}
}

func TestPaginateEmptySet(t *testing.T) {
	result := Paginate(nil, 1, 10)
	if result.TotalPages != 1 {
		t.Fatalf("empty set should still report 1 page, got %d", result.TotalPages)
	}
	if result.TotalMatches != 0 || len(result.Items) != 0 {
		t.Fatalf("unexpected result for empty set: %+v", result)
	}
}

func TestPaginateOutOfRangePageIsEchoed(t *testing.T) {
	jobs := sequentialJobs(5)

	result := Paginate(jobs, 9, 10)
	if result.CurrentPage != 9 {
		t.Fatalf("out-of-range page should be echoed, got %d", result.CurrentPage)
	}
	if len(result.Items) != 0 {
		t.Fatalf("out-of-range page should have no items, got %d", len(result.Items))
	}
	if result.TotalPages != 1 {
		t.Fatalf("total pages = %d, want 1", result.TotalPages)
	}
}

// Concatenating all pages must reproduce the ordered set exactly once.
func TestPaginateCoversEverythingOnce(t *testing.T) {
	for _, pageSize := range []int{1, 3, 7, 10, 23, 50} {
		jobs := sequentialJobs(23)
		SortNewestFirst(jobs)

		seen := make([]uint, 0, len(jobs))
		first := Paginate(jobs, 1, pageSize)
		for page := 1; page <= first.TotalPages; page++ {
			result := Paginate(jobs, page, pageSize)
			seen = append(seen, ids(result.Items)...)
		}

		if len(seen) != len(jobs) {
			t.Fatalf("pageSize %d: saw %d items, want %d", pageSize, len(seen), len(jobs))
		}
		for i, j := range jobs {
			if seen[i] != j.ID {
				t.Fatalf("pageSize %d: position %d has id %d, want %d", pageSize, i, seen[i], j.ID)
			}
		}
	}
}
