package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teztech/internal/config"
	"teztech/internal/database"
)

func searchRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewJobHandler(db, nil, discardLogger(), config.SearchConfig{DefaultPageSize: 10, MaxPageSize: 50})
	router := gin.New()
	router.GET("/v1/jobs", h.SearchJobs)
	router.GET("/v1/jobs/:id", h.GetJob)
	return router
}

func seedJobs(t *testing.T, db *gorm.DB, open, closed int) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < open; i++ {
		job := database.Job{
			Title:       fmt.Sprintf("Backend Engineer %d", i+1),
			CompanyName: "Teztech",
			Category:    "engineering",
			City:        "Bangalore",
			Status:      database.JobOpen,
		}
		job.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := db.Create(&job).Error; err != nil {
			t.Fatalf("seed open job: %v", err)
		}
	}
	for i := 0; i < closed; i++ {
		job := database.Job{
			Title:       fmt.Sprintf("Closed Role %d", i+1),
			CompanyName: "Teztech",
			Category:    "engineering",
			Status:      database.JobClosed,
		}
		if err := db.Create(&job).Error; err != nil {
			t.Fatalf("seed closed job: %v", err)
		}
	}
}

func TestSearchJobsContract(t *testing.T) {
	db := newTestDB(t)
	seedJobs(t, db, 23, 2)
	router := searchRouter(db)

	rec := doJSON(t, router, http.MethodGet, "/v1/jobs", nil)
	wantStatus(t, rec, http.StatusOK)

	var resp searchResponse
	decodeBody(t, rec, &resp)

	if resp.TotalJobs != 23 {
		t.Errorf("totalJobs = %d, want 23 (closed listings must not count)", resp.TotalJobs)
	}
	if resp.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3", resp.TotalPages)
	}
	if resp.CurrentPage != 1 {
		t.Errorf("currentPage = %d, want 1", resp.CurrentPage)
	}
	if len(resp.Jobs) != 10 {
		t.Errorf("len(jobs) = %d, want 10", len(resp.Jobs))
	}
	wantPages := []int{1, 2, 3}
	if len(resp.PageNumbers) != len(wantPages) {
		t.Fatalf("pageNumbers = %v, want %v", resp.PageNumbers, wantPages)
	}
	for i, p := range wantPages {
		if resp.PageNumbers[i] != p {
			t.Fatalf("pageNumbers = %v, want %v", resp.PageNumbers, wantPages)
		}
	}

	// Newest listing first.
	if resp.Jobs[0].Title != "Backend Engineer 23" {
		t.Errorf("first job = %q, want the newest listing", resp.Jobs[0].Title)
	}
}

func TestSearchJobsCategoryFilter(t *testing.T) {
	db := newTestDB(t)
	seedJobs(t, db, 3, 0)
	design := database.Job{Title: "Product Designer", CompanyName: "Teztech", Category: "design", Status: database.JobOpen}
	if err := db.Create(&design).Error; err != nil {
		t.Fatalf("seed design job: %v", err)
	}
	router := searchRouter(db)

	rec := doJSON(t, router, http.MethodGet, "/v1/jobs?category=design", nil)
	wantStatus(t, rec, http.StatusOK)

	var resp searchResponse
	decodeBody(t, rec, &resp)
	if resp.TotalJobs != 1 || len(resp.Jobs) != 1 || resp.Jobs[0].Title != "Product Designer" {
		t.Errorf("category filter returned %v", resp.Jobs)
	}
}

func TestSearchJobsOutOfRangePageEchoes(t *testing.T) {
	db := newTestDB(t)
	seedJobs(t, db, 5, 0)
	router := searchRouter(db)

	rec := doJSON(t, router, http.MethodGet, "/v1/jobs?page=99", nil)
	wantStatus(t, rec, http.StatusOK)

	var resp searchResponse
	decodeBody(t, rec, &resp)
	if resp.CurrentPage != 99 {
		t.Errorf("currentPage = %d, want the requested 99", resp.CurrentPage)
	}
	if len(resp.Jobs) != 0 {
		t.Errorf("len(jobs) = %d, want 0 for a page past the end", len(resp.Jobs))
	}
	if resp.TotalJobs != 5 || resp.TotalPages != 1 {
		t.Errorf("totals = (%d jobs, %d pages), want (5, 1)", resp.TotalJobs, resp.TotalPages)
	}
}

func TestSearchJobsPageSizeCapped(t *testing.T) {
	db := newTestDB(t)
	seedJobs(t, db, 60, 0)
	router := searchRouter(db)

	rec := doJSON(t, router, http.MethodGet, "/v1/jobs?pageSize=500", nil)
	wantStatus(t, rec, http.StatusOK)

	var resp searchResponse
	decodeBody(t, rec, &resp)
	if len(resp.Jobs) != 50 {
		t.Errorf("len(jobs) = %d, want the 50 cap", len(resp.Jobs))
	}
}

func TestGetJobNotFound(t *testing.T) {
	db := newTestDB(t)
	router := searchRouter(db)

	rec := doJSON(t, router, http.MethodGet, "/v1/jobs/424242", nil)
	wantStatus(t, rec, http.StatusNotFound)
}
