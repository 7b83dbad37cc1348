package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teztech/internal/database"
)

func seedEmployerWithJob(t *testing.T, db *gorm.DB, status string) (employer database.User, job database.Job) {
	t.Helper()
	employer = database.User{Email: "boss@teztech.example", Role: database.RoleEmployer, Name: "Boss"}
	if err := db.Create(&employer).Error; err != nil {
		t.Fatalf("seed employer: %v", err)
	}
	company := database.Company{Name: "Teztech", OwnerID: employer.ID}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	job = database.Job{
		Title:       "Backend Engineer",
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Category:    "engineering",
		Status:      status,
	}
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return employer, job
}

func seedSeeker(t *testing.T, db *gorm.DB) database.User {
	t.Helper()
	seeker := database.User{Email: "seeker@teztech.example", Role: database.RoleSeeker, Name: "Seeker"}
	if err := db.Create(&seeker).Error; err != nil {
		t.Fatalf("seed seeker: %v", err)
	}
	return seeker
}

func applicationRouter(db *gorm.DB, seekerID, employerID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewApplicationHandler(db, nil, discardLogger())
	router := gin.New()
	router.POST("/v1/jobs/:id/apply", asUser(seekerID, database.RoleSeeker), h.Apply)
	router.GET("/v1/applications", asUser(seekerID, database.RoleSeeker), h.ListMyApplications)
	router.DELETE("/v1/applications/:id", asUser(seekerID, database.RoleSeeker), h.Withdraw)
	router.GET("/v1/employer/jobs/:id/applications", asUser(employerID, database.RoleEmployer), h.ListApplicants)
	router.POST("/v1/employer/applications/:id/status", asUser(employerID, database.RoleEmployer), h.UpdateStatus)
	return router
}

func TestApplyIsOncePerJob(t *testing.T) {
	db := newTestDB(t)
	employer, job := seedEmployerWithJob(t, db, database.JobOpen)
	seeker := seedSeeker(t, db)
	router := applicationRouter(db, seeker.ID, employer.ID)

	path := fmt.Sprintf("/v1/jobs/%d/apply", job.ID)
	rec := doJSON(t, router, http.MethodPost, path, map[string]any{"coverNote": "hi"})
	wantStatus(t, rec, http.StatusCreated)

	rec = doJSON(t, router, http.MethodPost, path, map[string]any{"coverNote": "hi again"})
	wantStatus(t, rec, http.StatusConflict)

	var count int64
	db.Model(&database.Application{}).Count(&count)
	if count != 1 {
		t.Errorf("applications = %d, want 1", count)
	}
}

func TestApplyToClosedJobRejected(t *testing.T) {
	db := newTestDB(t)
	employer, job := seedEmployerWithJob(t, db, database.JobClosed)
	seeker := seedSeeker(t, db)
	router := applicationRouter(db, seeker.ID, employer.ID)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/jobs/%d/apply", job.ID), nil)
	wantStatus(t, rec, http.StatusConflict)
}

func TestStatusFlowAndWithdrawGate(t *testing.T) {
	db := newTestDB(t)
	employer, job := seedEmployerWithJob(t, db, database.JobOpen)
	seeker := seedSeeker(t, db)
	router := applicationRouter(db, seeker.ID, employer.ID)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/jobs/%d/apply", job.ID), nil)
	wantStatus(t, rec, http.StatusCreated)

	var app database.Application
	if err := db.First(&app).Error; err != nil {
		t.Fatalf("load application: %v", err)
	}

	statusPath := fmt.Sprintf("/v1/employer/applications/%d/status", app.ID)
	rec = doJSON(t, router, http.MethodPost, statusPath, map[string]any{"status": database.ApplicationShortlisted})
	wantStatus(t, rec, http.StatusOK)

	// A processed application can no longer be withdrawn.
	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/v1/applications/%d", app.ID), nil)
	wantStatus(t, rec, http.StatusConflict)

	rec = doJSON(t, router, http.MethodPost, statusPath, map[string]any{"status": database.ApplicationHired})
	wantStatus(t, rec, http.StatusOK)

	// Final statuses are terminal.
	rec = doJSON(t, router, http.MethodPost, statusPath, map[string]any{"status": database.ApplicationRejected})
	wantStatus(t, rec, http.StatusConflict)
}

func TestListApplicantsRequiresOwnership(t *testing.T) {
	db := newTestDB(t)
	employer, job := seedEmployerWithJob(t, db, database.JobOpen)
	seeker := seedSeeker(t, db)

	other := database.User{Email: "rival@teztech.example", Role: database.RoleEmployer}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed rival employer: %v", err)
	}

	router := applicationRouter(db, seeker.ID, other.ID)
	_ = employer

	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/employer/jobs/%d/applications", job.ID), nil)
	wantStatus(t, rec, http.StatusForbidden)
}

func TestWithdrawDeletesOwnApplication(t *testing.T) {
	db := newTestDB(t)
	employer, job := seedEmployerWithJob(t, db, database.JobOpen)
	seeker := seedSeeker(t, db)
	router := applicationRouter(db, seeker.ID, employer.ID)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/jobs/%d/apply", job.ID), nil)
	wantStatus(t, rec, http.StatusCreated)

	var app database.Application
	if err := db.First(&app).Error; err != nil {
		t.Fatalf("load application: %v", err)
	}

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/v1/applications/%d", app.ID), nil)
	wantStatus(t, rec, http.StatusNoContent)

	var count int64
	db.Model(&database.Application{}).Count(&count)
	if count != 0 {
		t.Errorf("applications = %d after withdraw, want 0", count)
	}
}
