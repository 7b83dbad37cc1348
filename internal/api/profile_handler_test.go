package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teztech/internal/database"
	"teztech/internal/profile"
)

func profileRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewProfileHandler(db, discardLogger())
	router := gin.New()
	group := router.Group("/v1", asUser(userID, database.RoleSeeker))
	group.GET("/profile", h.GetProfile)
	group.PUT("/profile", h.UpdateProfile)
	group.GET("/profile/completeness", h.GetCompleteness)
	return router
}

func TestProfileCompletenessGrowsWithUpdates(t *testing.T) {
	db := newTestDB(t)
	user := database.User{Email: "seeker@teztech.example", Name: "Seeker", Role: database.RoleSeeker}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	router := profileRouter(db, user.ID)

	rec := doJSON(t, router, http.MethodGet, "/v1/profile/completeness", nil)
	wantStatus(t, rec, http.StatusOK)

	var report profile.Report
	decodeBody(t, rec, &report)
	if report.Percentage != 10 {
		t.Errorf("percentage = %d with name+email only, want 10", report.Percentage)
	}

	update := map[string]any{
		"bio":    "Ten years of backend work.",
		"city":   "Pune",
		"skills": []string{"Go", "Postgres"},
	}
	rec = doJSON(t, router, http.MethodPut, "/v1/profile", update)
	wantStatus(t, rec, http.StatusOK)

	var view profileView
	decodeBody(t, rec, &view)
	// Basic Info 10 + Location 10 + Bio 15 + Skills 15.
	if view.Completeness.Percentage != 50 {
		t.Errorf("percentage = %d after update, want 50", view.Completeness.Percentage)
	}
	if len(view.Skills) != 2 {
		t.Errorf("skills = %v, want the two submitted", view.Skills)
	}
}

func TestProfilePartialUpdateKeepsOtherFields(t *testing.T) {
	db := newTestDB(t)
	user := database.User{
		Email: "seeker@teztech.example",
		Name:  "Seeker",
		Role:  database.RoleSeeker,
		Bio:   "Original bio",
		City:  "Pune",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	router := profileRouter(db, user.ID)

	rec := doJSON(t, router, http.MethodPut, "/v1/profile", map[string]any{"city": "Mumbai"})
	wantStatus(t, rec, http.StatusOK)

	var view profileView
	decodeBody(t, rec, &view)
	if view.City != "Mumbai" {
		t.Errorf("city = %q, want Mumbai", view.City)
	}
	if view.Bio != "Original bio" {
		t.Errorf("bio = %q, an absent key must keep its stored value", view.Bio)
	}
}

func TestProfileAlertPreferencesRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := database.User{Email: "seeker@teztech.example", Name: "Seeker", Role: database.RoleSeeker}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	router := profileRouter(db, user.ID)

	rec := doJSON(t, router, http.MethodPut, "/v1/profile", map[string]any{
		"alertCategory": "engineering",
		"alertLocation": "Bangalore",
	})
	wantStatus(t, rec, http.StatusOK)

	var stored database.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.AlertCategory != "engineering" || stored.AlertLocation != "Bangalore" {
		t.Errorf("alert prefs = (%q, %q)", stored.AlertCategory, stored.AlertLocation)
	}
}
