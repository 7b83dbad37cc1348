package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"teztech/internal/database"
	"teztech/internal/notify"
)

// unreachableRedis returns a client whose commands all fail, exercising
// the DB fallback paths of the notification service.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func notificationRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	notifier := notify.NewService(db, unreachableRedis(), discardLogger())
	h := NewNotificationHandler(db, notifier, discardLogger())
	router := gin.New()
	group := router.Group("/v1", asUser(userID, database.RoleSeeker))
	group.GET("/notifications", h.ListNotifications)
	group.GET("/notifications/unread", h.UnreadCount)
	group.POST("/notifications/:id/read", h.MarkRead)
	group.POST("/notifications/read-all", h.MarkAllRead)
	return router
}

func seedNotifications(t *testing.T, db *gorm.DB, userID uint, n int) []database.Notification {
	t.Helper()
	rows := make([]database.Notification, 0, n)
	for i := 0; i < n; i++ {
		row := database.Notification{
			UserID: userID,
			Kind:   "job_alert",
			Title:  fmt.Sprintf("New job %d", i+1),
			Body:   "A listing matched your alert.",
		}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seed notification: %v", err)
		}
		rows = append(rows, row)
	}
	return rows
}

func TestListNotificationsOnlyOwn(t *testing.T) {
	db := newTestDB(t)
	seedNotifications(t, db, 1, 3)
	seedNotifications(t, db, 2, 1)
	router := notificationRouter(db, 1)

	rec := doJSON(t, router, http.MethodGet, "/v1/notifications", nil)
	wantStatus(t, rec, http.StatusOK)

	var resp struct {
		Items []notificationView `json:"items"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Items) != 3 {
		t.Errorf("items = %d, want 3 (other users' rows must not leak)", len(resp.Items))
	}
}

func TestUnreadCountFallsBackToDB(t *testing.T) {
	db := newTestDB(t)
	seedNotifications(t, db, 1, 3)
	router := notificationRouter(db, 1)

	rec := doJSON(t, router, http.MethodGet, "/v1/notifications/unread", nil)
	wantStatus(t, rec, http.StatusOK)

	var resp struct {
		Unread int64 `json:"unread"`
	}
	decodeBody(t, rec, &resp)
	if resp.Unread != 3 {
		t.Errorf("unread = %d, want 3", resp.Unread)
	}
}

func TestMarkReadIsScopedAndIdempotent(t *testing.T) {
	db := newTestDB(t)
	rows := seedNotifications(t, db, 1, 2)
	router := notificationRouter(db, 1)

	path := fmt.Sprintf("/v1/notifications/%d/read", rows[0].ID)
	rec := doJSON(t, router, http.MethodPost, path, nil)
	wantStatus(t, rec, http.StatusOK)

	var row database.Notification
	if err := db.First(&row, rows[0].ID).Error; err != nil {
		t.Fatalf("reload notification: %v", err)
	}
	if row.ReadAt == nil {
		t.Fatalf("read_at still nil after mark read")
	}
	firstReadAt := *row.ReadAt

	// Marking again must not move the timestamp.
	rec = doJSON(t, router, http.MethodPost, path, nil)
	wantStatus(t, rec, http.StatusOK)
	if err := db.First(&row, rows[0].ID).Error; err != nil {
		t.Fatalf("reload notification: %v", err)
	}
	if !row.ReadAt.Equal(firstReadAt) {
		t.Errorf("read_at moved on repeat mark: %v -> %v", firstReadAt, *row.ReadAt)
	}

	// Another user's router cannot mark user 1's rows.
	otherRouter := notificationRouter(db, 2)
	otherPath := fmt.Sprintf("/v1/notifications/%d/read", rows[1].ID)
	rec = doJSON(t, otherRouter, http.MethodPost, otherPath, nil)
	wantStatus(t, rec, http.StatusOK)
	row = database.Notification{}
	if err := db.First(&row, rows[1].ID).Error; err != nil {
		t.Fatalf("reload notification: %v", err)
	}
	if row.ReadAt != nil {
		t.Errorf("user 2 marked user 1's notification read")
	}
}

func TestMarkAllRead(t *testing.T) {
	db := newTestDB(t)
	seedNotifications(t, db, 1, 3)
	router := notificationRouter(db, 1)

	rec := doJSON(t, router, http.MethodPost, "/v1/notifications/read-all", nil)
	wantStatus(t, rec, http.StatusOK)

	var unread int64
	db.Model(&database.Notification{}).
		Where("user_id = ? AND read_at IS NULL", 1).
		Count(&unread)
	if unread != 0 {
		t.Errorf("unread rows = %d after read-all, want 0", unread)
	}
}
