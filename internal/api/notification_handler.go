package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teztech/internal/api/middleware"
	"teztech/internal/database"
	"teztech/internal/notify"
)

// NotificationHandler serves the notification center: listing, unread
// count and read marking. Pushes go over the websocket; this is the
// pull side.
type NotificationHandler struct {
	db       *gorm.DB
	notifier *notify.Service
	logger   *slog.Logger
}

// NewNotificationHandler returns a NotificationHandler.
func NewNotificationHandler(db *gorm.DB, notifier *notify.Service, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{db: db, notifier: notifier, logger: logger}
}

type notificationView struct {
	ID        uint       `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

// ListNotifications returns the caller's notifications, newest first,
// capped at a page of 50.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	var rows []database.Notification
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		h.loggerFromContext(c).Error("list notifications failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	items := make([]notificationView, 0, len(rows))
	for _, row := range rows {
		items = append(items, notificationView{
			ID:        row.ID,
			Kind:      row.Kind,
			Title:     row.Title,
			Body:      row.Body,
			CreatedAt: row.CreatedAt,
			ReadAt:    row.ReadAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UnreadCount returns the cached unread total.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	count, err := h.notifier.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.loggerFromContext(c).Error("unread count failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead marks the :id notification read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid notification id")
		return
	}

	if err := h.notifier.MarkRead(c.Request.Context(), userID, uint(notificationID)); err != nil {
		h.loggerFromContext(c).Error("mark read failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.Status(http.StatusOK)
}

// MarkAllRead clears the caller's unread set.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	if err := h.notifier.MarkAllRead(c.Request.Context(), userID); err != nil {
		h.loggerFromContext(c).Error("mark all read failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.Status(http.StatusOK)
}

func (h *NotificationHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
