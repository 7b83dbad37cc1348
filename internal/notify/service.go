package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"teztech/internal/database"
)

const (
	unreadKeyPrefix  = "notify:unread:"
	channelKeyPrefix = "user_notify:"
	unreadCounterTTL = 24 * time.Hour
)

// Message is the wire shape pushed to websocket clients through Redis
// pub/sub. Field names are part of the frontend contract.
type Message struct {
	Kind           string `json:"kind"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	NotificationID uint   `json:"notification_id"`
	UnreadCount    int64  `json:"unread_count"`
	CorrelationID  string `json:"correlation_id,omitempty"`
}

// Service persists notifications and keeps the per-user unread counter in
// Redis. The counter is a cache: the DB count of rows with a null read_at
// is authoritative and reseeds the counter whenever it is missing.
type Service struct {
	db     *gorm.DB
	redis  redis.UniversalClient
	logger *slog.Logger
}

// NewService builds a notification service.
func NewService(db *gorm.DB, redisClient redis.UniversalClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, redis: redisClient, logger: logger}
}

// Create stores a notification, bumps the unread counter and pushes the
// message to the user's websocket channel. Redis failures are logged, not
// returned: delivery of the row is what matters.
func (s *Service) Create(ctx context.Context, n *database.Notification, correlationID string) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	unread, err := s.bumpUnread(ctx, n.UserID)
	if err != nil {
		s.logger.Warn("bump unread counter failed",
			slog.Uint64("user_id", uint64(n.UserID)),
			slog.Any("error", err),
		)
	}

	msg := Message{
		Kind:           n.Kind,
		Title:          n.Title,
		Body:           n.Body,
		NotificationID: n.ID,
		UnreadCount:    unread,
		CorrelationID:  correlationID,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification message: %w", err)
	}
	if err := s.redis.Publish(ctx, Channel(n.UserID), payload).Err(); err != nil {
		s.logger.Warn("publish notification failed",
			slog.Uint64("user_id", uint64(n.UserID)),
			slog.Any("error", err),
		)
	}
	return nil
}

// UnreadCount returns the user's unread total, reseeding the Redis counter
// from the DB when it is absent.
func (s *Service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	raw, err := s.redis.Get(ctx, unreadKey(userID)).Result()
	if err == nil {
		if count, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
			return count, nil
		}
	}

	count, err := s.countUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.redis.Set(ctx, unreadKey(userID), count, unreadCounterTTL).Err(); err != nil {
		s.logger.Warn("seed unread counter failed", slog.Any("error", err))
	}
	return count, nil
}

// MarkRead marks one notification read and refreshes the counter. Marking
// an already-read notification is a no-op.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uint) error {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&database.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", now)
	if result.Error != nil {
		return fmt.Errorf("mark notification read: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		s.refreshUnread(ctx, userID)
	}
	return nil
}

// MarkAllRead marks every unread notification read.
func (s *Service) MarkAllRead(ctx context.Context, userID uint) error {
	now := time.Now()
	if err := s.db.WithContext(ctx).
		Model(&database.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", now).Error; err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	if err := s.redis.Set(ctx, unreadKey(userID), 0, unreadCounterTTL).Err(); err != nil {
		s.logger.Warn("reset unread counter failed", slog.Any("error", err))
	}
	return nil
}

// Channel is the Redis pub/sub channel for one user's pushes.
func Channel(userID uint) string {
	return channelKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

func unreadKey(userID uint) string {
	return unreadKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

func (s *Service) countUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&database.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *Service) bumpUnread(ctx context.Context, userID uint) (int64, error) {
	count, err := s.redis.Incr(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = s.redis.Expire(ctx, unreadKey(userID), unreadCounterTTL).Err()
	}
	return count, nil
}

func (s *Service) refreshUnread(ctx context.Context, userID uint) {
	count, err := s.countUnread(ctx, userID)
	if err != nil {
		s.logger.Warn("refresh unread counter failed", slog.Any("error", err))
		return
	}
	if err := s.redis.Set(ctx, unreadKey(userID), count, unreadCounterTTL).Err(); err != nil {
		s.logger.Warn("refresh unread counter failed", slog.Any("error", err))
	}
}
