package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"teztech/internal/database"
	"teztech/internal/notify"
	"teztech/internal/tasks"
)

// ApplicationStatusHandler notifies a seeker when an employer moves their
// application to a new status.
type ApplicationStatusHandler struct {
	db       *gorm.DB
	notifier *notify.Service
	logger   *slog.Logger
}

// NewApplicationStatusHandler builds the handler.
func NewApplicationStatusHandler(db *gorm.DB, notifier *notify.Service, logger *slog.Logger) *ApplicationStatusHandler {
	return &ApplicationStatusHandler{db: db, notifier: notifier, logger: logger}
}

var statusTitles = map[string]string{
	database.ApplicationShortlisted: "You have been shortlisted",
	database.ApplicationRejected:    "Application update",
	database.ApplicationHired:       "Congratulations, you are hired",
}

// ProcessTask implements asynq.Handler.
func (h *ApplicationStatusHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload tasks.ApplicationStatusPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode application status payload: %w", err)
	}

	log := h.logger.With(
		slog.Uint64("application_id", uint64(payload.ApplicationID)),
		slog.String("correlation_id", payload.CorrelationID),
	)

	var app database.Application
	if err := h.db.WithContext(ctx).
		Preload("Job").
		First(&app, payload.ApplicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info("application vanished before status notification")
			return nil
		}
		return fmt.Errorf("load application: %w", err)
	}

	title, ok := statusTitles[payload.NewStatus]
	if !ok {
		title = "Application update"
	}

	n := &database.Notification{
		UserID: app.SeekerID,
		Kind:   "application_status",
		Title:  title,
		Body:   fmt.Sprintf("Your application for %q at %s is now %s.", app.Job.Title, app.Job.CompanyName, payload.NewStatus),
	}
	if err := h.notifier.Create(ctx, n, payload.CorrelationID); err != nil {
		return err
	}

	log.Info("application status notification sent", slog.String("status", payload.NewStatus))
	return nil
}
