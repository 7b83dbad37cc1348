package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"teztech/internal/database"
	"teztech/internal/notify"
	"teztech/internal/tasks"
)

// JobAlertHandler fans a freshly posted job out to every seeker whose
// alert preferences match it.
type JobAlertHandler struct {
	db       *gorm.DB
	notifier *notify.Service
	logger   *slog.Logger
}

// NewJobAlertHandler builds the handler.
func NewJobAlertHandler(db *gorm.DB, notifier *notify.Service, logger *slog.Logger) *JobAlertHandler {
	return &JobAlertHandler{db: db, notifier: notifier, logger: logger}
}

// ProcessTask implements asynq.Handler.
func (h *JobAlertHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload tasks.JobAlertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode job alert payload: %w", err)
	}

	log := h.logger.With(
		slog.Uint64("job_id", uint64(payload.JobID)),
		slog.String("correlation_id", payload.CorrelationID),
	)

	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, payload.JobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The job was deleted before the fan-out ran; nothing to do.
			log.Info("job vanished before alert fan-out")
			return nil
		}
		return fmt.Errorf("load job: %w", err)
	}
	if job.Status != database.JobOpen {
		log.Info("job no longer open, skipping alerts")
		return nil
	}

	var seekers []database.User
	if err := h.db.WithContext(ctx).
		Where("role = ?", database.RoleSeeker).
		Where("alert_category <> '' OR alert_location <> ''").
		Find(&seekers).Error; err != nil {
		return fmt.Errorf("load alert subscribers: %w", err)
	}

	notified := 0
	for _, seeker := range seekers {
		if !alertMatches(seeker, job) {
			continue
		}
		n := &database.Notification{
			UserID: seeker.ID,
			Kind:   "job_alert",
			Title:  "New job: " + job.Title,
			Body:   fmt.Sprintf("%s is hiring in %s.", job.CompanyName, job.City),
		}
		if err := h.notifier.Create(ctx, n, payload.CorrelationID); err != nil {
			// Keep going; a failed row for one seeker should not
			// re-run the whole fan-out for everyone else.
			log.Error("create job alert notification failed",
				slog.Uint64("user_id", uint64(seeker.ID)),
				slog.Any("error", err),
			)
			continue
		}
		notified++
	}

	log.Info("job alert fan-out completed", slog.Int("notified", notified))
	return nil
}

// alertMatches applies each preference the seeker actually set.
func alertMatches(seeker database.User, job database.Job) bool {
	if seeker.AlertCategory != "" && seeker.AlertCategory != job.Category {
		return false
	}
	if seeker.AlertLocation != "" {
		needle := strings.ToLower(seeker.AlertLocation)
		if !strings.Contains(strings.ToLower(job.City), needle) &&
			!strings.Contains(strings.ToLower(job.State), needle) {
			return false
		}
	}
	return true
}
