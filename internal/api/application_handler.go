package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"teztech/internal/api/middleware"
	"teztech/internal/database"
	"teztech/internal/tasks"
)

// ApplicationHandler covers the seeker side (apply, withdraw, list own)
// and the employer side (list applicants, move status).
type ApplicationHandler struct {
	db        *gorm.DB
	taskQueue *asynq.Client
	logger    *slog.Logger
}

// NewApplicationHandler returns an ApplicationHandler. taskQueue may be
// nil in tests; status changes then skip the notification task.
func NewApplicationHandler(db *gorm.DB, taskQueue *asynq.Client, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{db: db, taskQueue: taskQueue, logger: logger}
}

type applyRequest struct {
	ResumeKey string `json:"resumeKey" binding:"omitempty,max=512"`
	CoverNote string `json:"coverNote" binding:"omitempty,max=4000"`
}

type applicationView struct {
	ID        uint    `json:"id"`
	JobID     uint    `json:"jobId"`
	Status    string  `json:"status"`
	CoverNote string  `json:"coverNote,omitempty"`
	ResumeKey string  `json:"resumeKey,omitempty"`
	AppliedAt string  `json:"appliedAt"`
	Job       jobView `json:"job"`
}

func toApplicationView(app database.Application) applicationView {
	return applicationView{
		ID:        app.ID,
		JobID:     app.JobID,
		Status:    app.Status,
		CoverNote: app.CoverNote,
		ResumeKey: app.ResumeKey,
		AppliedAt: app.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Job:       toJobView(app.Job),
	}
}

// Apply creates the caller's application for the :id job. Each seeker
// may apply to a job once; the unique index is the backstop for races.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	jobID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid job id")
		return
	}

	// The body is optional: an apply with no resume override or cover
	// note is valid.
	var req applyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("job_id", jobID),
	)

	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, uint(jobID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "job not found")
			return
		}
		logger.Error("load job failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	if job.Status != database.JobOpen {
		Conflict(c, "job is no longer accepting applications")
		return
	}

	resumeKey := req.ResumeKey
	if resumeKey == "" {
		var user database.User
		if err := h.db.WithContext(ctx).First(&user, userID).Error; err == nil {
			resumeKey = user.ResumeKey
		}
	}

	app := database.Application{
		JobID:     uint(jobID),
		SeekerID:  userID,
		ResumeKey: resumeKey,
		CoverNote: req.CoverNote,
		Status:    database.ApplicationApplied,
	}
	if err := h.db.WithContext(ctx).Create(&app).Error; err != nil {
		if isUniqueViolation(err) {
			Conflict(c, "you already applied to this job")
			return
		}
		logger.Error("create application failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("application created", slog.Uint64("application_id", uint64(app.ID)))
	c.JSON(http.StatusCreated, gin.H{"id": app.ID, "status": app.Status})
}

// ListMyApplications lists the caller's applications, newest first.
func (h *ApplicationHandler) ListMyApplications(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var apps []database.Application
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Job").
		Where("seeker_id = ?", userID).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		h.loggerFromContext(c).Error("list applications failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	items := make([]applicationView, 0, len(apps))
	for _, app := range apps {
		items = append(items, toApplicationView(app))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Withdraw deletes the caller's application while it is still in the
// applied state.
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	appID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid application id")
		return
	}

	ctx := c.Request.Context()
	var app database.Application
	if err := h.db.WithContext(ctx).
		Where("id = ? AND seeker_id = ?", uint(appID), userID).
		First(&app).Error; err != nil {
		NotFound(c, "application not found")
		return
	}
	if app.Status != database.ApplicationApplied {
		Conflict(c, "application is already being processed")
		return
	}

	if err := h.db.WithContext(ctx).Delete(&app).Error; err != nil {
		h.loggerFromContext(c).Error("withdraw application failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.Status(http.StatusNoContent)
}

type applicantView struct {
	ApplicationID uint   `json:"applicationId"`
	SeekerID      uint   `json:"seekerId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	City          string `json:"city,omitempty"`
	ResumeKey     string `json:"resumeKey,omitempty"`
	CoverNote     string `json:"coverNote,omitempty"`
	Status        string `json:"status"`
	AppliedAt     string `json:"appliedAt"`
}

// ListApplicants lists the applications for a job the caller owns.
func (h *ApplicationHandler) ListApplicants(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	jobID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid job id")
		return
	}

	ctx := c.Request.Context()
	if !h.ownsJob(c, ctx, userID, uint(jobID)) {
		return
	}

	var apps []database.Application
	if err := h.db.WithContext(ctx).
		Preload("Seeker").
		Where("job_id = ?", uint(jobID)).
		Order("created_at ASC").
		Find(&apps).Error; err != nil {
		h.loggerFromContext(c).Error("list applicants failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	items := make([]applicantView, 0, len(apps))
	for _, app := range apps {
		items = append(items, applicantView{
			ApplicationID: app.ID,
			SeekerID:      app.SeekerID,
			Name:          app.Seeker.Name,
			Email:         app.Seeker.Email,
			City:          app.Seeker.City,
			ResumeKey:     app.ResumeKey,
			CoverNote:     app.CoverNote,
			Status:        app.Status,
			AppliedAt:     app.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=shortlisted rejected hired"`
}

// UpdateStatus moves an application forward and queues the seeker
// notification.
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	appID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid application id")
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	var app database.Application
	if err := h.db.WithContext(ctx).First(&app, uint(appID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "application not found")
			return
		}
		h.loggerFromContext(c).Error("load application failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if !h.ownsJob(c, ctx, userID, app.JobID) {
		return
	}

	if app.Status == req.Status {
		c.JSON(http.StatusOK, gin.H{"id": app.ID, "status": app.Status})
		return
	}
	if app.Status == database.ApplicationHired || app.Status == database.ApplicationRejected {
		Conflict(c, "application already reached a final status")
		return
	}

	if err := h.db.WithContext(ctx).
		Model(&app).
		Update("status", req.Status).Error; err != nil {
		h.loggerFromContext(c).Error("update application status failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.enqueueStatusNotification(c, app.ID, req.Status)
	c.JSON(http.StatusOK, gin.H{"id": app.ID, "status": req.Status})
}

// ownsJob checks the job belongs to one of the caller's companies,
// writing the error response itself when it does not.
func (h *ApplicationHandler) ownsJob(c *gin.Context, ctx context.Context, userID, jobID uint) bool {
	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "job not found")
			return false
		}
		h.loggerFromContext(c).Error("load job failed", slog.Any("error", err))
		Internal(c, "internal error")
		return false
	}

	var company database.Company
	if err := h.db.WithContext(ctx).First(&company, job.CompanyID).Error; err != nil {
		h.loggerFromContext(c).Error("load company failed", slog.Any("error", err))
		Internal(c, "internal error")
		return false
	}
	if company.OwnerID != userID {
		Forbidden(c, "job is not yours")
		return false
	}
	return true
}

func (h *ApplicationHandler) enqueueStatusNotification(c *gin.Context, applicationID uint, newStatus string) {
	if h.taskQueue == nil {
		return
	}
	task, err := tasks.NewApplicationStatusTask(applicationID, newStatus, middleware.GetCorrelationID(c))
	if err != nil {
		h.loggerFromContext(c).Error("build status task failed", slog.Any("error", err))
		return
	}
	if _, err := h.taskQueue.EnqueueContext(c.Request.Context(), task); err != nil {
		// The status itself is committed; the seeker just misses the push.
		h.loggerFromContext(c).Error("enqueue status task failed", slog.Any("error", err))
	}
}

// isUniqueViolation matches the duplicate-key error of both the
// production postgres driver and the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

func (h *ApplicationHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
