package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"teztech/internal/api/middleware"
	"teztech/internal/config"
	"teztech/internal/database"
	"teztech/internal/search"
	"teztech/internal/tasks"
)

// JobHandler serves the public job search plus employer and admin job
// management.
type JobHandler struct {
	db        *gorm.DB
	taskQueue *asynq.Client
	logger    *slog.Logger
	cfg       config.SearchConfig
}

// NewJobHandler returns a JobHandler. taskQueue may be nil in tests; job
// creation then skips the alert fan-out.
func NewJobHandler(db *gorm.DB, taskQueue *asynq.Client, logger *slog.Logger, cfg config.SearchConfig) *JobHandler {
	return &JobHandler{db: db, taskQueue: taskQueue, logger: logger, cfg: cfg}
}

type jobView struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	CompanyID      uint      `json:"companyId"`
	CompanyName    string    `json:"companyName"`
	Category       string    `json:"category"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Country        string    `json:"country"`
	WorkMode       string    `json:"workMode"`
	EmploymentType string    `json:"employmentType"`
	SalaryMin      int       `json:"salaryMin"`
	SalaryMax      int       `json:"salaryMax"`
	ExperienceMin  int       `json:"experienceMin"`
	ExperienceMax  int       `json:"experienceMax"`
	Skills         []string  `json:"skills"`
	Description    string    `json:"description,omitempty"`
	Featured       bool      `json:"featured"`
	Status         string    `json:"status"`
	PostedAt       time.Time `json:"postedAt"`
}

func toJobView(job database.Job) jobView {
	return jobView{
		ID:             job.ID,
		Title:          job.Title,
		CompanyID:      job.CompanyID,
		CompanyName:    job.CompanyName,
		Category:       job.Category,
		City:           job.City,
		State:          job.State,
		Country:        job.Country,
		WorkMode:       job.WorkMode,
		EmploymentType: job.EmploymentType,
		SalaryMin:      job.SalaryMin,
		SalaryMax:      job.SalaryMax,
		ExperienceMin:  job.ExperienceMin,
		ExperienceMax:  job.ExperienceMax,
		Skills:         search.SkillList(job),
		Description:    job.Description,
		Featured:       job.Featured,
		Status:         job.Status,
		PostedAt:       job.CreatedAt,
	}
}

type searchResponse struct {
	Jobs        []jobView `json:"jobs"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	TotalJobs   int       `json:"totalJobs"`
	PageNumbers []int     `json:"pageNumbers"`
}

// SearchJobs runs the public search: filter the open listings, sort
// newest first, paginate and compress the page index.
func (h *JobHandler) SearchJobs(c *gin.Context) {
	q := search.ParseQuery(c.Request.URL.Query())
	if q.PageSize <= 0 {
		q.PageSize = h.cfg.DefaultPageSize
	}
	if q.PageSize > h.cfg.MaxPageSize {
		q.PageSize = h.cfg.MaxPageSize
	}

	var candidates []database.Job
	if err := h.db.WithContext(c.Request.Context()).
		Where("status = ?", database.JobOpen).
		Find(&candidates).Error; err != nil {
		h.loggerFromContext(c).Error("load jobs failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	matched := search.Filter(candidates, q, time.Now())
	search.SortNewestFirst(matched)
	page := search.Paginate(matched, q.Page, q.PageSize)

	jobs := make([]jobView, 0, len(page.Items))
	for _, job := range page.Items {
		jobs = append(jobs, toJobView(job))
	}

	c.JSON(http.StatusOK, searchResponse{
		Jobs:        jobs,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		TotalJobs:   page.TotalMatches,
		PageNumbers: search.PageNumbers(page.CurrentPage, page.TotalPages),
	})
}

// FeaturedJobs returns the newest featured open listings for the home
// page carousel.
func (h *JobHandler) FeaturedJobs(c *gin.Context) {
	limit := 8
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 24 {
			limit = parsed
		}
	}

	var featured []database.Job
	if err := h.db.WithContext(c.Request.Context()).
		Where("status = ? AND featured = ?", database.JobOpen, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&featured).Error; err != nil {
		h.loggerFromContext(c).Error("load featured jobs failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	jobs := make([]jobView, 0, len(featured))
	for _, job := range featured {
		jobs = append(jobs, toJobView(job))
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// GetJob returns one listing by ID. Closed listings stay readable so a
// seeker can still see what they applied to.
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid job id")
		return
	}

	var job database.Job
	if err := h.db.WithContext(c.Request.Context()).First(&job, uint(jobID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "job not found")
			return
		}
		h.loggerFromContext(c).Error("load job failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, toJobView(job))
}

type jobRequest struct {
	Title          string   `json:"title" binding:"required,max=255"`
	CompanyID      uint     `json:"companyId" binding:"required"`
	Category       string   `json:"category" binding:"required,max=64"`
	City           string   `json:"city" binding:"max=128"`
	State          string   `json:"state" binding:"max=128"`
	Country        string   `json:"country" binding:"max=128"`
	WorkMode       string   `json:"workMode" binding:"omitempty,oneof=onsite remote hybrid"`
	EmploymentType string   `json:"employmentType" binding:"omitempty,oneof=full-time part-time contract internship freelance"`
	SalaryMin      int      `json:"salaryMin" binding:"gte=0"`
	SalaryMax      int      `json:"salaryMax" binding:"gte=0"`
	ExperienceMin  int      `json:"experienceMin" binding:"gte=0"`
	ExperienceMax  int      `json:"experienceMax" binding:"gte=0"`
	Skills         []string `json:"skills" binding:"max=32"`
	Description    string   `json:"description"`
}

func (r jobRequest) validateRanges() string {
	if r.SalaryMax > 0 && r.SalaryMin > r.SalaryMax {
		return "salaryMin must not exceed salaryMax"
	}
	if r.ExperienceMax > 0 && r.ExperienceMin > r.ExperienceMax {
		return "experienceMin must not exceed experienceMax"
	}
	return ""
}

// CreateJob posts a listing under a company owned by the caller and
// queues the alert fan-out.
func (h *JobHandler) CreateJob(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if msg := req.validateRanges(); msg != "" {
		BadRequest(c, msg)
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(slog.Uint64("user_id", uint64(userID)))

	var company database.Company
	if err := h.db.WithContext(ctx).First(&company, req.CompanyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "company not found")
			return
		}
		logger.Error("load company failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	if company.OwnerID != userID {
		Forbidden(c, "company is not yours")
		return
	}

	skills, err := encodeStrings(req.Skills)
	if err != nil {
		BadRequest(c, "invalid skills")
		return
	}

	job := database.Job{
		Title:          req.Title,
		CompanyID:      company.ID,
		CompanyName:    company.Name,
		Category:       req.Category,
		City:           req.City,
		State:          req.State,
		Country:        req.Country,
		WorkMode:       req.WorkMode,
		EmploymentType: req.EmploymentType,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		ExperienceMin:  req.ExperienceMin,
		ExperienceMax:  req.ExperienceMax,
		Skills:         skills,
		Description:    req.Description,
		Status:         database.JobOpen,
	}

	if err := h.db.WithContext(ctx).Create(&job).Error; err != nil {
		logger.Error("create job failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.enqueueJobAlert(c, job.ID)

	logger.Info("job created", slog.Uint64("job_id", uint64(job.ID)))
	c.JSON(http.StatusCreated, toJobView(job))
}

// UpdateJob edits a listing the caller owns.
func (h *JobHandler) UpdateJob(c *gin.Context) {
	job, ok := h.ownedJob(c)
	if !ok {
		return
	}

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if msg := req.validateRanges(); msg != "" {
		BadRequest(c, msg)
		return
	}
	if req.CompanyID != job.CompanyID {
		BadRequest(c, "job cannot move between companies")
		return
	}

	skills, err := encodeStrings(req.Skills)
	if err != nil {
		BadRequest(c, "invalid skills")
		return
	}

	updates := map[string]any{
		"title":           req.Title,
		"category":        req.Category,
		"city":            req.City,
		"state":           req.State,
		"country":         req.Country,
		"work_mode":       req.WorkMode,
		"employment_type": req.EmploymentType,
		"salary_min":      req.SalaryMin,
		"salary_max":      req.SalaryMax,
		"experience_min":  req.ExperienceMin,
		"experience_max":  req.ExperienceMax,
		"skills":          skills,
		"description":     req.Description,
	}
	if err := h.db.WithContext(c.Request.Context()).Model(&job).Updates(updates).Error; err != nil {
		h.loggerFromContext(c).Error("update job failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, toJobView(job))
}

// CloseJob marks a listing closed so it drops out of search.
func (h *JobHandler) CloseJob(c *gin.Context) {
	job, ok := h.ownedJob(c)
	if !ok {
		return
	}
	if job.Status == database.JobClosed {
		c.JSON(http.StatusOK, toJobView(job))
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(&job).
		Update("status", database.JobClosed).Error; err != nil {
		h.loggerFromContext(c).Error("close job failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, toJobView(job))
}

// ListEmployerJobs lists every listing under the caller's companies,
// with per-job application counts.
func (h *JobHandler) ListEmployerJobs(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	var jobs []database.Job
	if err := h.db.WithContext(ctx).
		Joins("JOIN companies ON companies.id = jobs.company_id").
		Where("companies.owner_id = ?", userID).
		Order("jobs.created_at DESC").
		Find(&jobs).Error; err != nil {
		h.loggerFromContext(c).Error("list employer jobs failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	items := make([]gin.H, 0, len(jobs))
	for _, job := range jobs {
		var applications int64
		if err := h.db.WithContext(ctx).
			Model(&database.Application{}).
			Where("job_id = ?", job.ID).
			Count(&applications).Error; err != nil {
			h.loggerFromContext(c).Error("count applications failed", slog.Any("error", err))
			Internal(c, "internal error")
			return
		}
		items = append(items, gin.H{
			"job":          toJobView(job),
			"applications": applications,
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type featureRequest struct {
	Featured bool `json:"featured"`
}

// FeatureJob lets an admin toggle the featured flag.
func (h *JobHandler) FeatureJob(c *gin.Context) {
	jobID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid job id")
		return
	}

	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.Job{}).
		Where("id = ?", uint(jobID)).
		Update("featured", req.Featured)
	if result.Error != nil {
		h.loggerFromContext(c).Error("feature job failed", slog.Any("error", result.Error))
		Internal(c, "internal error")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "job not found")
		return
	}

	c.Status(http.StatusOK)
}

// DeleteJob removes a listing. Admins may delete any listing; employers
// only their own.
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid job id")
		return
	}

	ctx := c.Request.Context()
	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, uint(jobID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "job not found")
			return
		}
		h.loggerFromContext(c).Error("load job failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if middleware.RoleFromContext(c) != database.RoleAdmin {
		userID, ok := userIDFromContext(c)
		if !ok {
			AbortUnauthorized(c)
			return
		}
		var company database.Company
		if err := h.db.WithContext(ctx).First(&company, job.CompanyID).Error; err != nil || company.OwnerID != userID {
			Forbidden(c, "job is not yours")
			return
		}
	}

	if err := h.db.WithContext(ctx).Delete(&job).Error; err != nil {
		h.loggerFromContext(c).Error("delete job failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.Status(http.StatusNoContent)
}

// ownedJob loads the :id job and checks the caller owns its company. It
// writes the error response itself on failure.
func (h *JobHandler) ownedJob(c *gin.Context) (database.Job, bool) {
	var zero database.Job

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return zero, false
	}

	jobID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid job id")
		return zero, false
	}

	ctx := c.Request.Context()
	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, uint(jobID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "job not found")
			return zero, false
		}
		h.loggerFromContext(c).Error("load job failed", slog.Any("error", err))
		Internal(c, "internal error")
		return zero, false
	}

	var company database.Company
	if err := h.db.WithContext(ctx).First(&company, job.CompanyID).Error; err != nil {
		h.loggerFromContext(c).Error("load company failed", slog.Any("error", err))
		Internal(c, "internal error")
		return zero, false
	}
	if company.OwnerID != userID {
		Forbidden(c, "job is not yours")
		return zero, false
	}
	return job, true
}

func (h *JobHandler) enqueueJobAlert(c *gin.Context, jobID uint) {
	if h.taskQueue == nil {
		return
	}
	task, err := tasks.NewJobAlertTask(jobID, middleware.GetCorrelationID(c))
	if err != nil {
		h.loggerFromContext(c).Error("build job alert task failed", slog.Any("error", err))
		return
	}
	if _, err := h.taskQueue.EnqueueContext(c.Request.Context(), task); err != nil {
		// Alerts are best effort; the listing itself is already live.
		h.loggerFromContext(c).Error("enqueue job alert failed", slog.Any("error", err))
	}
}

func (h *JobHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
