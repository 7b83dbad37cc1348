package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teztech/internal/api/middleware"
	"teztech/internal/database"
	"teztech/internal/profile"
)

// ProfileHandler serves the seeker's own profile, its updates and the
// completeness report.
type ProfileHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewProfileHandler returns a ProfileHandler.
func NewProfileHandler(db *gorm.DB, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{db: db, logger: logger}
}

type profileView struct {
	Email         string                  `json:"email"`
	Name          string                  `json:"name"`
	Phone         string                  `json:"phone,omitempty"`
	AvatarKey     string                  `json:"avatarKey,omitempty"`
	Bio           string                  `json:"bio,omitempty"`
	City          string                  `json:"city,omitempty"`
	Skills        []string                `json:"skills"`
	ResumeKey     string                  `json:"resumeKey,omitempty"`
	Experience    []database.ProfileEntry `json:"experience"`
	Education     []database.ProfileEntry `json:"education"`
	AlertCategory string                  `json:"alertCategory,omitempty"`
	AlertLocation string                  `json:"alertLocation,omitempty"`
	Completeness  profile.Report          `json:"completeness"`
}

func toProfileView(user database.User) profileView {
	skills := decodeStrings(user.Skills)
	if skills == nil {
		skills = []string{}
	}
	experience := decodeEntries(user.Experience)
	if experience == nil {
		experience = []database.ProfileEntry{}
	}
	education := decodeEntries(user.Education)
	if education == nil {
		education = []database.ProfileEntry{}
	}
	return profileView{
		Email:         user.Email,
		Name:          user.Name,
		Phone:         user.Phone,
		AvatarKey:     user.AvatarKey,
		Bio:           user.Bio,
		City:          user.City,
		Skills:        skills,
		ResumeKey:     user.ResumeKey,
		Experience:    experience,
		Education:     education,
		AlertCategory: user.AlertCategory,
		AlertLocation: user.AlertLocation,
		Completeness:  profile.Completeness(user),
	}
}

// GetProfile returns the caller's profile with the completeness report
// attached.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toProfileView(user))
}

type profileUpdateRequest struct {
	Name          *string                  `json:"name" binding:"omitempty,max=128"`
	Phone         *string                  `json:"phone" binding:"omitempty,max=32"`
	AvatarKey     *string                  `json:"avatarKey" binding:"omitempty,max=512"`
	Bio           *string                  `json:"bio" binding:"omitempty,max=4000"`
	City          *string                  `json:"city" binding:"omitempty,max=128"`
	Skills        *[]string                `json:"skills" binding:"omitempty,max=64"`
	ResumeKey     *string                  `json:"resumeKey" binding:"omitempty,max=512"`
	Experience    *[]database.ProfileEntry `json:"experience" binding:"omitempty,max=32"`
	Education     *[]database.ProfileEntry `json:"education" binding:"omitempty,max=32"`
	AlertCategory *string                  `json:"alertCategory" binding:"omitempty,max=64"`
	AlertLocation *string                  `json:"alertLocation" binding:"omitempty,max=128"`
}

// UpdateProfile applies a partial update: only the keys present in the
// body change, everything else keeps its stored value.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	updates := map[string]any{}
	setIf := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	setIf("name", req.Name)
	setIf("phone", req.Phone)
	setIf("avatar_key", req.AvatarKey)
	setIf("bio", req.Bio)
	setIf("city", req.City)
	setIf("resume_key", req.ResumeKey)
	setIf("alert_category", req.AlertCategory)
	setIf("alert_location", req.AlertLocation)

	if req.Skills != nil {
		encoded, err := encodeStrings(*req.Skills)
		if err != nil {
			BadRequest(c, "invalid skills")
			return
		}
		updates["skills"] = encoded
	}
	if req.Experience != nil {
		encoded, err := encodeEntries(*req.Experience)
		if err != nil {
			BadRequest(c, "invalid experience")
			return
		}
		updates["experience"] = encoded
	}
	if req.Education != nil {
		encoded, err := encodeEntries(*req.Education)
		if err != nil {
			BadRequest(c, "invalid education")
			return
		}
		updates["education"] = encoded
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, toProfileView(user))
		return
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		h.loggerFromContext(c).Error("update profile failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	// Re-read so the returned completeness reflects the stored row.
	if err := h.db.WithContext(ctx).First(&user, user.ID).Error; err != nil {
		h.loggerFromContext(c).Error("reload profile failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusOK, toProfileView(user))
}

// GetCompleteness returns just the completeness report.
func (h *ProfileHandler) GetCompleteness(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, profile.Completeness(user))
}

func (h *ProfileHandler) loadUser(c *gin.Context) (database.User, bool) {
	var zero database.User
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return zero, false
	}

	var user database.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		h.loggerFromContext(c).Error("load user failed", slog.Any("error", err))
		Internal(c, "internal error")
		return zero, false
	}
	return user, true
}

func (h *ProfileHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
