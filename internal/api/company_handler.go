package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teztech/internal/api/middleware"
	"teztech/internal/database"
)

// CompanyHandler manages employer-owned companies.
type CompanyHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewCompanyHandler returns a CompanyHandler.
func NewCompanyHandler(db *gorm.DB, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{db: db, logger: logger}
}

type companyRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Website string `json:"website" binding:"omitempty,url,max=512"`
	LogoKey string `json:"logoKey" binding:"omitempty,max=512"`
}

type companyView struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	LogoKey string `json:"logoKey,omitempty"`
}

func toCompanyView(company database.Company) companyView {
	return companyView{
		ID:      company.ID,
		Name:    company.Name,
		Website: company.Website,
		LogoKey: company.LogoKey,
	}
}

// CreateCompany registers a company owned by the calling employer.
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		BadRequest(c, "name must not be blank")
		return
	}

	company := database.Company{
		Name:    name,
		Website: req.Website,
		LogoKey: req.LogoKey,
		OwnerID: userID,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&company).Error; err != nil {
		h.loggerFromContext(c).Error("create company failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusCreated, toCompanyView(company))
}

// ListCompanies lists the caller's companies.
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var companies []database.Company
	if err := h.db.WithContext(c.Request.Context()).
		Where("owner_id = ?", userID).
		Order("created_at ASC").
		Find(&companies).Error; err != nil {
		h.loggerFromContext(c).Error("list companies failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	items := make([]companyView, 0, len(companies))
	for _, company := range companies {
		items = append(items, toCompanyView(company))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UpdateCompany edits a company the caller owns. The denormalized
// company_name on jobs follows a rename.
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	companyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid company id")
		return
	}

	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	var company database.Company
	if err := h.db.WithContext(ctx).First(&company, uint(companyID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "company not found")
			return
		}
		h.loggerFromContext(c).Error("load company failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	if company.OwnerID != userID {
		Forbidden(c, "company is not yours")
		return
	}

	name := strings.TrimSpace(req.Name)
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&company).Updates(map[string]any{
			"name":     name,
			"website":  req.Website,
			"logo_key": req.LogoKey,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&database.Job{}).
			Where("company_id = ?", company.ID).
			Update("company_name", name).Error
	})
	if err != nil {
		h.loggerFromContext(c).Error("update company failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, toCompanyView(company))
}

func (h *CompanyHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
