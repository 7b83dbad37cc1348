package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"teztech/internal/api/middleware"
	"teztech/internal/settings"
)

// SettingsHandler exposes the singleton site settings: a public read for
// the storefront and an admin-only sectioned write.
type SettingsHandler struct {
	store  *settings.Store
	logger *slog.Logger
}

// NewSettingsHandler returns a SettingsHandler.
func NewSettingsHandler(store *settings.Store, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{store: store, logger: logger}
}

// GetSettings returns the full settings document, creating the defaults
// row on first read.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	doc, err := h.store.GetOrCreate(c.Request.Context())
	if err != nil {
		h.loggerFromContext(c).Error("load settings failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateSettings merges the submitted sections over the stored document.
// Sections absent from the body keep their stored values.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var patch settings.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, err.Error())
		return
	}

	doc, err := h.store.Apply(c.Request.Context(), patch)
	if err != nil {
		h.loggerFromContext(c).Error("apply settings failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.loggerFromContext(c).Info("site settings updated")
	c.JSON(http.StatusOK, doc)
}

func (h *SettingsHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
