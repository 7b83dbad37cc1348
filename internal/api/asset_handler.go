package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"teztech/internal/config"
	"teztech/internal/database"
	"teztech/internal/storage"
)

// objectStore is the slice of the storage client the asset handler
// uses. Tests substitute an in-memory fake.
type objectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// AssetHandler handles avatar, logo and resume uploads. Every file is
// scanned by clamd before it reaches object storage, and every stored
// object has a matching assets row used to enforce per-user quotas.
type AssetHandler struct {
	db      *gorm.DB
	storage objectStore
	logger  *slog.Logger
	cfg     config.UploadsConfig
}

// NewAssetHandler returns an AssetHandler. An empty ClamdAddr disables
// the virus scan.
func NewAssetHandler(db *gorm.DB, storageClient objectStore, logger *slog.Logger, cfg config.UploadsConfig) *AssetHandler {
	return &AssetHandler{db: db, storage: storageClient, logger: logger, cfg: cfg}
}

var assetKinds = map[string]struct {
	extensions   []string
	contentTypes []string
}{
	"avatar": {
		extensions:   []string{".png", ".jpg", ".jpeg", ".webp"},
		contentTypes: []string{"image/png", "image/jpeg", "image/webp"},
	},
	"logo": {
		extensions:   []string{".png", ".jpg", ".jpeg"},
		contentTypes: []string{"image/png", "image/jpeg"},
	},
	"resume": {
		extensions:   []string{".pdf"},
		contentTypes: []string{"application/pdf"},
	},
}

// UploadAsset accepts a multipart file, virus-scans it, stores it under
// the caller's prefix and records an assets row.
func (h *AssetHandler) UploadAsset(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	kind := c.PostForm("kind")
	if kind == "" {
		kind = c.Query("kind")
	}
	spec, ok := assetKinds[kind]
	if !ok {
		BadRequest(c, "kind must be avatar, logo or resume")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if file.Size > h.cfg.MaxBytes {
		BadRequest(c, fmt.Sprintf("file exceeds %d bytes", h.cfg.MaxBytes))
		return
	}

	ext := strings.ToLower(path.Ext(file.Filename))
	if !contains(spec.extensions, ext) {
		BadRequest(c, "unsupported file extension")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if contentType != "" && !contains(spec.contentTypes, contentType) {
		BadRequest(c, "unsupported content type")
		return
	}
	if contentType == "" {
		contentType = spec.contentTypes[0]
	}

	ctx := c.Request.Context()

	if ok, err := h.withinQuota(c, userID); err != nil {
		h.logger.Error("quota check failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	} else if !ok {
		return
	}

	if h.cfg.ClamdAddr != "" {
		clamdClient := clamd.NewClamd(h.cfg.ClamdAddr)

		fileReader, err := file.Open()
		if err != nil {
			Internal(c, "failed to open file")
			return
		}

		abortChan := make(chan bool)
		scanChan, err := clamdClient.ScanStream(fileReader, abortChan)
		fileReader.Close()
		if err != nil {
			h.logger.Error("scan file", slog.Any("error", err))
			Internal(c, "failed to scan file")
			return
		}
		defer close(abortChan)

		for result := range scanChan {
			if result.Status != clamd.RES_OK {
				h.logger.Warn("malicious upload rejected",
					slog.Uint64("user_id", uint64(userID)),
					slog.String("signature", result.Description),
				)
				BadRequest(c, "malicious file detected")
				return
			}
		}
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to reopen file")
		return
	}
	defer fileReader.Close()

	objectKey := fmt.Sprintf("user-assets/%d/%s/%s%s", userID, kind, uuid.NewString(), ext)
	if _, err := h.storage.UploadFile(ctx, objectKey, fileReader, file.Size, contentType); err != nil {
		h.logger.Error("upload file", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	asset := database.Asset{
		UserID:    userID,
		ObjectKey: objectKey,
		Kind:      kind,
		Size:      file.Size,
	}
	if err := h.db.WithContext(ctx).Create(&asset).Error; err != nil {
		h.logger.Error("record asset failed", slog.Any("error", err))
		// The object is already stored; try not to leave it orphaned.
		if delErr := h.storage.DeleteObject(ctx, objectKey); delErr != nil {
			h.logger.Error("orphan cleanup failed", slog.String("objectKey", objectKey), slog.Any("error", delErr))
		}
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"objectKey": objectKey, "kind": kind})
}

// withinQuota enforces the per-user file cap and the daily upload cap.
// It writes the error response itself when a cap is hit.
func (h *AssetHandler) withinQuota(c *gin.Context, userID uint) (bool, error) {
	ctx := c.Request.Context()

	var total int64
	if err := h.db.WithContext(ctx).
		Model(&database.Asset{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return false, err
	}
	if total >= int64(h.cfg.MaxFilesPerUser) {
		BadRequest(c, "stored file limit reached; delete an old file first")
		return false, nil
	}

	since := time.Now().Add(-24 * time.Hour)
	var today int64
	if err := h.db.WithContext(ctx).
		Model(&database.Asset{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&today).Error; err != nil {
		return false, err
	}
	if today >= int64(h.cfg.MaxUploadsPerDay) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "daily upload limit reached"})
		return false, nil
	}
	return true, nil
}

// ListAssets lists the caller's stored files, newest first, with short
// lived preview URLs.
func (h *AssetHandler) ListAssets(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	var assets []database.Asset
	if err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&assets).Error; err != nil {
		h.logger.Error("list assets", slog.Any("error", err))
		Internal(c, "failed to list assets")
		return
	}

	items := make([]gin.H, 0, len(assets))
	for _, asset := range assets {
		url, err := h.storage.GeneratePresignedURL(ctx, asset.ObjectKey, 10*time.Minute)
		if err != nil {
			h.logger.Error("generate asset url", slog.String("objectKey", asset.ObjectKey), slog.Any("error", err))
			continue
		}
		items = append(items, gin.H{
			"objectKey":  asset.ObjectKey,
			"kind":       asset.Kind,
			"size":       asset.Size,
			"previewUrl": url,
			"uploadedAt": asset.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetAssetURL returns a temporary presigned URL for one of the caller's
// own objects.
func (h *AssetHandler) GetAssetURL(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	objectKey := c.Query("key")
	if objectKey == "" {
		BadRequest(c, "missing key")
		return
	}

	expectedPrefix := fmt.Sprintf("user-assets/%d/", userID)
	if !strings.HasPrefix(objectKey, expectedPrefix) {
		Forbidden(c, "access denied")
		return
	}

	signedURL, err := h.storage.GeneratePresignedURL(c.Request.Context(), objectKey, 15*time.Minute)
	if err != nil {
		h.logger.Error("generate presigned url", slog.Any("error", err))
		Internal(c, "failed to generate url")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

// DeleteAsset removes one of the caller's objects and its row.
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	objectKey := c.Query("key")
	if objectKey == "" {
		BadRequest(c, "missing key")
		return
	}

	ctx := c.Request.Context()
	var asset database.Asset
	if err := h.db.WithContext(ctx).
		Where("user_id = ? AND object_key = ?", userID, objectKey).
		First(&asset).Error; err != nil {
		NotFound(c, "asset not found")
		return
	}

	if err := h.storage.DeleteObject(ctx, objectKey); err != nil && !storage.IsNoSuchKey(err) {
		h.logger.Error("delete object", slog.Any("error", err))
		Internal(c, "failed to delete file")
		return
	}
	if err := h.db.WithContext(ctx).Delete(&asset).Error; err != nil {
		h.logger.Error("delete asset row", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.Status(http.StatusNoContent)
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
