package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"teztech/internal/config"
	"teztech/internal/database"
)

type fakeStorage struct {
	uploaded map[string][]byte
	deleted  []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, _ := io.ReadAll(reader)
	s.uploaded[objectName] = b
	return &minio.UploadInfo{}, nil
}

func (s *fakeStorage) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://example.invalid/" + objectKey, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

func assetRouter(db *gorm.DB, store objectStore, cfg config.UploadsConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAssetHandler(db, store, discardLogger(), cfg)
	router := gin.New()
	group := router.Group("/v1", asUser(1, database.RoleSeeker))
	group.POST("/assets/upload", h.UploadAsset)
	group.GET("/assets", h.ListAssets)
	group.DELETE("/assets", h.DeleteAsset)
	return router
}

func newMultipartUpload(t *testing.T, filename, kind string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("kind", kind); err != nil {
		t.Fatalf("write kind field: %v", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func testUploadsConfig() config.UploadsConfig {
	// ClamdAddr empty: no scanner in unit tests.
	return config.UploadsConfig{
		MaxBytes:         1 << 20,
		MaxFilesPerUser:  4,
		MaxUploadsPerDay: 4,
	}
}

func uploadFile(t *testing.T, router *gin.Engine, filename, kind string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := newMultipartUpload(t, filename, kind, content)
	req := httptest.NewRequest(http.MethodPost, "/v1/assets/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadAssetStoresFileAndRow(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStorage()
	router := assetRouter(db, store, testUploadsConfig())

	rec := uploadFile(t, router, "avatar.png", "avatar", []byte("\x89PNG\r\n\x1a\n"))
	wantStatus(t, rec, http.StatusCreated)

	if len(store.uploaded) != 1 {
		t.Fatalf("uploaded objects = %d, want 1", len(store.uploaded))
	}
	var asset database.Asset
	if err := db.First(&asset).Error; err != nil {
		t.Fatalf("load asset row: %v", err)
	}
	if asset.UserID != 1 || asset.Kind != "avatar" {
		t.Errorf("asset row = %+v", asset)
	}
}

func TestUploadAssetRejectsUnknownKindAndExtension(t *testing.T) {
	db := newTestDB(t)
	router := assetRouter(db, newFakeStorage(), testUploadsConfig())

	rec := uploadFile(t, router, "cv.pdf", "archive", []byte("%PDF-1.4"))
	wantStatus(t, rec, http.StatusBadRequest)

	rec = uploadFile(t, router, "cv.exe", "resume", []byte("MZ"))
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestUploadAssetLimitsByCount(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStorage()
	cfg := testUploadsConfig()
	router := assetRouter(db, store, cfg)

	for i := 0; i < cfg.MaxFilesPerUser; i++ {
		objectKey := fmt.Sprintf("user-assets/1/avatar/existing-%d.png", i)
		if err := db.Create(&database.Asset{UserID: 1, ObjectKey: objectKey, Kind: "avatar"}).Error; err != nil {
			t.Fatalf("seed asset: %v", err)
		}
	}

	rec := uploadFile(t, router, "one-too-many.png", "avatar", []byte("\x89PNG\r\n\x1a\n"))
	wantStatus(t, rec, http.StatusBadRequest)
	if len(store.uploaded) != 0 {
		t.Errorf("upload happened despite the count limit")
	}
}

func TestDeleteAssetRemovesObjectAndRow(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStorage()
	router := assetRouter(db, store, testUploadsConfig())

	rec := uploadFile(t, router, "avatar.png", "avatar", []byte("\x89PNG\r\n\x1a\n"))
	wantStatus(t, rec, http.StatusCreated)

	var asset database.Asset
	if err := db.First(&asset).Error; err != nil {
		t.Fatalf("load asset row: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/v1/assets?key="+asset.ObjectKey, nil)
	delRec := httptest.NewRecorder()
	router.ServeHTTP(delRec, req)
	if delRec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204 (body: %s)", delRec.Code, delRec.Body.String())
	}

	if len(store.deleted) != 1 {
		t.Errorf("deleted objects = %d, want 1", len(store.deleted))
	}
	var count int64
	db.Model(&database.Asset{}).Count(&count)
	if count != 0 {
		t.Errorf("asset rows = %d after delete, want 0", count)
	}
}
