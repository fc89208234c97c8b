package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/beatmatch/backend/internal/gateway/middleware"
	"github.com/beatmatch/backend/internal/shared/utils"
)

// FileService is the slice of the storage module these handlers use.
type FileService interface {
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder string) (string, string, error)
	UploadWithKey(ctx context.Context, file io.Reader, key string, contentType string) (string, error)
	GetKeyFromUrl(fileUrl string) (string, error)
	GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// UploadHandler receives profile and gallery media. Images are downscaled
// before hitting object storage.
type UploadHandler struct {
	profiles     ProfileService
	fileService  FileService
	uploadFolder string
}

func NewUploadHandler(profiles ProfileService, fileService FileService, uploadFolder string) *UploadHandler {
	return &UploadHandler{
		profiles:     profiles,
		fileService:  fileService,
		uploadFolder: uploadFolder,
	}
}

// Upload handles POST /user/upload. The multipart form carries a "file" and a
// "type" of either "profile" (single slot) or "gallery" (appended). Instead of
// a file, a pre-hosted "url" form value may be supplied and is persisted as-is.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 100<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "file too large or malformed form", err)
		return
	}

	target := r.FormValue("type")
	if target == "" {
		target = "gallery"
	}
	if target != "profile" && target != "gallery" {
		utils.WriteError(w, http.StatusBadRequest, "type must be \"profile\" or \"gallery\"", nil)
		return
	}

	var url string
	if external := strings.TrimSpace(r.FormValue("url")); external != "" {
		url = external
	} else {
		file, header, err := r.FormFile("file")
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "file is required", nil)
			return
		}
		defer file.Close()

		if h.fileService == nil {
			utils.WriteError(w, http.StatusServiceUnavailable, "storage not configured", nil)
			return
		}

		url, err = h.store(r.Context(), file, header)
		if err != nil {
			log.Printf("[UploadHandler.Upload] storage write failed for %s: %v", userID, err)
			utils.WriteError(w, http.StatusInternalServerError, "upload failed", nil)
			return
		}
	}

	var err error
	if target == "profile" {
		err = h.profiles.SaveProfilePicture(r.Context(), userID, url)
	} else {
		err = h.profiles.AddGalleryPicture(r.Context(), userID, url)
	}
	if err != nil {
		log.Printf("[UploadHandler.Upload] persist failed for %s: %v", userID, err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to save upload", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "upload complete",
		"url":     url,
	})
}

func (h *UploadHandler) store(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	contentType := header.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "image/") {
		src, err := imaging.Decode(file)
		if err != nil {
			return "", fmt.Errorf("image decode error: %w", err)
		}
		dst := imaging.Fit(src, 500, 500, imaging.Lanczos)
		buf := new(bytes.Buffer)
		if err := imaging.Encode(buf, dst, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
			return "", fmt.Errorf("image encode error: %w", err)
		}
		key := fmt.Sprintf("%s/images/%s.jpg", h.uploadFolder, uuid.New().String())
		return h.fileService.UploadWithKey(ctx, buf, key, "image/jpeg")
	}

	url, _, err := h.fileService.Upload(ctx, file, header, h.uploadFolder+"/media")
	return url, err
}
