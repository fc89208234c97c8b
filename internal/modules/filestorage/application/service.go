package application

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/beatmatch/backend/internal/modules/filestorage/domain"
)

// FileService is the high-level upload API handed to the other modules.
type FileService struct {
	storage domain.MediaStorage
}

func NewFileService(storage domain.MediaStorage) *FileService {
	return &FileService{storage: storage}
}

// Upload stores the file under a fresh random key inside folder and returns
// the public URL together with the generated key. The original filename only
// contributes its extension.
func (s *FileService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder string) (string, string, error) {
	ext := filepath.Ext(header.Filename)
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)

	url, err := s.UploadWithKey(ctx, file, key, header.Header.Get("Content-Type"))
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

// UploadWithKey stores the file under a caller-chosen key.
func (s *FileService) UploadWithKey(ctx context.Context, file io.Reader, key string, contentType string) (string, error) {
	return s.storage.UploadFile(ctx, key, file, contentType)
}

func (s *FileService) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return s.storage.GetPresignedURL(ctx, key, expiration)
}

func (s *FileService) GetPresignedDownloadURL(ctx context.Context, key string, filename string, expiration time.Duration) (string, error) {
	return s.storage.GetPresignedDownloadURL(ctx, key, filename, expiration)
}

func (s *FileService) Delete(ctx context.Context, key string) error {
	return s.storage.DeleteFile(ctx, key)
}

func (s *FileService) GetKeyFromUrl(fileUrl string) (string, error) {
	return s.storage.GetKeyFromURL(fileUrl)
}
