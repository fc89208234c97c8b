package filestorage

import (
	"context"
	"fmt"

	"github.com/beatmatch/backend/internal/modules/filestorage/application"
	"github.com/beatmatch/backend/internal/modules/filestorage/domain"
	"github.com/beatmatch/backend/internal/modules/filestorage/infrastructure/local"
	"github.com/beatmatch/backend/internal/modules/filestorage/infrastructure/s3"
	"github.com/beatmatch/backend/internal/shared/infrastructure/config"
)

// Module selects the storage backend from configuration and exposes the
// FileService consumed by the musician upload endpoint.
type Module struct {
	service *application.FileService
	storage domain.MediaStorage
}

func NewModule(ctx context.Context, cfg config.FileStorageConfig) (*Module, error) {
	var storage domain.MediaStorage
	var err error

	if cfg.UseS3 {
		storage, err = s3.NewS3Storage(ctx, s3.S3Config{
			BucketName:     cfg.S3BucketName,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			UseSSL:         cfg.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
	} else {
		storage, err = local.NewLocalStorage(cfg.LocalPath, "http://localhost:8080/uploads")
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
	}

	return &Module{
		service: application.NewFileService(storage),
		storage: storage,
	}, nil
}

func (m *Module) Service() *application.FileService {
	return m.service
}
