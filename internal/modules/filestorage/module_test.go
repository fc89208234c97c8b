package filestorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beatmatch/backend/internal/shared/infrastructure/config"
)

func TestNewModuleLocalAndS3Error(t *testing.T) {
	m, err := NewModule(context.Background(), config.FileStorageConfig{UseS3: false, LocalPath: t.TempDir()})
	require.NoError(t, err)
	require.NotNil(t, m.Service())

	_, err = NewModule(context.Background(), config.FileStorageConfig{UseS3: true, S3BucketName: ""})
	require.Error(t, err)
}
