package local

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageEndToEnd(t *testing.T) {
	base := t.TempDir()
	ls, err := NewLocalStorage(base, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := ls.UploadFile(context.Background(), "profiles/images/a.jpg", bytes.NewBufferString("img"), "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/uploads/profiles/images/a.jpg", url)

	_, err = os.Stat(filepath.Join(base, "profiles/images/a.jpg"))
	require.NoError(t, err)

	p, err := ls.GetPresignedURL(context.Background(), "profiles/images/a.jpg", time.Minute)
	require.NoError(t, err)
	require.Equal(t, url, p)

	d, err := ls.GetPresignedDownloadURL(context.Background(), "profiles/images/a.jpg", "headshot.jpg", time.Minute)
	require.NoError(t, err)
	require.Equal(t, url, d)

	key, err := ls.GetKeyFromURL(url)
	require.NoError(t, err)
	require.Equal(t, "profiles/images/a.jpg", key)

	require.NoError(t, ls.DeleteFile(context.Background(), "profiles/images/a.jpg"))
	_, err = os.Stat(filepath.Join(base, "profiles/images/a.jpg"))
	require.True(t, os.IsNotExist(err))
}

func TestGetKeyFromURLRejectsForeignURL(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	_, err = ls.GetKeyFromURL("http://elsewhere/uploads/a.jpg")
	require.Error(t, err)
}
