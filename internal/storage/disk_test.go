package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"drawerbox/internal/config"
	"drawerbox/internal/models"
	"drawerbox/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ImageStore {
	t.Helper()
	store, err := NewImageStore(&config.Config{
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: 1,
	})
	require.NoError(t, err)
	return store
}

func TestImageStoreSaveAndRemove(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	name, err := store.Save(testutil.TinyPNG(t, 4, 4))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"), "got %q", name)
	assert.Equal(t, name, filepath.Base(name))

	path, err := store.Path(name)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, store.Remove(name))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing again stays quiet.
	require.NoError(t, store.Remove(name))
}

func TestImageStoreRejectsNonImages(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	cases := [][]byte{
		nil,
		[]byte("plain text, not an image"),
		{0xff, 0xd8, 0xff, 0x00}, // jpeg magic without a decodable body
	}
	for _, content := range cases {
		_, err := store.Save(content)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr), "content %q", content)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	}
}

func TestImageStoreRejectsOversizedUploads(t *testing.T) {
	t.Parallel()
	store, err := NewImageStore(&config.Config{UploadDir: t.TempDir(), MaxUploadSizeMB: 1})
	require.NoError(t, err)

	big := make([]byte, 1024*1024+1)
	_, err = store.Save(big)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestImageStoreRejectsPathTraversal(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	for _, name := range []string{"", "../escape.png", "nested/name.png"} {
		assert.Error(t, store.Remove(name), "name %q", name)
		_, err := store.Path(name)
		assert.Error(t, err, "name %q", name)
	}
}
