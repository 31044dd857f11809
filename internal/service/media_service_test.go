package service

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inkwell/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMediaService(t *testing.T, maxMB int) *MediaService {
	t.Helper()
	return NewMediaService(&config.Config{
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: maxMB,
	})
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestStoreImage(t *testing.T) {
	t.Run("stores file and returns public path", func(t *testing.T) {
		dir := t.TempDir()
		svc := NewMediaService(&config.Config{UploadDir: dir, MaxUploadSizeMB: 5})

		url, err := svc.StoreImage(StoredImageInput{Filename: "photo.PNG", Content: pngBytes(t)})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(url, "/uploads/"))
		assert.True(t, strings.HasSuffix(url, ".png"), "extension should be kept lowercased: %s", url)

		onDisk := filepath.Join(dir, strings.TrimPrefix(url, "/uploads/"))
		_, statErr := os.Stat(onDisk)
		assert.NoError(t, statErr)
	})

	t.Run("rejects empty upload", func(t *testing.T) {
		svc := newTestMediaService(t, 5)

		_, err := svc.StoreImage(StoredImageInput{Filename: "a.png"})
		assertValidationError(t, err)
	})

	t.Run("rejects oversized upload", func(t *testing.T) {
		svc := newTestMediaService(t, 1)

		big := make([]byte, 2*1024*1024)
		copy(big, pngBytes(t))
		_, err := svc.StoreImage(StoredImageInput{Filename: "a.png", Content: big})
		assertValidationError(t, err)
		assert.EqualError(t, err, "File too large (max 1MB)")
	})

	t.Run("rejects non-image content", func(t *testing.T) {
		svc := newTestMediaService(t, 5)

		_, err := svc.StoreImage(StoredImageInput{Filename: "a.png", Content: []byte("#!/bin/sh\nrm -rf /\n")})
		assertValidationError(t, err)
	})

	t.Run("concurrent uploads get distinct names", func(t *testing.T) {
		svc := newTestMediaService(t, 5)
		content := pngBytes(t)

		first, err := svc.StoreImage(StoredImageInput{Filename: "a.png", Content: content})
		require.NoError(t, err)
		second, err := svc.StoreImage(StoredImageInput{Filename: "a.png", Content: content})
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestRemoveStored(t *testing.T) {
	dir := t.TempDir()
	svc := NewMediaService(&config.Config{UploadDir: dir, MaxUploadSizeMB: 5})

	url, err := svc.StoreImage(StoredImageInput{Filename: "a.png", Content: pngBytes(t)})
	require.NoError(t, err)

	svc.RemoveStored(url)
	_, statErr := os.Stat(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	assert.True(t, os.IsNotExist(statErr))

	// Traversal-looking paths are ignored.
	svc.RemoveStored("/uploads/../secret")
	svc.RemoveStored("/etc/passwd")
}

func TestBuildUploadName(t *testing.T) {
	assert.True(t, strings.HasSuffix(buildUploadName("photo.jpg"), ".jpg"))
	assert.True(t, strings.HasSuffix(buildUploadName("PHOTO.JPG"), ".jpg"))
	assert.False(t, strings.Contains(buildUploadName("evil.sh/../../x"), "/"))
	assert.NotEmpty(t, buildUploadName("noext"))
}
