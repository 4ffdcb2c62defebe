package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/schoolsite/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("src", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["src"][0]
}

func pngOfSize(n int) []byte {
	b := make([]byte, n)
	copy(b, pngHeader)
	return b
}

func TestSaveImage(t *testing.T) {
	store := NewLocal(t.TempDir())
	store.now = func() time.Time { return time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC) }

	url, err := store.SaveImage(fileHeader(t, "photo.PNG", pngOfSize(2048)), "teachers", MaxMediaImageBytes)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/storage/uploads/teachers/2024/03/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	p, ok := store.PathFor(url)
	require.True(t, ok)
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.EqualValues(t, 2048, info.Size())
}

func TestSaveImageRejects(t *testing.T) {
	store := NewLocal(t.TempDir())

	_, err := store.SaveImage(fileHeader(t, "notes.pdf", pngOfSize(64)), "galleries", MaxMediaImageBytes)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.SaveImage(fileHeader(t, "fake.jpg", []byte("plain text, not an image")), "galleries", MaxMediaImageBytes)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.SaveImage(fileHeader(t, "big.png", pngOfSize(2<<20)), "galleries", MaxMediaImageBytes)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = store.SaveImage(fileHeader(t, "banner.png", pngOfSize(2<<20)), "posts", MaxPostImageBytes)
	assert.NoError(t, err)
}

func TestPathForRejectsForeignURLs(t *testing.T) {
	store := NewLocal(t.TempDir())

	_, ok := store.PathFor("https://cdn.example.com/a.png")
	assert.False(t, ok)
	_, ok = store.PathFor("/storage/../etc/passwd")
	assert.False(t, ok)
}

func TestReleaseAndSweep(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.StoredFile{}))

	store := NewLocal(t.TempDir())
	url, err := store.SaveImage(fileHeader(t, "a.png", pngOfSize(128)), "galleries", MaxMediaImageBytes)
	require.NoError(t, err)
	p, _ := store.PathFor(url)

	require.NoError(t, store.Release(db, url, "https://elsewhere.test/x.png"))
	var queued int64
	require.NoError(t, db.Model(&models.StoredFile{}).Count(&queued).Error)
	assert.EqualValues(t, 1, queued)

	store.now = func() time.Time { return time.Now().Add(time.Minute) }
	n, err := store.Sweep(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, db.Model(&models.StoredFile{}).Count(&queued).Error)
	assert.Zero(t, queued)
}
