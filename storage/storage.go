// Package storage keeps uploaded images on the local filesystem under the public directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cppla/schoolsite/models"
)

// Upload limits.
const (
	MaxMediaImageBytes int64 = 1 << 20
	MaxPostImageBytes  int64 = 2 << 20
)

// URLPrefix is the route the public directory is served from.
const URLPrefix = "/storage"

var (
	// ErrTooLarge means the upload exceeds the size limit.
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupportedType means the extension or the sniffed content is not an allowed image.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// AllowedExtensions lists accepted image extensions.
var AllowedExtensions = []string{"jpg", "jpeg", "png", "webp"}

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Local stores files below root and exposes them under URLPrefix.
type Local struct {
	root string
	now  func() time.Time
}

// NewLocal returns a Local store rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{root: dir, now: time.Now}
}

// Root returns the filesystem directory served under URLPrefix.
func (s *Local) Root() string {
	return s.root
}

// SaveImage checks fh against the image rules and writes it to uploads/<kind>/YYYY/MM/<uuid>.<ext>.
// It returns the public URL of the stored file.
func (s *Local) SaveImage(fh *multipart.FileHeader, kind string, maxBytes int64) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
	if !extensionAllowed(ext) {
		return "", ErrUnsupportedType
	}
	if fh.Size > maxBytes {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("sniff upload: %w", err)
	}
	if !allowedMIME[mtype.String()] {
		return "", ErrUnsupportedType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	now := s.now()
	rel := path.Join("uploads", kind, now.Format("2006"), now.Format("01"), uuid.NewString()+"."+ext)
	dst := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	written, err := io.Copy(out, &io.LimitedReader{R: src, N: maxBytes + 1})
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if written > maxBytes {
		_ = os.Remove(dst)
		return "", ErrTooLarge
	}

	return URLPrefix + "/" + rel, nil
}

// PathFor maps a public URL to its file below root. Foreign URLs report false.
func (s *Local) PathFor(url string) (string, bool) {
	if !strings.HasPrefix(url, URLPrefix+"/") {
		return "", false
	}
	rel := path.Clean(strings.TrimPrefix(url, URLPrefix+"/"))
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), true
}

// Remove deletes the file behind url right away. Used to roll back when the row write fails.
func (s *Local) Remove(url string) {
	if p, ok := s.PathFor(url); ok {
		_ = os.Remove(p)
	}
}

// Release queues files that are no longer referenced. The ledger row is written with tx so it
// commits or rolls back together with the change that dropped the reference.
func (s *Local) Release(tx *gorm.DB, urls ...string) error {
	for _, url := range urls {
		p, ok := s.PathFor(url)
		if !ok {
			continue
		}
		if err := tx.Create(&models.StoredFile{FilePath: p, URL: url, ExpireAt: s.now()}).Error; err != nil {
			return fmt.Errorf("release %s: %w", url, err)
		}
	}
	return nil
}

// Sweep deletes files whose ledger entry has expired, together with the entry.
func (s *Local) Sweep(ctx context.Context, db *gorm.DB) (int, error) {
	var items []models.StoredFile
	if err := db.WithContext(ctx).Where("expire_at <= ?", s.now()).Order("id").Limit(100).Find(&items).Error; err != nil {
		return 0, fmt.Errorf("list released files: %w", err)
	}
	removed := 0
	for _, it := range items {
		if err := os.Remove(it.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := db.WithContext(ctx).Delete(&models.StoredFile{}, it.ID).Error; err != nil {
			return removed, fmt.Errorf("delete ledger row %d: %w", it.ID, err)
		}
		removed++
	}
	return removed, nil
}

func extensionAllowed(ext string) bool {
	for _, a := range AllowedExtensions {
		if a == ext {
			return true
		}
	}
	return false
}
