package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/schoolsite/storage"
	"github.com/cppla/schoolsite/utils"
)

// ImageStore persists uploaded images and queues replaced ones for removal.
type ImageStore interface {
	SaveImage(fh *multipart.FileHeader, kind string, maxBytes int64) (string, error)
	Remove(url string)
	Release(tx *gorm.DB, urls ...string) error
}

// saveImage stores fh. Rule violations are added to verr and yield an empty URL with a nil error.
func saveImage(files ImageStore, fh *multipart.FileHeader, field, kind string, maxBytes int64, overrides map[string]string, verr *ValidationError) (string, error) {
	url, err := files.SaveImage(fh, kind, maxBytes)
	switch {
	case err == nil:
		return url, nil
	case errors.Is(err, storage.ErrTooLarge):
		verr.Add(field, message(overrides, field+".max",
			fmt.Sprintf("The %s field must not be greater than %d kilobytes.", utils.HumanizeField(field), maxBytes/1024)))
		return "", nil
	case errors.Is(err, storage.ErrUnsupportedType):
		verr.Add(field, message(overrides, field+".mimes",
			fmt.Sprintf("The %s field must be a file of type: %s.", utils.HumanizeField(field), strings.Join(storage.AllowedExtensions, ", "))))
		return "", nil
	default:
		return "", err
	}
}

func removeAll(files ImageStore, urls []string) {
	for _, u := range urls {
		if u != "" {
			files.Remove(u)
		}
	}
}

func message(overrides map[string]string, key, fallback string) string {
	if msg, ok := overrides[key]; ok {
		return msg
	}
	return fallback
}

func requiredMessage(overrides map[string]string, field string) string {
	return message(overrides, field+".required", fmt.Sprintf("The %s field is required.", utils.HumanizeField(field)))
}
