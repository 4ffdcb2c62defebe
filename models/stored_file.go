package models

import "time"

// StoredFile records an uploaded file that is no longer referenced and should be removed after ExpireAt.
type StoredFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"`
	URL       string    `gorm:"size:1024;not null" json:"url"`
	ExpireAt  time.Time `gorm:"index;not null" json:"expire_at"`
	CreatedAt time.Time `json:"created_at"`
}
