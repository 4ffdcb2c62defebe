package models

import "time"

// Category tag types.
const (
	TagTypePost     = "post"
	TagTypeTeacher  = "teacher"
	TagTypeFacility = "facility"
)

// CategoryTag labels posts and groups teachers and facilities.
type CategoryTag struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Title  string `gorm:"size:255;not null" json:"title"`
	Type   string `gorm:"size:32;not null;index" json:"type"`
	Status int    `gorm:"not null" json:"status"`
	Audit
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// RelatedPostsCount is computed at query time and never stored.
	RelatedPostsCount int64 `gorm:"->;-:migration" json:"related_posts_count"`
	CreatedUser       *User `gorm:"foreignKey:CreatedUserID" json:"created_user,omitempty"`
}
