package models

import "time"

// Post types.
const (
	PostTypeNews         uint = 1
	PostTypeEvent        uint = 2
	PostTypeAnnouncement uint = 3
)

// Post is a news item, event or announcement shown on the public site.
type Post struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Title             string     `gorm:"size:255;not null" json:"title"`
	Subtitle          *string    `gorm:"size:255" json:"subtitle"`
	Description       string     `gorm:"type:text;not null" json:"description"`
	FooterDescription *string    `gorm:"type:text" json:"footer_description"`
	BannerImg         string     `gorm:"size:512;not null" json:"banner_img"`
	Images            StringList `gorm:"type:text" json:"images"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	RegistrationFee   *string    `gorm:"size:64" json:"registration_fee"`
	AwardDescription  *string    `gorm:"type:text" json:"award_description"`
	VideoURL          *string    `gorm:"size:512" json:"video_url"`
	Location          *string    `gorm:"size:255" json:"location"`
	Status            int        `gorm:"not null;index" json:"status"`
	PostTypeID        uint       `gorm:"not null;index" json:"post_type_id"`
	Audit
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	CategoryTags []PostCategoryTag `json:"category_tags"`
	CreatedUser  *User             `gorm:"foreignKey:CreatedUserID" json:"created_user,omitempty"`
	UpdatedUser  *User             `gorm:"foreignKey:UpdatedUserID" json:"updated_user,omitempty"`
}

// PostCategoryTag links a post to a category tag.
type PostCategoryTag struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	PostID        uint        `gorm:"not null;uniqueIndex:idx_post_tag" json:"post_id"`
	CategoryTagID uint        `gorm:"not null;uniqueIndex:idx_post_tag;index" json:"category_tag_id"`
	CreatedAt     time.Time   `json:"created_at"`
	CategoryTag   CategoryTag `json:"category_tag"`
}
