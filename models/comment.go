package models

import "time"

// Comment moderation states.
const (
	CommentPending  = 0
	CommentApproved = 1
	CommentRejected = 2
)

// Comment is a visitor reply to a post. New comments wait for moderation.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	Description string    `gorm:"type:text;not null" json:"description"`
	PostID      uint      `gorm:"index;not null" json:"post_id"`
	Status      int       `gorm:"not null;index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Post        *Post     `json:"post,omitempty"`
}
