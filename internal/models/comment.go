package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment bounds.
const (
	CommentMinLength = 1
	CommentMaxLength = 1000
)

// Comment is a reply on a post. ParentID is stored for future threading; reads
// return a flat list.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	PostID    string    `gorm:"type:varchar(36);not null;index" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	ParentID  *string   `gorm:"type:varchar(36);index" json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CommentMutation is returned by comment writes: the affected comment (nil on
// delete) plus the post's new comment count.
type CommentMutation struct {
	Comment       *Comment `json:"comment,omitempty"`
	CommentsCount int64    `json:"comments_count"`
}
