package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reaction is a like. At most one row exists per (user, post), enforced by
// idx_reaction_user_post.
type Reaction struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_reaction_user_post" json:"user_id"`
	PostID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_reaction_user_post;index" json:"post_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *Reaction) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ReactionState is the authoritative result of a toggle, returned so clients
// can replace their optimistic guess.
type ReactionState struct {
	PostID string `json:"post_id"`
	Liked  bool   `json:"liked"`
	Count  int64  `json:"count"`
}
