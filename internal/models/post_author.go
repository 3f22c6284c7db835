package models

import "time"

// AuthorRole distinguishes the primary author from attribution-only contributors.
type AuthorRole string

const (
	AuthorRolePrimary     AuthorRole = "primary"
	AuthorRoleContributor AuthorRole = "contributor"
)

// PostAuthor attributes a post to a user.
type PostAuthor struct {
	PostID    string     `gorm:"primaryKey;type:varchar(36)" json:"post_id"`
	UserID    string     `gorm:"primaryKey;type:varchar(64);index" json:"user_id"`
	Role      AuthorRole `gorm:"type:varchar(16);not null;default:contributor" json:"role"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Byline is the rendered attribution of a post.
type Byline struct {
	Anonymous bool     `json:"anonymous"`
	Name      string   `json:"name"`
	Initials  string   `json:"initials"`
	CoAuthors []string `json:"co_authors,omitempty"`
	Label     string   `json:"label"`
}
