package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// PostsPerPage is the public feed page size.
const PostsPerPage = 12

// Post is a blog entry. AuthorID is nullable so a post survives the deletion
// of its primary author's account.
type Post struct {
	ID          string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Slug        string       `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Excerpt     *string      `gorm:"size:500" json:"excerpt,omitempty"`
	Content     string       `gorm:"type:text;not null" json:"content"`
	CoverImage  string       `gorm:"not null" json:"cover_image"`
	AuthorID    *string      `gorm:"type:varchar(64);index" json:"author_id"`
	Author      *User        `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	IsAnonymous bool         `gorm:"not null;default:false" json:"is_anonymous"`
	Status      PostStatus   `gorm:"type:varchar(16);not null;default:draft;index" json:"status"`
	PublishedAt *time.Time   `gorm:"index" json:"published_at"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CoAuthors   []PostAuthor `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"co_authors,omitempty"`

	// Computed by the read queries, never persisted.
	ReactionsCount int64   `gorm:"->;-:migration" json:"reactions_count"`
	CommentsCount  int64   `gorm:"->;-:migration" json:"comments_count"`
	Byline         *Byline `gorm:"-" json:"byline,omitempty"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsPublished reports whether the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// MarkPublished records the first publication. Later calls keep the original
// timestamp.
func (p *Post) MarkPublished(now time.Time) {
	if p.Status == PostStatusPublished && p.PublishedAt == nil {
		t := now.UTC()
		p.PublishedAt = &t
	}
}

// CoAuthorIDs returns the user ids of contributor rows.
func (p *Post) CoAuthorIDs() []string {
	ids := make([]string, 0, len(p.CoAuthors))
	for _, a := range p.CoAuthors {
		if a.Role == AuthorRoleContributor {
			ids = append(ids, a.UserID)
		}
	}
	return ids
}

// StatusCounts is the admin dashboard breakdown of posts by status.
type StatusCounts struct {
	Draft     int64 `json:"draft"`
	Published int64 `json:"published"`
	Total     int64 `json:"total"`
}

// PostPage is one page of the public feed.
type PostPage struct {
	Posts    []*Post `json:"posts"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}
