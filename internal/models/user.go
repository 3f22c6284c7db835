// Package models contains data structures for the blog's domain models.
package models

import "time"

// UserRole is the coarse role issued alongside an identity.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is an identity reference. Rows are issued by the identity provider and
// treated as immutable by the content engine.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email,omitempty"`
	Username  *string   `gorm:"size:64;uniqueIndex" json:"username,omitempty"`
	Image     *string   `json:"image,omitempty"`
	Role      UserRole  `gorm:"type:varchar(16);not null;default:user" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// PublicUserColumns are the user columns safe to embed in public read views.
var PublicUserColumns = []string{"id", "name", "username", "image", "role"}
