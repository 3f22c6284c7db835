// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bitacora/internal/database"
	"bitacora/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewTestDB opens an isolated in-memory SQLite database with foreign keys
// enforced and the full schema migrated. The pool is pinned to a single
// connection, so code under test must use the transaction handle inside
// transactions.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:bitacora_test_%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given display name and role.
func CreateUser(t testing.TB, db *gorm.DB, name string, role models.UserRole) *models.User {
	t.Helper()

	n := dbSeq.Add(1)
	handle := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	u := &models.User{
		ID:    fmt.Sprintf("user-%d", n),
		Name:  name,
		Email: fmt.Sprintf("%s.%d@example.com", handle, n),
		Role:  role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// PostOption customizes a fixture post.
type PostOption func(*models.Post)

// Draft leaves the post unpublished.
func Draft() PostOption {
	return func(p *models.Post) {
		p.Status = models.PostStatusDraft
		p.PublishedAt = nil
	}
}

// Anonymous hides the author from public views.
func Anonymous() PostOption {
	return func(p *models.Post) { p.IsAnonymous = true }
}

// PublishedAt overrides the publication time.
func PublishedAt(ts time.Time) PostOption {
	return func(p *models.Post) {
		t := ts.UTC()
		p.Status = models.PostStatusPublished
		p.PublishedAt = &t
	}
}

// CreatePost inserts a published post authored by author (which may be nil).
// A primary authorship row is written for non-nil authors.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, slug string, opts ...PostOption) *models.Post {
	t.Helper()

	now := time.Now().UTC()
	p := &models.Post{
		Title:       "Post " + slug,
		Slug:        slug,
		Content:     "Contenido de " + slug,
		CoverImage:  "https://images.example.com/" + slug + ".jpg",
		Status:      models.PostStatusPublished,
		PublishedAt: &now,
	}
	if author != nil {
		p.AuthorID = &author.ID
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := db.Omit("CoAuthors", "Author").Create(p).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	if author != nil {
		row := &models.PostAuthor{PostID: p.ID, UserID: author.ID, Role: models.AuthorRolePrimary}
		if err := db.Omit("User").Create(row).Error; err != nil {
			t.Fatalf("create primary author: %v", err)
		}
	}
	return p
}

// AddContributor attributes post to user as a contributor.
func AddContributor(t testing.TB, db *gorm.DB, post *models.Post, user *models.User) {
	t.Helper()
	row := &models.PostAuthor{PostID: post.ID, UserID: user.ID, Role: models.AuthorRoleContributor}
	if err := db.Omit("User").Create(row).Error; err != nil {
		t.Fatalf("add contributor: %v", err)
	}
}
