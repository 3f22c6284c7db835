// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bitacora/internal/middleware"
	"bitacora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configures a seed run.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// FakerSeed makes generated content reproducible. Zero picks a time-based seed.
	FakerSeed int64
}

// Summary counts what a run inserted.
type Summary struct {
	Users     int
	Posts     int
	Reactions int
	Comments  int
}

// Seeder writes demo data through GORM.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewSeeder returns a Seeder bound to db.
func NewSeeder(db *gorm.DB, fakerSeed int64) *Seeder {
	if fakerSeed == 0 {
		fakerSeed = time.Now().UnixNano()
	}
	return &Seeder{db: db, faker: gofakeit.New(fakerSeed), now: time.Now}
}

// Run seeds the sample posts under author, then optional generated readers,
// posts and engagement.
func (s *Seeder) Run(ctx context.Context, author *models.User, opts Options) (*Summary, error) {
	if author == nil {
		return nil, errors.New("seeding requires an author")
	}

	if opts.ShouldClean {
		if err := s.ClearContent(ctx); err != nil {
			return nil, fmt.Errorf("clear content: %w", err)
		}
	}

	summary := &Summary{}
	posts, err := s.SamplePosts(ctx, author)
	if err != nil {
		return nil, fmt.Errorf("sample posts: %w", err)
	}
	summary.Posts = len(posts)

	users, err := s.CreateUsers(ctx, opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	summary.Users = len(users)

	generated, err := s.CreatePosts(ctx, author, users, opts.NumPosts)
	if err != nil {
		return nil, fmt.Errorf("posts: %w", err)
	}
	summary.Posts += len(generated)
	posts = append(posts, generated...)

	reactions, comments, err := s.CreateEngagement(ctx, users, posts)
	if err != nil {
		return nil, fmt.Errorf("engagement: %w", err)
	}
	summary.Reactions = reactions
	summary.Comments = comments

	middleware.Logger.Info("Seed completed",
		slog.Int("users", summary.Users),
		slog.Int("posts", summary.Posts),
		slog.Int("reactions", summary.Reactions),
		slog.Int("comments", summary.Comments),
	)
	return summary, nil
}

// ClearContent removes posts and everything attached to them. Users are
// owned by the identity provider and are left alone.
func (s *Seeder) ClearContent(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Reaction{}, &models.Comment{}, &models.PostAuthor{}, &models.Post{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SamplePosts inserts the curated posts whose slug is still free and returns
// the ones it created.
func (s *Seeder) SamplePosts(ctx context.Context, author *models.User) ([]*models.Post, error) {
	created := make([]*models.Post, 0, len(SamplePosts))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sample := range SamplePosts {
			var n int64
			if err := tx.Model(&models.Post{}).Where("slug = ?", sample.Slug).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}

			excerpt := sample.Excerpt
			publishedAt := sample.PublishedAt.UTC()
			post := &models.Post{
				Title:       sample.Title,
				Slug:        sample.Slug,
				Excerpt:     &excerpt,
				Content:     sample.Content,
				CoverImage:  sample.CoverImage,
				Status:      models.PostStatusPublished,
				PublishedAt: &publishedAt,
			}
			if err := createPost(tx, post, author, nil); err != nil {
				return fmt.Errorf("%s: %w", sample.Slug, err)
			}
			created = append(created, post)
		}
		return nil
	})
	return created, err
}

// CreateUsers inserts n reader accounts.
func (s *Seeder) CreateUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		first, last := s.faker.FirstName(), s.faker.LastName()
		handle := strings.ToLower(fmt.Sprintf("%s.%s.%d", first, last, s.faker.Number(1000, 9999)))
		image := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", s.faker.UUID())
		users = append(users, &models.User{
			ID:    s.faker.UUID(),
			Name:  first + " " + last,
			Email: handle + "@example.com",
			Image: &image,
			Role:  models.RoleUser,
		})
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(users, 100).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreatePosts generates n posts. Roughly one in five stays a draft, one in
// ten is anonymous, and some credit a reader as contributor.
func (s *Seeder) CreatePosts(ctx context.Context, author *models.User, contributors []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < n; i++ {
			title := strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 7)), ".")
			excerpt := s.faker.Sentence(14)
			post := &models.Post{
				Title:       title,
				Slug:        fmt.Sprintf("%s-%d", slugify(title), i+1),
				Excerpt:     &excerpt,
				Content:     s.markdown(),
				CoverImage:  fmt.Sprintf("https://picsum.photos/seed/%s/1600/900", s.faker.UUID()),
				IsAnonymous: s.faker.Number(1, 10) == 1,
				Status:      models.PostStatusPublished,
			}
			if s.faker.Number(1, 5) == 1 {
				post.Status = models.PostStatusDraft
			} else {
				published := s.faker.DateRange(s.now().AddDate(0, -6, 0), s.now()).UTC()
				post.PublishedAt = &published
			}

			var coAuthor *models.User
			if len(contributors) > 0 && s.faker.Number(1, 4) == 1 {
				coAuthor = contributors[s.faker.Number(0, len(contributors)-1)]
			}
			if err := createPost(tx, post, author, coAuthor); err != nil {
				return err
			}
			posts = append(posts, post)
		}
		return nil
	})
	return posts, err
}

// CreateEngagement has each user like and comment on a random subset of the
// published posts. It returns the reaction and comment counts.
func (s *Seeder) CreateEngagement(ctx context.Context, users []*models.User, posts []*models.Post) (int, int, error) {
	published := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p.IsPublished() {
			published = append(published, p)
		}
	}
	if len(users) == 0 || len(published) == 0 {
		return 0, 0, nil
	}

	var reactions []*models.Reaction
	var comments []*models.Comment
	for _, u := range users {
		for _, p := range published {
			if s.faker.Bool() {
				reactions = append(reactions, &models.Reaction{UserID: u.ID, PostID: p.ID})
			}
			if s.faker.Number(1, 3) == 1 {
				comments = append(comments, &models.Comment{
					UserID:  u.ID,
					PostID:  p.ID,
					Content: s.faker.Sentence(s.faker.Number(4, 20)),
				})
			}
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(reactions) > 0 {
			if err := tx.Omit("User", "Post").CreateInBatches(reactions, 200).Error; err != nil {
				return err
			}
		}
		if len(comments) > 0 {
			if err := tx.Omit("User", "Post").CreateInBatches(comments, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return len(reactions), len(comments), nil
}

func (s *Seeder) markdown() string {
	var b strings.Builder
	b.WriteString("## " + strings.TrimSuffix(s.faker.Sentence(4), ".") + "\n\n")
	for i := 0; i < s.faker.Number(2, 4); i++ {
		b.WriteString(s.faker.Paragraph(1, 4, 12, " "))
		b.WriteString("\n\n")
	}
	for i := 0; i < 3; i++ {
		b.WriteString("- " + s.faker.Sentence(6) + "\n")
	}
	return b.String()
}

func createPost(tx *gorm.DB, post *models.Post, author, contributor *models.User) error {
	post.AuthorID = &author.ID
	if err := tx.Omit("CoAuthors", "Author").Create(post).Error; err != nil {
		return err
	}
	rows := []models.PostAuthor{{PostID: post.ID, UserID: author.ID, Role: models.AuthorRolePrimary}}
	if contributor != nil && contributor.ID != author.ID {
		rows = append(rows, models.PostAuthor{PostID: post.ID, UserID: contributor.ID, Role: models.AuthorRoleContributor})
	}
	return tx.Omit("User").Create(&rows).Error
}

// slugify lowercases title and keeps [a-z0-9] runs joined by single hyphens.
func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
