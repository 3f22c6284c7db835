// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"
	"time"

	"bitacora/internal/models"
	"bitacora/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSlugTaken is the message returned when a post slug collides.
const ErrSlugTaken = "slug already in use"

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, contributorIDs []string) error
	Update(ctx context.Context, post *models.Post, contributorIDs []string, replaceContributors bool) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*models.Post, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error)
	CountPublished(ctx context.Context) (int64, error)
	ListAll(ctx context.Context) ([]*models.Post, error)
	CountsByStatus(ctx context.Context) (models.StatusCounts, error)
	SearchPublished(ctx context.Context, query string, limit int) ([]*models.Post, error)
	ListPublishedByIDs(ctx context.Context, ids []string) ([]*models.Post, error)
	AuthorsByPostIDs(ctx context.Context, postIDs []string) (map[string][]models.PostAuthor, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

// postColumns selects a post with its aggregated interaction counts in one query.
const postColumns = "posts.*, " +
	"(SELECT COUNT(*) FROM reactions WHERE reactions.post_id = posts.id) AS reactions_count, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count"

func publicUser(db *gorm.DB) *gorm.DB {
	return db.Select(models.PublicUserColumns)
}

func (r *postRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(postColumns).
		Preload("Author", publicUser)
}

// Create inserts the post, its primary authorship row and contributor rows in
// one transaction.
func (r *postRepository) Create(ctx context.Context, post *models.Post, contributorIDs []string) error {
	defer observability.TrackQuery("create", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		return insertAuthors(tx, post.ID, post.AuthorID, contributorIDs)
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return r.translate(err, post.ID)
	}

	r.log.LogCreate(ctx, map[string]interface{}{"id": post.ID, "slug": post.Slug, "status": post.Status})
	return nil
}

// Update writes every mutable column. When replaceContributors is set the
// contributor set is deleted and reinserted in the same transaction, so
// readers never see a half-replaced list.
func (r *postRepository) Update(ctx context.Context, post *models.Post, contributorIDs []string, replaceContributors bool) error {
	defer observability.TrackQuery("update", "posts")()

	post.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{ID: post.ID}).
			Select("title", "slug", "excerpt", "content", "cover_image", "author_id",
				"is_anonymous", "status", "published_at", "updated_at").
			Updates(post)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		// Primary attribution follows Post.AuthorID. Without one the existing
		// primary rows stay, since they alone grant edit rights.
		if post.AuthorID != nil {
			if err := tx.Where("post_id = ? AND (role = ? OR user_id = ?)", post.ID, models.AuthorRolePrimary, *post.AuthorID).
				Delete(&models.PostAuthor{}).Error; err != nil {
				return err
			}
		} else if replaceContributors && len(contributorIDs) > 0 {
			var primaries []string
			if err := tx.Model(&models.PostAuthor{}).
				Where("post_id = ? AND role = ?", post.ID, models.AuthorRolePrimary).
				Pluck("user_id", &primaries).Error; err != nil {
				return err
			}
			contributorIDs = withoutIDs(contributorIDs, primaries)
		}

		if replaceContributors {
			if err := tx.Where("post_id = ? AND role = ?", post.ID, models.AuthorRoleContributor).
				Delete(&models.PostAuthor{}).Error; err != nil {
				return err
			}
			return insertAuthors(tx, post.ID, post.AuthorID, contributorIDs)
		}
		return insertAuthors(tx, post.ID, post.AuthorID, nil)
	})
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return r.translate(err, post.ID)
	}

	r.log.LogUpdate(ctx, map[string]interface{}{"id": post.ID, "slug": post.Slug, "status": post.Status})
	return nil
}

// insertAuthors writes the primary row for authorID and a contributor row per
// distinct id that is not the primary author.
func insertAuthors(tx *gorm.DB, postID string, authorID *string, contributorIDs []string) error {
	rows := make([]models.PostAuthor, 0, len(contributorIDs)+1)
	seen := map[string]bool{}
	if authorID != nil && *authorID != "" {
		seen[*authorID] = true
		rows = append(rows, models.PostAuthor{PostID: postID, UserID: *authorID, Role: models.AuthorRolePrimary})
	}
	for _, id := range contributorIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, models.PostAuthor{PostID: postID, UserID: id, Role: models.AuthorRoleContributor})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func withoutIDs(ids, drop []string) []string {
	if len(drop) == 0 {
		return ids
	}
	skip := make(map[string]bool, len(drop))
	for _, id := range drop {
		skip[id] = true
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !skip[strings.TrimSpace(id)] {
			out = append(out, id)
		}
	}
	return out
}

// Delete removes the post. Reactions, comments and authorship rows go with it
// through ON DELETE CASCADE.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", "posts")()

	res := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return r.translate(res.Error, id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}

	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	defer observability.TrackQuery("get_by_id", "posts")()

	var post models.Post
	if err := r.withDetails(ctx).Where("posts.id = ?", id).First(&post).Error; err != nil {
		return nil, r.translate(err, id)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*models.Post, error) {
	defer observability.TrackQuery("get_by_slug", "posts")()

	q := r.withDetails(ctx).Where("posts.slug = ?", slug)
	if !includeDrafts {
		q = q.Where("posts.status = ?", models.PostStatusPublished)
	}

	var post models.Post
	if err := q.First(&post).Error; err != nil {
		return nil, translateError(err, "Post", slug)
	}
	return &post, nil
}

// ListPublished returns a feed page, newest publication first. The id breaks
// ties so pages are stable.
func (r *postRepository) ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("list_published", "posts")()

	var posts []*models.Post
	err := r.withDetails(ctx).
		Where("posts.status = ?", models.PostStatusPublished).
		Order("posts.published_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, translateError(err, "Post", "")
	}
	return posts, nil
}

func (r *postRepository) CountPublished(ctx context.Context) (int64, error) {
	defer observability.TrackQuery("count_published", "posts")()

	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("status = ?", models.PostStatusPublished).
		Count(&n).Error
	return n, translateError(err, "Post", "")
}

// ListAll returns every post including drafts, newest first.
func (r *postRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	defer observability.TrackQuery("list_all", "posts")()

	var posts []*models.Post
	err := r.withDetails(ctx).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, translateError(err, "Post", "")
	}
	return posts, nil
}

func (r *postRepository) CountsByStatus(ctx context.Context) (models.StatusCounts, error) {
	defer observability.TrackQuery("counts_by_status", "posts")()

	var rows []struct {
		Status models.PostStatus
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return models.StatusCounts{}, translateError(err, "Post", "")
	}

	var counts models.StatusCounts
	for _, row := range rows {
		switch row.Status {
		case models.PostStatusDraft:
			counts.Draft = row.N
		case models.PostStatusPublished:
			counts.Published = row.N
		}
		counts.Total += row.N
	}
	return counts, nil
}

// SearchPublished is the database fallback for full-text search. LOWER/LIKE
// keeps it portable across PostgreSQL and SQLite.
func (r *postRepository) SearchPublished(ctx context.Context, query string, limit int) ([]*models.Post, error) {
	defer observability.TrackQuery("search", "posts")()

	like := "%" + escapeLike(strings.ToLower(query)) + "%"
	var posts []*models.Post
	err := r.withDetails(ctx).
		Where("posts.status = ?", models.PostStatusPublished).
		Where("(LOWER(posts.title) LIKE ? ESCAPE '\\' OR LOWER(posts.excerpt) LIKE ? ESCAPE '\\' OR LOWER(posts.content) LIKE ? ESCAPE '\\')", like, like, like).
		Order("posts.published_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, translateError(err, "Post", "")
	}
	return posts, nil
}

// ListPublishedByIDs hydrates search hits, preserving the order of ids.
func (r *postRepository) ListPublishedByIDs(ctx context.Context, ids []string) ([]*models.Post, error) {
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}
	defer observability.TrackQuery("list_by_ids", "posts")()

	var found []*models.Post
	err := r.withDetails(ctx).
		Where("posts.id IN ?", ids).
		Where("posts.status = ?", models.PostStatusPublished).
		Find(&found).Error
	if err != nil {
		return nil, translateError(err, "Post", "")
	}

	byID := make(map[string]*models.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	posts := make([]*models.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// AuthorsByPostIDs loads the authorship rows of several posts in one query,
// with each user's public columns.
func (r *postRepository) AuthorsByPostIDs(ctx context.Context, postIDs []string) (map[string][]models.PostAuthor, error) {
	out := make(map[string][]models.PostAuthor, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	defer observability.TrackQuery("authors_by_post", "post_authors")()

	var rows []models.PostAuthor
	err := r.db.WithContext(ctx).
		Preload("User", publicUser).
		Where("post_id IN ?", postIDs).
		Order("created_at ASC").
		Order("user_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "PostAuthor", "")
	}
	for _, row := range rows {
		out[row.PostID] = append(out[row.PostID], row)
	}
	return out, nil
}

func (r *postRepository) translate(err error, id string) error {
	if isUniqueViolation(err) {
		return models.NewConflictError(ErrSlugTaken, err)
	}
	if isForeignKeyViolation(err) {
		return &models.AppError{Code: models.CodeNotFound, Message: "co-author not found", Err: err}
	}
	return translateError(err, "Post", id)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
