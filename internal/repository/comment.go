package repository

import (
	"context"
	"time"

	"bitacora/internal/models"
	"bitacora/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
	CountByPost(ctx context.Context, postID string) (int64, error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("create", "comments")()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		if isForeignKeyViolation(err) {
			return models.NewNotFoundError("Post", comment.PostID)
		}
		r.log.LogError(ctx, err, "create")
		return translateError(err, "Comment", comment.ID)
	}

	r.log.LogCreate(ctx, map[string]interface{}{"id": comment.ID, "post_id": comment.PostID})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	defer observability.TrackQuery("get_by_id", "comments")()

	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User", publicUser).First(&comment, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Comment", id)
	}
	return &comment, nil
}

// ListByPost returns the flat comment list of a post, newest first. parent_id
// is stored but not used to nest.
func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	defer observability.TrackQuery("list_by_post", "comments")()

	comments := []*models.Comment{}
	err := r.db.WithContext(ctx).
		Preload("User", publicUser).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, translateError(err, "Comment", "")
	}
	return comments, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id, content string) (*models.Comment, error) {
	defer observability.TrackQuery("update", "comments")()

	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"content": content, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return nil, translateError(res.Error, "Comment", id)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Comment", id)
	}

	r.log.LogUpdate(ctx, map[string]interface{}{"id": id})
	return r.GetByID(ctx, id)
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", "comments")()

	res := r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return translateError(res.Error, "Comment", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}

	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	defer observability.TrackQuery("count", "comments")()

	var n int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&n).Error
	return n, translateError(err, "Comment", postID)
}
