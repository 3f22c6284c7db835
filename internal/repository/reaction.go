package repository

import (
	"context"

	"bitacora/internal/models"
	"bitacora/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository owns reaction rows. Exclusivity per (user, post) comes
// from the idx_reaction_user_post unique index, never from a prior read.
type ReactionRepository interface {
	Exists(ctx context.Context, userID, postID string) (bool, error)
	// Insert returns models.ErrDuplicateReaction when the row already exists.
	Insert(ctx context.Context, userID, postID string) error
	// Delete returns the number of rows removed (0 or 1).
	Delete(ctx context.Context, userID, postID string) (int64, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
}

type reactionRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db, log: observability.NewRepoLogger("reactions")}
}

func (r *reactionRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	defer observability.TrackQuery("exists", "reactions")()

	var n int64
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&n).Error
	if err != nil {
		return false, translateError(err, "Reaction", postID)
	}
	return n > 0, nil
}

func (r *reactionRepository) Insert(ctx context.Context, userID, postID string) error {
	defer observability.TrackQuery("insert", "reactions")()

	reaction := &models.Reaction{UserID: userID, PostID: postID}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(reaction)
	switch {
	case res.Error != nil && isUniqueViolation(res.Error):
		return models.ErrDuplicateReaction
	case res.Error != nil && isForeignKeyViolation(res.Error):
		return models.NewNotFoundError("Post", postID)
	case res.Error != nil:
		r.log.LogError(ctx, res.Error, "insert")
		return translateError(res.Error, "Reaction", postID)
	case res.RowsAffected == 0:
		return models.ErrDuplicateReaction
	}

	r.log.LogCreate(ctx, map[string]interface{}{"post_id": postID, "user_id": userID})
	return nil
}

func (r *reactionRepository) Delete(ctx context.Context, userID, postID string) (int64, error) {
	defer observability.TrackQuery("delete", "reactions")()

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Reaction{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return 0, translateError(res.Error, "Reaction", postID)
	}
	if res.RowsAffected > 0 {
		r.log.LogDelete(ctx, map[string]interface{}{"post_id": postID, "user_id": userID})
	}
	return res.RowsAffected, nil
}

func (r *reactionRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	defer observability.TrackQuery("count", "reactions")()

	var n int64
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("post_id = ?", postID).
		Count(&n).Error
	return n, translateError(err, "Reaction", postID)
}
