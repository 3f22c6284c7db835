package service

import (
	"context"
	"log/slog"

	"bitacora/internal/cache"
	"bitacora/internal/middleware"
	"bitacora/internal/models"
	"bitacora/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	cache       *cache.ReadCache
}

type CreateCommentInput struct {
	UserID   string
	PostID   string
	Content  string
	ParentID *string
	// PostSlug is an optional invalidation hint, used only when the post's
	// own slug cannot be loaded.
	PostSlug string
}

type UpdateCommentInput struct {
	UserID    string
	CommentID string
	Content   string
	PostSlug  string
}

type DeleteCommentInput struct {
	UserID    string
	CommentID string
	PostSlug  string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	readCache *cache.ReadCache,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		cache:       readCache,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.CommentMutation, error) {
	if in.UserID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	content, err := normalizeComment(in.Content)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	if in.ParentID != nil && *in.ParentID != "" {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			if models.IsNotFound(err) {
				return nil, models.NewValidationError("Parent comment not found")
			}
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, models.NewValidationError("Parent comment belongs to another post")
		}
	} else {
		in.ParentID = nil
	}

	comment := &models.Comment{
		Content:  content,
		UserID:   in.UserID,
		PostID:   post.ID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.finish(ctx, comment.ID, post.ID, post.Slug)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.CommentMutation, error) {
	comment, err := s.ownedComment(ctx, in.UserID, in.CommentID)
	if err != nil {
		return nil, err
	}
	content, err := normalizeComment(in.Content)
	if err != nil {
		return nil, err
	}

	if _, err := s.commentRepo.UpdateContent(ctx, comment.ID, content); err != nil {
		return nil, err
	}
	return s.finish(ctx, comment.ID, comment.PostID, s.resolveSlug(ctx, in.PostSlug, comment.PostID))
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.CommentMutation, error) {
	comment, err := s.ownedComment(ctx, in.UserID, in.CommentID)
	if err != nil {
		return nil, err
	}

	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return nil, err
	}
	return s.finish(ctx, "", comment.PostID, s.resolveSlug(ctx, in.PostSlug, comment.PostID))
}

// ListComments returns the flat comment list of a published post, newest first.
func (s *CommentService) ListComments(ctx context.Context, slug string) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := s.cache.Get(ctx, cache.CommentsKey(slug), []string{cache.PostTag(slug)}, &comments, func() error {
		post, err := s.postRepo.GetBySlug(ctx, slug, false)
		if err != nil {
			return err
		}
		list, err := s.commentRepo.ListByPost(ctx, post.ID)
		if err != nil {
			return err
		}
		comments = list
		return nil
	})
	return comments, err
}

// ownedComment loads the comment and checks the actor wrote it. Admins get no
// override here.
func (s *CommentService) ownedComment(ctx context.Context, userID, commentID string) (*models.Comment, error) {
	if userID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, models.NewForbiddenError("You can only modify your own comments")
	}
	return comment, nil
}

// resolveSlug loads the post's current slug. The caller's hint is used only
// when the post cannot be read; without either only the coarse feed tag is
// invalidated.
func (s *CommentService) resolveSlug(ctx context.Context, hint, postID string) string {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err == nil {
		return post.Slug
	}
	middleware.Logger.WarnContext(ctx, "comment invalidation fell back to slug hint",
		slog.String("post_id", postID),
		slog.String("hint", hint),
		slog.String("error", err.Error()))
	return hint
}

func (s *CommentService) finish(ctx context.Context, commentID, postID, slug string) (*models.CommentMutation, error) {
	invalidateTags(ctx, s.cache, cache.InteractionTags(slug)...)

	out := &models.CommentMutation{}
	if commentID != "" {
		comment, err := s.commentRepo.GetByID(ctx, commentID)
		if err != nil {
			return nil, err
		}
		out.Comment = comment
	}
	count, err := s.commentRepo.CountByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	out.CommentsCount = count
	return out, nil
}
