package service

import (
	"context"
	"errors"

	"bitacora/internal/cache"
	"bitacora/internal/middleware"
	"bitacora/internal/models"
	"bitacora/internal/observability"
	"bitacora/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type ReactionService struct {
	reactionRepo repository.ReactionRepository
	postRepo     repository.PostRepository
	cache        *cache.ReadCache
}

func NewReactionService(
	reactionRepo repository.ReactionRepository,
	postRepo repository.PostRepository,
	readCache *cache.ReadCache,
) *ReactionService {
	return &ReactionService{
		reactionRepo: reactionRepo,
		postRepo:     postRepo,
		cache:        readCache,
	}
}

// ToggleReaction likes the post when the user has not, and unlikes it
// otherwise. The returned state is authoritative so clients can replace their
// optimistic guess with it.
//
// Concurrent toggles are arbitrated by the (user, post) unique index: an
// insert that loses the race resolves to liked, and a delete that finds no
// row resolves to unliked. Neither is reported as an error.
func (s *ReactionService) ToggleReaction(ctx context.Context, userID, postID string) (*models.ReactionState, error) {
	span, ctx := observability.NewSpan(ctx, "ReactionService.ToggleReaction", attribute.String("post.id", postID))
	defer span.End()

	if userID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, models.NewNotFoundError("Post", postID)
	}

	exists, err := s.reactionRepo.Exists(ctx, userID, postID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	liked := !exists
	if exists {
		if _, err := s.reactionRepo.Delete(ctx, userID, postID); err != nil {
			span.SetError(err)
			return nil, err
		}
	} else {
		err := s.reactionRepo.Insert(ctx, userID, postID)
		switch {
		case errors.Is(err, models.ErrDuplicateReaction):
			middleware.ReactionConflicts.Inc()
		case err != nil:
			span.SetError(err)
			return nil, err
		}
	}

	count, err := s.reactionRepo.CountByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	invalidateTags(ctx, s.cache, cache.InteractionTags(post.Slug)...)

	outcome := "unliked"
	if liked {
		outcome = "liked"
	}
	middleware.ReactionToggles.WithLabelValues(outcome).Inc()

	return &models.ReactionState{PostID: postID, Liked: liked, Count: count}, nil
}

// HasReacted reports whether the user likes the post. Membership is cached
// under the feed tag, which every toggle invalidates.
func (s *ReactionService) HasReacted(ctx context.Context, userID, postID string) (bool, error) {
	if userID == "" {
		return false, models.NewUnauthorizedError("Authentication required")
	}

	var liked bool
	err := s.cache.Get(ctx, cache.ReactionMembershipKey(userID, postID), []string{cache.TagPosts}, &liked, func() error {
		ok, err := s.reactionRepo.Exists(ctx, userID, postID)
		liked = ok
		return err
	})
	return liked, err
}
