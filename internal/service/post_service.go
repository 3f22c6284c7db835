package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bitacora/internal/cache"
	"bitacora/internal/middleware"
	"bitacora/internal/models"
	"bitacora/internal/observability"
	"bitacora/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const searchLimit = 20

// PostIndex is the full-text search collaborator. Index failures never fail
// a write; the database fallback covers reads.
type PostIndex interface {
	IndexPost(ctx context.Context, post *models.Post) error
	RemovePost(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	cache    *cache.ReadCache
	index    PostIndex
	now      func() time.Time
}

type CreatePostInput struct {
	Title       string
	Slug        string
	Excerpt     *string
	Content     string
	CoverImage  string
	IsAnonymous bool
	Status      models.PostStatus
	CoAuthorIDs []string
}

// UpdatePostInput carries only the fields being changed. A non-nil
// CoAuthorIDs, even empty, replaces the whole co-author set.
type UpdatePostInput struct {
	Title       *string
	Slug        *string
	Excerpt     *string
	Content     *string
	CoverImage  *string
	IsAnonymous *bool
	Status      *models.PostStatus
	CoAuthorIDs *[]string
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	readCache *cache.ReadCache,
	index PostIndex,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		cache:    readCache,
		index:    index,
		now:      time.Now,
	}
}

func requireAdmin(actor *models.User) error {
	if actor == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if !actor.IsAdmin() {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, actor *models.User, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.CreatePost", attribute.String("post.slug", in.Slug))
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	if in.Status == "" {
		in.Status = models.PostStatusDraft
	}
	in.Excerpt = normalizeExcerpt(in.Excerpt)
	for _, err := range []error{
		validateTitle(in.Title),
		validateSlug(in.Slug),
		validateContent(in.Content),
		validateCoverImage(in.CoverImage),
		validateExcerpt(in.Excerpt),
		validateStatus(in.Status),
	} {
		if err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		Title:       strings.TrimSpace(in.Title),
		Slug:        in.Slug,
		Excerpt:     in.Excerpt,
		Content:     in.Content,
		CoverImage:  strings.TrimSpace(in.CoverImage),
		AuthorID:    &actor.ID,
		IsAnonymous: in.IsAnonymous,
		Status:      in.Status,
	}
	post.MarkPublished(s.now())

	if err := s.postRepo.Create(ctx, post, in.CoAuthorIDs); err != nil {
		span.SetError(err)
		return nil, err
	}

	s.invalidate(ctx, cache.PostTags(post.Slug)...)

	view, err := s.adminView(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	s.syncIndex(ctx, view)
	return view, nil
}

func (s *PostService) UpdatePost(ctx context.Context, actor *models.User, postID string, in UpdatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.UpdatePost", attribute.String("post.id", postID))
	defer span.End()

	if actor == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	authors, err := loadAuthors(ctx, s.postRepo, []string{post.ID})
	if err != nil {
		return nil, err
	}
	if !CanEdit(actor, post, authors[post.ID]) {
		return nil, models.NewForbiddenError("Only an admin or the primary author can edit this post")
	}

	oldSlug := post.Slug
	if err := applyUpdate(post, in); err != nil {
		return nil, err
	}
	post.MarkPublished(s.now())

	var coAuthors []string
	if in.CoAuthorIDs != nil {
		coAuthors = *in.CoAuthorIDs
	}
	if err := s.postRepo.Update(ctx, post, coAuthors, in.CoAuthorIDs != nil); err != nil {
		span.SetError(err)
		return nil, err
	}

	s.invalidate(ctx, cache.PostTags(oldSlug, post.Slug)...)

	view, err := s.adminView(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	s.syncIndex(ctx, view)
	return view, nil
}

func applyUpdate(post *models.Post, in UpdatePostInput) error {
	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return err
		}
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Slug != nil {
		if err := validateSlug(*in.Slug); err != nil {
			return err
		}
		post.Slug = *in.Slug
	}
	if in.Excerpt != nil {
		excerpt := normalizeExcerpt(in.Excerpt)
		if err := validateExcerpt(excerpt); err != nil {
			return err
		}
		post.Excerpt = excerpt
	}
	if in.Content != nil {
		if err := validateContent(*in.Content); err != nil {
			return err
		}
		post.Content = *in.Content
	}
	if in.CoverImage != nil {
		if err := validateCoverImage(*in.CoverImage); err != nil {
			return err
		}
		post.CoverImage = strings.TrimSpace(*in.CoverImage)
	}
	if in.IsAnonymous != nil {
		post.IsAnonymous = *in.IsAnonymous
	}
	if in.Status != nil {
		if err := validateStatus(*in.Status); err != nil {
			return err
		}
		post.Status = *in.Status
	}
	return nil
}

func (s *PostService) DeletePost(ctx context.Context, actor *models.User, postID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}

	s.invalidate(ctx, cache.PostTags(post.Slug)...)
	if s.index != nil {
		if err := s.index.RemovePost(ctx, post.ID); err != nil {
			middleware.Logger.WarnContext(ctx, "search index remove failed",
				slog.String("post_id", post.ID), slog.String("error", err.Error()))
		}
	}
	return nil
}

// ListPublished returns one feed page. Pages start at 1.
func (s *PostService) ListPublished(ctx context.Context, page int) (*models.PostPage, error) {
	if page < 1 {
		page = 1
	}

	posts := []*models.Post{}
	err := s.cache.Get(ctx, cache.FeedPageKey(page), []string{cache.TagPosts}, &posts, func() error {
		list, err := s.postRepo.ListPublished(ctx, models.PostsPerPage, (page-1)*models.PostsPerPage)
		if err != nil {
			return err
		}
		if err := decorate(ctx, s.postRepo, list, false); err != nil {
			return err
		}
		posts = list
		return nil
	})
	if err != nil {
		return nil, err
	}

	total, err := s.CountPublished(ctx)
	if err != nil {
		return nil, err
	}
	return &models.PostPage{Posts: posts, Total: total, Page: page, PageSize: models.PostsPerPage}, nil
}

func (s *PostService) CountPublished(ctx context.Context) (int64, error) {
	var total int64
	err := s.cache.Get(ctx, cache.PublishedCountKey(), []string{cache.TagPosts}, &total, func() error {
		n, err := s.postRepo.CountPublished(ctx)
		total = n
		return err
	})
	return total, err
}

// GetBySlug returns the public view of a post. Admin viewers also see drafts.
func (s *PostService) GetBySlug(ctx context.Context, slug string, viewer *models.User) (*models.Post, error) {
	includeDrafts := viewer.IsAdmin()

	var post *models.Post
	tags := []string{cache.PostTag(slug), cache.TagPosts}
	err := s.cache.Get(ctx, cache.PostBySlugKey(slug, includeDrafts), tags, &post, func() error {
		p, err := s.postRepo.GetBySlug(ctx, slug, includeDrafts)
		if err != nil {
			return err
		}
		if err := decorate(ctx, s.postRepo, []*models.Post{p}, false); err != nil {
			return err
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetForAdmin returns a post of any status with its authorship rows.
func (s *PostService) GetForAdmin(ctx context.Context, actor *models.User, id string) (*models.Post, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var post *models.Post
	tags := []string{cache.TagAdminPosts, cache.TagPosts}
	err := s.cache.Get(ctx, cache.AdminPostKey(id), tags, &post, func() error {
		p, err := s.adminView(ctx, id)
		post = p
		return err
	})
	return post, err
}

func (s *PostService) ListAllForAdmin(ctx context.Context, actor *models.User) ([]*models.Post, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	posts := []*models.Post{}
	tags := []string{cache.TagAdminPosts, cache.TagPosts}
	err := s.cache.Get(ctx, cache.AdminPostsKey(), tags, &posts, func() error {
		list, err := s.postRepo.ListAll(ctx)
		if err != nil {
			return err
		}
		if err := decorate(ctx, s.postRepo, list, true); err != nil {
			return err
		}
		posts = list
		return nil
	})
	return posts, err
}

func (s *PostService) CountsByStatus(ctx context.Context, actor *models.User) (models.StatusCounts, error) {
	if err := requireAdmin(actor); err != nil {
		return models.StatusCounts{}, err
	}

	var counts models.StatusCounts
	err := s.cache.Get(ctx, cache.AdminStatusCountsKey(), []string{cache.TagAdminPosts}, &counts, func() error {
		c, err := s.postRepo.CountsByStatus(ctx)
		counts = c
		return err
	})
	return counts, err
}

// ListAuthorCandidates returns the users that may be attributed as co-authors.
func (s *PostService) ListAuthorCandidates(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.userRepo.ListByRole(ctx, models.RoleAdmin)
}

// SearchPosts queries the search index and falls back to the database when
// the index is missing or failing.
func (s *PostService) SearchPosts(ctx context.Context, query string) ([]*models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if len([]rune(query)) > maxQueryLen {
		return nil, models.NewValidationError("Search query too long")
	}

	posts := []*models.Post{}
	err := s.cache.Get(ctx, cache.SearchKey(strings.ToLower(query)), []string{cache.TagPosts}, &posts, func() error {
		list, err := s.search(ctx, query)
		if err != nil {
			return err
		}
		if err := decorate(ctx, s.postRepo, list, false); err != nil {
			return err
		}
		posts = list
		return nil
	})
	return posts, err
}

func (s *PostService) search(ctx context.Context, query string) ([]*models.Post, error) {
	if s.index != nil {
		ids, err := s.index.Search(ctx, query, searchLimit)
		if err == nil {
			return s.postRepo.ListPublishedByIDs(ctx, ids)
		}
		middleware.Logger.WarnContext(ctx, "search index unavailable, using database",
			slog.String("error", err.Error()))
	}
	observability.SearchFallbacks.Inc()
	return s.postRepo.SearchPublished(ctx, query, searchLimit)
}

func (s *PostService) adminView(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := decorate(ctx, s.postRepo, []*models.Post{post}, true); err != nil {
		return nil, err
	}
	return post, nil
}

// invalidate runs before the write returns. A cache failure is logged and
// staleness falls back to the TTL bound.
func (s *PostService) invalidate(ctx context.Context, tags ...string) {
	invalidateTags(ctx, s.cache, tags...)
}

func (s *PostService) syncIndex(ctx context.Context, post *models.Post) {
	if s.index == nil {
		return
	}
	var err error
	if post.IsPublished() {
		err = s.index.IndexPost(ctx, post)
	} else {
		err = s.index.RemovePost(ctx, post.ID)
	}
	if err != nil {
		middleware.Logger.WarnContext(ctx, "search index sync failed",
			slog.String("post_id", post.ID), slog.String("error", err.Error()))
	}
}

func invalidateTags(ctx context.Context, rc *cache.ReadCache, tags ...string) {
	if err := rc.Invalidate(ctx, tags...); err != nil {
		middleware.Logger.ErrorContext(ctx, "cache invalidation failed",
			slog.Any("tags", tags), slog.String("error", err.Error()))
	}
}
