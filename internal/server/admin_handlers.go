package server

import (
	"bitacora/internal/models"
	"bitacora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Excerpt     *string           `json:"excerpt"`
	Content     string            `json:"content"`
	CoverImage  string            `json:"cover_image"`
	IsAnonymous bool              `json:"is_anonymous"`
	Status      models.PostStatus `json:"status"`
	CoAuthorIDs []string          `json:"co_author_ids"`
}

// updatePostRequest leaves absent fields untouched. A present co_author_ids,
// even empty, replaces the co-author set.
type updatePostRequest struct {
	Title       *string            `json:"title"`
	Slug        *string            `json:"slug"`
	Excerpt     *string            `json:"excerpt"`
	Content     *string            `json:"content"`
	CoverImage  *string            `json:"cover_image"`
	IsAnonymous *bool              `json:"is_anonymous"`
	Status      *models.PostStatus `json:"status"`
	CoAuthorIDs *[]string          `json:"co_author_ids"`
}

// ListAdminPosts handles GET /api/admin/posts
func (s *Server) ListAdminPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListAllForAdmin(c.UserContext(), currentUser(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(posts)
}

// GetAdminPostStats handles GET /api/admin/posts/stats
func (s *Server) GetAdminPostStats(c *fiber.Ctx) error {
	counts, err := s.postService.CountsByStatus(c.UserContext(), currentUser(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(counts)
}

// GetAdminPost handles GET /api/admin/posts/:id
func (s *Server) GetAdminPost(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	post, err := s.postService.GetForAdmin(c.UserContext(), currentUser(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/admin/posts
// @Summary Create a post
// @Description Admin only. The caller becomes the primary author.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createPostRequest true "Post"
// @Success 201 {object} models.Result
// @Failure 400 {object} models.Result
// @Failure 403 {object} models.Result
// @Failure 409 {object} models.Result
// @Router /admin/posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	post, err := s.postService.CreatePost(c.UserContext(), currentUser(c), service.CreatePostInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		CoverImage:  req.CoverImage,
		IsAnonymous: req.IsAnonymous,
		Status:      req.Status,
		CoAuthorIDs: req.CoAuthorIDs,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return respondResult(c, fiber.StatusCreated, post)
}

// UpdatePost handles PUT /api/admin/posts/:id
// @Summary Update a post
// @Description Admins and the primary author may edit. Absent fields are kept.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body updatePostRequest true "Changed fields"
// @Success 200 {object} models.Result
// @Failure 403 {object} models.Result
// @Failure 404 {object} models.Result
// @Router /admin/posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	post, err := s.postService.UpdatePost(c.UserContext(), currentUser(c), id, service.UpdatePostInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		CoverImage:  req.CoverImage,
		IsAnonymous: req.IsAnonymous,
		Status:      req.Status,
		CoAuthorIDs: req.CoAuthorIDs,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return respondResult(c, fiber.StatusOK, post)
}

// DeletePost handles DELETE /api/admin/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), currentUser(c), id); err != nil {
		return s.respondError(c, err)
	}
	return respondResult(c, fiber.StatusOK, fiber.Map{"id": id})
}

// ListAuthors handles GET /api/admin/authors
func (s *Server) ListAuthors(c *fiber.Ctx) error {
	users, err := s.postService.ListAuthorCandidates(c.UserContext(), currentUser(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(users)
}
