package server

import "github.com/gofiber/fiber/v2"

// GetPosts handles GET /api/posts?page=N
// @Summary List published posts
// @Description One feed page, newest publication first
// @Tags posts
// @Produce json
// @Param page query int false "Page number, starting at 1"
// @Success 200 {object} models.PostPage
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListPublished(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:slug
// @Summary Get a post by slug
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.Result
// @Router /posts/{slug} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	slug, ok := requireParam(c, "slug")
	if !ok {
		return nil
	}

	post, err := s.postService.GetBySlug(c.UserContext(), slug, s.optionalUser(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// SearchPosts handles GET /api/posts/search?q=...
// @Summary Search published posts
// @Tags posts
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.Result
// @Router /posts/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	posts, err := s.postService.SearchPosts(c.UserContext(), c.Query("q"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(posts)
}

// GetComments handles GET /api/posts/:slug/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	slug, ok := requireParam(c, "slug")
	if !ok {
		return nil
	}

	comments, err := s.commentService.ListComments(c.UserContext(), slug)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(comments)
}
