package server

import (
	"bitacora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ToggleReaction handles POST /api/posts/:id/reactions
// @Summary Toggle the caller's like
// @Description Returns the authoritative state so clients can reconcile an optimistic update.
// @Tags reactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Result
// @Failure 401 {object} models.Result
// @Failure 404 {object} models.Result
// @Router /posts/{id}/reactions [post]
func (s *Server) ToggleReaction(c *fiber.Ctx) error {
	postID, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	state, err := s.reactionService.ToggleReaction(c.UserContext(), currentUser(c).ID, postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return respondResult(c, fiber.StatusOK, state)
}

// GetMyReaction handles GET /api/posts/:id/reactions/me
func (s *Server) GetMyReaction(c *fiber.Ctx) error {
	postID, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	liked, err := s.reactionService.HasReacted(c.UserContext(), currentUser(c).ID, postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

type createCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
	PostSlug string  `json:"post_slug"`
}

type updateCommentRequest struct {
	Content  string `json:"content"`
	PostSlug string `json:"post_slug"`
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body createCommentRequest true "Comment"
// @Success 201 {object} models.Result
// @Failure 400 {object} models.Result
// @Failure 404 {object} models.Result
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	res, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   currentUser(c).ID,
		PostID:   postID,
		Content:  req.Content,
		ParentID: req.ParentID,
		PostSlug: req.PostSlug,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return respondResult(c, fiber.StatusCreated, res)
}

// UpdateComment handles PUT /api/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, ok := requireParam(c, "commentId")
	if !ok {
		return nil
	}
	var req updateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	res, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    currentUser(c).ID,
		CommentID: commentID,
		Content:   req.Content,
		PostSlug:  req.PostSlug,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return respondResult(c, fiber.StatusOK, res)
}

// DeleteComment handles DELETE /api/comments/:commentId?post_slug=...
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, ok := requireParam(c, "commentId")
	if !ok {
		return nil
	}

	res, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    currentUser(c).ID,
		CommentID: commentID,
		PostSlug:  c.Query("post_slug"),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return respondResult(c, fiber.StatusOK, res)
}
