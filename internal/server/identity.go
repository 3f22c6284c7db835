package server

import (
	"errors"
	"log/slog"

	"bitacora/internal/middleware"
	"bitacora/internal/models"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

func (s *Server) tokenConfig() middleware.TokenConfig {
	return middleware.TokenConfig{
		Secret:   s.config.JWTSecret,
		Issuer:   s.config.JWTIssuer,
		Audience: s.config.JWTAudience,
	}
}

// resolveUser verifies the bearer token and loads the identity it names.
func (s *Server) resolveUser(c *fiber.Ctx) (*models.User, error) {
	token, err := middleware.BearerToken(c)
	if err != nil {
		return nil, err
	}
	userID, err := middleware.ParseSubject(token, s.tokenConfig())
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(c.UserContext(), userID)
}

func (s *Server) setUser(c *fiber.Ctx, user *models.User) {
	c.Locals("userID", user.ID)
	c.Locals(userLocal, user)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
}

// AuthRequired returns the authentication middleware. A valid token naming an
// unknown user is rejected like an invalid token.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.resolveUser(c)
		if err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == models.CodeInternal {
				return s.respondError(c, err)
			}
			msg := "Invalid or expired token"
			switch {
			case errors.Is(err, middleware.ErrMissingToken):
				msg = "Authorization required"
			case models.IsNotFound(err):
				msg = "Unknown user"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
		}

		s.setUser(c, user)
		return c.Next()
	}
}

// AdminRequired rejects non-admin users with 403. It must run after
// AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !currentUser(c).IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// currentUser returns the user set by AuthRequired, or nil.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocal).(*models.User)
	return user
}

// optionalUser resolves the caller on public routes. Any failure reads as
// anonymous.
func (s *Server) optionalUser(c *fiber.Ctx) *models.User {
	if user := currentUser(c); user != nil {
		return user
	}
	if c.Get(fiber.HeaderAuthorization) == "" {
		return nil
	}
	user, err := s.resolveUser(c)
	if err != nil {
		middleware.Logger.DebugContext(c.UserContext(), "ignoring invalid optional credentials",
			slog.String("error", err.Error()))
		return nil
	}
	s.setUser(c, user)
	return user
}
