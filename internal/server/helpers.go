package server

import (
	"log/slog"
	"strings"

	"bitacora/internal/middleware"
	"bitacora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondResult writes a successful mutation envelope.
func respondResult(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(models.OK(data))
}

// respondError maps err to its status and writes a failed envelope. Internal
// errors are logged here because their cause never reaches the client.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// requireParam returns a trimmed route parameter or writes a 400.
func requireParam(c *fiber.Ctx, name string) (string, bool) {
	v := strings.TrimSpace(c.Params(name))
	if v == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(name)))
		return "", false
	}
	return v, true
}

// humanizeParam converts a route param name into a label: "id" -> "ID",
// "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		return strings.ToLower(param[:len(param)-2]) + " ID"
	}
	return param
}

func invalidBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Invalid request body"))
}
