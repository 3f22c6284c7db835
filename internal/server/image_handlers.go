package server

import (
	"errors"

	"bitacora/internal/models"
	"bitacora/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/images (multipart field "file").
// @Summary Upload a cover image
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 201 {object} models.Result
// @Failure 400 {object} models.Result
// @Failure 503 {object} models.Result
// @Router /images [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	if s.images == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(storage.ErrNotConfigured))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
	}

	maxBytes := int64(s.config.ImageMaxUploadSizeMB) * 1024 * 1024
	if file.Size > maxBytes {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image too large"))
	}
	contentType := file.Header.Get(fiber.HeaderContentType)
	if !storage.IsImageContentType(contentType) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Only image uploads are allowed"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	url, err := s.images.Upload(c.UserContext(), file.Filename, contentType, file.Size, src)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable, models.NewInternalError(err))
		}
		return s.respondError(c, models.NewInternalError(err))
	}
	return respondResult(c, fiber.StatusCreated, fiber.Map{"url": url})
}
