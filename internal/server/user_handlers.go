package server

import (
	"io"

	"drawerbox/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateProfilePicture handles POST /api/users/me/profile-picture
func (s *Server) UpdateProfilePicture(c *fiber.Ctx) error {
	header, err := c.FormFile("picture")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("No file uploaded"))
	}
	file, err := header.Open()
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid image upload"))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	name, err := s.store.Save(content)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.userService.UpdateProfilePicture(c.Context(), viewerID(c), name)
	if err != nil {
		s.removeStoredImages(c, []string{name})
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// GetImage handles GET /api/images/:name and serves a stored upload.
func (s *Server) GetImage(c *fiber.Ctx) error {
	path, err := s.store.Path(c.Params("name"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendFile(path)
}
