package server

import (
	"strings"

	"drawerbox/internal/models"
	"drawerbox/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateDrawer handles POST /api/drawers
func (s *Server) CreateDrawer(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	drawer, err := s.drawerService.CreateDrawer(c.Context(), service.CreateDrawerInput{
		UserID:      viewerID(c),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(drawer)
}

// GetDrawers handles GET /api/drawers
func (s *Server) GetDrawers(c *fiber.Ctx) error {
	drawers, err := s.drawerService.ListDrawers(c.Context(), viewerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(drawers)
}

// GetDrawer handles GET /api/drawers/:name
func (s *Server) GetDrawer(c *fiber.Ctx) error {
	drawer, err := s.drawerService.GetDrawer(c.Context(), c.Params("name"), viewerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(drawer)
}

// GetMyDrawers handles GET /api/user/drawers
func (s *Server) GetMyDrawers(c *fiber.Ctx) error {
	drawers, err := s.drawerService.ListUserDrawers(c.Context(), viewerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(drawers)
}

// UpdateDrawer handles PATCH /api/drawers/:name
func (s *Server) UpdateDrawer(c *fiber.Ctx) error {
	var req struct {
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	drawer, err := s.drawerService.UpdateDrawer(c.Context(), service.UpdateDrawerInput{
		UserID:      viewerID(c),
		Name:        c.Params("name"),
		Description: req.Description,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(drawer)
}

// DeleteDrawer handles DELETE /api/drawers/:name
func (s *Server) DeleteDrawer(c *fiber.Ctx) error {
	if err := s.drawerService.DeleteDrawer(c.Context(), viewerID(c), c.Params("name")); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Drawer deleted"})
}

// JoinDrawer handles POST /api/drawers/:name/join
func (s *Server) JoinDrawer(c *fiber.Ctx) error {
	membership, err := s.drawerService.JoinDrawer(c.Context(), viewerID(c), c.Params("name"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(membership)
}

// LeaveDrawer handles DELETE /api/drawers/:name/leave
func (s *Server) LeaveDrawer(c *fiber.Ctx) error {
	if err := s.drawerService.LeaveDrawer(c.Context(), viewerID(c), c.Params("name")); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Left drawer"})
}
