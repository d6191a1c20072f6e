package server

import (
	"drawerbox/internal/models"
	"drawerbox/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReaction handles POST /api/reactions. Reacting again to the same
// target replaces the previous reaction rather than conflicting.
func (s *Server) CreateReaction(c *fiber.Ctx) error {
	var req struct {
		ReactableType string `json:"reactable_type"`
		ReactableID   uint   `json:"reactable_id"`
		Type          string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if req.ReactableID == 0 {
		return models.RespondWithError(c, models.NewValidationError("reactable_id is required"))
	}

	reaction, err := s.reactionService.CreateReaction(c.Context(), service.CreateReactionInput{
		UserID:     viewerID(c),
		TargetKind: models.ReactableKind(req.ReactableType),
		TargetID:   req.ReactableID,
		Kind:       models.ReactionKind(req.Type),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reaction)
}

// UpdateReaction handles PATCH /api/reactions/:id
func (s *Server) UpdateReaction(c *fiber.Ctx) error {
	reactionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Type string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	reaction, err := s.reactionService.UpdateReaction(c.Context(), viewerID(c), reactionID,
		models.ReactionKind(req.Type))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(reaction)
}

// DeleteReaction handles DELETE /api/reactions/:id
func (s *Server) DeleteReaction(c *fiber.Ctx) error {
	reactionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.reactionService.DeleteReaction(c.Context(), viewerID(c), reactionID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reaction removed"})
}
