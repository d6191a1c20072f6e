package server

import (
	"drawerbox/internal/models"

	"github.com/gofiber/fiber/v2"
)

const defaultSearchPageSize = 20

// Search handles GET /api/search. The endpoint sits behind the "search"
// feature flag so it can be rolled out gradually.
func (s *Server) Search(c *fiber.Ctx) error {
	if !s.featureFlags.Enabled("search", viewerID(c)) {
		return models.RespondWithError(c, models.NewNotFoundError("Resource", c.Path()))
	}

	page := parsePagination(c, defaultSearchPageSize)
	results, err := s.searchService.Search(c.Context(), c.Query("q"), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(results)
}
