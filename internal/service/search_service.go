package service

import (
	"context"
	"strings"

	"drawerbox/internal/models"
	"drawerbox/internal/repository"
)

type SearchService struct {
	postRepo   repository.PostRepository
	drawerRepo repository.DrawerRepository
	userRepo   repository.UserRepository
}

// SearchResults carries three independent result lists; an empty list means
// no hits, never an error.
type SearchResults struct {
	Posts   []*models.Post   `json:"posts"`
	Drawers []*models.Drawer `json:"drawers"`
	Users   []*models.User   `json:"users"`
}

func NewSearchService(
	postRepo repository.PostRepository,
	drawerRepo repository.DrawerRepository,
	userRepo repository.UserRepository,
) *SearchService {
	return &SearchService{postRepo: postRepo, drawerRepo: drawerRepo, userRepo: userRepo}
}

// Search matches free text over post title/content, drawer names and
// usernames.
func (s *SearchService) Search(ctx context.Context, query string, limit, offset int) (*SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}

	posts, err := s.postRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	drawers, err := s.drawerRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}

	results := &SearchResults{Posts: posts, Drawers: drawers, Users: users}
	if results.Posts == nil {
		results.Posts = []*models.Post{}
	}
	if results.Drawers == nil {
		results.Drawers = []*models.Drawer{}
	}
	if results.Users == nil {
		results.Users = []*models.User{}
	}
	return results, nil
}
