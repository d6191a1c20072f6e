package service

import (
	"context"
	"testing"

	"drawerbox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchService_EmptyQuery(t *testing.T) {
	t.Parallel()

	svc := NewSearchService(noopPostRepo(), noopDrawerRepo(), noopUserRepo())
	_, err := svc.Search(context.Background(), "   ", 20, 0)
	assertValidationError(t, err)
}

func TestSearchService_ThreeIndependentLists(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.searchFn = func(_ context.Context, query string, _, _ int) ([]*models.Post, error) {
		return []*models.Post{{ID: 1, Title: "gardening tips"}}, nil
	}
	userRepo := noopUserRepo()
	userRepo.searchFn = func(_ context.Context, query string, _, _ int) ([]*models.User, error) {
		return []*models.User{{ID: 2, Username: "gardener"}}, nil
	}

	svc := NewSearchService(postRepo, noopDrawerRepo(), userRepo)
	results, err := svc.Search(context.Background(), "garden", 20, 0)
	require.NoError(t, err)

	assert.Len(t, results.Posts, 1)
	assert.Len(t, results.Users, 1)
	// No drawer hits still yields an empty list, never nil.
	require.NotNil(t, results.Drawers)
	assert.Empty(t, results.Drawers)
}
