package service

import (
	"context"
	"errors"
	"testing"

	"drawerbox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	searchFn        func(context.Context, string, int, int) ([]*models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	return s.searchFn(ctx, query, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "stub"}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		searchFn:        func(_ context.Context, _ string, _, _ int) ([]*models.User, error) { return nil, nil },
	}
}

func TestUserService_GetUserByUsername(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("absent user is not found", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), nil)
		_, err := svc.GetUserByUsername(ctx, "ghost")
		assertNotFoundError(t, err)
	})

	t.Run("present user", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 7, Username: username}, nil
		}
		svc := NewUserService(userRepo, nil)
		user, err := svc.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint(7), user.ID)
	})
}

func TestUserService_UpdateProfilePicture(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("replaces and removes the previous file", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, ProfilePicturePath: "uploads/old.png"}, nil
		}
		var updated *models.User
		userRepo.updateFn = func(_ context.Context, u *models.User) error {
			updated = u
			return nil
		}

		var removed []string
		svc := NewUserService(userRepo, func(path string) error {
			removed = append(removed, path)
			return nil
		})

		user, err := svc.UpdateProfilePicture(ctx, 1, "uploads/new.png")
		require.NoError(t, err)
		assert.Equal(t, "uploads/new.png", user.ProfilePicturePath)
		require.NotNil(t, updated)
		assert.Equal(t, []string{"uploads/old.png"}, removed)
	})

	t.Run("first upload removes nothing", func(t *testing.T) {
		t.Parallel()
		var removed []string
		svc := NewUserService(noopUserRepo(), func(path string) error {
			removed = append(removed, path)
			return nil
		})
		_, err := svc.UpdateProfilePicture(ctx, 1, "uploads/new.png")
		require.NoError(t, err)
		assert.Empty(t, removed)
	})

	t.Run("file removal failure does not fail the update", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, ProfilePicturePath: "uploads/old.png"}, nil
		}
		svc := NewUserService(userRepo, func(_ string) error {
			return errors.New("disk gone")
		})
		user, err := svc.UpdateProfilePicture(ctx, 1, "uploads/new.png")
		require.NoError(t, err)
		assert.Equal(t, "uploads/new.png", user.ProfilePicturePath)
	})
}
