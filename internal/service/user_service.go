package service

import (
	"context"

	"drawerbox/internal/models"
	"drawerbox/internal/observability"
	"drawerbox/internal/repository"
)

type UserService struct {
	userRepo    repository.UserRepository
	removeImage func(path string) error
}

func NewUserService(userRepo repository.UserRepository, removeImage func(path string) error) *UserService {
	return &UserService{userRepo: userRepo, removeImage: removeImage}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

// UpdateProfilePicture points the user at the freshly stored image and
// removes the previous file. The row update lands first; a failed file
// removal strands a file on disk but never a dangling path.
func (s *UserService) UpdateProfilePicture(ctx context.Context, userID uint, path string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	previous := user.ProfilePicturePath
	user.ProfilePicturePath = path
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if previous != "" && previous != path && s.removeImage != nil {
		if err := s.removeImage(previous); err != nil {
			observability.GlobalLogger.WarnContext(ctx, "failed to remove previous profile picture",
				"path", previous, "error", err)
		}
	}
	return user, nil
}
