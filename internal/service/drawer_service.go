package service

import (
	"context"

	"drawerbox/internal/models"
	"drawerbox/internal/repository"
	"drawerbox/internal/validation"
)

const maxDrawerDescriptionLen = 2000

type DrawerService struct {
	drawerRepo repository.DrawerRepository
	authz      *AuthzService
}

type CreateDrawerInput struct {
	UserID      uint
	Name        string
	Description string
}

type UpdateDrawerInput struct {
	UserID      uint
	Name        string
	Description string
}

func NewDrawerService(drawerRepo repository.DrawerRepository, authz *AuthzService) *DrawerService {
	return &DrawerService{drawerRepo: drawerRepo, authz: authz}
}

// CreateDrawer creates the drawer with its creator as moderator. The two
// writes share one transaction in the repository, so a drawer can never
// exist without a moderator.
func (s *DrawerService) CreateDrawer(ctx context.Context, in CreateDrawerInput) (*models.Drawer, error) {
	if err := validation.ValidateDrawerName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if len(in.Description) > maxDrawerDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 2000 characters)")
	}

	drawer := &models.Drawer{Name: in.Name, Description: in.Description}
	if err := s.drawerRepo.Create(ctx, drawer, in.UserID); err != nil {
		return nil, err
	}
	return drawer, nil
}

func (s *DrawerService) GetDrawer(ctx context.Context, name string, viewerID uint) (*models.Drawer, error) {
	return s.drawerRepo.GetByName(ctx, name, viewerID)
}

func (s *DrawerService) ListDrawers(ctx context.Context, viewerID uint) ([]*models.Drawer, error) {
	return s.drawerRepo.List(ctx, viewerID)
}

// ListUserDrawers returns every drawer the user is a member of, annotated
// with their role.
func (s *DrawerService) ListUserDrawers(ctx context.Context, userID uint) ([]*models.Drawer, error) {
	return s.drawerRepo.ListByMember(ctx, userID)
}

// UpdateDrawer changes the description. The name is the drawer's public
// identity and stays fixed.
func (s *DrawerService) UpdateDrawer(ctx context.Context, in UpdateDrawerInput) (*models.Drawer, error) {
	drawer, err := s.drawerRepo.GetByName(ctx, in.Name, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeDrawerMutation(ctx, in.UserID, drawer.ID); err != nil {
		return nil, err
	}
	if len(in.Description) > maxDrawerDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 2000 characters)")
	}

	drawer.Description = in.Description
	if err := s.drawerRepo.Update(ctx, drawer); err != nil {
		return nil, err
	}
	return drawer, nil
}

func (s *DrawerService) DeleteDrawer(ctx context.Context, userID uint, name string) error {
	drawer, err := s.drawerRepo.GetByName(ctx, name, userID)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeDrawerMutation(ctx, userID, drawer.ID); err != nil {
		return err
	}
	return s.drawerRepo.Delete(ctx, drawer.ID)
}

// JoinDrawer adds the user as member. The composite primary key on the
// roster is the authority under concurrent double-joins; the repository
// translates the violation to Conflict.
func (s *DrawerService) JoinDrawer(ctx context.Context, userID uint, name string) (*models.DrawerMembership, error) {
	drawer, err := s.drawerRepo.GetByName(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if err := s.drawerRepo.AddMember(ctx, drawer.ID, userID, models.DrawerRoleMember); err != nil {
		return nil, err
	}
	return s.drawerRepo.GetMembership(ctx, drawer.ID, userID)
}

// LeaveDrawer removes the user's membership; leaving a drawer one is not a
// member of is a Conflict.
func (s *DrawerService) LeaveDrawer(ctx context.Context, userID uint, name string) error {
	drawer, err := s.drawerRepo.GetByName(ctx, name, 0)
	if err != nil {
		return err
	}
	return s.drawerRepo.RemoveMember(ctx, drawer.ID, userID)
}
