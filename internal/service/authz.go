// Package service contains the core engines sitting between the transport
// layer and the repositories.
package service

import (
	"context"

	"drawerbox/internal/models"
	"drawerbox/internal/repository"
)

// AuthzService is the single authority for role and ownership decisions.
// Every mutation path consults it, and no other component constructs
// PermissionDenied errors.
type AuthzService struct {
	drawerRepo repository.DrawerRepository
}

// NewAuthzService returns a new AuthzService.
func NewAuthzService(drawerRepo repository.DrawerRepository) *AuthzService {
	return &AuthzService{drawerRepo: drawerRepo}
}

// IsModerator reports whether the user holds the moderator role in the drawer.
func (s *AuthzService) IsModerator(ctx context.Context, userID, drawerID uint) (bool, error) {
	membership, err := s.drawerRepo.GetMembership(ctx, drawerID, userID)
	if err != nil {
		return false, err
	}
	return membership != nil && membership.Role == models.DrawerRoleModerator, nil
}

// AuthorizeDrawerMutation gates drawer update and delete on the moderator
// role. The creator holds no distinguished status beyond the moderator role
// granted at creation time.
func (s *AuthzService) AuthorizeDrawerMutation(ctx context.Context, userID, drawerID uint) error {
	moderator, err := s.IsModerator(ctx, userID, drawerID)
	if err != nil {
		return err
	}
	if !moderator {
		return models.NewPermissionDeniedError("Only moderators can modify this drawer")
	}
	return nil
}

// AuthorizePostMutation gates post update and delete on authorship. The
// drawer role is deliberately not consulted here; only the status workflow
// cares about moderators.
func (s *AuthzService) AuthorizePostMutation(userID uint, post *models.Post) error {
	if post.UserID != userID {
		return models.NewPermissionDeniedError("You can only modify your own posts")
	}
	return nil
}

// AuthorizeCommentMutation gates comment update and delete on authorship.
func (s *AuthzService) AuthorizeCommentMutation(userID uint, comment *models.Comment) error {
	if comment.UserID != userID {
		return models.NewPermissionDeniedError("You can only modify your own comments")
	}
	return nil
}

// AuthorizeReactionMutation gates reaction update and delete on authorship.
func (s *AuthzService) AuthorizeReactionMutation(userID uint, reaction *models.Reaction) error {
	if reaction.UserID != userID {
		return models.NewPermissionDeniedError("You can only modify your own reactions")
	}
	return nil
}

// AuthorizePostStatusChange gates the moderation workflow on the moderator
// role in the post's drawer. Profile posts have no drawer and therefore no
// moderation workflow.
func (s *AuthzService) AuthorizePostStatusChange(ctx context.Context, userID uint, post *models.Post) error {
	if post.IsProfilePost() {
		return models.NewPermissionDeniedError("Profile posts have no moderation workflow")
	}
	moderator, err := s.IsModerator(ctx, userID, *post.DrawerID)
	if err != nil {
		return err
	}
	if !moderator {
		return models.NewPermissionDeniedError("Only drawer moderators can change post status")
	}
	return nil
}
