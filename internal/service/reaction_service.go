package service

import (
	"context"

	"drawerbox/internal/models"
	"drawerbox/internal/observability"
	"drawerbox/internal/repository"
)

type ReactionService struct {
	reactionRepo repository.ReactionRepository
	authz        *AuthzService
}

type CreateReactionInput struct {
	UserID     uint
	TargetKind models.ReactableKind
	TargetID   uint
	Kind       models.ReactionKind
}

func NewReactionService(reactionRepo repository.ReactionRepository, authz *AuthzService) *ReactionService {
	return &ReactionService{reactionRepo: reactionRepo, authz: authz}
}

// CreateReaction records the author's reaction on a post or comment. Reacting
// again to the same target replaces the previous kind in place; there is
// never more than one active reaction per author and target.
func (s *ReactionService) CreateReaction(ctx context.Context, in CreateReactionInput) (*models.Reaction, error) {
	if !in.TargetKind.Valid() {
		return nil, models.NewValidationError("Unknown reactable type")
	}
	if !in.Kind.Valid() {
		return nil, models.NewValidationError("Unknown reaction type")
	}

	// Target existence is an integrity check, not input validation.
	exists, err := s.reactionRepo.TargetExists(ctx, in.TargetKind, in.TargetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError(string(in.TargetKind), in.TargetID)
	}

	reaction := &models.Reaction{
		UserID:        in.UserID,
		ReactableType: in.TargetKind.Table(),
		ReactableID:   in.TargetID,
		Type:          in.Kind,
	}
	if err := s.reactionRepo.Upsert(ctx, reaction); err != nil {
		return nil, err
	}
	observability.ReactionWrites.WithLabelValues(string(in.TargetKind), "upsert").Inc()
	return reaction, nil
}

func (s *ReactionService) UpdateReaction(ctx context.Context, userID, reactionID uint, kind models.ReactionKind) (*models.Reaction, error) {
	if !kind.Valid() {
		return nil, models.NewValidationError("Unknown reaction type")
	}
	reaction, err := s.reactionRepo.GetByID(ctx, reactionID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeReactionMutation(userID, reaction); err != nil {
		return nil, err
	}

	reaction.Type = kind
	if err := s.reactionRepo.Update(ctx, reaction); err != nil {
		return nil, err
	}
	observability.ReactionWrites.WithLabelValues(string(reaction.ReactableKind), "update").Inc()
	return reaction, nil
}

// DeleteReaction removes the reaction. Repeating the delete yields NotFound;
// removal is not idempotent.
func (s *ReactionService) DeleteReaction(ctx context.Context, userID, reactionID uint) error {
	reaction, err := s.reactionRepo.GetByID(ctx, reactionID)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeReactionMutation(userID, reaction); err != nil {
		return err
	}
	if err := s.reactionRepo.Delete(ctx, reactionID); err != nil {
		return err
	}
	observability.ReactionWrites.WithLabelValues(string(reaction.ReactableKind), "delete").Inc()
	return nil
}
