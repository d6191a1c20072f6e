package repository

import (
	"context"
	"errors"

	"drawerbox/internal/cache"
	"drawerbox/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository defines persistence operations for polymorphic reactions.
type ReactionRepository interface {
	Upsert(ctx context.Context, reaction *models.Reaction) error
	GetByID(ctx context.Context, id uint) (*models.Reaction, error)
	Update(ctx context.Context, reaction *models.Reaction) error
	Delete(ctx context.Context, id uint) error
	TargetExists(ctx context.Context, kind models.ReactableKind, targetID uint) (bool, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository returns a new ReactionRepository implementation.
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Upsert inserts the reaction or, when the author already reacted to the
// target, replaces the kind in place. Concurrent re-reactions settle on a
// single row through the unique index.
func (r *reactionRepository) Upsert(ctx context.Context, reaction *models.Reaction) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "reactable_type"},
			{Name: "reactable_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
	}).Create(reaction).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	reaction.Normalize()
	invalidateReactionTarget(ctx, r.db, reaction.ReactableType, reaction.ReactableID)
	return nil
}

// invalidateReactionTarget drops the cached post whose favor/oppose counts a
// reaction write just changed. Comment targets have no cached aggregate, so
// only post targets matter.
func invalidateReactionTarget(ctx context.Context, db *gorm.DB, reactableType string, targetID uint) {
	if reactableType != models.ReactablePost.Table() {
		return
	}
	var slug string
	if err := db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", targetID).Pluck("slug", &slug).Error; err != nil {
		return
	}
	if slug != "" {
		cache.InvalidatePost(ctx, slug)
	}
	cache.InvalidatePostsList(ctx)
}

func (r *reactionRepository) GetByID(ctx context.Context, id uint) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := r.db.WithContext(ctx).First(&reaction, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Reaction", id)
		}
		return nil, models.NewInternalError(err)
	}
	reaction.Normalize()
	return &reaction, nil
}

func (r *reactionRepository) Update(ctx context.Context, reaction *models.Reaction) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Where("id = ?", reaction.ID).
		Update("type", reaction.Type).Error; err != nil {
		return models.NewInternalError(err)
	}
	invalidateReactionTarget(ctx, r.db, reaction.ReactableType, reaction.ReactableID)
	return nil
}

func (r *reactionRepository) Delete(ctx context.Context, id uint) error {
	var doomed models.Reaction
	if err := r.db.WithContext(ctx).First(&doomed, id).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&models.Reaction{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	invalidateReactionTarget(ctx, r.db, doomed.ReactableType, doomed.ReactableID)
	return nil
}

// TargetExists reports whether the reactable target row is present.
func (r *reactionRepository) TargetExists(ctx context.Context, kind models.ReactableKind, targetID uint) (bool, error) {
	var count int64
	var err error
	switch kind {
	case models.ReactablePost:
		err = r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", targetID).Count(&count).Error
	case models.ReactableComment:
		err = r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", targetID).Count(&count).Error
	default:
		return false, models.NewValidationError("unknown reactable type")
	}
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// viewerReactions loads the viewer's own reactions for a batch of targets of
// one kind, keyed by target ID. Post and comment listings use it to attach
// the reacted_by_user annotation with a single extra query.
func viewerReactions(ctx context.Context, db *gorm.DB, kind models.ReactableKind, targetIDs []uint, viewerID uint) (map[uint][]models.Reaction, error) {
	out := make(map[uint][]models.Reaction)
	if viewerID == 0 || len(targetIDs) == 0 {
		return out, nil
	}

	var reactions []models.Reaction
	if err := db.WithContext(ctx).
		Where("user_id = ? AND reactable_type = ? AND reactable_id IN ?", viewerID, kind.Table(), targetIDs).
		Find(&reactions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	for i := range reactions {
		reactions[i].Normalize()
		out[reactions[i].ReactableID] = append(out[reactions[i].ReactableID], reactions[i])
	}
	return out, nil
}
