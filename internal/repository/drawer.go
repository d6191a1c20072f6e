package repository

import (
	"context"
	"errors"

	"drawerbox/internal/cache"
	"drawerbox/internal/models"

	"gorm.io/gorm"
)

// DrawerRepository defines persistence operations for drawers and their
// member rosters.
type DrawerRepository interface {
	Create(ctx context.Context, drawer *models.Drawer, creatorID uint) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Drawer, error)
	GetByName(ctx context.Context, name string, viewerID uint) (*models.Drawer, error)
	List(ctx context.Context, viewerID uint) ([]*models.Drawer, error)
	ListByMember(ctx context.Context, userID uint) ([]*models.Drawer, error)
	Update(ctx context.Context, drawer *models.Drawer) error
	Delete(ctx context.Context, id uint) error
	AddMember(ctx context.Context, drawerID, userID uint, role models.DrawerRole) error
	RemoveMember(ctx context.Context, drawerID, userID uint) error
	GetMembership(ctx context.Context, drawerID, userID uint) (*models.DrawerMembership, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Drawer, error)
}

type drawerRepository struct {
	db *gorm.DB
}

// NewDrawerRepository returns a new DrawerRepository implementation.
func NewDrawerRepository(db *gorm.DB) DrawerRepository {
	return &drawerRepository{db: db}
}

// applyDrawerDetails annotates drawers with the member count and the viewer's
// own role in a single query.
func (r *drawerRepository) applyDrawerDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "drawers.*, " +
		"(SELECT COUNT(*) FROM drawer_memberships WHERE drawer_memberships.drawer_id = drawers.id) as members_count"

	if viewerID != 0 {
		return db.Select(selectQuery+
			", (SELECT role FROM drawer_memberships WHERE drawer_memberships.drawer_id = drawers.id AND drawer_memberships.user_id = ?) as viewer_role",
			viewerID)
	}

	return db.Select(selectQuery + ", NULL as viewer_role")
}

// Create inserts the drawer and its creator's moderator membership in one
// transaction, so a drawer can never exist without a moderator.
func (r *drawerRepository) Create(ctx context.Context, drawer *models.Drawer, creatorID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(drawer).Error; err != nil {
			return err
		}
		membership := models.DrawerMembership{
			DrawerID: drawer.ID,
			UserID:   creatorID,
			Role:     models.DrawerRoleModerator,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("drawer name already taken")
		}
		return models.NewInternalError(err)
	}

	role := models.DrawerRoleModerator
	drawer.ViewerRole = &role
	drawer.MembersCount = 1
	cache.Invalidate(ctx, cache.DrawerListKey)
	return nil
}

func (r *drawerRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Drawer, error) {
	var drawer models.Drawer
	if err := r.applyDrawerDetails(r.db.WithContext(ctx), viewerID).
		Where("drawers.id = ?", id).
		First(&drawer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Drawer", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &drawer, nil
}

func (r *drawerRepository) GetByName(ctx context.Context, name string, viewerID uint) (*models.Drawer, error) {
	var drawer models.Drawer

	fetch := func() error {
		if err := r.applyDrawerDetails(r.db.WithContext(ctx), viewerID).
			Where("drawers.name = ?", name).
			First(&drawer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Drawer", name)
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	var err error
	if viewerID == 0 {
		// Only the viewer-independent shape is cacheable.
		err = cache.Aside(ctx, cache.DrawerKey(name), &drawer, cache.DrawerTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &drawer, nil
}

func (r *drawerRepository) List(ctx context.Context, viewerID uint) ([]*models.Drawer, error) {
	var drawers []*models.Drawer
	if err := r.applyDrawerDetails(r.db.WithContext(ctx), viewerID).
		Order("drawers.name ASC").
		Find(&drawers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return drawers, nil
}

func (r *drawerRepository) ListByMember(ctx context.Context, userID uint) ([]*models.Drawer, error) {
	var drawers []*models.Drawer
	if err := r.applyDrawerDetails(r.db.WithContext(ctx), userID).
		Joins("JOIN drawer_memberships ON drawer_memberships.drawer_id = drawers.id").
		Where("drawer_memberships.user_id = ?", userID).
		Order("drawers.name ASC").
		Find(&drawers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return drawers, nil
}

func (r *drawerRepository) Update(ctx context.Context, drawer *models.Drawer) error {
	if err := r.db.WithContext(ctx).Save(drawer).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("drawer name already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateDrawer(ctx, drawer.Name)
	return nil
}

// Delete removes the drawer together with its posts, their comments, every
// reaction attached to those posts and comments, and the member roster.
// Reactions are polymorphic rows without FK cascade, so the cleanup is
// explicit and transactional.
func (r *drawerRepository) Delete(ctx context.Context, id uint) error {
	var name string
	if err := r.db.WithContext(ctx).Model(&models.Drawer{}).Where("id = ?", id).Pluck("name", &name).Error; err != nil {
		return models.NewInternalError(err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("drawer_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}

		if len(postIDs) > 0 {
			var commentIDs []uint
			if err := tx.Model(&models.Comment{}).Where("post_id IN ?", postIDs).Pluck("id", &commentIDs).Error; err != nil {
				return err
			}
			if len(commentIDs) > 0 {
				if err := tx.Where("reactable_type = ? AND reactable_id IN ?", models.ReactableComment.Table(), commentIDs).
					Delete(&models.Reaction{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("reactable_type = ? AND reactable_id IN ?", models.ReactablePost.Table(), postIDs).
				Delete(&models.Reaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostImage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("drawer_id = ?", id).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("drawer_id = ?", id).Delete(&models.DrawerMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Drawer{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	if name != "" {
		cache.InvalidateDrawer(ctx, name)
	}
	return nil
}

func (r *drawerRepository) AddMember(ctx context.Context, drawerID, userID uint, role models.DrawerRole) error {
	membership := models.DrawerMembership{
		DrawerID: drawerID,
		UserID:   userID,
		Role:     role,
	}
	if err := r.db.WithContext(ctx).Create(&membership).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("already a member of this drawer")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *drawerRepository) RemoveMember(ctx context.Context, drawerID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("drawer_id = ? AND user_id = ?", drawerID, userID).
		Delete(&models.DrawerMembership{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewConflictError("not a member of this drawer")
	}
	return nil
}

// GetMembership returns (nil, nil) when the user has no membership in the
// drawer.
func (r *drawerRepository) GetMembership(ctx context.Context, drawerID, userID uint) (*models.DrawerMembership, error) {
	var membership models.DrawerMembership
	if err := r.db.WithContext(ctx).
		Where("drawer_id = ? AND user_id = ?", drawerID, userID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &membership, nil
}

func (r *drawerRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Drawer, error) {
	var drawers []*models.Drawer
	like := "%" + query + "%"
	if err := r.applyDrawerDetails(r.db.WithContext(ctx), 0).
		Where("drawers.name ILIKE ? OR drawers.description ILIKE ?", like, like).
		Order("drawers.name ASC").
		Limit(limit).
		Offset(offset).
		Find(&drawers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return drawers, nil
}
