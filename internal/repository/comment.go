package repository

import (
	"context"
	"errors"

	"drawerbox/internal/cache"
	"drawerbox/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uint, viewerID uint) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentID uint, viewerID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	DeleteSubtree(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// applyCommentDetails adds subqueries for the direct-child count and the
// reaction tallies. The child count deliberately ignores deeper descendants;
// clients use it to decide whether a "load replies" affordance is shown.
func (r *commentRepository) applyCommentDetails(db *gorm.DB) *gorm.DB {
	selectQuery := "comments.*, " +
		"(SELECT COUNT(*) FROM comments c2 WHERE c2.parent_id = comments.id) as comments_count, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.reactable_type = 'comments' AND reactions.reactable_id = comments.id AND reactions.type = 'favor') as favors_count, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.reactable_type = 'comments' AND reactions.reactable_id = comments.id AND reactions.type = 'oppose') as opposes_count"
	return db.Select(selectQuery)
}

func (r *commentRepository) attachViewerReactions(ctx context.Context, comments []*models.Comment, viewerID uint) error {
	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}

	byTarget, err := viewerReactions(ctx, r.db, models.ReactableComment, ids, viewerID)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if rs, ok := byTarget[c.ID]; ok {
			c.ReactedByUser = rs
		} else {
			c.ReactedByUser = []models.Reaction{}
		}
	}
	return nil
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	// The post's cached comments_count is stale now.
	r.invalidateParentPost(ctx, comment.PostID)
	return nil
}

// invalidateParentPost drops the cached copy of the post whose
// comments_count a comment write just changed.
func (r *commentRepository) invalidateParentPost(ctx context.Context, postID uint) {
	var slug string
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Pluck("slug", &slug).Error; err != nil {
		return
	}
	if slug != "" {
		cache.InvalidatePost(ctx, slug)
	}
	cache.InvalidatePostsList(ctx)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListTopLevel(ctx context.Context, postID uint, viewerID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.applyCommentDetails(r.db.WithContext(ctx)).
		Preload("User").
		Where("comments.post_id = ? AND comments.parent_id IS NULL", postID).
		Order("comments.created_at DESC").
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachViewerReactions(ctx, comments, viewerID); err != nil {
		return nil, err
	}
	return comments, nil
}

// ListReplies returns the direct children of a comment with one extra level
// of their own children eagerly attached, plus the post the thread belongs
// to. Deeper levels are fetched by repeating the call on a child.
func (r *commentRepository) ListReplies(ctx context.Context, parentID uint, viewerID uint) ([]*models.Comment, error) {
	var replies []*models.Comment
	if err := r.applyCommentDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Post").
		Where("comments.parent_id = ?", parentID).
		Order("comments.created_at DESC").
		Find(&replies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(replies) == 0 {
		return replies, nil
	}

	replyIDs := make([]uint, 0, len(replies))
	for _, c := range replies {
		replyIDs = append(replyIDs, c.ID)
	}

	var children []*models.Comment
	if err := r.applyCommentDetails(r.db.WithContext(ctx)).
		Preload("User").
		Where("comments.parent_id IN ?", replyIDs).
		Order("comments.created_at DESC").
		Find(&children).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := r.attachViewerReactions(ctx, append(append([]*models.Comment{}, replies...), children...), viewerID); err != nil {
		return nil, err
	}

	byParent := make(map[uint][]models.Comment)
	for _, child := range children {
		byParent[*child.ParentID] = append(byParent[*child.ParentID], *child)
	}
	for _, reply := range replies {
		reply.Replies = byParent[reply.ID]
	}
	return replies, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteSubtree removes the comment, every descendant, and all reactions
// attached to any removed node, in one transaction. The walk is breadth-first
// over parent_id; relying on FK cascade would leave the polymorphic reaction
// rows behind.
func (r *commentRepository) DeleteSubtree(ctx context.Context, id uint) error {
	var postID uint
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Pluck("post_id", &postID).Error; err != nil {
		return models.NewInternalError(err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doomed := []uint{id}
		frontier := []uint{id}

		for len(frontier) > 0 {
			var next []uint
			if err := tx.Model(&models.Comment{}).
				Where("parent_id IN ?", frontier).
				Pluck("id", &next).Error; err != nil {
				return err
			}
			doomed = append(doomed, next...)
			frontier = next
		}

		if err := tx.Where("reactable_type = ? AND reactable_id IN ?", models.ReactableComment.Table(), doomed).
			Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", doomed).Delete(&models.Comment{}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	if postID != 0 {
		r.invalidateParentPost(ctx, postID)
	}
	return nil
}
