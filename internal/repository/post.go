package repository

import (
	"context"
	"errors"

	"drawerbox/internal/cache"
	"drawerbox/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error)
	ListByDrawer(ctx context.Context, drawerID uint, status models.PostStatus, limit, offset int, viewerID uint) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateStatus(ctx context.Context, id uint, status models.PostStatus) error
	Delete(ctx context.Context, id uint) error
	AddImages(ctx context.Context, images []models.PostImage) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails adds subqueries to fetch the comment and reaction counts
// in the same SELECT as the post itself.
func (r *postRepository) applyPostDetails(db *gorm.DB) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.reactable_type = 'posts' AND reactions.reactable_id = posts.id AND reactions.type = 'favor') as favors_count, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.reactable_type = 'posts' AND reactions.reactable_id = posts.id AND reactions.type = 'oppose') as opposes_count"
	return db.Select(selectQuery)
}

// attachViewerReactions fills reacted_by_user for a page of posts with one
// extra query. Anonymous viewers get empty slices.
func (r *postRepository) attachViewerReactions(ctx context.Context, posts []*models.Post, viewerID uint) error {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	byTarget, err := viewerReactions(ctx, r.db, models.ReactablePost, ids, viewerID)
	if err != nil {
		return err
	}
	for _, p := range posts {
		if rs, ok := byTarget[p.ID]; ok {
			p.ReactedByUser = rs
		} else {
			p.ReactedByUser = []models.Reaction{}
		}
	}
	return nil
}

// Create persists the post and records its slug in the permanent slug
// ledger in the same transaction. Ledger rows outlive the post, so a slug
// freed by a delete is never recycled; losing the ledger insert race maps
// to Conflict like losing the posts unique index would.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.PostSlug{Slug: post.Slug}).Error; err != nil {
			return err
		}
		return tx.Create(post).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("post slug already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

// GetByID fetches the bare post row with its images. Mutation paths use it to
// check ownership before touching anything.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Images").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Post, error) {
	var post models.Post

	fetch := func() error {
		if err := r.applyPostDetails(r.db.WithContext(ctx)).
			Preload("User").
			Preload("Drawer").
			Preload("Images").
			Where("posts.slug = ?", slug).
			First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	var err error
	if viewerID == 0 {
		err = cache.Aside(ctx, cache.PostKey(slug), &post, cache.PostTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachViewerReactions(ctx, []*models.Post{&post}, viewerID); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post

	fetch := func() error {
		if err := r.applyPostDetails(r.db.WithContext(ctx)).
			Preload("User").
			Preload("Drawer").
			Preload("Images").
			Order("posts.created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&posts).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}

	var err error
	if viewerID == 0 {
		err = cache.Aside(ctx, cache.PostsListKey(limit, offset), &posts, cache.PostListTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachViewerReactions(ctx, posts, viewerID); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Drawer").
		Preload("Images").
		Where("posts.user_id = ?", userID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachViewerReactions(ctx, posts, viewerID); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByDrawer pages a drawer's posts, optionally narrowed to one moderation
// status.
func (r *postRepository) ListByDrawer(ctx context.Context, drawerID uint, status models.PostStatus, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	base := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Images").
		Where("posts.drawer_id = ?", drawerID)
	if status != "" {
		base = base.Where("posts.status = ?", status)
	}
	if err := base.
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachViewerReactions(ctx, posts, viewerID); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	like := "%" + query + "%"
	if err := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Drawer").
		Where("posts.title ILIKE ? OR posts.content ILIKE ?", like, like).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// SlugExists consults the slug ledger first, then live rows. The ledger is
// what keeps deleted slugs reserved; the live check additionally covers rows
// written outside Create.
func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PostSlug{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, id uint, status models.PostStatus) error {
	var slug string
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Pluck("slug", &slug).Error; err != nil {
		return models.NewInternalError(err)
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return models.NewInternalError(err)
	}

	if slug != "" {
		cache.InvalidatePost(ctx, slug)
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

// Delete removes the post with its images, comments, and every reaction
// hanging off the post or its comments, in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	var slug string
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Pluck("slug", &slug).Error; err != nil {
		return models.NewInternalError(err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("reactable_type = ? AND reactable_id IN ?", models.ReactableComment.Table(), commentIDs).
				Delete(&models.Reaction{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("reactable_type = ? AND reactable_id = ?", models.ReactablePost.Table(), id).
			Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	if slug != "" {
		cache.InvalidatePost(ctx, slug)
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) AddImages(ctx context.Context, images []models.PostImage) error {
	if len(images) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&images).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
