package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"drawerbox/internal/models"
	"drawerbox/internal/observability"
	"drawerbox/internal/repository"
	"drawerbox/internal/validation"
)

const (
	maxPostContentLen = 50000

	// slugProbeLimit bounds the numeric suffix search per title.
	slugProbeLimit = 100
	// slugCreateRetries bounds how often a lost check-then-insert race is
	// retried with the next candidate before the Conflict is surfaced.
	slugCreateRetries = 3
)

type PostService struct {
	postRepo   repository.PostRepository
	drawerRepo repository.DrawerRepository
	userRepo   repository.UserRepository
	authz      *AuthzService
	// removeImage deletes a stored image file. Nil disables file cleanup,
	// which the service-level tests rely on.
	removeImage func(path string) error
}

type CreatePostInput struct {
	UserID     uint
	Title      string
	Content    string
	DrawerID   *uint
	ImagePaths []string
}

type UpdatePostInput struct {
	UserID  uint
	Slug    string
	Title   string
	Content string
}

type UpdatePostStatusInput struct {
	UserID uint
	Slug   string
	Action models.StatusAction
}

func NewPostService(
	postRepo repository.PostRepository,
	drawerRepo repository.DrawerRepository,
	userRepo repository.UserRepository,
	authz *AuthzService,
	removeImage func(path string) error,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		drawerRepo:  drawerRepo,
		userRepo:    userRepo,
		authz:       authz,
		removeImage: removeImage,
	}
}

// slugify lowercases the title and collapses every non-alphanumeric run into
// a single hyphen.
func slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "post"
	}
	return b.String()
}

// nextFreeSlug probes base, base-1, base-2, ... starting at *suffix and
// returns the first candidate with no existing post, advancing *suffix past
// it so a retry after a lost insert race continues where the probe stopped.
func (s *PostService) nextFreeSlug(ctx context.Context, base string, suffix *int) (string, error) {
	for ; *suffix <= slugProbeLimit; *suffix++ {
		candidate := base
		if *suffix > 0 {
			candidate = fmt.Sprintf("%s-%d", base, *suffix)
		}
		exists, err := s.postRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			*suffix++
			return candidate, nil
		}
	}
	return "", models.NewConflictError("Could not allocate a unique slug")
}

// CreatePost resolves the slug once, at creation time. Update never
// re-slugifies, so post URLs survive title edits.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if in.DrawerID != nil {
		if _, err := s.drawerRepo.GetByID(ctx, *in.DrawerID, 0); err != nil {
			return nil, err
		}
	}

	base := slugify(in.Title)
	suffix := 0
	for attempt := 0; attempt < slugCreateRetries; attempt++ {
		slug, err := s.nextFreeSlug(ctx, base, &suffix)
		if err != nil {
			return nil, err
		}

		post := &models.Post{
			Title:    in.Title,
			Content:  in.Content,
			Slug:     slug,
			Status:   models.PostStatusPending,
			UserID:   in.UserID,
			DrawerID: in.DrawerID,
		}
		err = s.postRepo.Create(ctx, post)
		if err == nil {
			if len(in.ImagePaths) > 0 {
				images := make([]models.PostImage, 0, len(in.ImagePaths))
				for _, path := range in.ImagePaths {
					images = append(images, models.PostImage{PostID: post.ID, ImagePath: path})
				}
				if err := s.postRepo.AddImages(ctx, images); err != nil {
					return nil, err
				}
			}
			return s.postRepo.GetBySlug(ctx, slug, in.UserID)
		}
		if !isConflict(err) {
			return nil, err
		}
		// A concurrent creation won the candidate between probe and insert;
		// continue with the next suffix.
	}
	return nil, models.NewConflictError("Could not allocate a unique slug")
}

func (s *PostService) GetPost(ctx context.Context, slug string, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetBySlug(ctx, slug, viewerID)
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset, viewerID)
}

// ListDrawerPosts pages a drawer's posts, optionally narrowed to one
// moderation status.
func (s *PostService) ListDrawerPosts(ctx context.Context, drawerName string, status string, limit, offset int, viewerID uint) ([]*models.Post, error) {
	if status != "" && !models.PostStatus(status).Valid() {
		return nil, models.NewValidationError("Unknown status filter")
	}
	drawer, err := s.drawerRepo.GetByName(ctx, drawerName, 0)
	if err != nil {
		return nil, err
	}
	return s.postRepo.ListByDrawer(ctx, drawer.ID, models.PostStatus(status), limit, offset, viewerID)
}

func (s *PostService) ListUserPosts(ctx context.Context, username string, limit, offset int, viewerID uint) ([]*models.Post, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.postRepo.ListByUser(ctx, user.ID, limit, offset, viewerID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, in.Slug, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizePostMutation(in.UserID, post); err != nil {
		return nil, err
	}

	if in.Title != "" {
		if err := validation.ValidatePostTitle(in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		// The slug stays as resolved at creation time.
		post.Title = in.Title
	}
	if in.Content != "" {
		if len(in.Content) > maxPostContentLen {
			return nil, models.NewValidationError("Content too long (max 50000 characters)")
		}
		post.Content = in.Content
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post and its stored image files. The row cleanup is
// transactional in the repository; file removal happens afterwards, so a
// crash can strand a file on disk but never a dangling row.
func (s *PostService) DeletePost(ctx context.Context, userID uint, slug string) error {
	post, err := s.postRepo.GetBySlug(ctx, slug, userID)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizePostMutation(userID, post); err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}
	if s.removeImage != nil {
		for _, image := range post.Images {
			if err := s.removeImage(image.ImagePath); err != nil {
				observability.GlobalLogger.WarnContext(ctx, "failed to remove post image",
					"path", image.ImagePath, "error", err)
			}
		}
	}
	return nil
}

// UpdatePostStatus runs the moderation workflow. Transitions are idempotent:
// re-approving an approved post succeeds and leaves it approved.
func (s *PostService) UpdatePostStatus(ctx context.Context, in UpdatePostStatusInput) (*models.Post, error) {
	var status models.PostStatus
	switch in.Action {
	case models.StatusActionApprove:
		status = models.PostStatusApproved
	case models.StatusActionReject:
		status = models.PostStatusRejected
	default:
		return nil, models.NewValidationError("Unknown status action")
	}

	post, err := s.postRepo.GetBySlug(ctx, in.Slug, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizePostStatusChange(ctx, in.UserID, post); err != nil {
		return nil, err
	}

	if err := s.postRepo.UpdateStatus(ctx, post.ID, status); err != nil {
		return nil, err
	}
	observability.PostStatusTransitions.WithLabelValues(string(status)).Inc()

	return s.postRepo.GetBySlug(ctx, in.Slug, in.UserID)
}

// isConflict reports whether err carries the Conflict code.
func isConflict(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == "CONFLICT"
}
