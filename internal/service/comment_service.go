package service

import (
	"context"

	"drawerbox/internal/models"
	"drawerbox/internal/repository"
	"drawerbox/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	authz       *AuthzService
}

type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	ParentID *uint
	Content  string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	authz *AuthzService,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		authz:       authz,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		// A reply always stays within its parent's thread.
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		Content:  in.Content,
		UserID:   in.UserID,
		PostID:   in.PostID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListPostComments returns the top-level comments of the post named by slug.
func (s *CommentService) ListPostComments(ctx context.Context, slug string, viewerID uint) ([]*models.Comment, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug, 0)
	if err != nil {
		return nil, err
	}
	return s.commentRepo.ListTopLevel(ctx, post.ID, viewerID)
}

// ListReplies returns the direct children of a comment with one extra level
// of eager expansion.
func (s *CommentService) ListReplies(ctx context.Context, commentID uint, viewerID uint) ([]*models.Comment, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListReplies(ctx, commentID, viewerID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeCommentMutation(in.UserID, comment); err != nil {
		return nil, err
	}
	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes the comment and its whole subtree; descendants are
// never silently orphaned.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeCommentMutation(userID, comment); err != nil {
		return err
	}
	return s.commentRepo.DeleteSubtree(ctx, commentID)
}
