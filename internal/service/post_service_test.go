package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"drawerbox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint) (*models.Post, error)
	getBySlugFn    func(context.Context, string, uint) (*models.Post, error)
	listFn         func(context.Context, int, int, uint) ([]*models.Post, error)
	listByUserFn   func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	listByDrawerFn func(context.Context, uint, models.PostStatus, int, int, uint) ([]*models.Post, error)
	searchFn       func(context.Context, string, int, int) ([]*models.Post, error)
	slugExistsFn   func(context.Context, string) (bool, error)
	updateFn       func(context.Context, *models.Post) error
	updateStatusFn func(context.Context, uint, models.PostStatus) error
	deleteFn       func(context.Context, uint) error
	addImagesFn    func(context.Context, []models.PostImage) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Post, error) {
	return s.getBySlugFn(ctx, slug, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, viewerID)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID, limit, offset, viewerID)
}
func (s *postRepoStub) ListByDrawer(ctx context.Context, drawerID uint, status models.PostStatus, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.listByDrawerFn(ctx, drawerID, status, limit, offset, viewerID)
}
func (s *postRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	return s.searchFn(ctx, query, limit, offset)
}
func (s *postRepoStub) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.slugExistsFn(ctx, slug)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) UpdateStatus(ctx context.Context, id uint, status models.PostStatus) error {
	return s.updateStatusFn(ctx, id, status)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) AddImages(ctx context.Context, images []models.PostImage) error {
	return s.addImagesFn(ctx, images)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		getBySlugFn: func(_ context.Context, slug string, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, Slug: slug}, nil
		},
		listFn: func(_ context.Context, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		listByUserFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		listByDrawerFn: func(_ context.Context, _ uint, _ models.PostStatus, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		searchFn:       func(_ context.Context, _ string, _, _ int) ([]*models.Post, error) { return nil, nil },
		slugExistsFn:   func(_ context.Context, _ string) (bool, error) { return false, nil },
		updateFn:       func(_ context.Context, _ *models.Post) error { return nil },
		updateStatusFn: func(_ context.Context, _ uint, _ models.PostStatus) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		addImagesFn:    func(_ context.Context, _ []models.PostImage) error { return nil },
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func assertPermissionDeniedError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, "PERMISSION_DENIED", appErr.Code)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func assertConflictError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func newPostService(postRepo *postRepoStub) *PostService {
	drawerRepo := noopDrawerRepo()
	return NewPostService(postRepo, drawerRepo, noopUserRepo(), NewAuthzService(drawerRepo), nil)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Hello, World!", "hello-world"},
		{"  leading and trailing  ", "leading-and-trailing"},
		{"Already-Hyphenated Title", "already-hyphenated-title"},
		{"MiXeD CaSe 123", "mixed-case-123"},
		{"///", "post"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.title), "title %q", tt.title)
	}
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("blank title", func(t *testing.T) {
		t.Parallel()
		svc := newPostService(noopPostRepo())
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Title: "   ", Content: "body"})
		assertValidationError(t, err)
	})

	t.Run("blank content", func(t *testing.T) {
		t.Parallel()
		svc := newPostService(noopPostRepo())
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Title: "Hello"})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		svc := newPostService(noopPostRepo())
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID: 1, Title: "Hello", Content: strings.Repeat("x", maxPostContentLen+1),
		})
		assertValidationError(t, err)
	})

	t.Run("unknown drawer propagates not found", func(t *testing.T) {
		t.Parallel()
		drawerRepo := noopDrawerRepo()
		drawerRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Drawer, error) {
			return nil, models.NewNotFoundError("Drawer", id)
		}
		svc := NewPostService(noopPostRepo(), drawerRepo, noopUserRepo(), NewAuthzService(drawerRepo), nil)
		drawerID := uint(99)
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Title: "Hello", Content: "body", DrawerID: &drawerID})
		assertNotFoundError(t, err)
	})
}

func TestPostService_CreatePost_SlugSuffixing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// A map-backed stub stands in for the slug column and its unique index.
	taken := map[string]*models.Post{}
	postRepo := noopPostRepo()
	postRepo.slugExistsFn = func(_ context.Context, slug string) (bool, error) {
		_, ok := taken[slug]
		return ok, nil
	}
	postRepo.createFn = func(_ context.Context, p *models.Post) error {
		if _, ok := taken[p.Slug]; ok {
			return models.NewConflictError("post slug already taken")
		}
		p.ID = uint(len(taken) + 1)
		taken[p.Slug] = p
		return nil
	}
	postRepo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
		p, ok := taken[slug]
		if !ok {
			return nil, models.NewNotFoundError("Post", slug)
		}
		return p, nil
	}

	svc := newPostService(postRepo)

	first, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Title: "Hello World", Content: "a"})
	require.NoError(t, err)
	assert.Equal(t, "hello-world", first.Slug)

	second, err := svc.CreatePost(ctx, CreatePostInput{UserID: 2, Title: "Hello World", Content: "b"})
	require.NoError(t, err)
	assert.Equal(t, "hello-world-1", second.Slug)

	third, err := svc.CreatePost(ctx, CreatePostInput{UserID: 3, Title: "Hello, World?!", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, "hello-world-2", third.Slug)
}

func TestPostService_CreatePost_SlugRaceRetries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// The probe sees the slug as free, but the insert loses the race once.
	conflicts := 1
	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, p *models.Post) error {
		if conflicts > 0 {
			conflicts--
			return models.NewConflictError("post slug already taken")
		}
		return nil
	}
	postRepo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
		return &models.Post{Slug: slug}, nil
	}

	svc := newPostService(postRepo)
	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Title: "Hello World", Content: "a"})
	require.NoError(t, err)
	assert.Equal(t, "hello-world-1", post.Slug)
}

func TestPostService_CreatePost_SlugRaceExhaustedSurfacesConflict(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, _ *models.Post) error {
		return models.NewConflictError("post slug already taken")
	}

	svc := newPostService(postRepo)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Title: "Hello", Content: "a"})
	assertConflictError(t, err)
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("non-author is denied", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, Slug: slug, UserID: 10}, nil
		}
		svc := newPostService(postRepo)
		_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: 1, Slug: "hello", Title: "New"})
		assertPermissionDeniedError(t, err)
	})

	t.Run("title edit never re-slugifies", func(t *testing.T) {
		t.Parallel()
		var saved *models.Post
		postRepo := noopPostRepo()
		postRepo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, Slug: slug, Title: "Old Title", UserID: 1}, nil
		}
		postRepo.updateFn = func(_ context.Context, p *models.Post) error {
			saved = p
			return nil
		}
		svc := newPostService(postRepo)
		post, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: 1, Slug: "old-title", Title: "Completely Different"})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "Completely Different", post.Title)
		assert.Equal(t, "old-title", post.Slug)
	})
}

func TestPostService_DeletePost_RemovesStoredImages(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
		return &models.Post{
			ID: 1, Slug: slug, UserID: 1,
			Images: []models.PostImage{
				{ID: 1, PostID: 1, ImagePath: "uploads/a.png"},
				{ID: 2, PostID: 1, ImagePath: "uploads/b.png"},
			},
		}, nil
	}

	var removed []string
	drawerRepo := noopDrawerRepo()
	svc := NewPostService(postRepo, drawerRepo, noopUserRepo(), NewAuthzService(drawerRepo), func(path string) error {
		removed = append(removed, path)
		return nil
	})

	require.NoError(t, svc.DeletePost(context.Background(), 1, "doomed"))
	assert.Equal(t, []string{"uploads/a.png", "uploads/b.png"}, removed)
}

func TestPostService_UpdatePostStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	drawerID := uint(7)

	newStatusFixture := func(moderatorID uint) (*postRepoStub, *drawerRepoStub, *models.PostStatus) {
		var applied models.PostStatus
		postRepo := noopPostRepo()
		postRepo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, Slug: slug, UserID: 10, DrawerID: &drawerID, Status: models.PostStatusPending}, nil
		}
		postRepo.updateStatusFn = func(_ context.Context, _ uint, status models.PostStatus) error {
			applied = status
			return nil
		}
		return postRepo, membershipStub(drawerID, moderatorID, models.DrawerRoleModerator), &applied
	}

	t.Run("moderator approves", func(t *testing.T) {
		t.Parallel()
		postRepo, drawerRepo, applied := newStatusFixture(2)
		svc := NewPostService(postRepo, drawerRepo, noopUserRepo(), NewAuthzService(drawerRepo), nil)
		_, err := svc.UpdatePostStatus(ctx, UpdatePostStatusInput{UserID: 2, Slug: "p", Action: models.StatusActionApprove})
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusApproved, *applied)
	})

	t.Run("moderator rejects", func(t *testing.T) {
		t.Parallel()
		postRepo, drawerRepo, applied := newStatusFixture(2)
		svc := NewPostService(postRepo, drawerRepo, noopUserRepo(), NewAuthzService(drawerRepo), nil)
		_, err := svc.UpdatePostStatus(ctx, UpdatePostStatusInput{UserID: 2, Slug: "p", Action: models.StatusActionReject})
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusRejected, *applied)
	})

	t.Run("unknown action tag", func(t *testing.T) {
		t.Parallel()
		postRepo, drawerRepo, _ := newStatusFixture(2)
		svc := NewPostService(postRepo, drawerRepo, noopUserRepo(), NewAuthzService(drawerRepo), nil)
		_, err := svc.UpdatePostStatus(ctx, UpdatePostStatusInput{UserID: 2, Slug: "p", Action: "publish"})
		assertValidationError(t, err)
	})

	t.Run("non-moderator is denied and status untouched", func(t *testing.T) {
		t.Parallel()
		postRepo, _, applied := newStatusFixture(2)
		drawerRepo := noopDrawerRepo()
		svc := NewPostService(postRepo, drawerRepo, noopUserRepo(), NewAuthzService(drawerRepo), nil)
		_, err := svc.UpdatePostStatus(ctx, UpdatePostStatusInput{UserID: 10, Slug: "p", Action: models.StatusActionApprove})
		assertPermissionDeniedError(t, err)
		assert.Empty(t, *applied)
	})
}

func TestPostService_ListDrawerPosts_StatusFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var gotStatus models.PostStatus
	postRepo := noopPostRepo()
	postRepo.listByDrawerFn = func(_ context.Context, _ uint, status models.PostStatus, _, _ int, _ uint) ([]*models.Post, error) {
		gotStatus = status
		return nil, nil
	}
	svc := newPostService(postRepo)

	_, err := svc.ListDrawerPosts(ctx, "gardening", "pending", 20, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPending, gotStatus)

	_, err = svc.ListDrawerPosts(ctx, "gardening", "banana", 20, 0, 0)
	assertValidationError(t, err)
}

func TestPostService_ListUserPosts_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := newPostService(noopPostRepo())
	_, err := svc.ListUserPosts(context.Background(), "ghost", 20, 0, 0)
	assertNotFoundError(t, err)
}
