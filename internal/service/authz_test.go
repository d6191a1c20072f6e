package service

import (
	"context"
	"testing"

	"drawerbox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drawerRepoStub is a stub for repository.DrawerRepository.
type drawerRepoStub struct {
	createFn        func(context.Context, *models.Drawer, uint) error
	getByIDFn       func(context.Context, uint, uint) (*models.Drawer, error)
	getByNameFn     func(context.Context, string, uint) (*models.Drawer, error)
	listFn          func(context.Context, uint) ([]*models.Drawer, error)
	listByMemberFn  func(context.Context, uint) ([]*models.Drawer, error)
	updateFn        func(context.Context, *models.Drawer) error
	deleteFn        func(context.Context, uint) error
	addMemberFn     func(context.Context, uint, uint, models.DrawerRole) error
	removeMemberFn  func(context.Context, uint, uint) error
	getMembershipFn func(context.Context, uint, uint) (*models.DrawerMembership, error)
	searchFn        func(context.Context, string, int, int) ([]*models.Drawer, error)
}

func (s *drawerRepoStub) Create(ctx context.Context, drawer *models.Drawer, creatorID uint) error {
	return s.createFn(ctx, drawer, creatorID)
}
func (s *drawerRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Drawer, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *drawerRepoStub) GetByName(ctx context.Context, name string, viewerID uint) (*models.Drawer, error) {
	return s.getByNameFn(ctx, name, viewerID)
}
func (s *drawerRepoStub) List(ctx context.Context, viewerID uint) ([]*models.Drawer, error) {
	return s.listFn(ctx, viewerID)
}
func (s *drawerRepoStub) ListByMember(ctx context.Context, userID uint) ([]*models.Drawer, error) {
	return s.listByMemberFn(ctx, userID)
}
func (s *drawerRepoStub) Update(ctx context.Context, drawer *models.Drawer) error {
	return s.updateFn(ctx, drawer)
}
func (s *drawerRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *drawerRepoStub) AddMember(ctx context.Context, drawerID, userID uint, role models.DrawerRole) error {
	return s.addMemberFn(ctx, drawerID, userID, role)
}
func (s *drawerRepoStub) RemoveMember(ctx context.Context, drawerID, userID uint) error {
	return s.removeMemberFn(ctx, drawerID, userID)
}
func (s *drawerRepoStub) GetMembership(ctx context.Context, drawerID, userID uint) (*models.DrawerMembership, error) {
	return s.getMembershipFn(ctx, drawerID, userID)
}
func (s *drawerRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.Drawer, error) {
	return s.searchFn(ctx, query, limit, offset)
}

func noopDrawerRepo() *drawerRepoStub {
	return &drawerRepoStub{
		createFn: func(_ context.Context, _ *models.Drawer, _ uint) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Drawer, error) {
			return &models.Drawer{ID: id, Name: "stub"}, nil
		},
		getByNameFn: func(_ context.Context, name string, _ uint) (*models.Drawer, error) {
			return &models.Drawer{ID: 1, Name: name}, nil
		},
		listFn:         func(_ context.Context, _ uint) ([]*models.Drawer, error) { return nil, nil },
		listByMemberFn: func(_ context.Context, _ uint) ([]*models.Drawer, error) { return nil, nil },
		updateFn:       func(_ context.Context, _ *models.Drawer) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		addMemberFn:    func(_ context.Context, _, _ uint, _ models.DrawerRole) error { return nil },
		removeMemberFn: func(_ context.Context, _, _ uint) error { return nil },
		getMembershipFn: func(_ context.Context, _, _ uint) (*models.DrawerMembership, error) {
			return nil, nil
		},
		searchFn: func(_ context.Context, _ string, _, _ int) ([]*models.Drawer, error) { return nil, nil },
	}
}

// membershipStub returns a stub whose roster holds exactly one membership.
func membershipStub(drawerID, userID uint, role models.DrawerRole) *drawerRepoStub {
	repo := noopDrawerRepo()
	repo.getMembershipFn = func(_ context.Context, d, u uint) (*models.DrawerMembership, error) {
		if d == drawerID && u == userID {
			return &models.DrawerMembership{DrawerID: d, UserID: u, Role: role}, nil
		}
		return nil, nil
	}
	return repo
}

func TestAuthzService_IsModerator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("non-member is not a moderator", func(t *testing.T) {
		t.Parallel()
		authz := NewAuthzService(noopDrawerRepo())
		moderator, err := authz.IsModerator(ctx, 1, 1)
		require.NoError(t, err)
		assert.False(t, moderator)
	})

	t.Run("plain member is not a moderator", func(t *testing.T) {
		t.Parallel()
		authz := NewAuthzService(membershipStub(1, 1, models.DrawerRoleMember))
		moderator, err := authz.IsModerator(ctx, 1, 1)
		require.NoError(t, err)
		assert.False(t, moderator)
	})

	t.Run("moderator role", func(t *testing.T) {
		t.Parallel()
		authz := NewAuthzService(membershipStub(1, 1, models.DrawerRoleModerator))
		moderator, err := authz.IsModerator(ctx, 1, 1)
		require.NoError(t, err)
		assert.True(t, moderator)
	})
}

func TestAuthzService_DrawerMutation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("member is denied", func(t *testing.T) {
		t.Parallel()
		authz := NewAuthzService(membershipStub(1, 2, models.DrawerRoleMember))
		assertPermissionDeniedError(t, authz.AuthorizeDrawerMutation(ctx, 2, 1))
	})

	t.Run("moderator is allowed", func(t *testing.T) {
		t.Parallel()
		authz := NewAuthzService(membershipStub(1, 2, models.DrawerRoleModerator))
		assert.NoError(t, authz.AuthorizeDrawerMutation(ctx, 2, 1))
	})
}

func TestAuthzService_PostMutationIsAuthorOnly(t *testing.T) {
	t.Parallel()

	drawerID := uint(1)
	post := &models.Post{ID: 5, UserID: 10, DrawerID: &drawerID}

	// A drawer moderator who is not the author is still denied; only the
	// status workflow consults the moderator role.
	authz := NewAuthzService(membershipStub(drawerID, 2, models.DrawerRoleModerator))
	assertPermissionDeniedError(t, authz.AuthorizePostMutation(2, post))

	assert.NoError(t, authz.AuthorizePostMutation(10, post))
}

func TestAuthzService_PostStatusChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	drawerID := uint(1)

	t.Run("profile posts have no workflow", func(t *testing.T) {
		t.Parallel()
		authz := NewAuthzService(noopDrawerRepo())
		err := authz.AuthorizePostStatusChange(ctx, 1, &models.Post{ID: 5, UserID: 1})
		assertPermissionDeniedError(t, err)
	})

	t.Run("author without moderator role is denied", func(t *testing.T) {
		t.Parallel()
		authz := NewAuthzService(membershipStub(drawerID, 10, models.DrawerRoleMember))
		post := &models.Post{ID: 5, UserID: 10, DrawerID: &drawerID}
		assertPermissionDeniedError(t, authz.AuthorizePostStatusChange(ctx, 10, post))
	})

	t.Run("moderator is allowed", func(t *testing.T) {
		t.Parallel()
		authz := NewAuthzService(membershipStub(drawerID, 2, models.DrawerRoleModerator))
		post := &models.Post{ID: 5, UserID: 10, DrawerID: &drawerID}
		assert.NoError(t, authz.AuthorizePostStatusChange(ctx, 2, post))
	})
}
