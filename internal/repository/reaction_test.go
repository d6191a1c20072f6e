package repository

import (
	"context"
	"testing"

	"drawerbox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionUpsertReplacesInPlace(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewReactionRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")
	post := createTestPost(t, db, author.ID, nil, "contested")

	first := &models.Reaction{
		UserID:        reader.ID,
		ReactableType: models.ReactablePost.Table(),
		ReactableID:   post.ID,
		Type:          models.ReactionFavor,
	}
	require.NoError(t, repo.Upsert(ctx, first))
	assert.Equal(t, models.ReactablePost, first.ReactableKind)

	// Reacting again with the other kind replaces the row instead of adding
	// a second one.
	second := &models.Reaction{
		UserID:        reader.ID,
		ReactableType: models.ReactablePost.Table(),
		ReactableID:   post.ID,
		Type:          models.ReactionOppose,
	}
	require.NoError(t, repo.Upsert(ctx, second))

	var all []models.Reaction
	require.NoError(t, db.Find(&all).Error)
	require.Len(t, all, 1)
	assert.Equal(t, models.ReactionOppose, all[0].Type)
	assert.Equal(t, reader.ID, all[0].UserID)

	// A different user reacting to the same post is a separate row.
	third := &models.Reaction{
		UserID:        author.ID,
		ReactableType: models.ReactablePost.Table(),
		ReactableID:   post.ID,
		Type:          models.ReactionFavor,
	}
	require.NoError(t, repo.Upsert(ctx, third))

	require.NoError(t, db.Find(&all).Error)
	assert.Len(t, all, 2)
}

func TestReactionSameIDDifferentKindsAreIndependent(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewReactionRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author.ID, nil, "shared-id")
	comment := createTestComment(t, db, author.ID, post.ID, nil)

	// Force the numeric IDs to potentially collide across kinds; the
	// discriminator keeps them apart.
	require.NoError(t, repo.Upsert(ctx, &models.Reaction{
		UserID: author.ID, ReactableType: models.ReactablePost.Table(),
		ReactableID: post.ID, Type: models.ReactionFavor,
	}))
	require.NoError(t, repo.Upsert(ctx, &models.Reaction{
		UserID: author.ID, ReactableType: models.ReactableComment.Table(),
		ReactableID: comment.ID, Type: models.ReactionOppose,
	}))

	var all []models.Reaction
	require.NoError(t, db.Find(&all).Error)
	assert.Len(t, all, 2)
}

func TestReactionTargetExists(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewReactionRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author.ID, nil, "target")
	comment := createTestComment(t, db, author.ID, post.ID, nil)

	ok, err := repo.TargetExists(ctx, models.ReactablePost, post.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TargetExists(ctx, models.ReactableComment, comment.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TargetExists(ctx, models.ReactablePost, 9999)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.TargetExists(ctx, models.ReactableKind("drawer"), 1)
	assert.Error(t, err)
}

func TestReactionDelete(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewReactionRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author.ID, nil, "cleanup")
	r := createTestReaction(t, db, author.ID, models.ReactablePost, post.ID, models.ReactionFavor)

	require.NoError(t, repo.Delete(ctx, r.ID))

	var count int64
	db.Model(&models.Reaction{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
