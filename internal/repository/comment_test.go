package repository

import (
	"context"
	"testing"

	"drawerbox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentListTopLevelExcludesReplies(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")
	post := createTestPost(t, db, author.ID, nil, "threaded")

	top := createTestComment(t, db, reader.ID, post.ID, nil)
	createTestComment(t, db, author.ID, post.ID, &top.ID)
	createTestComment(t, db, author.ID, post.ID, &top.ID)
	createTestReaction(t, db, author.ID, models.ReactableComment, top.ID, models.ReactionFavor)

	comments, err := repo.ListTopLevel(ctx, post.ID, author.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	got := comments[0]
	assert.Equal(t, top.ID, got.ID)
	assert.Equal(t, 2, got.CommentsCount)
	assert.Equal(t, 1, got.FavorsCount)
	assert.Equal(t, 0, got.OpposesCount)
	require.Len(t, got.ReactedByUser, 1)
	assert.Equal(t, models.ReactionFavor, got.ReactedByUser[0].Type)
}

func TestCommentListRepliesLoadsOneExtraLevel(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author.ID, nil, "deep-thread")

	root := createTestComment(t, db, author.ID, post.ID, nil)
	child := createTestComment(t, db, author.ID, post.ID, &root.ID)
	grandchild := createTestComment(t, db, author.ID, post.ID, &child.ID)
	// Level three must not be eagerly loaded.
	createTestComment(t, db, author.ID, post.ID, &grandchild.ID)

	replies, err := repo.ListReplies(ctx, root.ID, 0)
	require.NoError(t, err)
	require.Len(t, replies, 1)

	gotChild := replies[0]
	assert.Equal(t, child.ID, gotChild.ID)
	require.NotNil(t, gotChild.Post)
	assert.Equal(t, post.ID, gotChild.Post.ID)

	require.Len(t, gotChild.Replies, 1)
	gotGrandchild := gotChild.Replies[0]
	assert.Equal(t, grandchild.ID, gotGrandchild.ID)
	assert.Equal(t, 1, gotGrandchild.CommentsCount)
	assert.Empty(t, gotGrandchild.Replies)
}

func TestCommentDeleteSubtreeRemovesDescendantsAndReactions(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")
	post := createTestPost(t, db, author.ID, nil, "prunable")

	root := createTestComment(t, db, author.ID, post.ID, nil)
	child := createTestComment(t, db, reader.ID, post.ID, &root.ID)
	grandchild := createTestComment(t, db, author.ID, post.ID, &child.ID)
	sibling := createTestComment(t, db, reader.ID, post.ID, nil)

	createTestReaction(t, db, reader.ID, models.ReactableComment, root.ID, models.ReactionFavor)
	createTestReaction(t, db, author.ID, models.ReactableComment, grandchild.ID, models.ReactionOppose)
	createTestReaction(t, db, author.ID, models.ReactableComment, sibling.ID, models.ReactionFavor)
	// Post-level reactions are untouched by comment pruning.
	createTestReaction(t, db, reader.ID, models.ReactablePost, post.ID, models.ReactionFavor)

	require.NoError(t, repo.DeleteSubtree(ctx, root.ID))

	var remaining []models.Comment
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, sibling.ID, remaining[0].ID)

	var reactions []models.Reaction
	require.NoError(t, db.Find(&reactions).Error)
	require.Len(t, reactions, 2)
	for _, r := range reactions {
		if r.ReactableType == models.ReactableComment.Table() {
			assert.Equal(t, sibling.ID, r.ReactableID)
		} else {
			assert.Equal(t, post.ID, r.ReactableID)
		}
	}
}
