package repository

import (
	"testing"

	"drawerbox/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a fresh in-memory sqlite database per test. The
// aggregation subqueries are written in portable SQL on purpose so the same
// repository code runs against sqlite here and postgres in production.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Drawer{},
		&models.DrawerMembership{},
		&models.Post{},
		&models.PostSlug{},
		&models.PostImage{},
		&models.Comment{},
		&models.Reaction{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Password: "pw"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func createTestDrawer(t *testing.T, db *gorm.DB, name string) *models.Drawer {
	t.Helper()
	drawer := models.Drawer{Name: name, Description: name + " things"}
	if err := db.Create(&drawer).Error; err != nil {
		t.Fatalf("create drawer %s: %v", name, err)
	}
	return &drawer
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, drawerID *uint, slug string) *models.Post {
	t.Helper()
	post := models.Post{
		Title:    "Post " + slug,
		Content:  "content",
		Slug:     slug,
		Status:   models.PostStatusApproved,
		UserID:   userID,
		DrawerID: drawerID,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post %s: %v", slug, err)
	}
	return &post
}

func createTestComment(t *testing.T, db *gorm.DB, userID, postID uint, parentID *uint) *models.Comment {
	t.Helper()
	comment := models.Comment{Content: "a comment", UserID: userID, PostID: postID, ParentID: parentID}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return &comment
}

func createTestReaction(t *testing.T, db *gorm.DB, userID uint, kind models.ReactableKind, targetID uint, rt models.ReactionKind) *models.Reaction {
	t.Helper()
	reaction := models.Reaction{
		UserID:        userID,
		ReactableType: kind.Table(),
		ReactableID:   targetID,
		Type:          rt,
	}
	if err := db.Create(&reaction).Error; err != nil {
		t.Fatalf("create reaction: %v", err)
	}
	return &reaction
}
