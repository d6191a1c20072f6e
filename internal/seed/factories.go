// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"drawerbox/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
	// slugSeq disambiguates generated slugs within one run.
	slugSeq int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		// #nosec G404: acceptable for seeding
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateDrawer constructs and persists a drawer with the creator enrolled
// as moderator.
func (f *Factory) CreateDrawer(creator *models.User, overrides ...func(*models.Drawer)) (*models.Drawer, error) {
	drawer := &models.Drawer{
		Name:        SlugifyName(gofakeit.NounAbstract() + "-" + gofakeit.NounConcrete()),
		Description: gofakeit.Sentence(12),
	}
	for _, override := range overrides {
		override(drawer)
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(drawer).Error; err != nil {
			return err
		}
		membership := models.DrawerMembership{
			DrawerID: drawer.ID,
			UserID:   creator.ID,
			Role:     models.DrawerRoleModerator,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}
	return drawer, nil
}

// CreatePost constructs and persists a sample post for the given user. A nil
// drawer yields a profile post.
func (f *Factory) CreatePost(user *models.User, drawer *models.Drawer, overrides ...func(*models.Post)) (*models.Post, error) {
	title := gofakeit.Sentence(5)
	f.slugSeq++
	post := &models.Post{
		Title:   title,
		Content: gofakeit.Paragraph(1, 3, 5, "\n"),
		Slug:    fmt.Sprintf("%s-%d", SlugifyName(title), f.slugSeq),
		Status:  models.PostStatusPending,
		UserID:  user.ID,
	}
	if drawer != nil {
		post.DrawerID = &drawer.ID
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rand.Intn(maxDays)
	hoursBack := f.rand.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	// Keep the permanent slug ledger in step with directly created rows.
	if err := f.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostSlug{Slug: post.Slug}).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample comment on the provided
// post authored by the provided user. A non-nil parent makes it a reply.
func (f *Factory) CreateComment(user *models.User, post *models.Post, parent *models.Comment, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		PostID:  post.ID,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReaction persists a reaction from user on the given target,
// replacing any previous reaction on the same target.
func (f *Factory) CreateReaction(user *models.User, kind models.ReactableKind, targetID uint, reaction models.ReactionKind) error {
	row := &models.Reaction{
		UserID:        user.ID,
		ReactableType: kind.Table(),
		ReactableID:   targetID,
		Type:          reaction,
	}
	return f.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "reactable_type"}, {Name: "reactable_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
	}).Create(row).Error
}

// SlugifyName lowercases s and collapses every non-alphanumeric run into a
// single hyphen, yielding a valid drawer name or slug base.
func SlugifyName(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
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
		return "drawer"
	}
	return b.String()
}
