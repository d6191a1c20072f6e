package seed

import (
	"fmt"
	"log"

	"drawerbox/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers int
	NumPosts int
	// SkipBcrypt stores a plaintext password instead of hashing. Much faster
	// for large dev datasets; never use outside local development.
	SkipBcrypt bool
	// MaxDays bounds how far back generated created_at timestamps spread.
	MaxDays int
}

// Seeder drives the seeding presets.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder with default options.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll removes all seeded domain rows, children before parents.
func (s *Seeder) ClearAll() error {
	tables := []string{
		"reactions",
		"comments",
		"post_images",
		"posts",
		"post_slugs",
		"drawer_memberships",
		"drawers",
		"users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// SeedSocialMesh populates a connected data set: users, drawers with rosters,
// posts in mixed moderation states, threaded comments, and reactions.
func (s *Seeder) SeedSocialMesh(numUsers, numPosts int) ([]*models.User, error) {
	if numUsers < 2 {
		numUsers = 2
	}

	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))

	// One drawer per ~10 users, each created by a distinct moderator.
	numDrawers := numUsers/10 + 1
	drawers := make([]*models.Drawer, 0, numDrawers)
	for i := 0; i < numDrawers; i++ {
		drawer, err := s.factory.CreateDrawer(users[i%len(users)])
		if err != nil {
			return nil, fmt.Errorf("create drawer: %w", err)
		}
		drawers = append(drawers, drawer)
	}
	log.Printf("seeded %d drawers", len(drawers))

	// Enroll every user in a couple of drawers.
	for i, user := range users {
		for j := 0; j < 2 && j < len(drawers); j++ {
			drawer := drawers[(i+j)%len(drawers)]
			membership := models.DrawerMembership{
				DrawerID: drawer.ID,
				UserID:   user.ID,
				Role:     models.DrawerRoleMember,
			}
			// The drawer creator is already on the roster as moderator.
			if err := s.db.Where("drawer_id = ? AND user_id = ?", drawer.ID, user.ID).
				FirstOrCreate(&membership).Error; err != nil {
				return nil, fmt.Errorf("enroll user %d: %w", user.ID, err)
			}
		}
	}

	statuses := []models.PostStatus{
		models.PostStatusApproved,
		models.PostStatusApproved,
		models.PostStatusPending,
		models.PostStatusRejected,
	}
	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[i%len(users)]
		var drawer *models.Drawer
		// Roughly one post in five lands on the author's profile.
		if i%5 != 0 {
			drawer = drawers[i%len(drawers)]
		}
		status := statuses[i%len(statuses)]
		post, err := s.factory.CreatePost(author, drawer, func(p *models.Post) {
			if drawer != nil {
				p.Status = status
			}
		})
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("seeded %d posts", len(posts))

	// Thread a comment and a reply onto every other post, then react.
	for i, post := range posts {
		if i%2 != 0 {
			continue
		}
		commenter := users[(i+1)%len(users)]
		top, err := s.factory.CreateComment(commenter, post, nil)
		if err != nil {
			return nil, fmt.Errorf("create comment: %w", err)
		}
		replier := users[(i+2)%len(users)]
		if _, err := s.factory.CreateComment(replier, post, top); err != nil {
			return nil, fmt.Errorf("create reply: %w", err)
		}

		kind := models.ReactionFavor
		if i%4 == 0 {
			kind = models.ReactionOppose
		}
		if err := s.factory.CreateReaction(commenter, models.ReactablePost, post.ID, kind); err != nil {
			return nil, fmt.Errorf("create reaction: %w", err)
		}
		if err := s.factory.CreateReaction(replier, models.ReactableComment, top.ID, models.ReactionFavor); err != nil {
			return nil, fmt.Errorf("create comment reaction: %w", err)
		}
	}

	return users, nil
}
