package seed

import (
	"fmt"
	"log"

	"yatube/internal/models"

	"gorm.io/gorm"
)

// Options configure a seeding run.
type Options struct {
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
	FollowsPerUser  int
	ShouldClean     bool

	// Seed makes the generated data reproducible; zero picks a random seed.
	Seed       int64
	BcryptCost int
}

// Result counts what a run created.
type Result struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
}

// Seeder fills the database with demo content.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll removes every row of the content tables, children first.
func (s *Seeder) ClearAll() error {
	log.Println("🧹 Clearing existing data...")
	for _, m := range []interface{}{&models.Follow{}, &models.Comment{}, &models.Post{}, &models.Group{}, &models.User{}} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	return nil
}

// Run seeds groups from the fixtures and then generated users, posts, comments and follows.
func (s *Seeder) Run(opts Options) (*Result, error) {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	factory, err := NewFactory(s.db, opts.Seed, opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	groups, err := Groups(s.db)
	if err != nil {
		return nil, err
	}
	users, err := factory.CreateUsers(opts.NumUsers)
	if err != nil {
		return nil, err
	}
	posts, err := factory.CreatePosts(users, groups, opts.NumPosts)
	if err != nil {
		return nil, err
	}
	comments, err := factory.CreateComments(posts, users, opts.CommentsPerPost)
	if err != nil {
		return nil, err
	}
	follows, err := factory.CreateFollows(users, opts.FollowsPerUser)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Users:    len(users),
		Groups:   len(groups),
		Posts:    len(posts),
		Comments: comments,
		Follows:  follows,
	}
	log.Printf("✅ Seeded %d users, %d groups, %d posts, %d comments, %d follows",
		res.Users, res.Groups, res.Posts, res.Comments, res.Follows)
	return res, nil
}
