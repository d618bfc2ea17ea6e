// Package seed creates demo data for local development: users, groups, posts,
// comments and follow edges. It is not used on the request path.
package seed

import (
	"fmt"
	"strings"
	"time"

	"yatube/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db           *gorm.DB
	faker        *gofakeit.Faker
	passwordHash string
	maxDays      int
	seq          int
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64, bcryptCost int) (*Factory, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{
		db:           db,
		faker:        gofakeit.New(seed),
		passwordHash: string(hash),
		maxDays:      90,
	}, nil
}

// BuildUser returns an unsaved user with a unique username.
func (f *Factory) BuildUser() *models.User {
	f.seq++
	first := f.faker.FirstName()
	last := f.faker.LastName()
	username := strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, f.seq))
	username = strings.NewReplacer(" ", "", "'", "").Replace(username)
	return &models.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: first,
		LastName:  last,
		Password:  f.passwordHash,
	}
}

// CreateUsers persists n new users.
func (f *Factory) CreateUsers(n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, *f.BuildUser())
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := f.db.CreateInBatches(&users, 100).Error; err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	return users, nil
}

// BuildPost returns an unsaved post by author, published within the last maxDays days.
// Roughly a third of the posts are left without a group.
func (f *Factory) BuildPost(author *models.User, groups []models.Group) *models.Post {
	post := &models.Post{
		Text:     f.faker.Paragraph(1, 3, 12, "\n"),
		AuthorID: author.ID,
		PubDate:  f.pastTime(),
	}
	if len(groups) > 0 && f.faker.Number(0, 2) > 0 {
		g := groups[f.faker.Number(0, len(groups)-1)]
		post.GroupID = &g.ID
	}
	return post
}

// CreatePosts persists n posts spread over the given authors.
func (f *Factory) CreatePosts(authors []models.User, groups []models.Group, n int) ([]models.Post, error) {
	if len(authors) == 0 || n <= 0 {
		return nil, nil
	}
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := &authors[f.faker.Number(0, len(authors)-1)]
		posts = append(posts, *f.BuildPost(author, groups))
	}
	if err := f.db.CreateInBatches(&posts, 100).Error; err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	return posts, nil
}

// CreateComments adds up to perPost comments by random users under every post.
func (f *Factory) CreateComments(posts []models.Post, users []models.User, perPost int) (int, error) {
	if len(users) == 0 || perPost <= 0 {
		return 0, nil
	}
	var comments []models.Comment
	for _, p := range posts {
		for i := f.faker.Number(0, perPost); i > 0; i-- {
			comments = append(comments, models.Comment{
				PostID:   p.ID,
				AuthorID: users[f.faker.Number(0, len(users)-1)].ID,
				Text:     f.faker.Sentence(f.faker.Number(3, 15)),
			})
		}
	}
	if len(comments) == 0 {
		return 0, nil
	}
	if err := f.db.CreateInBatches(&comments, 200).Error; err != nil {
		return 0, fmt.Errorf("create comments: %w", err)
	}
	return len(comments), nil
}

// CreateFollows makes every user follow up to maxPerUser other users.
func (f *Factory) CreateFollows(users []models.User, maxPerUser int) (int, error) {
	if len(users) < 2 || maxPerUser <= 0 {
		return 0, nil
	}
	var follows []models.Follow
	for _, u := range users {
		seen := map[uint]bool{u.ID: true}
		for i := f.faker.Number(0, maxPerUser); i > 0; i-- {
			author := users[f.faker.Number(0, len(users)-1)]
			if seen[author.ID] {
				continue
			}
			seen[author.ID] = true
			follows = append(follows, models.Follow{UserID: u.ID, AuthorID: author.ID})
		}
	}
	if len(follows) == 0 {
		return 0, nil
	}
	if err := f.db.CreateInBatches(&follows, 200).Error; err != nil {
		return 0, fmt.Errorf("create follows: %w", err)
	}
	return len(follows), nil
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}
