// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "password123"

var categories = []string{
	models.DefaultCategory, "Tech", "Travel", "Food", "Music", "Books", "Life",
}

// Options tunes seeding volume and behavior.
type Options struct {
	Users    int
	Posts    int
	MaxDays  int // spread of created_at timestamps, in days back from now
	SkipHash bool
}

// Seeder populates the database with generated users, posts, comments, and likes.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Seeder{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded rows. Child tables go first so the foreign
// keys never block.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"likes", "comments", "posts", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	log.Println("cleared existing data")
	return nil
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (s *Seeder) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
	}

	if s.opts.SkipHash {
		user.Password = DemoPassword
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for the given author without persisting it.
func (s *Seeder) BuildPost(author *models.User) *models.Post {
	post := &models.Post{
		Title:    gofakeit.Sentence(5),
		Content:  gofakeit.Paragraph(1, 3, 5, "\n"),
		Category: categories[s.rng.Intn(len(categories))],
		UserID:   author.ID,
	}

	// realistic created_at spread
	daysBack := s.rng.Intn(s.opts.MaxDays)
	hoursBack := s.rng.Intn(24)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	return post
}

// Run seeds users, posts, comments, and likes in dependency order.
func (s *Seeder) Run() error {
	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		user, err := s.CreateUser()
		if err != nil {
			return fmt.Errorf("seeding user %d: %w", i, err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))
	if len(users) == 0 {
		return nil
	}

	posts := make([]*models.Post, 0, s.opts.Posts)
	for i := 0; i < s.opts.Posts; i++ {
		posts = append(posts, s.BuildPost(users[s.rng.Intn(len(users))]))
	}
	if len(posts) > 0 {
		if err := s.db.Create(&posts).Error; err != nil {
			return fmt.Errorf("seeding posts: %w", err)
		}
	}
	log.Printf("seeded %d posts", len(posts))

	comments := 0
	for _, post := range posts {
		for i := 0; i < s.rng.Intn(4); i++ {
			comment := &models.Comment{
				Content: gofakeit.Sentence(8),
				UserID:  users[s.rng.Intn(len(users))].ID,
				PostID:  post.ID,
			}
			if err := s.db.Create(comment).Error; err != nil {
				return fmt.Errorf("seeding comment: %w", err)
			}
			comments++
		}
	}
	log.Printf("seeded %d comments", comments)

	likes := 0
	for _, post := range posts {
		for i := 0; i < s.rng.Intn(6); i++ {
			like := &models.Like{
				UserID: users[s.rng.Intn(len(users))].ID,
				PostID: post.ID,
			}
			// random pairs collide; the unique index dedupes them
			res := s.db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
				DoNothing: true,
			}).Create(like)
			if res.Error != nil {
				return fmt.Errorf("seeding like: %w", res.Error)
			}
			likes += int(res.RowsAffected)
		}
	}
	log.Printf("seeded %d likes", likes)

	return nil
}
