package seed

import (
	"fmt"
	"log"

	"linkup/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	SkipBcrypt  bool
	// MaxDays bounds how far back generated posts are dated.
	MaxDays int
}

// Seed populates the database with demo users, a connection mesh, posts and
// engagement data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	factory := NewFactory(db, opts)

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d demo users created", len(users))

	if err := connectMesh(factory, users); err != nil {
		return fmt.Errorf("failed to create connections: %w", err)
	}

	posts, err := createPosts(factory, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	if err := engage(factory, users, posts); err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		sql := `TRUNCATE TABLE notifications, bookmarks, likes, comments, posts, connections, users RESTART IDENTITY CASCADE;`
		return db.Exec(sql).Error
	}
	for _, model := range []any{
		&models.Notification{}, &models.Bookmark{}, &models.Like{},
		&models.Comment{}, &models.Post{}, &models.Connection{}, &models.User{},
	} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(factory *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include a few fixed accounts for local login convenience.
	if count >= 3 {
		for _, username := range []string{"alice", "bob", "test"} {
			name := username
			user, err := factory.CreateUser(func(u *models.User) {
				u.Name = name
				u.Username = name
				u.Email = fmt.Sprintf("%s@example.com", name)
			})
			if err == nil {
				users = append(users, user)
			}
		}
	}

	for i := len(users); i < count; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}
	return users, nil
}

// connectMesh links each user with a handful of others so every feed has
// content.
func connectMesh(factory *Factory, users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	for _, user := range users {
		peers := factory.rand.Intn(4) + 2
		for j := 0; j < peers; j++ {
			peer := users[factory.rand.Intn(len(users))]
			if peer.ID == user.ID {
				continue
			}
			if err := factory.CreateConnection(user, peer); err != nil {
				return err
			}
		}
	}
	return nil
}

func createPosts(factory *Factory, users []*models.User, count int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		user := users[factory.rand.Intn(len(users))]
		post, err := factory.CreatePost(user)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d posts...", i)
		}
	}
	return posts, nil
}

// engage sprinkles comments, likes and bookmarks across the seeded posts and
// stores the notifications that real commenting would have produced.
func engage(factory *Factory, users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		author := findUser(users, post.UserID)

		comments := factory.rand.Intn(4)
		for i := 0; i < comments; i++ {
			commenter := users[factory.rand.Intn(len(users))]
			if _, err := factory.CreateComment(commenter, post); err != nil {
				return err
			}
			if author != nil && commenter.ID != author.ID {
				if err := factory.CreateNotification(author, commenter, post); err != nil {
					return err
				}
			}
		}

		likes := factory.rand.Intn(6)
		for i := 0; i < likes; i++ {
			if err := factory.CreateLike(users[factory.rand.Intn(len(users))], post); err != nil {
				return err
			}
		}

		if factory.rand.Float32() < 0.2 {
			if err := factory.CreateBookmark(users[factory.rand.Intn(len(users))], post); err != nil {
				return err
			}
		}
	}
	return nil
}

func findUser(users []*models.User, id uint) *models.User {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return nil
}
