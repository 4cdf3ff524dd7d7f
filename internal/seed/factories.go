// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"linkup/internal/models"

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
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	name := gofakeit.Name()
	username := gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999))
	user := &models.User{
		Name:           name,
		Username:       username,
		Email:          gofakeit.Email(),
		Headline:       gofakeit.JobTitle() + " at " + gofakeit.Company(),
		ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
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

// CreatePost constructs and persists a sample `models.Post` for the given user
// with a realistic created_at spread.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Content: gofakeit.Paragraph(1, 3, 8, "\n"),
		UserID:  user.ID,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rand.Intn(maxDays)
	hoursBack := f.rand.Intn(24)
	minsBack := f.rand.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	if f.rand.Float32() < 0.4 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		PostID:  post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from `user` on `post`. Duplicate likes are
// silently skipped, matching the API's set semantics.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{
		UserID: user.ID,
		PostID: post.ID,
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// CreateBookmark persists a bookmark from `user` on `post`.
func (f *Factory) CreateBookmark(user *models.User, post *models.Post) error {
	bookmark := &models.Bookmark{
		UserID: user.ID,
		PostID: post.ID,
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(bookmark).Error
}

// CreateConnection persists a connection between two users. Repeats, in
// either direction, are no-ops.
func (f *Factory) CreateConnection(a, b *models.User) error {
	if a.ID == b.ID {
		return fmt.Errorf("cannot connect user %d with themselves", a.ID)
	}
	conn := &models.Connection{UserID: a.ID, PeerID: b.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(conn).Error
}

// CreateNotification persists a comment notification for the post author.
func (f *Factory) CreateNotification(recipient, sender *models.User, post *models.Post) error {
	if recipient.ID == sender.ID {
		log.Printf("skipping self-notification for user %d", recipient.ID)
		return nil
	}
	notification := &models.Notification{
		RecipientID: recipient.ID,
		SenderID:    sender.ID,
		Kind:        models.NotificationKindComment,
		PostID:      post.ID,
	}
	return f.db.Create(notification).Error
}
