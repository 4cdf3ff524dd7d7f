package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"linkup/internal/config"
	"linkup/internal/database"
	"linkup/internal/mailer"
	"linkup/internal/media"
	"linkup/internal/models"
	"linkup/internal/repository"
	"linkup/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeMediaStore records uploads and deletes without touching disk.
type fakeMediaStore struct {
	mu       sync.Mutex
	uploads  int
	deleted  []string
	failNext bool
}

func (f *fakeMediaStore) Upload(_ context.Context, in media.UploadInput) (*media.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return nil, models.NewUpstreamError("media upload", fmt.Errorf("store unavailable"))
	}
	f.uploads++
	handle := fmt.Sprintf("%064d", f.uploads)
	return &media.Asset{
		Handle: handle,
		URL:    "http://localhost:8080/media/" + handle + ".jpg",
	}, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, handle)
	return nil
}

// recordingEmailQueue captures enqueued notification emails.
type recordingEmailQueue struct {
	mu   sync.Mutex
	sent []mailer.CommentNotification
}

func (q *recordingEmailQueue) Enqueue(n mailer.CommentNotification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, n)
}

func (q *recordingEmailQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.sent)
}

// testServer wires a Server against an in-memory database with fake
// media and email collaborators.
type testServer struct {
	*Server
	store  *fakeMediaStore
	emails *recordingEmailQueue
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := &fakeMediaStore{}
	emails := &recordingEmailQueue{}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	s := &Server{
		config:           &config.Config{JWTSecret: "test-secret-key-12345678901234567890", ClientURL: "http://localhost:5173"},
		db:               db,
		userRepo:         userRepo,
		postRepo:         postRepo,
		commentRepo:      commentRepo,
		connectionRepo:   connectionRepo,
		notificationRepo: notificationRepo,
		mediaStore:       store,
	}
	s.postService = service.NewPostService(postRepo, connectionRepo, store)
	s.commentService = service.NewCommentService(
		commentRepo, postRepo, userRepo, notificationRepo, nil, emails, s.config.ClientURL)

	return &testServer{Server: s, store: store, emails: emails}
}

// appAs builds a Fiber app with the protected routes registered behind a
// middleware that injects the given user ID, standing in for AuthRequired.
func (ts *testServer) appAs(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})

	api := app.Group("/api")

	posts := api.Group("/posts")
	posts.Post("/", ts.CreatePost)
	posts.Get("/feed", ts.GetFeed)
	posts.Post("/:id/comments", ts.CreateComment)
	posts.Get("/:id/comments", ts.GetComments)
	posts.Post("/:id/like", ts.LikePost)
	posts.Post("/:id/dislike", ts.DislikePost)
	posts.Post("/:id/bookmark", ts.BookmarkPost)
	posts.Get("/:id", ts.GetPost)
	posts.Delete("/:id", ts.DeletePost)

	connections := api.Group("/connections")
	connections.Get("/", ts.GetConnections)
	connections.Post("/:userId", ts.Connect)
	connections.Delete("/:userId", ts.Disconnect)

	notificationRoutes := api.Group("/notifications")
	notificationRoutes.Get("/", ts.GetNotifications)
	notificationRoutes.Get("/unread-count", ts.GetUnreadCount)
	notificationRoutes.Post("/read-all", ts.MarkAllNotificationsRead)
	notificationRoutes.Post("/:id/read", ts.MarkNotificationRead)

	return app
}

func (ts *testServer) seedUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "irrelevant",
	}
	require.NoError(t, ts.db.Create(user).Error)
	return user
}

func (ts *testServer) seedPost(t *testing.T, userID uint, content string) *models.Post {
	t.Helper()
	post := &models.Post{UserID: userID, Content: content}
	require.NoError(t, ts.db.Create(post).Error)
	return post
}

func (ts *testServer) connect(t *testing.T, a, b uint) {
	t.Helper()
	require.NoError(t, ts.connectionRepo.Connect(context.Background(), a, b))
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeEnvelope(t *testing.T, resp *http.Response) models.Response {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var envelope models.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}
