package service

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"linkup/internal/mailer"
	"linkup/internal/middleware"
	"linkup/internal/models"
	"linkup/internal/notifications"
	"linkup/internal/observability"
	"linkup/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const maxCommentLen = 10000

// EmailQueue accepts notification email for asynchronous delivery.
type EmailQueue interface {
	Enqueue(msg mailer.CommentNotification)
}

type CommentService struct {
	commentRepo      repository.CommentRepository
	postRepo         repository.PostRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	notifier         *notifications.Notifier
	emails           EmailQueue
	clientURL        string
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	notifier *notifications.Notifier,
	emails EmailQueue,
	clientURL string,
) *CommentService {
	return &CommentService{
		commentRepo:      commentRepo,
		postRepo:         postRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		notifier:         notifier,
		emails:           emails,
		clientURL:        clientURL,
	}
}

// CreateComment appends a comment to the post. When someone comments on
// another user's post, the author gets a stored notification and a
// best-effort email; commenting on your own post stays silent.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	span, ctx := observability.NewSpan(ctx, "CommentService.CreateComment")
	defer span.End()
	span.AddAttributes(attribute.Int("post.id", int(in.PostID)))

	comment, err := s.createComment(ctx, in)
	span.SetError(err)
	return comment, err
}

func (s *CommentService) createComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, 0)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: in.Content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if in.UserID != post.UserID {
		s.notifyAuthor(ctx, post, comment)
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// notifyAuthor records the notification and dispatches the realtime event and
// email. Only the stored notification participates in the comment's outcome;
// delivery failures downstream are logged and dropped.
func (s *CommentService) notifyAuthor(ctx context.Context, post *models.Post, comment *models.Comment) {
	notification := &models.Notification{
		RecipientID: post.UserID,
		SenderID:    comment.UserID,
		Kind:        models.NotificationKindComment,
		PostID:      post.ID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		observability.RecordErrorInContext(ctx, err)
		middleware.Logger.WarnContext(ctx, "comment notification not stored",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.String("error", err.Error()),
		)
		return
	}

	commenter, err := s.userRepo.GetByID(ctx, comment.UserID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "comment notification sender lookup failed",
			slog.Uint64("user_id", uint64(comment.UserID)),
			slog.String("error", err.Error()),
		)
		return
	}

	if s.notifier != nil {
		event := notifications.Event{
			Kind:       models.NotificationKindComment,
			SenderID:   commenter.ID,
			SenderName: commenter.Name,
			PostID:     post.ID,
		}
		if err := s.notifier.PublishEvent(ctx, post.UserID, event); err != nil {
			middleware.Logger.WarnContext(ctx, "comment notification publish failed",
				slog.Uint64("recipient_id", uint64(post.UserID)),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.emails == nil {
		return
	}
	author, err := s.userRepo.GetByID(ctx, post.UserID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "comment notification recipient lookup failed",
			slog.Uint64("user_id", uint64(post.UserID)),
			slog.String("error", err.Error()),
		)
		return
	}
	s.emails.Enqueue(mailer.CommentNotification{
		To:            author.Email,
		ToName:        author.Name,
		CommenterName: commenter.Name,
		CommentText:   comment.Content,
		PostURL:       fmt.Sprintf("%s/post/%d", s.clientURL, post.ID),
	})
}

// ListComments returns the post's comments in the order they were written.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	span, ctx := observability.NewSpan(ctx, "CommentService.ListComments")
	defer span.End()
	span.AddAttributes(attribute.Int("post.id", int(postID)))

	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		span.SetError(err)
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	span.SetError(err)
	return comments, err
}
