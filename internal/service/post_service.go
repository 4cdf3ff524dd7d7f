package service

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"linkup/internal/cache"
	"linkup/internal/media"
	"linkup/internal/middleware"
	"linkup/internal/models"
	"linkup/internal/observability"
	"linkup/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxContentLen    = 50000
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

type PostService struct {
	postRepo       repository.PostRepository
	connectionRepo repository.ConnectionRepository
	mediaStore     media.Store
}

type CreatePostInput struct {
	UserID           uint
	Content          string
	ImageContent     []byte
	ImageFilename    string
	ImageContentType string
}

type FeedInput struct {
	UserID uint
	Limit  int
	Offset int
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	connectionRepo repository.ConnectionRepository,
	mediaStore media.Store,
) *PostService {
	return &PostService{
		postRepo:       postRepo,
		connectionRepo: connectionRepo,
		mediaStore:     mediaStore,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.CreatePost")
	defer span.End()
	span.AddAttributes(attribute.Int("user.id", int(in.UserID)))

	post, err := s.createPost(ctx, in)
	span.SetError(err)
	return post, err
}

func (s *PostService) createPost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Content == "" && len(in.ImageContent) == 0 {
		return nil, models.NewValidationError("Post requires content or an image")
	}
	if utf8.RuneCountInString(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	// The image is stored before the post row exists. A failed upload aborts
	// the whole operation so no post ever references a missing asset.
	var imageURL string
	if len(in.ImageContent) > 0 {
		asset, err := s.mediaStore.Upload(ctx, media.UploadInput{
			UserID:      in.UserID,
			Filename:    in.ImageFilename,
			ContentType: in.ImageContentType,
			Content:     in.ImageContent,
		})
		if err != nil {
			observability.MediaUploadsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		observability.MediaUploadsTotal.WithLabelValues("success").Inc()
		observability.AddTraceAttributesToContext(ctx,
			attribute.String("media.handle", asset.Handle))
		imageURL = asset.URL
	}

	post := &models.Post{
		Content:  in.Content,
		ImageURL: imageURL,
		UserID:   in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetFeed returns posts authored by the user's connections, newest first.
// The default first page is served through the short-lived feed cache.
func (s *PostService) GetFeed(ctx context.Context, in FeedInput) ([]*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.GetFeed")
	defer span.End()
	span.AddAttributes(attribute.Int("user.id", int(in.UserID)))

	limit := in.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	if in.Offset == 0 && limit == defaultFeedLimit {
		var posts []*models.Post
		err := cache.CacheAside(ctx, cache.FeedKey(in.UserID), &posts, cache.FeedTTL, func() error {
			fetched, err := s.fetchFeed(ctx, in.UserID, limit, in.Offset)
			if err != nil {
				return err
			}
			posts = fetched
			return nil
		})
		span.SetError(err)
		if err != nil {
			return nil, err
		}
		return posts, nil
	}

	posts, err := s.fetchFeed(ctx, in.UserID, limit, in.Offset)
	span.SetError(err)
	return posts, err
}

func (s *PostService) fetchFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	authorIDs, err := s.connectionRepo.GetConnectionUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.postRepo.GetFeed(ctx, authorIDs, userID, limit, offset)
}

func (s *PostService) GetPost(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.GetPost")
	defer span.End()
	span.AddAttributes(attribute.Int("post.id", int(id)))

	post, err := s.postRepo.GetByID(ctx, id, currentUserID)
	span.SetError(err)
	return post, err
}

// DeletePost removes a post owned by the caller. The stored image, if any, is
// deleted after the row so a media failure never resurrects the post.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	span, ctx := observability.NewSpan(ctx, "PostService.DeletePost")
	defer span.End()
	span.AddAttributes(attribute.Int("post.id", int(in.PostID)))

	err := s.deletePost(ctx, in)
	span.SetError(err)
	return err
}

func (s *PostService) deletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}

	if post.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return err
	}

	if post.ImageURL != "" {
		handle := media.HandleFromURL(post.ImageURL)
		if err := s.mediaStore.Delete(ctx, handle); err != nil {
			observability.RecordErrorInContext(ctx, err)
			middleware.Logger.WarnContext(ctx, "post image cleanup failed",
				slog.Uint64("post_id", uint64(in.PostID)),
				slog.String("handle", handle),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// LikePost records the like. Liking an already liked post is a no-op.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.LikePost")
	defer span.End()

	post, err := s.likePost(ctx, userID, postID)
	span.SetError(err)
	return post, err
}

func (s *PostService) likePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return nil, err
	}
	observability.EngagementEventsTotal.WithLabelValues("like").Inc()
	return s.postRepo.GetByID(ctx, postID, userID)
}

// DislikePost withdraws the like. Disliking a post that was never liked is a
// no-op.
func (s *PostService) DislikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.DislikePost")
	defer span.End()

	post, err := s.dislikePost(ctx, userID, postID)
	span.SetError(err)
	return post, err
}

func (s *PostService) dislikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	observability.EngagementEventsTotal.WithLabelValues("dislike").Inc()
	return s.postRepo.GetByID(ctx, postID, userID)
}

// ToggleBookmark flips the caller's bookmark on the post and reports the
// resulting state.
func (s *PostService) ToggleBookmark(ctx context.Context, userID, postID uint) (bool, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.ToggleBookmark")
	defer span.End()

	bookmarked, err := s.toggleBookmark(ctx, userID, postID)
	span.SetError(err)
	return bookmarked, err
}

func (s *PostService) toggleBookmark(ctx context.Context, userID, postID uint) (bool, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return false, err
	}

	bookmarked, err := s.postRepo.IsBookmarked(ctx, userID, postID)
	if err != nil {
		return false, err
	}

	if bookmarked {
		if err := s.postRepo.RemoveBookmark(ctx, userID, postID); err != nil {
			return false, err
		}
		observability.EngagementEventsTotal.WithLabelValues("unbookmark").Inc()
		return false, nil
	}

	if err := s.postRepo.AddBookmark(ctx, userID, postID); err != nil {
		return false, err
	}
	observability.EngagementEventsTotal.WithLabelValues("bookmark").Inc()
	return true, nil
}
