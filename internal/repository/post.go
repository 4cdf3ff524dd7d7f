// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"linkup/internal/cache"
	"linkup/internal/models"
	"linkup/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetFeed(ctx context.Context, authorIDs []uint, currentUserID uint, limit, offset int) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	LikedUserIDs(ctx context.Context, postID uint) ([]uint, error)
	AddBookmark(ctx context.Context, userID, postID uint) error
	RemoveBookmark(ctx context.Context, userID, postID uint) error
	IsBookmarked(ctx context.Context, userID, postID uint) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID returns the post with author, comments and like details. Reads with
// a viewer carry the viewer's liked flag and go straight to the database;
// viewer-independent reads go through the post cache, which mutations
// invalidate via InvalidatePost.
func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	if currentUserID != 0 {
		return r.fetchByID(ctx, id, currentUserID)
	}

	var post models.Post
	err := cache.CacheAside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		fetched, err := r.fetchByID(ctx, id, 0)
		if err != nil {
			return err
		}
		post = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) fetchByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	defer observability.TrackQuery("read", "posts")()
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Comments.User").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}

	likedBy, err := r.LikedUserIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	post.LikedByIDs = likedBy

	return &post, nil
}

func (r *postRepository) GetFeed(ctx context.Context, authorIDs []uint, currentUserID uint, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("read", "posts")()
	if len(authorIDs) == 0 {
		return []*models.Post{}, nil
	}

	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Comments.User").
		Where("user_id IN ?", authorIDs).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// applyPostDetails adds subqueries to fetch the like count and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Bookmark{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Delete(&models.Post{}, id).Error; err != nil {
			return models.NewInternalError(err)
		}
		cache.InvalidatePost(ctx, id)
		return nil
	})
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	defer observability.TrackQuery("create", "likes")()
	// INSERT ... ON CONFLICT DO NOTHING makes repeated likes a no-op
	// and avoids duplicate key errors under races.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	defer observability.TrackQuery("delete", "likes")()
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) LikedUserIDs(ctx context.Context, postID uint) ([]uint, error) {
	var userIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return userIDs, nil
}

func (r *postRepository) AddBookmark(ctx context.Context, userID, postID uint) error {
	defer observability.TrackQuery("create", "bookmarks")()
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO bookmarks (user_id, post_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	return nil
}

func (r *postRepository) RemoveBookmark(ctx context.Context, userID, postID uint) error {
	defer observability.TrackQuery("delete", "bookmarks")()
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Bookmark{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) IsBookmarked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Bookmark{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
