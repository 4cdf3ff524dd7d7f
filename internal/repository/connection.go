// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"linkup/internal/cache"
	"linkup/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConnectionRepository defines the interface for connection data operations
type ConnectionRepository interface {
	Connect(ctx context.Context, userID, peerID uint) error
	Disconnect(ctx context.Context, userID, peerID uint) error
	AreConnected(ctx context.Context, userID, peerID uint) (bool, error)
	GetConnectionUserIDs(ctx context.Context, userID uint) ([]uint, error)
	GetConnections(ctx context.Context, userID uint) ([]models.User, error)
}

// connectionRepository implements ConnectionRepository
type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Connect(ctx context.Context, userID, peerID uint) error {
	conn := &models.Connection{UserID: userID, PeerID: peerID}
	// The BeforeCreate hook orders the pair, so the unique index makes
	// repeated connects a no-op regardless of argument order.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(conn).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	invalidateFeeds(ctx, userID, peerID)
	return nil
}

func (r *connectionRepository) Disconnect(ctx context.Context, userID, peerID uint) error {
	lo, hi := orderPair(userID, peerID)
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND peer_id = ?", lo, hi).
		Delete(&models.Connection{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	invalidateFeeds(ctx, userID, peerID)
	return nil
}

func (r *connectionRepository) AreConnected(ctx context.Context, userID, peerID uint) (bool, error) {
	lo, hi := orderPair(userID, peerID)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("user_id = ? AND peer_id = ?", lo, hi).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *connectionRepository) GetConnectionUserIDs(ctx context.Context, userID uint) ([]uint, error) {
	var rows []models.Connection
	err := r.db.WithContext(ctx).
		Where("user_id = ? OR peer_id = ?", userID, userID).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		if row.UserID == userID {
			ids = append(ids, row.PeerID)
		} else {
			ids = append(ids, row.UserID)
		}
	}
	return ids, nil
}

func (r *connectionRepository) GetConnections(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN connections c ON (users.id = c.user_id OR users.id = c.peer_id)").
		Where("(c.user_id = ? OR c.peer_id = ?) AND users.id != ?", userID, userID, userID).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func orderPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// invalidateFeeds drops both users' cached feeds after a connection change.
func invalidateFeeds(ctx context.Context, userID, peerID uint) {
	cache.Invalidate(ctx, cache.FeedKey(userID))
	cache.Invalidate(ctx, cache.FeedKey(peerID))
}
