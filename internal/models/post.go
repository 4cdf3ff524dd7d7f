package models

import (
	"time"
)

// Post represents a post in the Linkup application. Deletion is a hard delete:
// a removed post is final and unrecoverable.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Content  string    `gorm:"type:text" json:"content"`
	ImageURL string    `json:"image_url"`
	UserID   uint      `gorm:"not null;index" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID" json:"user"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// LikedByIDs is the set of users who liked this post; populated by the repository
	LikedByIDs []uint `gorm:"-" json:"liked_by_ids,omitempty"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
