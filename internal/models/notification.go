package models

import (
	"time"
)

// NotificationKind enumerates the events a notification can carry.
type NotificationKind string

const (
	// NotificationKindComment indicates somebody commented on the recipient's post.
	NotificationKindComment NotificationKind = "comment"
)

// Notification is created as a side effect of engagement, never by a user acting
// on their own post.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	SenderID    uint             `gorm:"not null" json:"sender_id"`
	Kind        NotificationKind `gorm:"type:varchar(20);not null" json:"kind"`
	PostID      uint             `gorm:"not null" json:"post_id"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`

	// Relationships
	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
