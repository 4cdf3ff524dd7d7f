package models

import (
	"time"

	"gorm.io/gorm"
)

// Connection represents a symmetric relationship between two users, used to
// scope the feed. One row represents the relation in both directions.
type Connection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_connection_pair" json:"user_id"`
	PeerID    uint      `gorm:"not null;uniqueIndex:idx_connection_pair" json:"peer_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Peer User `gorm:"foreignKey:PeerID" json:"peer,omitempty"`
}

// TableName specifies the table name for GORM
func (Connection) TableName() string {
	return "connections"
}

// BeforeCreate ensures UserID < PeerID for consistent ordering
func (conn *Connection) BeforeCreate(_ *gorm.DB) error {
	if conn.UserID > conn.PeerID {
		conn.UserID, conn.PeerID = conn.PeerID, conn.UserID
	}
	return nil
}
