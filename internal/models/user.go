// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a member of the Linkup network.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Username       string    `gorm:"unique;not null" json:"username"`
	Email          string    `gorm:"unique;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	ProfilePicture string    `json:"profile_picture"`
	Headline       string    `json:"headline"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Posts          []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
