// Package models contains data structures for the application's domain models.
package models

import "time"

// Comment represents a comment left by a user on a post.
type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Content string `gorm:"type:text;not null" json:"content"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	PostID  uint   `gorm:"not null;index" json:"post_id"`
	User    User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post    Post   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	// Username is not persisted; joined from the author row at query time.
	Username  string    `gorm:"->;-:migration" json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
