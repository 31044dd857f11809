// Package models contains data structures for the application's domain models.
package models

import "time"

// DefaultCategory is assigned to posts created without an explicit category.
const DefaultCategory = "Uncategorized"

// Post represents a blog post authored by a user. Deleting a post cascades
// to its comments and likes at the database level.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Category string `gorm:"size:50;default:Uncategorized" json:"category"`
	ImageURL string `json:"image_url"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	// Username is not persisted; joined from the author row at query time.
	Username string `gorm:"->;-:migration" json:"username"`
	// LikesCount is not persisted; computed at query time.
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time.
	CommentsCount int       `gorm:"->;-:migration" json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
