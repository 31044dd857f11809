// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	// DeleteOwned removes the comment in a single ownership-scoped statement
	// and reports the number of rows affected (0 means missing or not owned).
	DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.withAuthor(r.db.WithContext(ctx)).
		Where("comments.id = ?", id).
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.withAuthor(r.db.WithContext(ctx)).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) withAuthor(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Comment{}).
		Select("comments.*, users.username AS username").
		Joins("JOIN users ON users.id = comments.user_id")
}

func (r *commentRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Comment{})
	return result.RowsAffected, result.Error
}
