// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByIDForOwner returns the post only when it belongs to ownerID;
	// gorm.ErrRecordNotFound covers both "missing" and "not owned".
	GetByIDForOwner(ctx context.Context, id, ownerID uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ListAll(ctx context.Context) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error)
	// UpdateOwned mutates the post in a single ownership-scoped statement and
	// reports the number of rows affected (0 means missing or not owned).
	UpdateOwned(ctx context.Context, id, ownerID uint, fields map[string]any) (int64, error)
	// DeleteOwned removes the post in a single ownership-scoped statement;
	// comments and likes go with it via ON DELETE CASCADE.
	DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error)
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	LikeCount(ctx context.Context, postID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByIDForOwner(ctx context.Context, id, ownerID uint) (*models.Post, error) {
	var post models.Post
	err := r.withAuthorAndCounts(r.db.WithContext(ctx)).
		Where("posts.id = ? AND posts.user_id = ?", id, ownerID).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withAuthorAndCounts(r.db.WithContext(ctx)).
		Order("posts.created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withAuthorAndCounts(r.db.WithContext(ctx)).
		Where("posts.user_id = ?", authorID).
		Order("posts.created_at DESC").
		Find(&posts).Error
	return posts, err
}

// withAuthorAndCounts joins the author's username and adds count subqueries so
// each post row carries its like/comment totals in a single query.
func (r *postRepository) withAuthorAndCounts(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).
		Select("posts.*, users.username AS username, " +
			"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
			"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count").
		Joins("JOIN users ON users.id = posts.user_id")
}

func (r *postRepository) UpdateOwned(ctx context.Context, id, ownerID uint, fields map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePost(ctx, id)
	}
	return result.RowsAffected, nil
}

func (r *postRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Post{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePost(ctx, id)
	}
	return result.RowsAffected, nil
}

// Like inserts a like row, relying on the (user_id, post_id) unique constraint
// to absorb races: ON CONFLICT DO NOTHING means a concurrent insert wins and
// this call reports false, the same as "already liked".
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&models.Like{UserID: userID, PostID: postID})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) LikeCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := cache.Aside(ctx, cache.PostLikesKey(postID), &count, cache.PostLikesTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Like{}).
			Where("post_id = ?", postID).
			Count(&count).Error
	})
	return count, err
}
