package service

import (
	"context"
	"errors"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	Category string
	ImageURL string
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Title    string
	Content  string
	Category string
	ImageURL string
	NewImage bool
}

type LikeStatus struct {
	Count     int64 `json:"count"`
	UserLiked bool  `json:"userLiked"`
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}

	category := in.Category
	if category == "" {
		category = models.DefaultCategory
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		Category: category,
		ImageURL: in.ImageURL,
		UserID:   in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// ListPosts returns all posts, newest first. A store fault degrades to an
// empty list so the public feed stays up while the database is down.
func (s *PostService) ListPosts(ctx context.Context) []*models.Post {
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "listing posts failed, serving empty feed", "error", err)
		return []*models.Post{}
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts
}

// ListUserPosts returns the requesting user's posts with the same degradation
// as the public feed.
func (s *PostService) ListUserPosts(ctx context.Context, userID uint) []*models.Post {
	posts, err := s.postRepo.ListByAuthor(ctx, userID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "listing user posts failed, serving empty feed", "error", err, "user_id", userID)
		return []*models.Post{}
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts
}

// GetOwnedPost fetches a post only when the requester owns it. Posts owned by
// other users are reported as missing so existence is not leaked.
func (s *PostService) GetOwnedPost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByIDForOwner(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// UpdatePost overwrites title, content, and category, and replaces the image
// only when a new one was uploaded. Ownership is enforced by the store in the
// same statement as the mutation.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) error {
	if in.Title == "" || in.Content == "" {
		return models.NewValidationError("Title and content are required")
	}

	category := in.Category
	if category == "" {
		category = models.DefaultCategory
	}

	fields := map[string]any{
		"title":    in.Title,
		"content":  in.Content,
		"category": category,
	}
	if in.NewImage {
		fields["image_url"] = in.ImageURL
	}

	affected, err := s.postRepo.UpdateOwned(ctx, in.PostID, in.UserID, fields)
	if err != nil {
		return models.NewInternalError(err)
	}
	if affected == 0 {
		return models.NewForbiddenError("Not authorized to edit this post")
	}
	return nil
}

func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	affected, err := s.postRepo.DeleteOwned(ctx, postID, userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if affected == 0 {
		return models.NewForbiddenError("Not authorized to delete this post")
	}
	return nil
}

// ToggleLike likes the post if the user has not liked it, and removes the
// like otherwise. The insert relies on the (user_id, post_id) unique index,
// so a concurrent duplicate falls through to the unlike branch.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if !exists {
		return false, models.NewNotFoundError("Post not found")
	}

	inserted, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if inserted {
		return true, nil
	}

	if _, err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return false, models.NewInternalError(err)
	}
	return false, nil
}

// GetLikeStatus returns the like count for a post and whether the given user
// has liked it. userID of zero means an anonymous requester.
func (s *PostService) GetLikeStatus(ctx context.Context, postID, userID uint) (*LikeStatus, error) {
	count, err := s.postRepo.LikeCount(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	status := &LikeStatus{Count: count}
	if userID != 0 {
		liked, err := s.postRepo.IsLiked(ctx, userID, postID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		status.UserLiked = liked
	}
	return status, nil
}
