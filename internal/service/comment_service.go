package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" || in.PostID == 0 {
		return nil, models.NewValidationError("Comment content and post ID are required")
	}

	exists, err := s.postRepo.Exists(ctx, in.PostID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !exists {
		return nil, models.NewNotFoundError("Post not found")
	}

	comment := &models.Comment{
		Content: in.Content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	affected, err := s.commentRepo.DeleteOwned(ctx, commentID, userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if affected == 0 {
		return models.NewForbiddenError("Not authorized to delete this comment")
	}
	return nil
}
