package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	deleteFn        func(context.Context, uint) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn:       func(_ context.Context, _ uint) (*models.User, error) { return nil, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn          func(context.Context, *models.Post) error
	getByIDForOwnerFn func(context.Context, uint, uint) (*models.Post, error)
	existsFn          func(context.Context, uint) (bool, error)
	listAllFn         func(context.Context) ([]*models.Post, error)
	listByAuthorFn    func(context.Context, uint) ([]*models.Post, error)
	updateOwnedFn     func(context.Context, uint, uint, map[string]any) (int64, error)
	deleteOwnedFn     func(context.Context, uint, uint) (int64, error)
	likeFn            func(context.Context, uint, uint) (bool, error)
	unlikeFn          func(context.Context, uint, uint) (bool, error)
	isLikedFn         func(context.Context, uint, uint) (bool, error)
	likeCountFn       func(context.Context, uint) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByIDForOwner(ctx context.Context, id, ownerID uint) (*models.Post, error) {
	return s.getByIDForOwnerFn(ctx, id, ownerID)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) ListAll(ctx context.Context) ([]*models.Post, error) {
	return s.listAllFn(ctx)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID)
}
func (s *postRepoStub) UpdateOwned(ctx context.Context, id, ownerID uint, fields map[string]any) (int64, error) {
	return s.updateOwnedFn(ctx, id, ownerID, fields)
}
func (s *postRepoStub) DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error) {
	return s.deleteOwnedFn(ctx, id, ownerID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) LikeCount(ctx context.Context, postID uint) (int64, error) {
	return s.likeCountFn(ctx, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:          func(_ context.Context, _ *models.Post) error { return nil },
		getByIDForOwnerFn: func(_ context.Context, _, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		existsFn:          func(_ context.Context, _ uint) (bool, error) { return true, nil },
		listAllFn:         func(_ context.Context) ([]*models.Post, error) { return nil, nil },
		listByAuthorFn:    func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		updateOwnedFn:     func(_ context.Context, _, _ uint, _ map[string]any) (int64, error) { return 1, nil },
		deleteOwnedFn:     func(_ context.Context, _, _ uint) (int64, error) { return 1, nil },
		likeFn:            func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:          func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isLikedFn:         func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeCountFn:       func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	listByPostFn  func(context.Context, uint) ([]*models.Comment, error)
	deleteOwnedFn func(context.Context, uint, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error) {
	return s.deleteOwnedFn(ctx, id, ownerID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:     func(_ context.Context, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		listByPostFn:  func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		deleteOwnedFn: func(_ context.Context, _, _ uint) (int64, error) { return 1, nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "NOT_FOUND")
}
