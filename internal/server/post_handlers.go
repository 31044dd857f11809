package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	return c.JSON(s.postService.ListPosts(c.UserContext()))
}

// GetUserPosts handles GET /api/posts/user
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	return c.JSON(s.postService.ListUserPosts(c.UserContext(), currentUserID(c)))
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetOwnedPost(c.UserContext(), postID, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, statusForServiceError(err), err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts (multipart: title, content, category, image?)
func (s *Server) CreatePost(c *fiber.Ctx) error {
	imageURL, err := s.storeUploadedImage(c)
	if err != nil {
		return models.RespondWithError(c, statusForServiceError(err), err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:   currentUserID(c),
		Title:    c.FormValue("title"),
		Content:  c.FormValue("content"),
		Category: c.FormValue("category"),
		ImageURL: imageURL,
	})
	if err != nil {
		// The stored file is orphaned when the post row was never written.
		if imageURL != "" {
			s.mediaService.RemoveStored(imageURL)
		}
		return models.RespondWithError(c, statusForServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created successfully",
		"postId":  post.ID,
	})
}

// UpdatePost handles PUT /api/posts/:id (multipart: title, content, category, image?)
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	imageURL, err := s.storeUploadedImage(c)
	if err != nil {
		return models.RespondWithError(c, statusForServiceError(err), err)
	}

	err = s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:   currentUserID(c),
		PostID:   postID,
		Title:    c.FormValue("title"),
		Content:  c.FormValue("content"),
		Category: c.FormValue("category"),
		ImageURL: imageURL,
		NewImage: imageURL != "",
	})
	if err != nil {
		if imageURL != "" {
			s.mediaService.RemoveStored(imageURL)
		}
		return models.RespondWithError(c, statusForServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Post updated successfully"})
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), postID, currentUserID(c)); err != nil {
		return models.RespondWithError(c, statusForServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.postService.ToggleLike(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, statusForServiceError(err), err)
	}

	if liked {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Post liked successfully",
			"liked":   true,
		})
	}
	return c.JSON(fiber.Map{
		"message": "Post unliked successfully",
		"liked":   false,
	})
}

// GetLikes handles GET /api/posts/:id/likes. The bearer token is optional;
// without one userLiked is always false.
func (s *Server) GetLikes(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID, _ := s.optionalUserID(c)
	status, err := s.postService.GetLikeStatus(c.UserContext(), postID, userID)
	if err != nil {
		return models.RespondWithError(c, statusForServiceError(err), err)
	}
	return c.JSON(status)
}
