package server

import (
	"linkup/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/posts/:id/like
// Liking is a set operation; repeating it leaves the post liked.
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.LikePost(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Post liked", post)
}

// DislikePost handles POST /api/posts/:id/dislike
// Removes the caller's like; a no-op when no like exists.
func (s *Server) DislikePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.DislikePost(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Post disliked", post)
}

// BookmarkPost handles POST /api/posts/:id/bookmark
// Toggles the bookmark for the current user and reports the resulting state.
func (s *Server) BookmarkPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	bookmarked, err := s.postService.ToggleBookmark(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	message := "Bookmark removed"
	if bookmarked {
		message = "Post bookmarked"
	}

	return models.Respond(c, fiber.StatusOK, message, fiber.Map{
		"bookmarked": bookmarked,
	})
}
