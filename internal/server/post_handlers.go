package server

import (
	"encoding/base64"
	"io"
	"strings"

	"linkup/internal/models"
	"linkup/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultFeedPageSize = 20

// decodeInlineImage accepts a base64 image from a JSON body, with or without a
// data URL prefix.
func decodeInlineImage(encoded string) ([]byte, error) {
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// CreatePost handles POST /api/posts
// Accepts either a JSON body (content plus an optional base64 image) or a
// multipart form with content plus an optional image file.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	in := service.CreatePostInput{UserID: userID}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		if values := form.Value["content"]; len(values) > 0 {
			in.Content = values[0]
		}
		if fileHeader, fhErr := c.FormFile("image"); fhErr == nil && fileHeader != nil {
			file, openErr := fileHeader.Open()
			if openErr != nil {
				return models.RespondWithError(c,
					models.NewValidationError("Could not read uploaded image"))
			}
			content, readErr := io.ReadAll(file)
			file.Close()
			if readErr != nil {
				return models.RespondWithError(c,
					models.NewValidationError("Could not read uploaded image"))
			}
			in.ImageContent = content
			in.ImageFilename = fileHeader.Filename
			in.ImageContentType = fileHeader.Header.Get("Content-Type")
		}
	} else {
		var req struct {
			Content string `json:"content"`
			Image   string `json:"image"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c,
				models.NewValidationError("Invalid request body"))
		}
		in.Content = req.Content
		if req.Image != "" {
			content, decErr := decodeInlineImage(req.Image)
			if decErr != nil {
				return models.RespondWithError(c,
					models.NewValidationError("Invalid image encoding"))
			}
			in.ImageContent = content
		}
	}

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusCreated, "Post created", post)
}

// GetFeed handles GET /api/posts/feed
// Returns recent posts from the current user's connections, newest first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, defaultFeedPageSize)

	posts, err := s.postService.GetFeed(c.UserContext(), service.FeedInput{
		UserID: userID,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Feed retrieved", posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.GetPost(c.UserContext(), postID, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Post retrieved", post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: currentUserID(c),
		PostID: postID,
	}); err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Post deleted", nil)
}
